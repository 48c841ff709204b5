package services

import (
	"errors"
	"fmt"

	"restaurant/entity"
	"restaurant/pkg/apperr"
	"restaurant/repository"

	"gorm.io/gorm"
)

type CartService struct {
	DB       *gorm.DB
	CartRepo *repository.CartRepository
	MenuRepo *repository.MenuRepository
}

func NewCartService(db *gorm.DB, cr *repository.CartRepository, mr *repository.MenuRepository) *CartService {
	return &CartService{DB: db, CartRepo: cr, MenuRepo: mr}
}

// CartLine is a cart row joined with the menu item it points at.
type CartLine struct {
	ID         uint    `json:"id"`
	MenuItemID uint    `json:"menuItemId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	ImageURL   string  `json:"imageUrl"`
	Quantity   int     `json:"quantity"`
	LineTotal  float64 `json:"lineTotal"`
	Version    uint    `json:"version"`
}

type CartView struct {
	Items    []CartLine `json:"items"`
	Subtotal float64    `json:"subtotal"`
}

// Get returns only rows owned by userID.
func (s *CartService) Get(userID uint) (*CartView, error) {
	rows, err := s.CartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	view := &CartView{Items: make([]CartLine, 0, len(rows))}
	var cents int64
	for _, it := range rows {
		lineCents := toCents(it.MenuItem.Price) * int64(it.Quantity)
		cents += lineCents
		view.Items = append(view.Items, CartLine{
			ID:         it.ID,
			MenuItemID: it.MenuItemID,
			Name:       it.MenuItem.Name,
			Price:      it.MenuItem.Price,
			ImageURL:   it.MenuItem.ImageURL,
			Quantity:   it.Quantity,
			LineTotal:  float64(lineCents) / 100,
			Version:    it.Version,
		})
	}
	view.Subtotal = float64(cents) / 100
	return view, nil
}

// MaxQuantity caps a single cart row.
const MaxQuantity = 99

var errTooMany = apperr.Validation(fmt.Sprintf("quantity must be at most %d", MaxQuantity))

// Add puts qty units of a menu item in the cart. An item already in the
// cart has its quantity increased instead of getting a second row.
func (s *CartService) Add(userID, menuItemID uint, qty int) error {
	if qty < 1 {
		return apperr.Validation("quantity must be at least 1")
	}
	if qty > MaxQuantity {
		return errTooMany
	}
	if _, err := s.MenuRepo.FindByID(menuItemID); err != nil {
		return err
	}

	ok, err := s.increment(userID, menuItemID, qty)
	if err != nil || ok {
		return err
	}

	row := &entity.CartItem{UserID: userID, MenuItemID: menuItemID, Quantity: qty, Version: 1}
	err = s.CartRepo.Create(row)
	if errors.Is(err, apperr.ErrDuplicate) {
		// another request inserted the pair first
		if ok, err = s.increment(userID, menuItemID, qty); err == nil && !ok {
			return errTooMany
		}
	}
	return err
}

// increment reports false when there is no row for the pair. A row that
// would go past MaxQuantity is a validation error.
func (s *CartService) increment(userID, menuItemID uint, qty int) (bool, error) {
	ok, err := s.CartRepo.Increment(userID, menuItemID, qty, MaxQuantity)
	if err != nil || ok {
		return ok, err
	}
	existing, err := s.CartRepo.FindPair(userID, menuItemID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, errTooMany
	}
	return false, nil
}

// UpdateQty sets the quantity of one of the user's rows; qty < 1 removes it.
func (s *CartService) UpdateQty(userID, itemID uint, qty int, version uint) error {
	if qty > MaxQuantity {
		return errTooMany
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.CartRepo.WithTx(tx)
		if err := ensureOwner(repo, userID, itemID); err != nil {
			return err
		}
		if qty < 1 {
			return repo.RemoveItem(userID, itemID)
		}
		return repo.SetQuantity(userID, itemID, qty, version)
	})
}

func (s *CartService) RemoveItem(userID, itemID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.CartRepo.WithTx(tx)
		if err := ensureOwner(repo, userID, itemID); err != nil {
			return err
		}
		return repo.RemoveItem(userID, itemID)
	})
}

func (s *CartService) Clear(userID uint) error {
	return s.CartRepo.ClearCart(userID)
}

// ensureOwner: unknown id is ErrNotFound, someone else's row is ErrForbidden.
func ensureOwner(repo *repository.CartRepository, userID, itemID uint) error {
	row, err := repo.GetByID(itemID)
	if err != nil {
		return err
	}
	if row.UserID != userID {
		return apperr.Wrapf(apperr.ErrForbidden, "cart item %d belongs to another user", itemID)
	}
	return nil
}

func toCents(price float64) int64 {
	return int64(price*100 + 0.5)
}

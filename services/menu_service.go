package services

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"restaurant/entity"
	"restaurant/pkg/apperr"
	"restaurant/repository"

	"gorm.io/gorm"
)

type DeletePolicy string

const (
	// DeleteReject refuses to delete items that sit in someone's cart.
	DeleteReject DeletePolicy = "reject"
	// DeleteCascade drops the dependent cart rows together with the item.
	DeleteCascade DeletePolicy = "cascade"
)

// MenuItemInput is the raw form input for a new item. Price stays a string
// until validated.
type MenuItemInput struct {
	Name        string `form:"name" json:"name"`
	Description string `form:"description" json:"description"`
	Price       string `form:"price" json:"price"`
	ImageURL    string `form:"image_url" json:"imageUrl"`
}

// MenuItemPatch carries only the fields being changed. Version, when
// non-zero, must match the stored row.
type MenuItemPatch struct {
	Name        *string `form:"name" json:"name"`
	Description *string `form:"description" json:"description"`
	Price       *string `form:"price" json:"price"`
	ImageURL    *string `form:"image_url" json:"imageUrl"`
	Version     uint    `form:"version" json:"version"`
}

// MenuService is the catalog. Callers must have passed RequireAdmin before
// any mutating call.
type MenuService struct {
	DB       *gorm.DB
	Repo     *repository.MenuRepository
	CartRepo *repository.CartRepository
	Policy   DeletePolicy
}

func NewMenuService(db *gorm.DB, repo *repository.MenuRepository, cartRepo *repository.CartRepository, policy DeletePolicy) *MenuService {
	if policy != DeleteCascade {
		policy = DeleteReject
	}
	return &MenuService{DB: db, Repo: repo, CartRepo: cartRepo, Policy: policy}
}

func (s *MenuService) List() ([]entity.MenuItem, error) {
	return s.Repo.List()
}

func (s *MenuService) Get(id uint) (*entity.MenuItem, error) {
	return s.Repo.FindByID(id)
}

func (s *MenuService) Count() (int64, error) {
	return s.Repo.Count()
}

func (s *MenuService) Create(in MenuItemInput) (*entity.MenuItem, error) {
	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}
	desc, err := validateDescription(in.Description)
	if err != nil {
		return nil, err
	}
	price, err := ParsePrice(in.Price)
	if err != nil {
		return nil, err
	}
	img, err := validateImageURL(in.ImageURL)
	if err != nil {
		return nil, err
	}

	item := &entity.MenuItem{Name: name, Description: desc, Price: price, ImageURL: img, Version: 1}
	if err := s.Repo.Create(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *MenuService) Update(id uint, patch MenuItemPatch) (*entity.MenuItem, error) {
	item, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if item.Name, err = validateName(*patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Description != nil {
		if item.Description, err = validateDescription(*patch.Description); err != nil {
			return nil, err
		}
	}
	if patch.Price != nil {
		if item.Price, err = ParsePrice(*patch.Price); err != nil {
			return nil, err
		}
	}
	if patch.ImageURL != nil {
		if item.ImageURL, err = validateImageURL(*patch.ImageURL); err != nil {
			return nil, err
		}
	}
	if patch.Version != 0 {
		item.Version = patch.Version
	}

	if err := s.Repo.UpdateVersioned(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete follows s.Policy when the item is still referenced by carts.
func (s *MenuService) Delete(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		menuRepo := s.Repo.WithTx(tx)
		cartRepo := s.CartRepo.WithTx(tx)

		if _, err := menuRepo.FindByID(id); err != nil {
			return err
		}
		refs, err := cartRepo.CountByMenuItem(id)
		if err != nil {
			return err
		}
		if refs > 0 {
			if s.Policy != DeleteCascade {
				return apperr.Wrapf(apperr.ErrConflict, "menu item is in %d cart(s)", refs)
			}
			if err := cartRepo.DeleteByMenuItem(id); err != nil {
				return err
			}
		}
		return menuRepo.DeleteByID(id)
	})
}

// MaxPrice is the largest value a decimal(10,2) price column holds.
const MaxPrice = 99999999.99

// ParsePrice accepts a finite decimal such as "9.99" between 0 and MaxPrice.
func ParsePrice(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperr.Validation("price is required")
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, apperr.Validation("price must be a number")
	}
	if price < 0 {
		return 0, apperr.Validation("price must not be negative")
	}
	price = math.Round(price*100) / 100
	if price > MaxPrice {
		return 0, apperr.Validation("price must be at most 99999999.99")
	}
	return price, nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("name is required")
	}
	if utf8.RuneCountInString(name) > 100 {
		return "", apperr.Validation("name must be at most 100 characters")
	}
	return name, nil
}

func validateDescription(desc string) (string, error) {
	desc = strings.TrimSpace(desc)
	if utf8.RuneCountInString(desc) > 200 {
		return "", apperr.Validation("description must be at most 200 characters")
	}
	return desc, nil
}

func validateImageURL(u string) (string, error) {
	u = strings.TrimSpace(u)
	if utf8.RuneCountInString(u) > 200 {
		return "", apperr.Validation("image url must be at most 200 characters")
	}
	return u, nil
}

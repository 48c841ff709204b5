package repository

import (
	"errors"
	"fmt"
	"strings"

	"restaurant/pkg/apperr"

	"gorm.io/gorm"
)

// Store is the CRUD contract every table repository shares.
type Store[T any] struct {
	DB *gorm.DB
}

func NewStore[T any](db *gorm.DB) Store[T] {
	return Store[T]{DB: db}
}

func (s Store[T]) Create(row *T) error {
	return wrap("create", s.DB.Create(row).Error)
}

// GetByID returns apperr.ErrNotFound when no row has the id.
func (s Store[T]) GetByID(id any) (*T, error) {
	var row T
	if err := s.DB.First(&row, "id = ?", id).Error; err != nil {
		return nil, wrap("get by id", err)
	}
	return &row, nil
}

// FindOne returns (nil, nil) when nothing matches.
func (s Store[T]) FindOne(query any, args ...any) (*T, error) {
	var row T
	err := s.DB.Where(query, args...).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("find one", err)
	}
	return &row, nil
}

// FindAll with a nil query returns the whole table ordered by id.
func (s Store[T]) FindAll(query any, args ...any) ([]T, error) {
	var rows []T
	tx := s.DB.Order("id")
	if query != nil {
		tx = tx.Where(query, args...)
	}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, wrap("find all", err)
	}
	return rows, nil
}

func (s Store[T]) Update(row *T) error {
	return wrap("update", s.DB.Save(row).Error)
}

func (s Store[T]) Delete(row *T) error {
	return wrap("delete", s.DB.Delete(row).Error)
}

// wrap classifies a gorm error into the apperr taxonomy.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	if isDuplicate(err) {
		return fmt.Errorf("%s: %w: %w: %v", op, apperr.ErrStorage, apperr.ErrDuplicate, err)
	}
	if isForeignKey(err) {
		return fmt.Errorf("%s: %w: %w", op, apperr.ErrConflict, apperr.ErrReferenced)
	}
	return fmt.Errorf("%s: %w: %v", op, apperr.ErrStorage, err)
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func isForeignKey(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

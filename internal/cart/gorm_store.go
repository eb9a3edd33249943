package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ethanhollis/cartwright-backend/pkg/db"
	"github.com/ethanhollis/cartwright-backend/pkg/db/models"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// GormStore persists authenticated carts in cart_records/cart_items, keyed
// by the owning user's id. The record's version column backs the optimistic
// check in Save.
type GormStore struct {
	db *gorm.DB
	tx txRunner
}

// NewGormStore builds a store over the provided GORM handle and transaction
// runner.
func NewGormStore(conn *gorm.DB, tx txRunner) (*GormStore, error) {
	if conn == nil {
		return nil, fmt.Errorf("db handle required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &GormStore{db: conn, tx: tx}, nil
}

// Load returns the user's cart and version, or an empty cart at version zero
// when the user has never saved one.
func (s *GormStore) Load(ctx context.Context, key string) (*Cart, int64, error) {
	userID, err := uuid.Parse(key)
	if err != nil {
		return nil, 0, fmt.Errorf("parse cart key: %w", err)
	}

	var record models.CartRecord
	err = s.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		Where("user_id = ?", userID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Cart{}, 0, nil
		}
		return nil, 0, err
	}

	cart := &Cart{Items: make([]LineItem, 0, len(record.Items))}
	for _, item := range record.Items {
		cart.Items = append(cart.Items, LineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return cart, record.Version, nil
}

// Save writes the cart if the stored version still matches. Version zero
// means the caller read an absent record, so Save inserts; a duplicate
// insert or a moved version both surface as ErrConflict.
func (s *GormStore) Save(ctx context.Context, key string, cart *Cart, version int64) error {
	userID, err := uuid.Parse(key)
	if err != nil {
		return fmt.Errorf("parse cart key: %w", err)
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var recordID uuid.UUID

		if version == 0 {
			record := &models.CartRecord{
				ID:      uuid.New(),
				UserID:  userID,
				Version: 1,
			}
			if err := tx.Create(record).Error; err != nil {
				if db.IsUniqueViolation(err) {
					return ErrConflict
				}
				return err
			}
			recordID = record.ID
		} else {
			res := tx.Model(&models.CartRecord{}).
				Where("user_id = ? AND version = ?", userID, version).
				Update("version", version+1)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrConflict
			}
			var record models.CartRecord
			if err := tx.Select("id").Where("user_id = ?", userID).First(&record).Error; err != nil {
				return err
			}
			recordID = record.ID
		}

		if err := tx.Where("cart_id = ?", recordID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return nil
		}

		rows := make([]models.CartItem, 0, len(cart.Items))
		for i, item := range cart.Items {
			rows = append(rows, models.CartItem{
				ID:        uuid.New(),
				CartID:    recordID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Position:  i,
			})
		}
		return tx.Create(&rows).Error
	})
}

// Delete removes the user's cart record and its items.
func (s *GormStore) Delete(ctx context.Context, key string) error {
	userID, err := uuid.Parse(key)
	if err != nil {
		return fmt.Errorf("parse cart key: %w", err)
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var record models.CartRecord
		if err := tx.Select("id").Where("user_id = ?", userID).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Where("cart_id = ?", record.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", record.ID).Delete(&models.CartRecord{}).Error
	})
}

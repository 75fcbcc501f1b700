package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrDollarNotFound = errors.New("dollar price not found")

type DollarPrice struct {
	ID        uint   `gorm:"primaryKey"`
	Slot      int    `gorm:"not null;default:1;uniqueIndex:idx_dollar_prices_slot;check:chk_dollar_prices_slot,slot = 1"`
	Price     string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type DollarDAO struct {
	db *gorm.DB
}

func NewDollarDAO(db *gorm.DB) *DollarDAO {
	return &DollarDAO{
		db: db,
	}
}

func (d *DollarDAO) Upsert(ctx context.Context, price string) (DollarPrice, error) {
	dollar := DollarPrice{Slot: singletonSlot, Price: price}

	result := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
	}).Create(&dollar)
	if result.Error != nil {
		return DollarPrice{}, result.Error
	}

	return d.Find(ctx)
}

func (d *DollarDAO) Find(ctx context.Context) (DollarPrice, error) {
	var dollar DollarPrice

	result := d.db.WithContext(ctx).First(&dollar, "slot = ?", singletonSlot)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return DollarPrice{}, ErrDollarNotFound
		}

		return DollarPrice{}, result.Error
	}

	return dollar, nil
}

package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRaffleExists   = errors.New("a raffle already exists")
	ErrRaffleNotFound = errors.New("raffle not found")
)

// singletonSlot is the only value the slot column may hold, so the unique
// index on it allows at most one row.
const singletonSlot = 1

type Raffle struct {
	ID          uint   `gorm:"primaryKey"`
	Slot        int    `gorm:"not null;default:1;uniqueIndex:idx_raffles_slot;check:chk_raffles_slot,slot = 1"`
	Name        string `gorm:"not null"`
	Description string
	TicketPrice float64  `gorm:"not null"`
	Images      []string `gorm:"serializer:json"`
	Visible     bool     `gorm:"not null"`
	MinValue    float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type RaffleDAO struct {
	db *gorm.DB
}

func NewRaffleDAO(db *gorm.DB) *RaffleDAO {
	return &RaffleDAO{
		db: db,
	}
}

func (d *RaffleDAO) Insert(ctx context.Context, raffle Raffle) (Raffle, error) {
	raffle.Slot = singletonSlot

	result := d.db.WithContext(ctx).Create(&raffle)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "idx_raffles_slot") {
			return Raffle{}, ErrRaffleExists
		}

		return Raffle{}, result.Error
	}

	return raffle, nil
}

func (d *RaffleDAO) FindActive(ctx context.Context) (Raffle, error) {
	var raffle Raffle

	result := d.db.WithContext(ctx).Order("id").First(&raffle)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Raffle{}, ErrRaffleNotFound
		}

		return Raffle{}, result.Error
	}

	return raffle, nil
}

func (d *RaffleDAO) FindAll(ctx context.Context) ([]Raffle, error) {
	var raffles []Raffle

	result := d.db.WithContext(ctx).Order("id").Find(&raffles)
	if result.Error != nil {
		return nil, result.Error
	}

	return raffles, nil
}

func (d *RaffleDAO) ToggleVisibility(ctx context.Context) (Raffle, error) {
	var raffle Raffle

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Order("id").First(&raffle)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrRaffleNotFound
			}
			return result.Error
		}

		raffle.Visible = !raffle.Visible
		return tx.Model(&raffle).Update("visible", raffle.Visible).Error
	})
	if err != nil {
		return Raffle{}, err
	}

	return raffle, nil
}

// DeleteCascade removes the raffle together with every ticket and issued
// code. The raffle row is locked first so running approvals finish before
// the tickets disappear.
func (d *RaffleDAO) DeleteCascade(ctx context.Context) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var raffle Raffle
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Order("id").First(&raffle)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrRaffleNotFound
			}
			return result.Error
		}

		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := global.Delete(&ApprovalCode{}).Error; err != nil {
			return err
		}
		if err := global.Delete(&Ticket{}).Error; err != nil {
			return err
		}

		return tx.Delete(&raffle).Error
	})
}

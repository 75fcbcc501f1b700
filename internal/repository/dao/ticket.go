package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrCodeTaken      = errors.New("approval code already issued")
)

type Ticket struct {
	ID            uint   `gorm:"primaryKey"`
	NumberTickets int    `gorm:"not null"`
	FullName      string `gorm:"not null"`
	Email         string `gorm:"not null;index"`
	Phone         string
	Reference     string
	PaymentMethod string `gorm:"index"`
	AmountPaid    string
	Voucher       string
	Approved      bool           `gorm:"not null;default:false;index"`
	ApprovalCodes []ApprovalCode `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ApprovalCode is one issued code. The unique index on Code makes the
// table the global pool of codes in use.
type ApprovalCode struct {
	ID       uint   `gorm:"primaryKey"`
	TicketID uint   `gorm:"not null;index"`
	Code     string `gorm:"type:char(4);not null;uniqueIndex:idx_approval_codes_code"`
	Position int    `gorm:"not null"`
}

type TicketQuery struct {
	PendingOnly   bool
	PaymentMethod string
	Offset        int
	Limit         int
	Desc          bool
}

type TopBuyer struct {
	Email        string
	FullName     string
	Phone        string
	TotalTickets int
	Purchases    int
}

type TicketDAO struct {
	db *gorm.DB
}

func NewTicketDAO(db *gorm.DB) *TicketDAO {
	return &TicketDAO{
		db: db,
	}
}

func preloadCodes(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

func (d *TicketDAO) Insert(ctx context.Context, ticket Ticket) (Ticket, error) {
	ticket.Approved = false
	ticket.ApprovalCodes = nil

	result := d.db.WithContext(ctx).Create(&ticket)
	if result.Error != nil {
		return Ticket{}, result.Error
	}

	return ticket, nil
}

func (d *TicketDAO) FindByID(ctx context.Context, id uint) (Ticket, error) {
	var ticket Ticket

	result := d.db.WithContext(ctx).Preload("ApprovalCodes", preloadCodes).First(&ticket, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrTicketNotFound
		}

		return Ticket{}, result.Error
	}

	return ticket, nil
}

func (d *TicketDAO) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ticket_id = ?", id).Delete(&ApprovalCode{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&Ticket{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTicketNotFound
		}

		return nil
	})
}

// UpdateContact overwrites the non-empty fields among email and phone.
func (d *TicketDAO) UpdateContact(ctx context.Context, id uint, email, phone string) (Ticket, error) {
	updates := map[string]interface{}{}
	if email != "" {
		updates["email"] = email
	}
	if phone != "" {
		updates["phone"] = phone
	}

	result := d.db.WithContext(ctx).Model(&Ticket{ID: id}).Updates(updates)
	if result.Error != nil {
		return Ticket{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Ticket{}, ErrTicketNotFound
	}

	return d.FindByID(ctx, id)
}

func (d *TicketDAO) List(ctx context.Context, q TicketQuery) ([]Ticket, error) {
	var tickets []Ticket

	tx := d.db.WithContext(ctx).Preload("ApprovalCodes", preloadCodes)
	if q.PendingOnly {
		tx = tx.Where("approved = ?", false)
	}
	if q.PaymentMethod != "" {
		tx = tx.Where("payment_method = ?", q.PaymentMethod)
	}

	result := tx.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: q.Desc}).
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&tickets)
	if result.Error != nil {
		return nil, result.Error
	}

	return tickets, nil
}

func (d *TicketDAO) TopBuyers(ctx context.Context, limit int) ([]TopBuyer, error) {
	var buyers []TopBuyer

	result := d.db.WithContext(ctx).
		Model(&Ticket{}).
		Select(`email,
			(ARRAY_AGG(full_name ORDER BY id))[1] AS full_name,
			(ARRAY_AGG(phone ORDER BY id))[1] AS phone,
			SUM(number_tickets) AS total_tickets,
			COUNT(*) AS purchases`).
		Where("approved = ?", true).
		Group("email").
		Order("total_tickets DESC, email").
		Limit(limit).
		Scan(&buyers)
	if result.Error != nil {
		return nil, result.Error
	}

	return buyers, nil
}

func (d *TicketDAO) FindByCode(ctx context.Context, code string) (Ticket, error) {
	var ticket Ticket

	result := d.db.WithContext(ctx).
		Preload("ApprovalCodes", preloadCodes).
		Joins("JOIN approval_codes ON approval_codes.ticket_id = tickets.id").
		Where("approval_codes.code = ?", code).
		First(&ticket)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrTicketNotFound
		}

		return Ticket{}, result.Error
	}

	return ticket, nil
}

func (d *TicketDAO) FindByEmail(ctx context.Context, email string) ([]Ticket, error) {
	var tickets []Ticket

	result := d.db.WithContext(ctx).
		Preload("ApprovalCodes", preloadCodes).
		Where("LOWER(email) = LOWER(?)", email).
		Order("id").
		Find(&tickets)
	if result.Error != nil {
		return nil, result.Error
	}

	return tickets, nil
}

// SoldCodes lists the codes of approved tickets in ticket then draw order.
func (d *TicketDAO) SoldCodes(ctx context.Context) ([]string, error) {
	var codes []string

	result := d.db.WithContext(ctx).
		Model(&ApprovalCode{}).
		Joins("JOIN tickets ON tickets.id = approval_codes.ticket_id").
		Where("tickets.approved = ?", true).
		Order("approval_codes.ticket_id, approval_codes.position").
		Pluck("approval_codes.code", &codes)
	if result.Error != nil {
		return nil, result.Error
	}

	return codes, nil
}

func (d *TicketDAO) CountSold(ctx context.Context) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&ApprovalCode{}).
		Joins("JOIN tickets ON tickets.id = approval_codes.ticket_id").
		Where("tickets.approved = ?", true).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// WithApprovalLock runs fn in a transaction that first locks the raffle
// row, so every approval is serialized before fn reads the issued codes.
// fn still runs when there is no raffle; ActiveRaffle reports it.
func (d *TicketDAO) WithApprovalLock(ctx context.Context, fn func(tx *ApprovalTx) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		atx := &ApprovalTx{db: tx}
		if err := atx.lockRaffle(); err != nil {
			return err
		}

		return fn(atx)
	})
}

type ApprovalTx struct {
	db        *gorm.DB
	raffle    Raffle
	raffleErr error
}

func (t *ApprovalTx) lockRaffle() error {
	result := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).Order("id").First(&t.raffle)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			t.raffleErr = ErrRaffleNotFound
			return nil
		}

		return result.Error
	}

	return nil
}

// ActiveRaffle returns the raffle locked when the transaction began.
func (t *ApprovalTx) ActiveRaffle() (Raffle, error) {
	if t.raffleErr != nil {
		return Raffle{}, t.raffleErr
	}

	return t.raffle, nil
}

func (t *ApprovalTx) LockTicket(id uint) (Ticket, error) {
	var ticket Ticket

	result := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ticket, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrTicketNotFound
		}

		return Ticket{}, result.Error
	}

	if err := t.db.Where("ticket_id = ?", id).Order("position").Find(&ticket.ApprovalCodes).Error; err != nil {
		return Ticket{}, err
	}

	return ticket, nil
}

func (t *ApprovalTx) IssuedCodes() ([]string, error) {
	var codes []string

	if err := t.db.Model(&ApprovalCode{}).Pluck("code", &codes).Error; err != nil {
		return nil, err
	}

	return codes, nil
}

func (t *ApprovalTx) MarkApproved(id uint, codes []string) (Ticket, error) {
	rows := make([]ApprovalCode, len(codes))
	for i, code := range codes {
		rows[i] = ApprovalCode{TicketID: id, Code: code, Position: i}
	}

	if len(rows) > 0 {
		if err := t.db.Create(&rows).Error; err != nil {
			if isUniqueViolation(err, "idx_approval_codes_code") {
				return Ticket{}, ErrCodeTaken
			}
			return Ticket{}, err
		}
	}

	result := t.db.Model(&Ticket{ID: id}).Update("approved", true)
	if result.Error != nil {
		return Ticket{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Ticket{}, ErrTicketNotFound
	}

	return t.LockTicket(id)
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ownable is implemented by every record that belongs to a principal.
type Ownable interface {
	GetOwnerID() uuid.UUID
}

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username  string    `gorm:"type:varchar(150);not null;uniqueIndex"` // хранится в нижнем регистре
	Password  string    `gorm:"type:text;not null"`                     // bcrypt hash
	CreatedAt time.Time `gorm:"not null"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Company struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(255);not null"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"not null;index"`
}

func (Company) TableName() string { return "companies" }

func (c *Company) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Company) GetOwnerID() uuid.UUID { return c.OwnerID }

type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name      string          `gorm:"type:varchar(255);not null"`
	Code      string          `gorm:"type:varchar(50);not null;uniqueIndex"` // глобально уникален, UPPERCASE
	Price     decimal.Decimal `gorm:"type:numeric(8,2);not null"`
	OwnerID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time       `gorm:"not null;index"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Product) GetOwnerID() uuid.UUID { return p.OwnerID }

type Order struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Company        *Company        `gorm:"foreignKey:CompanyID"`
	DeliveryDate   time.Time       `gorm:"type:date;not null"`
	OwnerID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	GlobalDiscount decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	VATRate        decimal.Decimal `gorm:"column:vat_rate;type:numeric(5,2);not null"`

	// Агрегаты: только результат пересчёта, никогда не задаются снаружи.
	Subtotal       decimal.Decimal `gorm:"type:numeric;not null"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric;not null"`
	VATAmount      decimal.Decimal `gorm:"column:vat_amount;type:numeric;not null"`
	Total          decimal.Decimal `gorm:"type:numeric;not null"`

	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (o *Order) GetOwnerID() uuid.UUID { return o.OwnerID }

type OrderItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position     int             `gorm:"not null"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Product      *Product        `gorm:"foreignKey:ProductID"`
	Quantity     int             `gorm:"type:int;not null"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(8,2);not null"` // цена на момент заказа, не синхронизируется с Product.Price
	ItemDiscount decimal.Decimal `gorm:"type:numeric(5,2);not null"`

	CreatedAt time.Time `gorm:"not null"`
}

func (OrderItem) TableName() string { return "order_items" }

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// OrderTotals: агрегаты заказа, которые хранятся на строке orders.
type OrderTotals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	VATAmount      decimal.Decimal
	Total          decimal.Decimal
}

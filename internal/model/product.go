package model

import (
	"github.com/shopspring/decimal"
)

// Product is the persisted catalog entry.
//
// VendorPrice is derived from RetailPrice by the product service and is
// never supplied by a client; an invalid NullDecimal means "not yet priced".
type Product struct {
	ID          int64               `gorm:"primaryKey;autoIncrement"`
	Name        string              `gorm:"size:255;not null;uniqueIndex:products_name_key"`
	Description *string             `gorm:"size:1000"`
	RetailPrice decimal.Decimal     `gorm:"type:numeric(7,2);not null"`
	VendorPrice decimal.NullDecimal `gorm:"type:numeric(7,2);not null"`
}

// TableName pins the table name shared with the SQL migrations.
func (Product) TableName() string {
	return "products"
}

// IsNew reports whether the product has not been assigned an id by the store yet.
func (p Product) IsNew() bool {
	return p.ID == 0
}

package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is anything an invoice line can bill: project goods, advancement
// products and compensation products alike.
type Product struct {
	Id          string          `json:"id" gorm:"primaryKey;size:36"`
	Name        string          `json:"name" gorm:"not null"`
	Description string          `json:"description"`
	DefaultUnit string          `json:"default_unit" gorm:"size:16;not null;default:unit"`
	ListPrice   decimal.Decimal `json:"list_price" gorm:"type:numeric(16,4)"`
	Active      bool            `json:"-" gorm:"not null;default:true"`
}

func (product *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if product.Id == "" {
		product.Id = uuid.NewString()
	}
	return
}

package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Configuration is the tenant-wide singleton the billing logic reads and never
// mutates: the milestone number sequence, the default products and the flat
// tax rate applied when invoice totals are recomputed.
type Configuration struct {
	ID uint `json:"id" gorm:"primaryKey"`

	MilestoneSequenceID *uint     `json:"milestone_sequence_id"`
	MilestoneSequence   *Sequence `json:"milestone_sequence,omitempty" gorm:"foreignKey:MilestoneSequenceID"`

	AdvancementProductID  *string  `json:"advancement_product_id" gorm:"size:36"`
	AdvancementProduct    *Product `json:"-" gorm:"foreignKey:AdvancementProductID;references:Id"`
	CompensationProductID *string  `json:"compensation_product_id" gorm:"size:36"`
	CompensationProduct   *Product `json:"-" gorm:"foreignKey:CompensationProductID;references:Id"`

	CurrencyCode string          `json:"currency" gorm:"size:3;not null;default:EUR"`
	TaxRate      decimal.Decimal `json:"tax_rate" gorm:"type:numeric(8,4);not null;default:0.2"`
}

// GetConfiguration loads the singleton row, creating it on first access.
func GetConfiguration(tx *gorm.DB) (*Configuration, error) {
	config := Configuration{ID: 1}
	if err := tx.Preload("MilestoneSequence").FirstOrCreate(&config, Configuration{ID: 1}).Error; err != nil {
		return nil, err
	}
	return &config, nil
}

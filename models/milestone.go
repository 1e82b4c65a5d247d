package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type MilestoneKind string

const (
	KindManual MilestoneKind = "manual"
	KindSystem MilestoneKind = "system"
)

// MilestoneTrigger defines when a system milestone becomes eligible for invoicing.
type MilestoneTrigger string

const (
	TriggerNone       MilestoneTrigger = ""
	TriggerOnStart    MilestoneTrigger = "on_start"
	TriggerOnProgress MilestoneTrigger = "on_progress"
	TriggerOnFinish   MilestoneTrigger = "on_finish"
)

type InvoiceMethod string

const (
	MethodFixed     InvoiceMethod = "fixed"
	MethodPercent   InvoiceMethod = "percent"
	MethodProgress  InvoiceMethod = "progress"
	MethodRemainder InvoiceMethod = "remainder"
)

type MilestoneState string

const (
	StateDraft     MilestoneState = "draft"
	StateConfirmed MilestoneState = "confirmed"
	StateInvoiced  MilestoneState = "invoiced"
	StateCancel    MilestoneState = "cancel"
)

// MilestoneFields is the field set shared by milestone templates and milestones.
// Exactly one method-specific group is active, depending on InvoiceMethod:
// fixed uses advancement product/amount/currency, percent uses the invoice
// percent, progress and remainder use the compensation product.
type MilestoneFields struct {
	Kind            MilestoneKind    `json:"kind" gorm:"size:10;not null;default:manual"`
	Trigger         MilestoneTrigger `json:"trigger" gorm:"size:20"`
	TriggerProgress *decimal.Decimal `json:"trigger_progress" gorm:"type:numeric(16,8)"`

	InvoiceMethod InvoiceMethod `json:"invoice_method" gorm:"size:10;not null;default:fixed"`

	AdvancementProductID *string          `json:"advancement_product_id" gorm:"size:36"`
	AdvancementProduct   *Product         `json:"advancement_product,omitempty" gorm:"foreignKey:AdvancementProductID;references:Id"`
	AdvancementAmount    *decimal.Decimal `json:"advancement_amount" gorm:"type:numeric(16,4)"`
	CurrencyCode         string           `json:"currency" gorm:"size:3"`

	InvoicePercent *decimal.Decimal `json:"invoice_percent" gorm:"type:numeric(16,8)"`

	CompensationProductID *string  `json:"compensation_product_id" gorm:"size:36"`
	CompensationProduct   *Product `json:"compensation_product,omitempty" gorm:"foreignKey:CompensationProductID;references:Id"`

	// Due date offset, combined relative to "today" when no invoice date is set.
	Months  int  `json:"months" gorm:"not null;default:0"`
	Weeks   int  `json:"weeks" gorm:"not null;default:0"`
	Days    int  `json:"days" gorm:"not null;default:0"`
	Month   *int `json:"month"`   // 1..12, absolute
	Weekday *int `json:"weekday"` // 0=Monday .. 6=Sunday, absolute
	Day     *int `json:"day"`     // 1..31, absolute

	Description string `json:"description" gorm:"type:text"`
}

// CheckFields validates the cross-field rules shared by templates and milestones.
func (f *MilestoneFields) CheckFields() error {
	switch f.Kind {
	case KindManual, KindSystem:
	default:
		return fmt.Errorf("invalid kind %q", f.Kind)
	}
	if f.Kind == KindSystem && f.Trigger == TriggerNone {
		return fmt.Errorf("system milestones require a trigger")
	}
	if f.Kind == KindManual && f.Trigger != TriggerNone {
		return fmt.Errorf("trigger is only meaningful for system milestones")
	}
	if f.Trigger == TriggerOnProgress {
		if f.TriggerProgress == nil {
			return fmt.Errorf("trigger %q requires trigger_progress", f.Trigger)
		}
		if f.TriggerProgress.IsNegative() || f.TriggerProgress.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("trigger_progress must be between 0 and 1")
		}
	}
	switch f.InvoiceMethod {
	case MethodFixed:
		if f.AdvancementProductID == nil || f.AdvancementAmount == nil || f.CurrencyCode == "" {
			return fmt.Errorf("fixed method requires advancement product, amount and currency")
		}
		if f.InvoicePercent != nil || f.CompensationProductID != nil {
			return fmt.Errorf("fixed method allows no percent or compensation fields")
		}
	case MethodPercent:
		if f.InvoicePercent == nil {
			return fmt.Errorf("percent method requires invoice_percent")
		}
		if f.AdvancementProductID != nil || f.AdvancementAmount != nil {
			return fmt.Errorf("percent method allows no advancement fields")
		}
	case MethodProgress, MethodRemainder:
		if f.CompensationProductID == nil {
			return fmt.Errorf("%s method requires a compensation product", f.InvoiceMethod)
		}
		if f.AdvancementProductID != nil || f.AdvancementAmount != nil || f.InvoicePercent != nil {
			return fmt.Errorf("%s method allows no advancement or percent fields", f.InvoiceMethod)
		}
	default:
		return fmt.Errorf("invalid invoice method %q", f.InvoiceMethod)
	}
	if f.Month != nil && (*f.Month < 1 || *f.Month > 12) {
		return fmt.Errorf("month must be between 1 and 12")
	}
	if f.Weekday != nil && (*f.Weekday < 0 || *f.Weekday > 6) {
		return fmt.Errorf("weekday must be between 0 and 6")
	}
	if f.Day != nil && (*f.Day < 1 || *f.Day > 31) {
		return fmt.Errorf("day must be between 1 and 31")
	}
	return nil
}

// Milestone is a scheduled, stateful billing event tied to a project.
type Milestone struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	Number    string   `json:"number" gorm:"size:32;index"` // assigned once, at confirmation
	ProjectID uint     `json:"project_id" gorm:"index;not null"`
	Project   *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`

	MilestoneFields `gorm:"embedded"`

	IsCredit           bool       `json:"is_credit"`
	InvoiceDate        *time.Time `json:"invoice_date" gorm:"type:date"`
	PlannedInvoiceDate *time.Time `json:"planned_invoice_date" gorm:"type:date"`

	InvoiceID *uint    `json:"invoice_id" gorm:"uniqueIndex"`
	Invoice   *Invoice `json:"invoice,omitempty" gorm:"foreignKey:InvoiceID"`

	State MilestoneState `json:"state" gorm:"size:10;not null;default:draft;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName is the record name used in error messages and rendered
// invoice line descriptions.
func (m *Milestone) DisplayName() string {
	if m.Number != "" {
		return m.Number
	}
	return fmt.Sprintf("milestone/%d", m.ID)
}

// Duplicate returns an unsaved copy re-entering draft: number, invoice and
// invoice date are cleared so the copy is numbered at its own confirmation.
func (m *Milestone) Duplicate() *Milestone {
	dup := &Milestone{
		ProjectID:          m.ProjectID,
		Project:            m.Project,
		MilestoneFields:    m.MilestoneFields,
		IsCredit:           m.IsCredit,
		PlannedInvoiceDate: m.PlannedInvoiceDate,
		State:              StateDraft,
	}
	return dup
}

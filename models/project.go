package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ProjectType string

const (
	TypeProject ProjectType = "project"
	TypeTask    ProjectType = "task"
)

type ProjectState string

const (
	ProjectOpened ProjectState = "opened"
	ProjectDone   ProjectState = "done"
)

type ProjectInvoiceMethod string

const (
	ProjectInvoiceManual    ProjectInvoiceMethod = "manual"
	ProjectInvoiceMilestone ProjectInvoiceMethod = "milestone"
	ProjectInvoiceProgress  ProjectInvoiceMethod = "progress"
)

// Project is a work item: a top-level project or a task in its breakdown.
// Monetary aggregates assume Quantity x ListPrice as the total merited value.
type Project struct {
	ID    uint         `json:"id" gorm:"primaryKey"`
	Name  string       `json:"name" gorm:"not null"`
	Type  ProjectType  `json:"type" gorm:"size:10;not null;default:project"`
	State ProjectState `json:"state" gorm:"size:10;not null;default:opened"`

	ParentID *uint     `json:"parent_id" gorm:"index"`
	Children []Project `json:"children,omitempty" gorm:"foreignKey:ParentID"`

	PartyID *uint  `json:"party_id" gorm:"index"`
	Party   *Party `json:"party,omitempty" gorm:"foreignKey:PartyID"`

	ProductID *string  `json:"product_id" gorm:"size:36"`
	Product   *Product `json:"product,omitempty" gorm:"foreignKey:ProductID;references:Id"`

	Quantity  decimal.Decimal `json:"quantity" gorm:"type:numeric(16,4)"`
	ListPrice decimal.Decimal `json:"list_price" gorm:"type:numeric(16,4)"`
	// Realized fraction of the total work, in [0, 1].
	Progress decimal.Decimal `json:"progress" gorm:"type:numeric(16,8)"`

	InvoiceMethod ProjectInvoiceMethod `json:"invoice_method" gorm:"size:10;not null;default:manual"`
	// Grouped sub-projects share their parent's invoice instead of their own.
	GroupInvoice bool `json:"group_invoice"`

	Milestones       []Milestone        `json:"milestones,omitempty" gorm:"foreignKey:ProjectID"`
	InvoicedProgress []InvoicedProgress `json:"-" gorm:"foreignKey:WorkID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InvoicedProgress records quantity already billed for a work item through a
// percent, progress or remainder line. It is the origin a later computation
// subtracts from the outstanding quantity.
type InvoicedProgress struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	WorkID        uint            `json:"work_id" gorm:"index;not null"`
	Work          *Project        `json:"-" gorm:"foreignKey:WorkID"`
	Quantity      decimal.Decimal `json:"quantity" gorm:"type:numeric(16,4)"`
	InvoiceLineID *uint           `json:"invoice_line_id" gorm:"index"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (p *Project) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("work/%d", p.ID)
}

// TotalAmount is the full merited value of the work item.
func (p *Project) TotalAmount() decimal.Decimal {
	return p.Quantity.Mul(p.ListPrice)
}

// ProgressAmountRatio is the realized share of the total amount, used by the
// on-progress trigger. Zero-valued projects report zero progress.
func (p *Project) ProgressAmountRatio() decimal.Decimal {
	if p.TotalAmount().IsZero() {
		return decimal.Zero
	}
	return p.Progress
}

// InvoicedProgressQuantity sums the quantity already billed through
// invoiced-progress origins.
func (p *Project) InvoicedProgressQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, ip := range p.InvoicedProgress {
		total = total.Add(ip.Quantity)
	}
	return total
}

// QuantityToInvoiceProgress is the merited quantity not yet billed.
func (p *Project) QuantityToInvoiceProgress() decimal.Decimal {
	return p.Quantity.Mul(p.Progress).Sub(p.InvoicedProgressQuantity())
}

// QuantityToInvoiceRemainder is everything not yet billed, merited or not.
func (p *Project) QuantityToInvoiceRemainder() decimal.Decimal {
	return p.Quantity.Sub(p.InvoicedProgressQuantity())
}

// InvoiceGroupKey decides which sub-projects are billed together with their
// parent. Nested projects with a different key keep their own invoices.
func (p *Project) InvoiceGroupKey() string {
	party := uint(0)
	if p.PartyID != nil {
		party = *p.PartyID
	}
	return fmt.Sprintf("%d/%t", party, p.GroupInvoice)
}

// PendingToCompensateAdvancedAmount nets the advances already invoiced on this
// project's milestones against the compensation lines previously emitted.
// Zero or negative means fully compensated.
//
// Fixed milestones with a non-cancelled invoice contribute their advancement
// amount; credit milestones contribute their own (negative) amount rather than
// the invoice total, which may differ from the reversal. Non-fixed milestones
// contribute the negative compensation lines found on their invoices by origin.
func (p *Project) PendingToCompensateAdvancedAmount() decimal.Decimal {
	pending := decimal.Zero
	for i := range p.Milestones {
		m := &p.Milestones[i]
		if m.Invoice == nil || m.Invoice.State == InvoiceCancel {
			continue
		}
		if m.InvoiceMethod == MethodFixed {
			if m.AdvancementAmount != nil {
				pending = pending.Add(*m.AdvancementAmount)
			}
			continue
		}
		for _, line := range m.Invoice.Lines {
			if line.OriginType == OriginMilestone && line.OriginID == m.ID && line.Amount.IsNegative() {
				pending = pending.Add(line.Amount)
			}
		}
	}
	return pending
}

// InvoicedAmountMilestone sums the untaxed amount of all milestone invoices,
// converted into the given currency. Cancelled invoices are skipped.
func (p *Project) InvoicedAmountMilestone(currency string, convert func(amount decimal.Decimal, from, to string) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for i := range p.Milestones {
		m := &p.Milestones[i]
		if m.Invoice == nil || m.Invoice.State == InvoiceCancel {
			continue
		}
		total = total.Add(convert(m.Invoice.UntaxedAmount, m.Invoice.CurrencyCode, currency))
	}
	return total
}

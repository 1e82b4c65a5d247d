package billing

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"meilenstein-backend/models"
)

// LineSpec is the ephemeral description of one invoice line to create. A
// negative quantity encodes a credit. Origin, when set, is a supporting
// record that must be persisted alongside the line.
type LineSpec struct {
	Product     *models.Product
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	Description string
	Origin      *models.InvoicedProgress
}

// Amount is the line total quantity × unit price.
func (s LineSpec) Amount() decimal.Decimal {
	return s.Quantity.Mul(s.UnitPrice)
}

// LineSpecs computes the primary invoice lines for a confirmed, uninvoiced
// milestone, dispatching on the invoice method.
func LineSpecs(m *models.Milestone) ([]LineSpec, error) {
	switch m.InvoiceMethod {
	case models.MethodFixed:
		return fixedSpecs(m)
	case models.MethodPercent:
		return percentSpecs(m)
	case models.MethodProgress, models.MethodRemainder:
		if m.Project == nil {
			return nil, invariantf("milestone %s has no project loaded", m.DisplayName())
		}
		return breakdownSpecs(m, m.Project, m.Project.InvoiceGroupKey())
	default:
		return nil, validationErrorf(m.DisplayName(), "unknown invoice method %q", m.InvoiceMethod)
	}
}

// fixedSpecs bills the advancement amount: one line, sign encoded in the
// quantity, unit price always positive.
func fixedSpecs(m *models.Milestone) ([]LineSpec, error) {
	if m.State != models.StateConfirmed || m.InvoiceID != nil || m.Invoice != nil {
		return nil, nil
	}
	if m.AdvancementProduct == nil || m.AdvancementAmount == nil {
		return nil, validationErrorf(m.DisplayName(), "fixed milestone needs an advancement product and amount")
	}
	quantity := decimal.NewFromInt(1)
	if !m.AdvancementAmount.IsPositive() {
		quantity = decimal.NewFromInt(-1)
	}
	return []LineSpec{{
		Product:     m.AdvancementProduct,
		Quantity:    quantity,
		Unit:        m.AdvancementProduct.DefaultUnit,
		UnitPrice:   m.AdvancementAmount.Abs(),
		Description: Describe(m),
	}}, nil
}

// percentSpecs bills a share of the project quantity at list price and marks
// the billed quantity with an invoiced-progress origin so later progress and
// remainder runs subtract it.
func percentSpecs(m *models.Milestone) ([]LineSpec, error) {
	if m.State != models.StateConfirmed || m.InvoiceID != nil || m.Invoice != nil {
		return nil, nil
	}
	project := m.Project
	if project == nil {
		return nil, invariantf("milestone %s has no project loaded", m.DisplayName())
	}
	if m.InvoicePercent == nil {
		return nil, validationErrorf(m.DisplayName(), "percent milestone needs invoice_percent")
	}
	if project.Product == nil {
		return nil, validationErrorf(project.DisplayName(), "project needs a product to invoice by percent")
	}
	quantity := project.Quantity.Mul(*m.InvoicePercent)
	return []LineSpec{{
		Product:     project.Product,
		Quantity:    quantity,
		Unit:        project.Product.DefaultUnit,
		UnitPrice:   project.ListPrice.Abs(),
		Description: Describe(m),
		Origin: &models.InvoicedProgress{
			WorkID:   project.ID,
			Work:     project,
			Quantity: quantity,
		},
	}}, nil
}

// breakdownSpecs walks the work breakdown: the project itself and its
// non-project children, plus child sub-projects sharing the invoice group key.
// Grouped nested projects billed elsewhere are skipped to avoid double counting.
func breakdownSpecs(m *models.Milestone, work *models.Project, groupKey string) ([]LineSpec, error) {
	specs, err := workSpecs(m, work)
	if err != nil {
		return nil, err
	}
	for i := range work.Children {
		child := &work.Children[i]
		if child.Type == models.TypeProject && child.InvoiceGroupKey() != groupKey {
			continue
		}
		childSpecs, err := breakdownSpecs(m, child, groupKey)
		if err != nil {
			return nil, err
		}
		specs = append(specs, childSpecs...)
	}
	return specs, nil
}

// workSpecs bills one work item's outstanding quantity for the milestone's
// method: merited-but-unbilled for progress, everything unbilled for remainder.
func workSpecs(m *models.Milestone, work *models.Project) ([]LineSpec, error) {
	var quantity decimal.Decimal
	switch m.InvoiceMethod {
	case models.MethodProgress:
		quantity = work.QuantityToInvoiceProgress()
	case models.MethodRemainder:
		quantity = work.QuantityToInvoiceRemainder()
	default:
		return nil, invariantf("workSpecs called for method %q", m.InvoiceMethod)
	}
	if !quantity.IsPositive() {
		return nil, nil
	}
	if work.Product == nil {
		return nil, validationErrorf(work.DisplayName(), "work item needs a product and list price to invoice %s", m.InvoiceMethod)
	}
	return []LineSpec{{
		Product:     work.Product,
		Quantity:    quantity,
		Unit:        work.Product.DefaultUnit,
		UnitPrice:   work.ListPrice.Abs(),
		Description: Describe(m),
		Origin: &models.InvoicedProgress{
			WorkID:   work.ID,
			Work:     work,
			Quantity: quantity,
		},
	}}, nil
}

// CompensationSpec nets previously invoiced advances against the current
// batch. The cap at the batch amount keeps non-remainder invoices from going
// negative; remainder skips the cap so it may fully close out, refund
// included. A zero amount produces no line.
func CompensationSpec(m *models.Milestone, batchAmount decimal.Decimal, config *models.Configuration) (*LineSpec, error) {
	if m.Project == nil {
		return nil, invariantf("milestone %s has no project loaded", m.DisplayName())
	}
	amount := m.Project.PendingToCompensateAdvancedAmount()
	if m.InvoiceMethod != models.MethodRemainder && batchAmount.LessThan(amount) {
		amount = batchAmount
	}
	if amount.IsZero() {
		return nil, nil
	}
	product := m.CompensationProduct
	if product == nil && config != nil {
		product = config.CompensationProduct
	}
	if product == nil {
		return nil, validationErrorf(m.DisplayName(), "no compensation product configured")
	}
	return &LineSpec{
		Product:     product,
		Quantity:    decimal.NewFromInt(-1),
		Unit:        product.DefaultUnit,
		UnitPrice:   amount,
		Description: Describe(m),
	}, nil
}

func specGroupKey(s LineSpec) string {
	id := ""
	if s.Product != nil {
		id = s.Product.Id
	}
	return fmt.Sprintf("%s|%s|%s", id, s.Unit, s.UnitPrice.String())
}

// groupSpecs buckets specs that share product, unit and unit price, keeping
// first-appearance order. Each bucket becomes one invoice line.
func groupSpecs(specs []LineSpec) [][]LineSpec {
	keys := lo.Uniq(lo.Map(specs, func(s LineSpec, _ int) string { return specGroupKey(s) }))
	return lo.Map(keys, func(key string, _ int) []LineSpec {
		return lo.Filter(specs, func(s LineSpec, _ int) bool { return specGroupKey(s) == key })
	})
}

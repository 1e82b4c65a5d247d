package billing

import (
	"github.com/shopspring/decimal"

	"meilenstein-backend/models"
)

// Deps carries the collaborators an invoicing batch needs.
type Deps struct {
	Store  Store
	Clock  Clock
	Config *models.Configuration
}

// DoInvoice runs the invoicing orchestration over a milestone batch:
// compute missing invoice dates, skip system milestones not yet due, reuse
// the linked invoice where one exists, build and persist lines with their
// origins, recompute taxes once per touched invoice and flip the whole batch
// to invoiced in one transition. The caller's transaction makes the batch
// atomic; a failure rolls everything back.
func DoInvoice(deps Deps, milestones []*models.Milestone) error {
	if deps.Config == nil {
		return configErrorf("invoicing configuration not loaded")
	}
	today := deps.Clock.Today()

	var touched []*models.Invoice
	var toInvoice []*models.Milestone

	for _, m := range milestones {
		if m.InvoiceDate == nil {
			due := DueDate(today, m.MilestoneFields)
			m.InvoiceDate = &due
			if err := deps.Store.SaveMilestone(m); err != nil {
				return err
			}
		}
		if m.Kind == models.KindSystem && m.InvoiceDate.After(today) {
			continue // not due yet
		}
		if m.InvoiceID != nil || m.Invoice != nil {
			// Re-run on an already invoiced milestone only flips state.
			toInvoice = append(toInvoice, m)
			continue
		}

		specs, err := LineSpecs(m)
		if err != nil {
			return err
		}
		if len(specs) == 0 && m.InvoiceMethod != models.MethodRemainder {
			continue // nothing to invoice yet
		}

		groups := groupSpecs(specs)
		batchAmount := decimal.Zero
		for _, group := range groups {
			batchAmount = batchAmount.Add(groupAmount(group))
		}

		var compensation *LineSpec
		switch m.InvoiceMethod {
		case models.MethodPercent, models.MethodProgress, models.MethodRemainder:
			compensation, err = CompensationSpec(m, batchAmount, deps.Config)
			if err != nil {
				return err
			}
		}
		if len(groups) == 0 && compensation == nil {
			continue // no primary lines and nothing to compensate
		}

		invoice, err := draftInvoice(m, deps.Config)
		if err != nil {
			return err
		}
		if err := deps.Store.CreateInvoice(invoice); err != nil {
			return err
		}

		for _, group := range groups {
			line := buildLine(invoice, m, group[0], sumQuantity(group))
			if err := deps.Store.CreateLine(line); err != nil {
				return err
			}
			invoice.Lines = append(invoice.Lines, *line)
			for i := range group {
				origin := group[i].Origin
				if origin == nil {
					continue
				}
				origin.InvoiceLineID = &line.ID
				if err := deps.Store.SaveProgress(origin); err != nil {
					return err
				}
			}
		}
		if compensation != nil {
			line := buildLine(invoice, m, *compensation, compensation.Quantity)
			if err := deps.Store.CreateLine(line); err != nil {
				return err
			}
			invoice.Lines = append(invoice.Lines, *line)
		}

		m.InvoiceID = &invoice.ID
		m.Invoice = invoice
		if err := deps.Store.SaveMilestone(m); err != nil {
			return err
		}

		touched = append(touched, invoice)
		toInvoice = append(toInvoice, m)
	}

	for _, invoice := range touched {
		invoice.RecomputeTaxes(deps.Config.TaxRate)
		if err := deps.Store.SaveInvoice(invoice); err != nil {
			return err
		}
	}
	if len(toInvoice) > 0 {
		return markInvoiced(deps.Store, toInvoice)
	}
	return nil
}

func draftInvoice(m *models.Milestone, config *models.Configuration) (*models.Invoice, error) {
	project := m.Project
	if project == nil {
		return nil, invariantf("milestone %s has no project loaded", m.DisplayName())
	}
	if project.PartyID == nil {
		return nil, validationErrorf(project.DisplayName(), "project needs a party to invoice")
	}
	currency := config.CurrencyCode
	if m.InvoiceMethod == models.MethodFixed && m.CurrencyCode != "" {
		currency = m.CurrencyCode
	}
	return &models.Invoice{
		ProjectID:    &project.ID,
		PartyID:      *project.PartyID,
		CurrencyCode: currency,
		InvoiceDate:  m.InvoiceDate,
		State:        models.InvoiceDraft,
	}, nil
}

func buildLine(invoice *models.Invoice, m *models.Milestone, spec LineSpec, quantity decimal.Decimal) *models.InvoiceLine {
	var productID *string
	if spec.Product != nil {
		productID = &spec.Product.Id
	}
	return &models.InvoiceLine{
		InvoiceID:   invoice.ID,
		ProductID:   productID,
		Description: spec.Description,
		Quantity:    quantity,
		Unit:        spec.Unit,
		UnitPrice:   spec.UnitPrice,
		Amount:      quantity.Mul(spec.UnitPrice),
		OriginType:  models.OriginMilestone,
		OriginID:    m.ID,
	}
}

func sumQuantity(group []LineSpec) decimal.Decimal {
	total := decimal.Zero
	for _, s := range group {
		total = total.Add(s.Quantity)
	}
	return total
}

func groupAmount(group []LineSpec) decimal.Decimal {
	total := decimal.Zero
	for _, s := range group {
		total = total.Add(s.Amount())
	}
	return total
}

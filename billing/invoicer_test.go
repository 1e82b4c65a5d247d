package billing

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meilenstein-backend/models"
)

// memStore captures writes in memory so orchestration runs without a database.
type memStore struct {
	savedMilestones []*models.Milestone
	invoices        []*models.Invoice
	lines           []*models.InvoiceLine
	progress        []*models.InvoicedProgress
	nextInvoiceID   uint
	nextLineID      uint
}

func (s *memStore) SaveMilestone(m *models.Milestone) error {
	s.savedMilestones = append(s.savedMilestones, m)
	return nil
}

func (s *memStore) CreateInvoice(inv *models.Invoice) error {
	s.nextInvoiceID++
	inv.ID = s.nextInvoiceID
	s.invoices = append(s.invoices, inv)
	return nil
}

func (s *memStore) CreateLine(line *models.InvoiceLine) error {
	s.nextLineID++
	line.ID = s.nextLineID
	s.lines = append(s.lines, line)
	return nil
}

func (s *memStore) SaveProgress(p *models.InvoicedProgress) error {
	s.progress = append(s.progress, p)
	return nil
}

func (s *memStore) SaveInvoice(inv *models.Invoice) error { return nil }

type fixedClock struct{ today time.Time }

func (c fixedClock) Today() time.Time { return c.today }

type fakeNumbers struct{ next int }

func (n *fakeNumbers) Allocate() (string, error) {
	n.next++
	return fmt.Sprintf("MS%04d", n.next), nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strp(s string) *string { return &s }

var (
	advProduct  = &models.Product{Id: "adv-product-id", Name: "Advance", DefaultUnit: "unit"}
	compProduct = &models.Product{Id: "comp-product-id", Name: "Compensation", DefaultUnit: "unit"}
	svcProduct  = &models.Product{Id: "svc-product-id", Name: "Consulting", DefaultUnit: "hour"}
)

func testConfig() *models.Configuration {
	return &models.Configuration{
		ID:                    1,
		CompensationProductID: strp(compProduct.Id),
		CompensationProduct:   compProduct,
		AdvancementProductID:  strp(advProduct.Id),
		AdvancementProduct:    advProduct,
		CurrencyCode:          "EUR",
		TaxRate:               dec("0.2"),
	}
}

func testProject() *models.Project {
	party := uint(7)
	return &models.Project{
		ID:        1,
		Name:      "rollout",
		Type:      models.TypeProject,
		State:     models.ProjectOpened,
		PartyID:   &party,
		ProductID: strp(svcProduct.Id),
		Product:   svcProduct,
		Quantity:  dec("10"),
		ListPrice: dec("200"),
	}
}

func fixedMilestone(id uint, project *models.Project, amount string) *models.Milestone {
	m := &models.Milestone{
		ID:        id,
		ProjectID: project.ID,
		Project:   project,
		State:     models.StateConfirmed,
	}
	m.Kind = models.KindManual
	m.InvoiceMethod = models.MethodFixed
	m.AdvancementProductID = strp(advProduct.Id)
	m.AdvancementProduct = advProduct
	m.AdvancementAmount = decp(amount)
	m.CurrencyCode = "EUR"
	return m
}

func remainderMilestone(id uint, project *models.Project) *models.Milestone {
	m := &models.Milestone{
		ID:        id,
		ProjectID: project.ID,
		Project:   project,
		State:     models.StateConfirmed,
	}
	m.Kind = models.KindManual
	m.InvoiceMethod = models.MethodRemainder
	m.CompensationProductID = strp(compProduct.Id)
	m.CompensationProduct = compProduct
	return m
}

func testDeps(store *memStore) Deps {
	return Deps{
		Store:  store,
		Clock:  fixedClock{today: date(2026, time.August, 30)},
		Config: testConfig(),
	}
}

func TestDoInvoiceFixedAdvance(t *testing.T) {
	store := &memStore{}
	project := testProject()
	m := fixedMilestone(1, project, "1000")

	require.NoError(t, DoInvoice(testDeps(store), []*models.Milestone{m}))

	require.Len(t, store.invoices, 1)
	invoice := store.invoices[0]
	assert.Equal(t, "EUR", invoice.CurrencyCode)
	assert.Equal(t, uint(7), invoice.PartyID)

	require.Len(t, store.lines, 1)
	line := store.lines[0]
	assert.True(t, line.Quantity.Equal(dec("1")))
	assert.True(t, line.UnitPrice.Equal(dec("1000")))
	assert.True(t, line.Amount.Equal(dec("1000")))
	assert.Equal(t, models.OriginMilestone, line.OriginType)
	assert.Equal(t, m.ID, line.OriginID)

	assert.Equal(t, models.StateInvoiced, m.State)
	require.NotNil(t, m.InvoiceID)
	assert.Equal(t, invoice.ID, *m.InvoiceID)
	assert.True(t, invoice.UntaxedAmount.Equal(dec("1000")))
	assert.True(t, invoice.TaxAmount.Equal(dec("200")))
	assert.True(t, invoice.Total.Equal(dec("1200")))

	// The computed invoice date was today.
	require.NotNil(t, m.InvoiceDate)
	assert.Equal(t, date(2026, time.August, 30), *m.InvoiceDate)
}

func TestDoInvoiceNegativeAdvanceEncodesSignInQuantity(t *testing.T) {
	store := &memStore{}
	m := fixedMilestone(1, testProject(), "-250")

	require.NoError(t, DoInvoice(testDeps(store), []*models.Milestone{m}))

	require.Len(t, store.lines, 1)
	line := store.lines[0]
	assert.True(t, line.Quantity.Equal(dec("-1")))
	assert.True(t, line.UnitPrice.Equal(dec("250")))
	assert.True(t, line.Amount.Equal(dec("-250")))
}

func TestDoInvoiceRemainderCompensatesAdvance(t *testing.T) {
	store := &memStore{}
	project := testProject()

	// A fixed advance of 1000 was invoiced earlier and its invoice is live.
	advance := fixedMilestone(1, project, "1000")
	advance.State = models.StateInvoiced
	advInvoiceID := uint(99)
	advance.InvoiceID = &advInvoiceID
	advance.Invoice = &models.Invoice{ID: advInvoiceID, State: models.InvoicePosted}
	project.Milestones = []models.Milestone{*advance}

	m := remainderMilestone(2, project)
	require.NoError(t, DoInvoice(testDeps(store), []*models.Milestone{m}))

	require.Len(t, store.invoices, 1)
	require.Len(t, store.lines, 2)

	work := store.lines[0]
	assert.True(t, work.Quantity.Equal(dec("10")))
	assert.True(t, work.UnitPrice.Equal(dec("200")))
	assert.True(t, work.Amount.Equal(dec("2000")))

	comp := store.lines[1]
	assert.Equal(t, strp(compProduct.Id), comp.ProductID)
	assert.True(t, comp.Quantity.Equal(dec("-1")))
	assert.True(t, comp.UnitPrice.Equal(dec("1000")))
	assert.True(t, comp.Amount.Equal(dec("-1000")))

	// The advance is fully netted: 2000 work - 1000 compensation.
	assert.True(t, store.invoices[0].UntaxedAmount.Equal(dec("1000")))

	// The billed quantity was recorded against the work item.
	require.Len(t, store.progress, 1)
	assert.True(t, store.progress[0].Quantity.Equal(dec("10")))
	assert.Equal(t, work.ID, *store.progress[0].InvoiceLineID)
}

func TestDoInvoiceSkipsSystemMilestoneNotDue(t *testing.T) {
	store := &memStore{}
	project := testProject()
	m := fixedMilestone(1, project, "500")
	m.Kind = models.KindSystem
	m.Trigger = models.TriggerOnStart
	future := date(2026, time.September, 15)
	m.InvoiceDate = &future

	require.NoError(t, DoInvoice(testDeps(store), []*models.Milestone{m}))

	assert.Empty(t, store.invoices)
	assert.Equal(t, models.StateConfirmed, m.State)
}

func TestDoInvoiceRerunOnlyFlipsState(t *testing.T) {
	store := &memStore{}
	project := testProject()
	m := fixedMilestone(1, project, "500")
	invoiceID := uint(42)
	m.InvoiceID = &invoiceID
	m.Invoice = &models.Invoice{ID: invoiceID, State: models.InvoiceDraft}
	today := date(2026, time.August, 30)
	m.InvoiceDate = &today

	require.NoError(t, DoInvoice(testDeps(store), []*models.Milestone{m}))

	assert.Empty(t, store.invoices)
	assert.Empty(t, store.lines)
	assert.Equal(t, models.StateInvoiced, m.State)
}

func TestDoInvoiceSecondRunIsNoop(t *testing.T) {
	store := &memStore{}
	m := fixedMilestone(1, testProject(), "1000")

	deps := testDeps(store)
	require.NoError(t, DoInvoice(deps, []*models.Milestone{m}))
	require.Len(t, store.invoices, 1)
	require.Equal(t, models.StateInvoiced, m.State)
	saved := len(store.savedMilestones)

	require.NoError(t, DoInvoice(deps, []*models.Milestone{m}))

	assert.Len(t, store.invoices, 1)
	assert.Len(t, store.lines, 1)
	assert.Len(t, store.savedMilestones, saved)
	assert.Equal(t, models.StateInvoiced, m.State)
}

func TestDoInvoiceRequiresParty(t *testing.T) {
	store := &memStore{}
	project := testProject()
	project.PartyID = nil
	m := fixedMilestone(1, project, "500")

	err := DoInvoice(testDeps(store), []*models.Milestone{m})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Empty(t, store.invoices)
}

func TestDoInvoiceProgressCapsCompensation(t *testing.T) {
	store := &memStore{}
	project := testProject()
	project.Progress = dec("0.3") // 3 of 10 units merited -> 600 batch

	advance := fixedMilestone(1, project, "1000")
	advance.State = models.StateInvoiced
	advInvoiceID := uint(99)
	advance.InvoiceID = &advInvoiceID
	advance.Invoice = &models.Invoice{ID: advInvoiceID, State: models.InvoicePosted}
	project.Milestones = []models.Milestone{*advance}

	m := remainderMilestone(2, project)
	m.InvoiceMethod = models.MethodProgress

	require.NoError(t, DoInvoice(testDeps(store), []*models.Milestone{m}))

	require.Len(t, store.lines, 2)
	comp := store.lines[1]
	// Capped at the batch amount so the invoice does not go negative.
	assert.True(t, comp.UnitPrice.Equal(dec("600")))
	assert.True(t, store.invoices[0].UntaxedAmount.Equal(dec("0")))
}

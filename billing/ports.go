package billing

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"meilenstein-backend/models"
)

// Clock supplies "today" so date arithmetic is testable.
type Clock interface {
	Today() time.Time
}

type systemClock struct{}

func (systemClock) Today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SystemClock returns the wall clock truncated to the current date.
func SystemClock() Clock { return systemClock{} }

// NumberSource allocates milestone numbers from a named sequence.
type NumberSource interface {
	Allocate() (string, error)
}

type sequenceSource struct {
	tx  *gorm.DB
	seq *models.Sequence
}

func (s *sequenceSource) Allocate() (string, error) {
	return s.seq.Allocate(s.tx)
}

// SequenceSource builds the milestone number source from the configuration.
// A missing sequence is a ConfigurationError: confirmation must not proceed.
func SequenceSource(tx *gorm.DB, config *models.Configuration) (NumberSource, error) {
	if config == nil || config.MilestoneSequenceID == nil {
		return nil, configErrorf("milestone sequence is not configured")
	}
	seq := config.MilestoneSequence
	if seq == nil {
		seq = &models.Sequence{}
		if err := tx.First(seq, *config.MilestoneSequenceID).Error; err != nil {
			return nil, configErrorf("milestone sequence %d not found", *config.MilestoneSequenceID)
		}
	}
	return &sequenceSource{tx: tx, seq: seq}, nil
}

// Converter converts amounts between currencies.
type Converter interface {
	Convert(amount decimal.Decimal, from, to string) decimal.Decimal
}

// RateTable is a Converter over in-memory rates: one unit of a currency equals
// rate units of the base currency. Unknown currencies convert at par.
type RateTable map[string]decimal.Decimal

func (r RateTable) Convert(amount decimal.Decimal, from, to string) decimal.Decimal {
	if from == to {
		return amount
	}
	rate := func(code string) decimal.Decimal {
		if v, ok := r[code]; ok && !v.IsZero() {
			return v
		}
		return decimal.NewFromInt(1)
	}
	return amount.Mul(rate(from)).Div(rate(to))
}

// LoadRates reads the currency table into a RateTable.
func LoadRates(tx *gorm.DB) (RateTable, error) {
	var currencies []models.Currency
	if err := tx.Find(&currencies).Error; err != nil {
		return nil, err
	}
	rates := make(RateTable, len(currencies))
	for _, c := range currencies {
		rates[c.Code] = c.Rate
	}
	return rates, nil
}

// Store is the persistence port the workflow and invoicing orchestration
// write through. The gorm implementation runs inside the per-request tenant
// transaction, so a batch commits or rolls back as a whole.
type Store interface {
	SaveMilestone(m *models.Milestone) error
	CreateInvoice(inv *models.Invoice) error
	CreateLine(line *models.InvoiceLine) error
	SaveProgress(p *models.InvoicedProgress) error
	SaveInvoice(inv *models.Invoice) error
}

type gormStore struct {
	tx *gorm.DB
}

// NewStore wraps a (transactional) gorm handle as a Store.
func NewStore(tx *gorm.DB) Store { return &gormStore{tx: tx} }

func (s *gormStore) SaveMilestone(m *models.Milestone) error {
	return s.tx.Omit("Project", "Invoice", "AdvancementProduct", "CompensationProduct").Save(m).Error
}

func (s *gormStore) CreateInvoice(inv *models.Invoice) error {
	return s.tx.Omit("Project", "Party", "Lines").Create(inv).Error
}

func (s *gormStore) CreateLine(line *models.InvoiceLine) error {
	return s.tx.Omit("Product").Create(line).Error
}

func (s *gormStore) SaveProgress(p *models.InvoicedProgress) error {
	return s.tx.Omit("Work").Save(p).Error
}

func (s *gormStore) SaveInvoice(inv *models.Invoice) error {
	return s.tx.Omit("Project", "Party", "Lines").Save(inv).Error
}

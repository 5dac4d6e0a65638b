package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/tillbook-backend/pkg/db/models"
)

// PricingContext is the immutable snapshot one computation runs against.
type PricingContext struct {
	BasePrice  decimal.Decimal
	Quantity   int64
	ProductID  int64
	SKU        string
	CategoryID *int64
	Tags       []string
	CustomerID *int64
	AsOf       time.Time

	Rules     []Rule
	Tiers     []Tier
	Contracts []Contract

	// Skipped lists rows that failed validation while the snapshot was built.
	Skipped []SkippedRecord
}

// SkippedRecord names a stored row the engine ignored and why.
type SkippedRecord struct {
	Kind   string `json:"kind"`
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

const (
	SkippedKindRule     = "rule"
	SkippedKindTier     = "tier"
	SkippedKindContract = "contract"
)

// Snapshot is the raw data loaded for one request.
type Snapshot struct {
	Product    models.Product
	Quantity   int64
	CustomerID *int64
	AsOf       time.Time
	Rules      []models.PriceRule
	Tiers      []models.VolumeTier
	Contracts  []models.ContractPrice
}

// NewPricingContext validates every loaded row. Invalid rows are left out and
// reported in Skipped; they never fail the computation.
func NewPricingContext(s Snapshot) PricingContext {
	pc := PricingContext{
		BasePrice:  s.Product.ListPrice,
		Quantity:   s.Quantity,
		ProductID:  s.Product.ID,
		SKU:        s.Product.SKU,
		CategoryID: s.Product.CategoryID,
		Tags:       []string(s.Product.Tags),
		CustomerID: s.CustomerID,
		AsOf:       s.AsOf,
		Rules:      make([]Rule, 0, len(s.Rules)),
		Tiers:      make([]Tier, 0, len(s.Tiers)),
		Contracts:  make([]Contract, 0, len(s.Contracts)),
	}

	for _, row := range s.Rules {
		rule, err := NewRule(row)
		if err != nil {
			pc.Skipped = append(pc.Skipped, SkippedRecord{Kind: SkippedKindRule, ID: row.ID, Reason: err.Error()})
			continue
		}
		pc.Rules = append(pc.Rules, rule)
	}
	for _, row := range s.Tiers {
		tier, err := NewTier(row)
		if err != nil {
			pc.Skipped = append(pc.Skipped, SkippedRecord{Kind: SkippedKindTier, ID: row.ID, Reason: err.Error()})
			continue
		}
		pc.Tiers = append(pc.Tiers, tier)
	}
	for _, row := range s.Contracts {
		contract, err := NewContract(row)
		if err != nil {
			pc.Skipped = append(pc.Skipped, SkippedRecord{Kind: SkippedKindContract, ID: row.ID, Reason: err.Error()})
			continue
		}
		pc.Contracts = append(pc.Contracts, contract)
	}
	return pc
}

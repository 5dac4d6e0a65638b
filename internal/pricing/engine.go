package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/tillbook-backend/pkg/enums"
)

// DefaultPolicy is used when neither config nor the request names one.
const DefaultPolicy = enums.PricingPolicyLowestPrice

const reasonNoDiscount = "No applicable discount"

// Candidates holds the raw price each source produced; nil means the source
// had nothing to offer.
type Candidates struct {
	Base       decimal.Decimal
	Rule       *decimal.Decimal
	VolumeTier *decimal.Decimal
	Contract   *decimal.Decimal
}

// Result is the priced line with its explanation.
type Result struct {
	ProductID  int64
	Quantity   int64
	CustomerID *int64
	AsOf       time.Time

	ListPrice       decimal.Decimal
	FinalPrice      decimal.Decimal
	DiscountAmount  decimal.Decimal
	DiscountPercent decimal.Decimal

	Source enums.PricingSource
	Policy enums.PricingPolicy
	Reason string

	// Applied* describe what each source matched, winner or not; Source
	// says which one set FinalPrice.
	AppliedRule     *Rule
	AppliedTier     *VolumePrice
	AppliedContract *Contract

	AmbiguousContract bool
	Candidates        Candidates
	Skipped           []SkippedRecord
}

type candidate struct {
	source enums.PricingSource
	price  decimal.Decimal
	reason string
}

// Compute prices one line from the snapshot. It performs no I/O and returns
// the same Result for the same input.
func Compute(pc PricingContext, policy enums.PricingPolicy) Result {
	if !policy.IsValid() {
		policy = DefaultPolicy
	}

	res := Result{
		ProductID:  pc.ProductID,
		Quantity:   pc.Quantity,
		CustomerID: pc.CustomerID,
		AsOf:       pc.AsOf,
		ListPrice:  pc.BasePrice,
		Policy:     policy,
		Candidates: Candidates{Base: pc.BasePrice},
	}
	res.Skipped = append(res.Skipped, pc.Skipped...)

	// Tie order: contract, rule, volume tier, base.
	candidates := make([]candidate, 0, 4)

	resolution := ResolveContract(pc.Contracts, pc.CustomerID, pc.ProductID, pc.AsOf)
	if resolution.Contract != nil {
		c := *resolution.Contract
		res.AppliedContract = &c
		res.Candidates.Contract = decimalPtr(c.NetPrice)
		candidates = append(candidates, candidate{source: enums.PricingSourceContract, price: c.NetPrice, reason: "Contract price"})
	}
	if resolution.Ambiguous() {
		res.AmbiguousContract = true
		for _, loser := range resolution.Superseded {
			res.Skipped = append(res.Skipped, SkippedRecord{
				Kind:   SkippedKindContract,
				ID:     loser.ID,
				Reason: fmt.Sprintf("superseded by contract #%d", resolution.Contract.ID),
			})
		}
	}

	if ranked := RankRules(pc.Rules, pc); len(ranked) > 0 {
		top := ranked[0]
		price := ApplyRule(top, pc.BasePrice)
		res.Candidates.Rule = decimalPtr(price)
		candidates = append(candidates, candidate{source: enums.PricingSourceRule, price: price, reason: top.Reason()})
		res.AppliedRule = &top
	}

	if vp := CalculateVolumePrice(pc.Tiers, pc.ProductID, pc.CategoryID, pc.Quantity, pc.BasePrice, pc.AsOf); vp != nil {
		res.Candidates.VolumeTier = decimalPtr(vp.DiscountedPrice)
		candidates = append(candidates, candidate{source: enums.PricingSourceVolumeTier, price: vp.DiscountedPrice, reason: vp.Tier.Reason()})
		res.AppliedTier = vp
	}

	candidates = append(candidates, candidate{source: enums.PricingSourceBase, price: pc.BasePrice, reason: reasonNoDiscount})

	winner := arbitrate(candidates, policy)
	res.FinalPrice = winner.price
	res.Source = winner.source
	res.Reason = winner.reason
	res.DiscountAmount = res.ListPrice.Sub(res.FinalPrice)
	res.DiscountPercent = percentOf(res.DiscountAmount, res.ListPrice)

	return res
}

// arbitrate expects candidates in tie order, base last.
func arbitrate(candidates []candidate, policy enums.PricingPolicy) candidate {
	if policy == enums.PricingPolicyContractFirst && candidates[0].source == enums.PricingSourceContract {
		return candidates[0]
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.price.LessThan(best.price) {
			best = c
		}
	}
	return best
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

package pricing

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/tillbook-backend/pkg/db/models"
	"github.com/angelmondragon/tillbook-backend/pkg/enums"
)

// TierTarget is either a single product or a whole category.
type TierTarget interface {
	Kind() enums.TierScope
	matches(productID int64, categoryID *int64) bool
	sealedTarget()
}

type ProductTarget struct{ ProductID int64 }

type CategoryTarget struct{ CategoryID int64 }

func (ProductTarget) Kind() enums.TierScope  { return enums.TierScopeSKU }
func (CategoryTarget) Kind() enums.TierScope { return enums.TierScopeCategory }

func (t ProductTarget) matches(productID int64, _ *int64) bool { return t.ProductID == productID }

func (t CategoryTarget) matches(_ int64, categoryID *int64) bool {
	return categoryID != nil && *categoryID == t.CategoryID
}

func (ProductTarget) sealedTarget()  {}
func (CategoryTarget) sealedTarget() {}

// TierDiscount is either a percentage or a flat amount off the unit price.
type TierDiscount interface {
	Apply(base decimal.Decimal) decimal.Decimal
	Label() string
	sealedDiscount()
}

type PercentOff struct{ Percent decimal.Decimal }

type AmountOff struct{ Amount decimal.Decimal }

// Apply rounds to cents, matching rule and contract candidates.
func (d PercentOff) Apply(base decimal.Decimal) decimal.Decimal {
	return clampZero(percentOff(base, d.Percent))
}

func (d AmountOff) Apply(base decimal.Decimal) decimal.Decimal {
	return amountOff(base, d.Amount)
}

func (d PercentOff) Label() string { return "-" + d.Percent.String() + "%" }
func (d AmountOff) Label() string  { return "-" + d.Amount.String() }

func (PercentOff) sealedDiscount() {}
func (AmountOff) sealedDiscount()  {}

// Tier is a validated volume tier. Build one with NewTier.
type Tier struct {
	ID       int64
	Target   TierTarget
	Qty      QtyRange
	Discount TierDiscount
	Window   Window
	Active   bool
}

// NewTier validates a stored volume tier.
func NewTier(row models.VolumeTier) (Tier, error) {
	var errs error

	target, err := tierTarget(row)
	errs = multierr.Append(errs, err)

	discount, err := tierDiscount(row)
	errs = multierr.Append(errs, err)

	minQty := row.MinQty
	qty, err := newQtyRange(&minQty, row.MaxQty)
	errs = multierr.Append(errs, err)

	window, err := newWindow(row.EffectiveFrom, row.EffectiveTo)
	errs = multierr.Append(errs, err)

	if errs != nil {
		return Tier{}, errs
	}
	return Tier{
		ID:       row.ID,
		Target:   target,
		Qty:      qty,
		Discount: discount,
		Window:   window,
		Active:   row.IsActive,
	}, nil
}

func tierTarget(row models.VolumeTier) (TierTarget, error) {
	switch row.Scope {
	case enums.TierScopeSKU:
		if row.ProductID == nil {
			return nil, fmt.Errorf("sku tier requires a product id")
		}
		if row.CategoryID != nil {
			return nil, fmt.Errorf("sku tier must not carry a category id")
		}
		return ProductTarget{ProductID: *row.ProductID}, nil
	case enums.TierScopeCategory:
		if row.CategoryID == nil {
			return nil, fmt.Errorf("category tier requires a category id")
		}
		if row.ProductID != nil {
			return nil, fmt.Errorf("category tier must not carry a product id")
		}
		return CategoryTarget{CategoryID: *row.CategoryID}, nil
	default:
		return nil, fmt.Errorf("unknown tier scope %q", row.Scope)
	}
}

func tierDiscount(row models.VolumeTier) (TierDiscount, error) {
	pct, amt := row.DiscountPercent, row.DiscountAmount
	switch {
	case pct.Valid && amt.Valid:
		return nil, fmt.Errorf("tier sets both discount percent and discount amount")
	case pct.Valid:
		if pct.Decimal.IsNegative() || pct.Decimal.GreaterThan(hundred) {
			return nil, fmt.Errorf("discount percent %s outside 0..100", pct.Decimal)
		}
		return PercentOff{Percent: pct.Decimal}, nil
	case amt.Valid:
		if amt.Decimal.IsNegative() {
			return nil, fmt.Errorf("discount amount %s is negative", amt.Decimal)
		}
		return AmountOff{Amount: amt.Decimal}, nil
	default:
		return nil, fmt.Errorf("tier sets no discount")
	}
}

// Reason renders the tier for the price breakdown, e.g. "Volume tier ≥50 units -10%".
func (t Tier) Reason() string {
	return fmt.Sprintf("Volume tier ≥%d units %s", t.Qty.Min, t.Discount.Label())
}

// FindMatchingTiers returns the tiers that apply to the product at quantity
// and asOf, best first: product tiers before category tiers, then the deepest
// band (larger min quantity), then lower id.
func FindMatchingTiers(tiers []Tier, productID int64, categoryID *int64, quantity int64, asOf time.Time) []Tier {
	matched := make([]Tier, 0, len(tiers))
	for _, tier := range tiers {
		if !tier.Active || !tier.Window.Contains(asOf) || !tier.Qty.Contains(quantity) {
			continue
		}
		if !tier.Target.matches(productID, categoryID) {
			continue
		}
		matched = append(matched, tier)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if pa, pb := isProductTier(a), isProductTier(b); pa != pb {
			return pa
		}
		if a.Qty.Min != b.Qty.Min {
			return a.Qty.Min > b.Qty.Min
		}
		return a.ID < b.ID
	})
	return matched
}

func isProductTier(t Tier) bool {
	_, ok := t.Target.(ProductTarget)
	return ok
}

// VolumePrice is the outcome of the best matching tier.
type VolumePrice struct {
	Tier            Tier
	OriginalPrice   decimal.Decimal
	DiscountedPrice decimal.Decimal
	Savings         decimal.Decimal
	SavingsPercent  decimal.Decimal
}

// CalculateVolumePrice applies the best matching tier to basePrice. It returns
// nil when no tier applies, meaning the base price stands.
func CalculateVolumePrice(tiers []Tier, productID int64, categoryID *int64, quantity int64, basePrice decimal.Decimal, asOf time.Time) *VolumePrice {
	matched := FindMatchingTiers(tiers, productID, categoryID, quantity, asOf)
	if len(matched) == 0 {
		return nil
	}
	best := matched[0]
	discounted := best.Discount.Apply(basePrice)
	savings := basePrice.Sub(discounted)
	return &VolumePrice{
		Tier:            best,
		OriginalPrice:   basePrice,
		DiscountedPrice: discounted,
		Savings:         savings,
		SavingsPercent:  percentOf(savings, basePrice),
	}
}

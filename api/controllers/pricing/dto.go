package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	pricingsvc "github.com/angelmondragon/tillbook-backend/internal/pricing"
	"github.com/angelmondragon/tillbook-backend/pkg/enums"
)

// QuoteRequest is the body of POST /api/v1/pricing/quote.
type QuoteRequest struct {
	PriceBookID int64      `json:"priceBookId" validate:"required,gt=0"`
	ProductID   int64      `json:"productId" validate:"required,gt=0"`
	Quantity    int64      `json:"quantity" validate:"required,gt=0"`
	CustomerID  *int64     `json:"customerId,omitempty" validate:"omitempty,gt=0"`
	AsOf        *time.Time `json:"asOf,omitempty"`
	Policy      string     `json:"policy,omitempty" validate:"omitempty,oneof=lowest_price contract_first"`
}

func (r QuoteRequest) toRequest() pricingsvc.Request {
	return pricingsvc.Request{
		PriceBookID: r.PriceBookID,
		ProductID:   r.ProductID,
		Quantity:    r.Quantity,
		CustomerID:  r.CustomerID,
		AsOf:        r.AsOf,
		Policy:      enums.PricingPolicy(r.Policy),
	}
}

// CartQuoteRequest is the body of POST /api/v1/pricing/quotes.
type CartQuoteRequest struct {
	PriceBookID int64           `json:"priceBookId" validate:"required,gt=0"`
	CustomerID  *int64          `json:"customerId,omitempty" validate:"omitempty,gt=0"`
	AsOf        *time.Time      `json:"asOf,omitempty"`
	Policy      string          `json:"policy,omitempty" validate:"omitempty,oneof=lowest_price contract_first"`
	Lines       []CartQuoteLine `json:"lines" validate:"required,min=1,dive"`
}

type CartQuoteLine struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required,gt=0"`
}

func (r CartQuoteRequest) toRequest() pricingsvc.QuoteRequest {
	lines := make([]pricingsvc.QuoteLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, pricingsvc.QuoteLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return pricingsvc.QuoteRequest{
		PriceBookID: r.PriceBookID,
		CustomerID:  r.CustomerID,
		AsOf:        r.AsOf,
		Policy:      enums.PricingPolicy(r.Policy),
		Lines:       lines,
	}
}

// PriceResponse is one priced line. Money is rendered with two decimals.
type PriceResponse struct {
	ProductID         int64                      `json:"productId"`
	Quantity          int64                      `json:"quantity"`
	CustomerID        *int64                     `json:"customerId,omitempty"`
	AsOf              time.Time                  `json:"asOf"`
	ListPrice         string                     `json:"listPrice"`
	FinalPrice        string                     `json:"finalPrice"`
	DiscountAmount    string                     `json:"discountAmount"`
	DiscountPercent   string                     `json:"discountPercent"`
	Source            string                     `json:"source"`
	Policy            string                     `json:"policy"`
	Reason            string                     `json:"reason"`
	AppliedRule       *AppliedRule               `json:"appliedRule,omitempty"`
	AppliedTier       *AppliedTier               `json:"appliedTier,omitempty"`
	AppliedContract   *AppliedContract           `json:"appliedContract,omitempty"`
	AmbiguousContract bool                       `json:"ambiguousContract"`
	Candidates        Candidates                 `json:"candidates"`
	Skipped           []pricingsvc.SkippedRecord `json:"skipped"`
}

type AppliedRule struct {
	ID         int64  `json:"id"`
	Scope      string `json:"scope"`
	ScopeValue string `json:"scopeValue,omitempty"`
	Action     string `json:"action"`
	Value      string `json:"value"`
	Priority   int    `json:"priority"`
}

type AppliedTier struct {
	ID              int64  `json:"id"`
	Scope           string `json:"scope"`
	MinQty          int64  `json:"minQty"`
	MaxQty          *int64 `json:"maxQty,omitempty"`
	Discount        string `json:"discount"`
	DiscountedPrice string `json:"discountedPrice"`
	Savings         string `json:"savings"`
	SavingsPercent  string `json:"savingsPercent"`
}

type AppliedContract struct {
	ID       int64  `json:"id"`
	NetPrice string `json:"netPrice"`
}

type Candidates struct {
	Base       string  `json:"base"`
	Rule       *string `json:"rule"`
	VolumeTier *string `json:"volumeTier"`
	Contract   *string `json:"contract"`
}

type QuotedLineResponse struct {
	PriceResponse
	ListTotal string `json:"listTotal"`
	LineTotal string `json:"lineTotal"`
}

type CartQuoteResponse struct {
	AsOf     time.Time            `json:"asOf"`
	Policy   string               `json:"policy"`
	Lines    []QuotedLineResponse `json:"lines"`
	Subtotal string               `json:"subtotal"`
	Total    string               `json:"total"`
	Savings  string               `json:"savings"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func optionalMoney(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := money(*d)
	return &s
}

func newPriceResponse(res pricingsvc.Result) PriceResponse {
	out := PriceResponse{
		ProductID:         res.ProductID,
		Quantity:          res.Quantity,
		CustomerID:        res.CustomerID,
		AsOf:              res.AsOf,
		ListPrice:         money(res.ListPrice),
		FinalPrice:        money(res.FinalPrice),
		DiscountAmount:    money(res.DiscountAmount),
		DiscountPercent:   money(res.DiscountPercent),
		Source:            res.Source.String(),
		Policy:            res.Policy.String(),
		Reason:            res.Reason,
		AmbiguousContract: res.AmbiguousContract,
		Candidates: Candidates{
			Base:       money(res.Candidates.Base),
			Rule:       optionalMoney(res.Candidates.Rule),
			VolumeTier: optionalMoney(res.Candidates.VolumeTier),
			Contract:   optionalMoney(res.Candidates.Contract),
		},
		Skipped: res.Skipped,
	}
	if out.Skipped == nil {
		out.Skipped = []pricingsvc.SkippedRecord{}
	}
	if r := res.AppliedRule; r != nil {
		out.AppliedRule = &AppliedRule{
			ID:         r.ID,
			Scope:      r.Scope.Kind().String(),
			ScopeValue: pricingsvc.ScopeValue(r.Scope),
			Action:     r.Action.String(),
			Value:      r.Value.String(),
			Priority:   r.Priority,
		}
	}
	if vp := res.AppliedTier; vp != nil {
		out.AppliedTier = &AppliedTier{
			ID:              vp.Tier.ID,
			Scope:           vp.Tier.Target.Kind().String(),
			MinQty:          vp.Tier.Qty.Min,
			MaxQty:          vp.Tier.Qty.Max,
			Discount:        vp.Tier.Discount.Label(),
			DiscountedPrice: money(vp.DiscountedPrice),
			Savings:         money(vp.Savings),
			SavingsPercent:  money(vp.SavingsPercent),
		}
	}
	if c := res.AppliedContract; c != nil {
		out.AppliedContract = &AppliedContract{ID: c.ID, NetPrice: money(c.NetPrice)}
	}
	return out
}

func newCartQuoteResponse(q pricingsvc.Quote) CartQuoteResponse {
	lines := make([]QuotedLineResponse, 0, len(q.Lines))
	for _, l := range q.Lines {
		lines = append(lines, QuotedLineResponse{
			PriceResponse: newPriceResponse(l.Result),
			ListTotal:     money(l.ListTotal),
			LineTotal:     money(l.LineTotal),
		})
	}
	return CartQuoteResponse{
		AsOf:     q.AsOf,
		Policy:   q.Policy.String(),
		Lines:    lines,
		Subtotal: money(q.Subtotal),
		Total:    money(q.Total),
		Savings:  money(q.Savings),
	}
}

package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/tillbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/tillbook-backend/pkg/errors"
)

// QuoteRequest prices a POS cart. Every line shares the price book, customer,
// policy and instant so the cart is internally consistent.
type QuoteRequest struct {
	PriceBookID int64
	CustomerID  *int64
	AsOf        *time.Time
	Policy      enums.PricingPolicy
	Lines       []QuoteLine
}

type QuoteLine struct {
	ProductID int64
	Quantity  int64
}

type QuotedLine struct {
	Result    Result
	ListTotal decimal.Decimal
	LineTotal decimal.Decimal
}

type Quote struct {
	AsOf     time.Time
	Policy   enums.PricingPolicy
	Lines    []QuotedLine
	Subtotal decimal.Decimal
	Total    decimal.Decimal
	Savings  decimal.Decimal
}

const quoteConcurrency = 8

func (s *service) ComputeQuote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if len(req.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote requires at least one line")
	}
	if len(req.Lines) > s.maxBatchLines {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "quote exceeds %d lines", s.maxBatchLines).
			WithDetails(map[string]any{"lines": len(req.Lines), "max": s.maxBatchLines})
	}

	asOf := s.now().UTC()
	if req.AsOf != nil {
		asOf = req.AsOf.UTC()
	}

	results := make([]*Result, len(req.Lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(quoteConcurrency)
	for i, line := range req.Lines {
		g.Go(func() error {
			res, err := s.ComputePrice(gctx, Request{
				PriceBookID: req.PriceBookID,
				ProductID:   line.ProductID,
				Quantity:    line.Quantity,
				CustomerID:  req.CustomerID,
				AsOf:        &asOf,
				Policy:      req.Policy,
			})
			if err != nil {
				return lineError(i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	quote := &Quote{
		AsOf:     asOf,
		Lines:    make([]QuotedLine, 0, len(results)),
		Subtotal: decimal.Zero,
		Total:    decimal.Zero,
	}
	for _, res := range results {
		qty := decimal.NewFromInt(res.Quantity)
		line := QuotedLine{
			Result:    *res,
			ListTotal: Round2(res.ListPrice.Mul(qty)),
			LineTotal: Round2(res.FinalPrice.Mul(qty)),
		}
		quote.Policy = res.Policy
		quote.Subtotal = quote.Subtotal.Add(line.ListTotal)
		quote.Total = quote.Total.Add(line.LineTotal)
		quote.Lines = append(quote.Lines, line)
	}
	quote.Savings = quote.Subtotal.Sub(quote.Total)
	return quote, nil
}

func lineError(index int, err error) error {
	typed := pkgerrors.As(err)
	if typed == nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("line %d", index))
	}
	wrapped := pkgerrors.Wrap(typed.Code(), err, fmt.Sprintf("line %d: %s", index, typed.Message()))
	details := map[string]any{"line": index}
	if d, ok := typed.Details().(map[string]string); ok {
		for k, v := range d {
			details[k] = v
		}
	}
	return wrapped.WithDetails(details)
}

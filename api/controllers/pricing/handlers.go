package pricing

import (
	"net/http"

	"github.com/angelmondragon/tillbook-backend/api/responses"
	"github.com/angelmondragon/tillbook-backend/api/validators"
	pricingsvc "github.com/angelmondragon/tillbook-backend/internal/pricing"
	pkgerrors "github.com/angelmondragon/tillbook-backend/pkg/errors"
	"github.com/angelmondragon/tillbook-backend/pkg/logger"
)

// PricingQuote prices a single product line.
func PricingQuote(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		var payload QuoteRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithPriceBookID(ctx, payload.PriceBookID)
			ctx = logg.WithProductID(ctx, payload.ProductID)
		}

		result, err := svc.ComputePrice(ctx, payload.toRequest())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPriceResponse(*result))
	}
}

// PricingQuotes prices every line of a POS cart against one price book.
func PricingQuotes(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		var payload CartQuoteRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithPriceBookID(ctx, payload.PriceBookID)
		}

		quote, err := svc.ComputeQuote(ctx, payload.toRequest())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartQuoteResponse(*quote))
	}
}

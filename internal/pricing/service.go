package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/angelmondragon/tillbook-backend/pkg/db/models"
	"github.com/angelmondragon/tillbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/tillbook-backend/pkg/errors"
	"github.com/angelmondragon/tillbook-backend/pkg/logger"
	"github.com/angelmondragon/tillbook-backend/pkg/metrics"
)

// Store is the read side the service loads snapshots from. Rows are filtered
// by identity only; activity, time and quantity are judged by the engine.
// GetProduct returns gorm.ErrRecordNotFound for unknown ids.
type Store interface {
	GetProduct(ctx context.Context, productID int64) (*models.Product, error)
	PriceBookExists(ctx context.Context, priceBookID int64) (bool, error)
	CustomerExists(ctx context.Context, customerID int64) (bool, error)
	LoadRules(ctx context.Context, priceBookID int64, product models.Product) ([]models.PriceRule, error)
	LoadTiers(ctx context.Context, productID int64, categoryID *int64) ([]models.VolumeTier, error)
	LoadContractPrices(ctx context.Context, customerID, productID int64) ([]models.ContractPrice, error)
}

// Service prices lines against the store.
type Service interface {
	ComputePrice(ctx context.Context, req Request) (*Result, error)
	ComputeQuote(ctx context.Context, req QuoteRequest) (*Quote, error)
}

// Request asks for the unit price of one product. AsOf defaults to now and an
// empty Policy to the service default.
type Request struct {
	PriceBookID int64
	ProductID   int64
	Quantity    int64
	CustomerID  *int64
	AsOf        *time.Time
	Policy      enums.PricingPolicy
}

// ServiceParams configure the pricing service.
type ServiceParams struct {
	Store         Store
	Logger        *logger.Logger
	Metrics       *metrics.PricingMetrics
	Policy        enums.PricingPolicy
	MaxBatchLines int
	Now           func() time.Time
}

type service struct {
	store         Store
	logg          *logger.Logger
	metrics       *metrics.PricingMetrics
	policy        enums.PricingPolicy
	maxBatchLines int
	now           func() time.Time
}

const defaultMaxBatchLines = 200

func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("pricing store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	policy := params.Policy
	if policy == "" {
		policy = DefaultPolicy
	}
	if !policy.IsValid() {
		return nil, fmt.Errorf("unknown pricing policy %q", policy)
	}
	maxLines := params.MaxBatchLines
	if maxLines <= 0 {
		maxLines = defaultMaxBatchLines
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		store:         params.Store,
		logg:          params.Logger,
		metrics:       params.Metrics,
		policy:        policy,
		maxBatchLines: maxLines,
		now:           now,
	}, nil
}

func (s *service) ComputePrice(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	policy, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithPriceBookID(ctx, req.PriceBookID)
	ctx = s.logg.WithProductID(ctx, req.ProductID)
	if req.CustomerID != nil {
		ctx = s.logg.WithCustomerID(ctx, *req.CustomerID)
	}

	asOf := s.now().UTC()
	if req.AsOf != nil {
		asOf = req.AsOf.UTC()
	}

	snapshot, err := s.loadSnapshot(ctx, req, asOf)
	if err != nil {
		return nil, err
	}

	pc := NewPricingContext(*snapshot)
	result := Compute(pc, policy)
	s.report(ctx, pc.Skipped, result)
	s.metrics.ObserveQuote(result.Source.String(), time.Since(start))
	return &result, nil
}

func (s *service) validate(req Request) (enums.PricingPolicy, error) {
	details := map[string]string{}
	if req.PriceBookID <= 0 {
		details["priceBookId"] = "must be a positive id"
	}
	if req.ProductID <= 0 {
		details["productId"] = "must be a positive id"
	}
	if req.Quantity <= 0 {
		details["quantity"] = "must be greater than zero"
	}
	if req.CustomerID != nil && *req.CustomerID <= 0 {
		details["customerId"] = "must be a positive id"
	}
	policy := s.policy
	if req.Policy != "" {
		if !req.Policy.IsValid() {
			details["policy"] = fmt.Sprintf("unknown pricing policy %q", req.Policy)
		}
		policy = req.Policy
	}
	if len(details) > 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid pricing request").WithDetails(details)
	}
	return policy, nil
}

// loadSnapshot fetches in two phases: the product and existence checks, then
// the candidate rows, which need the product's sku, category and tags.
func (s *service) loadSnapshot(ctx context.Context, req Request, asOf time.Time) (*Snapshot, error) {
	var (
		product        *models.Product
		bookExists     bool
		customerExists = true
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.store.GetProduct(gctx, req.ProductID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if err != nil {
			return pkgerrors.Dependency(err, "product")
		}
		product = p
		return nil
	})
	g.Go(func() error {
		ok, err := s.store.PriceBookExists(gctx, req.PriceBookID)
		if err != nil {
			return pkgerrors.Dependency(err, "price book")
		}
		bookExists = ok
		return nil
	})
	if req.CustomerID != nil {
		g.Go(func() error {
			ok, err := s.store.CustomerExists(gctx, *req.CustomerID)
			if err != nil {
				return pkgerrors.Dependency(err, "customer")
			}
			customerExists = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !bookExists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "price book not found")
	}
	if !customerExists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	snapshot := &Snapshot{
		Product:    *product,
		Quantity:   req.Quantity,
		CustomerID: req.CustomerID,
		AsOf:       asOf,
	}
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		rules, err := s.store.LoadRules(gctx, req.PriceBookID, *product)
		if err != nil {
			return pkgerrors.Dependency(err, "price rules")
		}
		snapshot.Rules = rules
		return nil
	})
	g.Go(func() error {
		tiers, err := s.store.LoadTiers(gctx, product.ID, product.CategoryID)
		if err != nil {
			return pkgerrors.Dependency(err, "volume tiers")
		}
		snapshot.Tiers = tiers
		return nil
	})
	if req.CustomerID != nil {
		g.Go(func() error {
			contracts, err := s.store.LoadContractPrices(gctx, *req.CustomerID, product.ID)
			if err != nil {
				return pkgerrors.Dependency(err, "contract prices")
			}
			snapshot.Contracts = contracts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// report logs and counts the anomalies a computation recovered from.
func (s *service) report(ctx context.Context, invalid []SkippedRecord, result Result) {
	for _, skipped := range invalid {
		s.metrics.IncSkipped(skipped.Kind)
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"record_kind": skipped.Kind,
			"record_id":   skipped.ID,
			"reason":      skipped.Reason,
		}), "pricing record skipped")
	}
	if result.AmbiguousContract {
		s.metrics.IncAmbiguousContract()
		s.logg.Warn(s.logg.WithField(ctx, "contract_id", appliedContractID(result)), "more than one effective contract; lowest id kept")
	}
}

func appliedContractID(result Result) int64 {
	if result.AppliedContract == nil {
		return 0
	}
	return result.AppliedContract.ID
}

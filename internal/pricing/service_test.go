package pricing

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/tillbook-backend/pkg/db/models"
	"github.com/angelmondragon/tillbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/tillbook-backend/pkg/errors"
	"github.com/angelmondragon/tillbook-backend/pkg/logger"
)

type stubStore struct {
	mu sync.Mutex

	products  map[int64]models.Product
	books     map[int64]bool
	customers map[int64]bool
	rules     []models.PriceRule
	tiers     []models.VolumeTier
	contracts []models.ContractPrice

	rulesErr    error
	productErr  error
	ruleLoads   int
	tierLoads   int
	lastProduct models.Product
}

func newStubStore() *stubStore {
	product := testProduct()
	second := testProduct()
	second.ID = 2
	second.SKU = "MOU-001"
	second.ListPrice = dec("1999.99")
	return &stubStore{
		products:  map[int64]models.Product{1: product, 2: second},
		books:     map[int64]bool{1: true},
		customers: map[int64]bool{500: true},
	}
}

func (s *stubStore) GetProduct(_ context.Context, productID int64) (*models.Product, error) {
	if s.productErr != nil {
		return nil, s.productErr
	}
	p, ok := s.products[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (s *stubStore) PriceBookExists(_ context.Context, priceBookID int64) (bool, error) {
	return s.books[priceBookID], nil
}

func (s *stubStore) CustomerExists(_ context.Context, customerID int64) (bool, error) {
	return s.customers[customerID], nil
}

func (s *stubStore) LoadRules(_ context.Context, _ int64, product models.Product) ([]models.PriceRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ruleLoads++
	s.lastProduct = product
	if s.rulesErr != nil {
		return nil, s.rulesErr
	}
	return s.rules, nil
}

func (s *stubStore) LoadTiers(_ context.Context, _ int64, _ *int64) ([]models.VolumeTier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tierLoads++
	return s.tiers, nil
}

func (s *stubStore) LoadContractPrices(_ context.Context, customerID, productID int64) ([]models.ContractPrice, error) {
	var out []models.ContractPrice
	for _, c := range s.contracts {
		if c.CustomerID == customerID && c.ProductID == productID {
			out = append(out, c)
		}
	}
	return out, nil
}

func newTestService(t *testing.T, store Store, policy enums.PricingPolicy) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Store:         store,
		Logger:        logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Policy:        policy,
		MaxBatchLines: 3,
		Now:           func() time.Time { return asOf },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	if _, err := NewService(ServiceParams{Logger: logg}); err == nil {
		t.Fatal("expected missing store to fail")
	}
	if _, err := NewService(ServiceParams{Store: newStubStore()}); err == nil {
		t.Fatal("expected missing logger to fail")
	}
	if _, err := NewService(ServiceParams{Store: newStubStore(), Logger: logg, Policy: "cheapest"}); err == nil {
		t.Fatal("expected unknown policy to fail")
	}
}

func TestComputePriceValidation(t *testing.T) {
	svc := newTestService(t, newStubStore(), "")

	_, err := svc.ComputePrice(context.Background(), Request{PriceBookID: 0, ProductID: -1, Quantity: 0, CustomerID: ptr(int64(0)), Policy: "cheapest"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", pkgerrors.As(err).Details())
	}
	for _, field := range []string{"priceBookId", "productId", "quantity", "customerId", "policy"} {
		if _, ok := details[field]; !ok {
			t.Fatalf("expected %s in details %v", field, details)
		}
	}
}

func TestComputePriceNotFound(t *testing.T) {
	svc := newTestService(t, newStubStore(), "")
	ctx := context.Background()

	cases := []struct {
		name string
		req  Request
		msg  string
	}{
		{"product", Request{PriceBookID: 1, ProductID: 99, Quantity: 1}, "product not found"},
		{"price book", Request{PriceBookID: 2, ProductID: 1, Quantity: 1}, "price book not found"},
		{"customer", Request{PriceBookID: 1, ProductID: 1, Quantity: 1, CustomerID: ptr(int64(77))}, "customer not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ComputePrice(ctx, tc.req)
			if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				t.Fatalf("expected not found, got %v", err)
			}
			if pkgerrors.As(err).Message() != tc.msg {
				t.Fatalf("expected %q, got %q", tc.msg, pkgerrors.As(err).Message())
			}
		})
	}
}

func TestComputePriceStoreFailureIsDependencyError(t *testing.T) {
	store := newStubStore()
	store.rulesErr = errors.New("connection reset")
	svc := newTestService(t, store, "")

	_, err := svc.ComputePrice(context.Background(), Request{PriceBookID: 1, ProductID: 1, Quantity: 1})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if !errors.Is(err, store.rulesErr) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}

	store.rulesErr = nil
	store.productErr = errors.New("timeout")
	_, err = svc.ComputePrice(context.Background(), Request{PriceBookID: 1, ProductID: 1, Quantity: 1})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error for product load, got %v", err)
	}
}

func TestComputePriceScenarioThroughService(t *testing.T) {
	store := newStubStore()
	store.rules = []models.PriceRule{scenarioRule()}
	store.contracts = []models.ContractPrice{contractRow(1, 500, 1, "185000")}
	svc := newTestService(t, store, "")

	res, err := svc.ComputePrice(context.Background(), Request{PriceBookID: 1, ProductID: 1, Quantity: 10, CustomerID: ptr(int64(500))})
	if err != nil {
		t.Fatalf("ComputePrice: %v", err)
	}
	if res.Source != enums.PricingSourceContract || !res.FinalPrice.Equal(dec("185000")) {
		t.Fatalf("expected contract at 185000, got %s at %s", res.Source, res.FinalPrice)
	}
	if !res.AsOf.Equal(asOf) {
		t.Fatalf("expected asOf to default to now, got %v", res.AsOf)
	}
	if store.lastProduct.SKU != "LAP-001" {
		t.Fatalf("expected rules to be loaded for the product, got %+v", store.lastProduct)
	}

	explicit := asOf.Add(-48 * time.Hour)
	res, err = svc.ComputePrice(context.Background(), Request{PriceBookID: 1, ProductID: 1, Quantity: 10, AsOf: &explicit})
	if err != nil {
		t.Fatalf("ComputePrice: %v", err)
	}
	if !res.AsOf.Equal(explicit) || res.Source != enums.PricingSourceRule {
		t.Fatalf("expected rule pricing at the explicit instant, got %s at %v", res.Source, res.AsOf)
	}
}

func TestComputePricePolicyOverride(t *testing.T) {
	store := newStubStore()
	store.tiers = []models.VolumeTier{percentTier(1, enums.TierScopeSKU, 1, 50, "20")}
	store.contracts = []models.ContractPrice{contractRow(1, 500, 1, "200000")}
	svc := newTestService(t, store, enums.PricingPolicyContractFirst)

	req := Request{PriceBookID: 1, ProductID: 1, Quantity: 60, CustomerID: ptr(int64(500))}
	res, err := svc.ComputePrice(context.Background(), req)
	if err != nil {
		t.Fatalf("ComputePrice: %v", err)
	}
	if res.Source != enums.PricingSourceContract {
		t.Fatalf("service default contract_first should pick the contract, got %s", res.Source)
	}

	req.Policy = enums.PricingPolicyLowestPrice
	res, err = svc.ComputePrice(context.Background(), req)
	if err != nil {
		t.Fatalf("ComputePrice: %v", err)
	}
	if res.Source != enums.PricingSourceVolumeTier || res.Policy != enums.PricingPolicyLowestPrice {
		t.Fatalf("request policy should override, got %s under %s", res.Source, res.Policy)
	}
}

func TestComputeQuoteTotals(t *testing.T) {
	store := newStubStore()
	store.rules = []models.PriceRule{ruleRow(1, enums.RuleScopeSKU, "MOU-001", enums.RuleActionPercent, "10", 1)}
	svc := newTestService(t, store, "")

	quote, err := svc.ComputeQuote(context.Background(), QuoteRequest{
		PriceBookID: 1,
		Lines: []QuoteLine{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("ComputeQuote: %v", err)
	}
	if len(quote.Lines) != 2 || quote.Lines[0].Result.ProductID != 1 || quote.Lines[1].Result.ProductID != 2 {
		t.Fatalf("lines must keep request order, got %+v", quote.Lines)
	}
	// 1999.99 at 10% off is 1799.99.
	if !quote.Lines[1].Result.FinalPrice.Equal(dec("1799.99")) {
		t.Fatalf("unexpected unit price %s", quote.Lines[1].Result.FinalPrice)
	}
	if !quote.Lines[1].LineTotal.Equal(dec("5399.97")) {
		t.Fatalf("unexpected line total %s", quote.Lines[1].LineTotal)
	}
	if !quote.Subtotal.Equal(dec("445999.97")) {
		t.Fatalf("unexpected subtotal %s", quote.Subtotal)
	}
	if !quote.Total.Equal(dec("445399.97")) {
		t.Fatalf("unexpected total %s", quote.Total)
	}
	if !quote.Savings.Equal(dec("600")) {
		t.Fatalf("unexpected savings %s", quote.Savings)
	}
	if !quote.AsOf.Equal(asOf) || quote.Policy != DefaultPolicy {
		t.Fatalf("unexpected quote header %v %s", quote.AsOf, quote.Policy)
	}
	for _, line := range quote.Lines {
		if !line.Result.AsOf.Equal(quote.AsOf) {
			t.Fatalf("every line must share the quote instant, got %v", line.Result.AsOf)
		}
	}
}

func TestComputeQuoteValidation(t *testing.T) {
	svc := newTestService(t, newStubStore(), "")
	ctx := context.Background()

	if _, err := svc.ComputeQuote(ctx, QuoteRequest{PriceBookID: 1}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected empty quote to fail validation, got %v", err)
	}

	lines := []QuoteLine{{1, 1}, {1, 1}, {1, 1}, {1, 1}}
	if _, err := svc.ComputeQuote(ctx, QuoteRequest{PriceBookID: 1, Lines: lines}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected oversized quote to fail validation, got %v", err)
	}
}

func TestComputeQuoteLineErrorNamesLine(t *testing.T) {
	svc := newTestService(t, newStubStore(), "")

	_, err := svc.ComputeQuote(context.Background(), QuoteRequest{
		PriceBookID: 1,
		Lines:       []QuoteLine{{ProductID: 1, Quantity: 1}, {ProductID: 1, Quantity: 0}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if typed.Message() != "line 1: invalid pricing request" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["line"] != 1 || details["quantity"] == nil {
		t.Fatalf("unexpected details %#v", typed.Details())
	}
}

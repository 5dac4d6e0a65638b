package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/tillbook-backend/internal/pricing"
	"github.com/angelmondragon/tillbook-backend/pkg/db/models"
	"github.com/angelmondragon/tillbook-backend/pkg/logger"
)

const contractIntegrityJobName = "contract-integrity"

type activeContractLister interface {
	ListActiveContracts(ctx context.Context) ([]models.ContractPrice, error)
}

type ContractIntegrityJobParams struct {
	Logger     *logger.Logger
	Repository activeContractLister
}

// NewContractIntegrityJob builds the job that looks for customer/product pairs
// with more than one contract effective right now.
func NewContractIntegrityJob(params ContractIntegrityJobParams) (Auditor, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("contract repository required")
	}
	return &contractIntegrityJob{
		logg: params.Logger,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type contractIntegrityJob struct {
	logg     *logger.Logger
	repo     activeContractLister
	now      func() time.Time
	findings int
}

type contractPair struct {
	customerID int64
	productID  int64
}

func (j *contractIntegrityJob) Name() string { return contractIntegrityJobName }

func (j *contractIntegrityJob) Findings() int { return j.findings }

func (j *contractIntegrityJob) Run(ctx context.Context) error {
	rows, err := j.repo.ListActiveContracts(ctx)
	if err != nil {
		return fmt.Errorf("contract integrity: %w", err)
	}

	asOf := j.now().UTC()
	pairs := make([]contractPair, 0)
	byPair := map[contractPair][]pricing.Contract{}
	for _, row := range rows {
		contract, err := pricing.NewContract(row)
		if err != nil {
			// reported by pricing-record-integrity
			continue
		}
		key := contractPair{customerID: contract.CustomerID, productID: contract.ProductID}
		if _, seen := byPair[key]; !seen {
			pairs = append(pairs, key)
		}
		byPair[key] = append(byPair[key], contract)
	}

	findings := 0
	for _, pair := range pairs {
		customerID := pair.customerID
		res := pricing.ResolveContract(byPair[pair], &customerID, pair.productID, asOf)
		if !res.Ambiguous() {
			continue
		}
		findings++
		superseded := make([]int64, 0, len(res.Superseded))
		for _, c := range res.Superseded {
			superseded = append(superseded, c.ID)
		}
		j.logg.Warn(j.logg.WithFields(ctx, map[string]any{
			"customer_id":     pair.customerID,
			"product_id":      pair.productID,
			"kept_contract":   res.Contract.ID,
			"superseded_ids":  superseded,
			"effective_as_of": asOf,
		}), "overlapping contract prices")
	}
	j.findings = findings

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"contracts_checked": len(rows),
		"pairs_checked":     len(pairs),
		"ambiguous_pairs":   findings,
	}), "contract integrity check complete")
	return nil
}

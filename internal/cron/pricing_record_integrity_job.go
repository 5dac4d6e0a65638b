package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/tillbook-backend/internal/pricing"
	"github.com/angelmondragon/tillbook-backend/pkg/db/models"
	"github.com/angelmondragon/tillbook-backend/pkg/logger"
)

const pricingRecordIntegrityJobName = "pricing-record-integrity"

type activeRecordLister interface {
	ListActiveRules(ctx context.Context) ([]models.PriceRule, error)
	ListActiveTiers(ctx context.Context) ([]models.VolumeTier, error)
	ListActiveContracts(ctx context.Context) ([]models.ContractPrice, error)
}

type PricingRecordIntegrityJobParams struct {
	Logger     *logger.Logger
	Repository activeRecordLister
}

// NewPricingRecordIntegrityJob builds the job that runs every active rule,
// tier and contract through the engine's validation and reports the rows the
// engine would skip at pricing time.
func NewPricingRecordIntegrityJob(params PricingRecordIntegrityJobParams) (Auditor, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	return &pricingRecordIntegrityJob{logg: params.Logger, repo: params.Repository}, nil
}

type pricingRecordIntegrityJob struct {
	logg     *logger.Logger
	repo     activeRecordLister
	findings int
}

func (j *pricingRecordIntegrityJob) Name() string { return pricingRecordIntegrityJobName }

func (j *pricingRecordIntegrityJob) Findings() int { return j.findings }

func (j *pricingRecordIntegrityJob) Run(ctx context.Context) error {
	rules, rulesErr := j.repo.ListActiveRules(ctx)
	tiers, tiersErr := j.repo.ListActiveTiers(ctx)
	contracts, contractsErr := j.repo.ListActiveContracts(ctx)
	if err := multierr.Combine(rulesErr, tiersErr, contractsErr); err != nil {
		return fmt.Errorf("pricing record integrity: %w", err)
	}

	var invalid []pricing.SkippedRecord
	for _, row := range rules {
		if _, err := pricing.NewRule(row); err != nil {
			invalid = append(invalid, pricing.SkippedRecord{Kind: pricing.SkippedKindRule, ID: row.ID, Reason: err.Error()})
		}
	}
	for _, row := range tiers {
		if _, err := pricing.NewTier(row); err != nil {
			invalid = append(invalid, pricing.SkippedRecord{Kind: pricing.SkippedKindTier, ID: row.ID, Reason: err.Error()})
		}
	}
	for _, row := range contracts {
		if _, err := pricing.NewContract(row); err != nil {
			invalid = append(invalid, pricing.SkippedRecord{Kind: pricing.SkippedKindContract, ID: row.ID, Reason: err.Error()})
		}
	}

	for _, rec := range invalid {
		j.logg.Warn(j.logg.WithFields(ctx, map[string]any{
			"record_kind": rec.Kind,
			"record_id":   rec.ID,
			"reason":      rec.Reason,
		}), "invalid pricing record")
	}
	j.findings = len(invalid)

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"rules_checked":     len(rules),
		"tiers_checked":     len(tiers),
		"contracts_checked": len(contracts),
		"invalid_records":   len(invalid),
	}), "pricing record integrity check complete")
	return nil
}

package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/tillbook-backend/pkg/db/models"
	"github.com/angelmondragon/tillbook-backend/pkg/enums"
)

// Rule is a validated price rule. Build one with NewRule.
type Rule struct {
	ID          int64
	PriceBookID int64
	Scope       Scope
	Action      enums.RuleAction
	Value       decimal.Decimal
	Qty         QtyRange
	Priority    int
	Window      Window
	Active      bool
	Notes       string
}

// NewRule validates a stored rule. Every problem with the row is reported,
// combined into one error.
func NewRule(row models.PriceRule) (Rule, error) {
	var errs error

	scope, err := parseScope(row.Scope, row.ScopeValue)
	errs = multierr.Append(errs, err)

	if !row.ActionType.IsValid() {
		errs = multierr.Append(errs, fmt.Errorf("unknown action type %q", row.ActionType))
	}
	if row.ActionValue.IsNegative() {
		errs = multierr.Append(errs, fmt.Errorf("action value %s is negative", row.ActionValue))
	}
	if row.ActionType == enums.RuleActionPercent && row.ActionValue.GreaterThan(hundred) {
		errs = multierr.Append(errs, fmt.Errorf("percent value %s exceeds 100", row.ActionValue))
	}

	qty, err := newQtyRange(row.MinQty, row.MaxQty)
	errs = multierr.Append(errs, err)

	window, err := newWindow(row.EffectiveFrom, row.EffectiveTo)
	errs = multierr.Append(errs, err)

	if errs != nil {
		return Rule{}, errs
	}

	notes := ""
	if row.Notes != nil {
		notes = strings.TrimSpace(*row.Notes)
	}

	return Rule{
		ID:          row.ID,
		PriceBookID: row.PriceBookID,
		Scope:       scope,
		Action:      row.ActionType,
		Value:       row.ActionValue,
		Qty:         qty,
		Priority:    row.Priority,
		Window:      window,
		Active:      row.IsActive,
		Notes:       notes,
	}, nil
}

// Matches reports whether the rule is a candidate for pc.
func (r Rule) Matches(pc PricingContext) bool {
	return r.Active &&
		r.Window.Contains(pc.AsOf) &&
		r.Qty.Contains(pc.Quantity) &&
		r.Scope.Matches(pc)
}

// Reason renders the rule the way the price breakdown shows it,
// e.g. "Rule #42 (percent) -15%".
func (r Rule) Reason() string {
	switch r.Action {
	case enums.RuleActionPercent:
		return fmt.Sprintf("Rule #%d (percent) -%s%%", r.ID, r.Value.String())
	case enums.RuleActionAmount:
		return fmt.Sprintf("Rule #%d (amount) -%s", r.ID, r.Value.String())
	default:
		return fmt.Sprintf("Rule #%d (net) =%s", r.ID, r.Value.String())
	}
}

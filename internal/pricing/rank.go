package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/tillbook-backend/pkg/enums"
)

// RankRules returns the rules matching pc, best first: higher priority, then
// more specific scope, then lower id. Only the first one is ever applied.
func RankRules(rules []Rule, pc PricingContext) []Rule {
	matched := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		if rule.Matches(pc) {
			matched = append(matched, rule)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return ruleLess(matched[i], matched[j])
	})
	return matched
}

func ruleLess(a, b Rule) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if sa, sb := a.Scope.Specificity(), b.Scope.Specificity(); sa != sb {
		return sa > sb
	}
	return a.ID < b.ID
}

// ApplyRule computes the rule's candidate price from base.
func ApplyRule(rule Rule, base decimal.Decimal) decimal.Decimal {
	switch rule.Action {
	case enums.RuleActionNet:
		return clampZero(rule.Value)
	case enums.RuleActionPercent:
		return clampZero(percentOff(base, rule.Value))
	case enums.RuleActionAmount:
		return amountOff(base, rule.Value)
	default:
		return base
	}
}

package enums

import "fmt"

// RuleScope is the targeting dimension of a price rule.
type RuleScope string

const (
	RuleScopeSKU      RuleScope = "sku"
	RuleScopeCategory RuleScope = "category"
	RuleScopeTag      RuleScope = "tag"
	RuleScopeAll      RuleScope = "all"
)

var validRuleScopes = []RuleScope{
	RuleScopeSKU,
	RuleScopeCategory,
	RuleScopeTag,
	RuleScopeAll,
}

// String implements fmt.Stringer.
func (s RuleScope) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RuleScope.
func (s RuleScope) IsValid() bool {
	for _, candidate := range validRuleScopes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRuleScope converts raw input into a RuleScope.
func ParseRuleScope(value string) (RuleScope, error) {
	for _, candidate := range validRuleScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rule scope %q", value)
}

// RuleAction is how a winning rule turns the base price into its candidate.
type RuleAction string

const (
	RuleActionNet     RuleAction = "net"
	RuleActionPercent RuleAction = "percent"
	RuleActionAmount  RuleAction = "amount"
)

var validRuleActions = []RuleAction{
	RuleActionNet,
	RuleActionPercent,
	RuleActionAmount,
}

// String implements fmt.Stringer.
func (a RuleAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known RuleAction.
func (a RuleAction) IsValid() bool {
	for _, candidate := range validRuleActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseRuleAction converts raw input into a RuleAction.
func ParseRuleAction(value string) (RuleAction, error) {
	for _, candidate := range validRuleActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rule action %q", value)
}

// TierScope targets a volume tier at one product or a whole category.
type TierScope string

const (
	TierScopeSKU      TierScope = "sku"
	TierScopeCategory TierScope = "category"
)

var validTierScopes = []TierScope{
	TierScopeSKU,
	TierScopeCategory,
}

// String implements fmt.Stringer.
func (s TierScope) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TierScope.
func (s TierScope) IsValid() bool {
	for _, candidate := range validTierScopes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseTierScope converts raw input into a TierScope.
func ParseTierScope(value string) (TierScope, error) {
	for _, candidate := range validTierScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tier scope %q", value)
}

// PricingSource identifies which mechanism produced a final price.
type PricingSource string

const (
	PricingSourceContract   PricingSource = "contract"
	PricingSourceRule       PricingSource = "rule"
	PricingSourceVolumeTier PricingSource = "volumeTier"
	PricingSourceBase       PricingSource = "base"
)

var validPricingSources = []PricingSource{
	PricingSourceContract,
	PricingSourceRule,
	PricingSourceVolumeTier,
	PricingSourceBase,
}

// String implements fmt.Stringer.
func (s PricingSource) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PricingSource.
func (s PricingSource) IsValid() bool {
	for _, candidate := range validPricingSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// PricingPolicy names the arbitration between contract, rule, tier and base candidates.
type PricingPolicy string

const (
	// PricingPolicyLowestPrice picks the minimum candidate; ties go contract, rule, tier, base.
	PricingPolicyLowestPrice PricingPolicy = "lowest_price"
	// PricingPolicyContractFirst lets an effective contract win outright.
	PricingPolicyContractFirst PricingPolicy = "contract_first"
)

var validPricingPolicies = []PricingPolicy{
	PricingPolicyLowestPrice,
	PricingPolicyContractFirst,
}

// String implements fmt.Stringer.
func (p PricingPolicy) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PricingPolicy.
func (p PricingPolicy) IsValid() bool {
	for _, candidate := range validPricingPolicies {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePricingPolicy converts raw input into a PricingPolicy.
func ParsePricingPolicy(value string) (PricingPolicy, error) {
	for _, candidate := range validPricingPolicies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pricing policy %q", value)
}

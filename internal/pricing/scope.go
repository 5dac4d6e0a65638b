package pricing

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/angelmondragon/tillbook-backend/pkg/enums"
)

// Scope is what a rule targets. The set of variants is closed: SKUScope,
// CategoryScope, TagScope and AllScope.
type Scope interface {
	Kind() enums.RuleScope
	// Specificity ranks scopes when priorities tie: sku 3, category 2, tag 1, all 0.
	Specificity() int
	Matches(pc PricingContext) bool
	fmt.Stringer
	sealedScope()
}

type SKUScope struct{ Code string }

type CategoryScope struct{ CategoryID int64 }

type TagScope struct{ Tag string }

type AllScope struct{}

func (SKUScope) Kind() enums.RuleScope      { return enums.RuleScopeSKU }
func (CategoryScope) Kind() enums.RuleScope { return enums.RuleScopeCategory }
func (TagScope) Kind() enums.RuleScope      { return enums.RuleScopeTag }
func (AllScope) Kind() enums.RuleScope      { return enums.RuleScopeAll }

func (SKUScope) Specificity() int      { return 3 }
func (CategoryScope) Specificity() int { return 2 }
func (TagScope) Specificity() int      { return 1 }
func (AllScope) Specificity() int      { return 0 }

func (s SKUScope) Matches(pc PricingContext) bool { return pc.SKU == s.Code }

func (s CategoryScope) Matches(pc PricingContext) bool {
	return pc.CategoryID != nil && *pc.CategoryID == s.CategoryID
}

func (s TagScope) Matches(pc PricingContext) bool { return slices.Contains(pc.Tags, s.Tag) }

func (AllScope) Matches(PricingContext) bool { return true }

func (s SKUScope) String() string      { return "sku:" + s.Code }
func (s CategoryScope) String() string { return "category:" + strconv.FormatInt(s.CategoryID, 10) }
func (s TagScope) String() string      { return "tag:" + s.Tag }
func (AllScope) String() string        { return "all" }

func (SKUScope) sealedScope()      {}
func (CategoryScope) sealedScope() {}
func (TagScope) sealedScope()      {}
func (AllScope) sealedScope()      {}

// ScopeValue is the stored scope_value for s, empty for AllScope.
func ScopeValue(s Scope) string {
	switch v := s.(type) {
	case SKUScope:
		return v.Code
	case CategoryScope:
		return strconv.FormatInt(v.CategoryID, 10)
	case TagScope:
		return v.Tag
	default:
		return ""
	}
}

// parseScope turns the stored (scope, scope_value) pair into a Scope.
func parseScope(kind enums.RuleScope, raw *string) (Scope, error) {
	value := ""
	if raw != nil {
		value = strings.TrimSpace(*raw)
		// The repository selects rules by exact scope_value equality, so a
		// padded value would match here but never be loaded.
		if value != "" && value != *raw {
			return nil, fmt.Errorf("scope value %q has surrounding whitespace", *raw)
		}
	}
	switch kind {
	case enums.RuleScopeSKU:
		if value == "" {
			return nil, fmt.Errorf("sku scope requires a sku code")
		}
		return SKUScope{Code: value}, nil
	case enums.RuleScopeCategory:
		if value == "" {
			return nil, fmt.Errorf("category scope requires a category id")
		}
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("category scope value %q is not a category id", value)
		}
		if strconv.FormatInt(id, 10) != value {
			return nil, fmt.Errorf("category scope value %q is not in canonical form %d", value, id)
		}
		return CategoryScope{CategoryID: id}, nil
	case enums.RuleScopeTag:
		if value == "" {
			return nil, fmt.Errorf("tag scope requires a tag")
		}
		return TagScope{Tag: value}, nil
	case enums.RuleScopeAll:
		if value != "" {
			return nil, fmt.Errorf("all scope must not carry a value, got %q", value)
		}
		return AllScope{}, nil
	default:
		return nil, fmt.Errorf("unknown rule scope %q", kind)
	}
}

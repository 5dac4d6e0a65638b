package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/tillbook-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/tillbook-backend/pkg/db/types"
	"github.com/angelmondragon/tillbook-backend/pkg/enums"
)

var asOf = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testProduct() models.Product {
	return models.Product{
		ID:         1,
		SKU:        "LAP-001",
		Name:       "Laptop",
		CategoryID: ptr(int64(7)),
		Tags:       dbtypes.TagArray{"clearance", "electronics"},
		ListPrice:  dec("220000"),
		IsActive:   true,
	}
}

func ruleRow(id int64, scope enums.RuleScope, scopeValue string, action enums.RuleAction, value string, priority int) models.PriceRule {
	row := models.PriceRule{
		ID:          id,
		PriceBookID: 1,
		Scope:       scope,
		ActionType:  action,
		ActionValue: dec(value),
		Priority:    priority,
		IsActive:    true,
	}
	if scopeValue != "" {
		row.ScopeValue = ptr(scopeValue)
	}
	return row
}

func percentTier(id int64, scope enums.TierScope, target int64, minQty int64, pct string) models.VolumeTier {
	row := models.VolumeTier{
		ID:              id,
		Scope:           scope,
		MinQty:          minQty,
		DiscountPercent: decimal.NewNullDecimal(dec(pct)),
		IsActive:        true,
	}
	if scope == enums.TierScopeSKU {
		row.ProductID = ptr(target)
	} else {
		row.CategoryID = ptr(target)
	}
	return row
}

func amountTier(id int64, scope enums.TierScope, target int64, minQty int64, amount string) models.VolumeTier {
	row := percentTier(id, scope, target, minQty, "0")
	row.DiscountPercent = decimal.NullDecimal{}
	row.DiscountAmount = decimal.NewNullDecimal(dec(amount))
	return row
}

func contractRow(id, customerID, productID int64, net string) models.ContractPrice {
	return models.ContractPrice{
		ID:         id,
		CustomerID: customerID,
		ProductID:  productID,
		NetPrice:   dec(net),
		IsActive:   true,
	}
}

func snapshot(qty int64) Snapshot {
	return Snapshot{Product: testProduct(), Quantity: qty, AsOf: asOf}
}

package migrate

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/tillbook-backend/pkg/db"
	"github.com/angelmondragon/tillbook-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/tillbook-backend/pkg/db/types"
	"github.com/angelmondragon/tillbook-backend/pkg/enums"
)

// SeedDemo loads a small catalog for local quoting: one laptop with a sku
// markdown, a category volume tier and a customer contract. It writes nothing
// when price books already exist and reports whether it seeded.
func SeedDemo(ctx context.Context, client *db.Client) (bool, error) {
	seeded := false
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		var books int64
		if err := tx.Model(&models.PriceBook{}).Count(&books).Error; err != nil {
			return fmt.Errorf("count price books: %w", err)
		}
		if books > 0 {
			return nil
		}

		category := int64(10)
		sku := "LAP-001"
		laptop := models.Product{
			SKU:        sku,
			Name:       "14in business laptop",
			CategoryID: &category,
			Tags:       dbtypes.TagArray{"electronics", "b2b"},
			ListPrice:  decimal.RequireFromString("220000.00"),
			IsActive:   true,
		}
		book := models.PriceBook{Name: "Retail", IsActive: true}
		customer := models.Customer{Name: "Acme Wholesale", IsActive: true}
		for _, row := range []any{&laptop, &book, &customer} {
			if err := tx.Create(row).Error; err != nil {
				return fmt.Errorf("seed %T: %w", row, err)
			}
		}

		minQty := int64(1)
		rows := []any{
			&models.PriceRule{
				PriceBookID: book.ID,
				Scope:       enums.RuleScopeSKU,
				ScopeValue:  &sku,
				ActionType:  enums.RuleActionNet,
				ActionValue: decimal.RequireFromString("190000.00"),
				MinQty:      &minQty,
				Priority:    10,
				IsActive:    true,
			},
			&models.VolumeTier{
				Scope:           enums.TierScopeCategory,
				CategoryID:      &category,
				MinQty:          5,
				DiscountPercent: decimal.NewNullDecimal(decimal.NewFromInt(15)),
				IsActive:        true,
			},
			&models.ContractPrice{
				CustomerID: customer.ID,
				ProductID:  laptop.ID,
				NetPrice:   decimal.RequireFromString("185000.00"),
				IsActive:   true,
			},
		}
		for _, row := range rows {
			if err := tx.Create(row).Error; err != nil {
				return fmt.Errorf("seed %T: %w", row, err)
			}
		}
		seeded = true
		return nil
	})
	return seeded, err
}

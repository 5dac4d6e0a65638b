package pricing

import (
	"context"
	"strconv"

	"gorm.io/gorm"

	"github.com/angelmondragon/tillbook-backend/pkg/db/models"
	"github.com/angelmondragon/tillbook-backend/pkg/enums"
)

// Repository reads pricing rows through GORM. It implements Store.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) PriceBookExists(ctx context.Context, priceBookID int64) (bool, error) {
	return r.exists(ctx, &models.PriceBook{}, priceBookID)
}

func (r *Repository) CustomerExists(ctx context.Context, customerID int64) (bool, error) {
	return r.exists(ctx, &models.Customer{}, customerID)
}

func (r *Repository) exists(ctx context.Context, model any, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// LoadRules returns the book's rules whose scope could target product.
func (r *Repository) LoadRules(ctx context.Context, priceBookID int64, product models.Product) ([]models.PriceRule, error) {
	scoped := r.db.Where("scope = ?", enums.RuleScopeAll).
		Or("scope = ? AND scope_value = ?", enums.RuleScopeSKU, product.SKU)
	if product.CategoryID != nil {
		scoped = scoped.Or("scope = ? AND scope_value = ?", enums.RuleScopeCategory, strconv.FormatInt(*product.CategoryID, 10))
	}
	if len(product.Tags) > 0 {
		scoped = scoped.Or("scope = ? AND scope_value IN ?", enums.RuleScopeTag, []string(product.Tags))
	}

	var rules []models.PriceRule
	err := r.db.WithContext(ctx).
		Where("price_book_id = ?", priceBookID).
		Where(scoped).
		Order("id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// LoadTiers returns tiers keyed on the product or its category. Rows whose
// scope disagrees with the key are returned too so the engine can report them.
func (r *Repository) LoadTiers(ctx context.Context, productID int64, categoryID *int64) ([]models.VolumeTier, error) {
	q := r.db.WithContext(ctx)
	if categoryID != nil {
		q = q.Where("product_id = ? OR category_id = ?", productID, *categoryID)
	} else {
		q = q.Where("product_id = ?", productID)
	}
	var tiers []models.VolumeTier
	if err := q.Order("id ASC").Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

// LoadContractPrices returns every row for the pair; duplicates are resolved
// by the engine.
func (r *Repository) LoadContractPrices(ctx context.Context, customerID, productID int64) ([]models.ContractPrice, error) {
	var contracts []models.ContractPrice
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Order("id ASC").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

// ListActiveRules feeds the record integrity audit.
func (r *Repository) ListActiveRules(ctx context.Context) ([]models.PriceRule, error) {
	var rules []models.PriceRule
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *Repository) ListActiveTiers(ctx context.Context) ([]models.VolumeTier, error) {
	var tiers []models.VolumeTier
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

func (r *Repository) ListActiveContracts(ctx context.Context) ([]models.ContractPrice, error) {
	var contracts []models.ContractPrice
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("customer_id ASC, product_id ASC, id ASC").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

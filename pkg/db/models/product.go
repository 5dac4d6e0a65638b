package models

import (
	"time"

	"github.com/shopspring/decimal"

	dbtypes "github.com/angelmondragon/tillbook-backend/pkg/db/types"
)

// Product is a catalog entry with its list price.
type Product struct {
	ID         int64            `gorm:"column:id;primaryKey;autoIncrement"`
	SKU        string           `gorm:"column:sku;not null;uniqueIndex"`
	Name       string           `gorm:"column:name;not null"`
	CategoryID *int64           `gorm:"column:category_id"`
	Tags       dbtypes.TagArray `gorm:"column:tags;not null;default:'{}'"`
	ListPrice  decimal.Decimal  `gorm:"column:list_price;type:numeric(14,2);not null"`
	IsActive   bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

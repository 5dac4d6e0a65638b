package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/tillbook-backend/pkg/enums"
)

// VolumeTier is one quantity-break band targeting a product or a category.
type VolumeTier struct {
	ID              int64               `gorm:"column:id;primaryKey;autoIncrement"`
	Scope           enums.TierScope     `gorm:"column:scope;not null"`
	ProductID       *int64              `gorm:"column:product_id;index"`
	CategoryID      *int64              `gorm:"column:category_id;index"`
	MinQty          int64               `gorm:"column:min_qty;not null"`
	MaxQty          *int64              `gorm:"column:max_qty"`
	DiscountPercent decimal.NullDecimal `gorm:"column:discount_percent;type:numeric(7,4)"`
	DiscountAmount  decimal.NullDecimal `gorm:"column:discount_amount;type:numeric(14,2)"`
	EffectiveFrom   *time.Time          `gorm:"column:effective_from"`
	EffectiveTo     *time.Time          `gorm:"column:effective_to"`
	IsActive        bool                `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (VolumeTier) TableName() string { return "volume_tiers" }

package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/tillbook-backend/pkg/enums"
)

// PriceRule is a promotional or markdown rule of a price book. Rows are read
// as stored; the pricing engine validates them before use.
type PriceRule struct {
	ID            int64            `gorm:"column:id;primaryKey;autoIncrement"`
	PriceBookID   int64            `gorm:"column:price_book_id;not null;index"`
	Scope         enums.RuleScope  `gorm:"column:scope;not null"`
	ScopeValue    *string          `gorm:"column:scope_value"`
	ActionType    enums.RuleAction `gorm:"column:action_type;not null"`
	ActionValue   decimal.Decimal  `gorm:"column:action_value;type:numeric(14,4);not null"`
	MinQty        *int64           `gorm:"column:min_qty"`
	MaxQty        *int64           `gorm:"column:max_qty"`
	Priority      int              `gorm:"column:priority;not null;default:0"`
	EffectiveFrom *time.Time       `gorm:"column:effective_from"`
	EffectiveTo   *time.Time       `gorm:"column:effective_to"`
	IsActive      bool             `gorm:"column:is_active;not null;default:true"`
	Notes         *string          `gorm:"column:notes"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (PriceRule) TableName() string { return "price_rules" }

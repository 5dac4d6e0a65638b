package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractPrice is a negotiated net price for one customer and product.
type ContractPrice struct {
	ID            int64           `gorm:"column:id;primaryKey;autoIncrement"`
	CustomerID    int64           `gorm:"column:customer_id;not null;index:idx_contract_prices_customer_product"`
	ProductID     int64           `gorm:"column:product_id;not null;index:idx_contract_prices_customer_product"`
	NetPrice      decimal.Decimal `gorm:"column:net_price;type:numeric(14,2);not null"`
	EffectiveFrom *time.Time      `gorm:"column:effective_from"`
	EffectiveTo   *time.Time      `gorm:"column:effective_to"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (ContractPrice) TableName() string { return "contract_prices" }

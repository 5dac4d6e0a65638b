package pricing

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/tillbook-backend/pkg/db/models"
)

// Contract is a validated negotiated price for one customer and product.
type Contract struct {
	ID         int64
	CustomerID int64
	ProductID  int64
	NetPrice   decimal.Decimal
	Window     Window
	Active     bool
}

func NewContract(row models.ContractPrice) (Contract, error) {
	var errs error
	if row.NetPrice.IsNegative() {
		errs = multierr.Append(errs, fmt.Errorf("net price %s is negative", row.NetPrice))
	}
	window, err := newWindow(row.EffectiveFrom, row.EffectiveTo)
	errs = multierr.Append(errs, err)
	if errs != nil {
		return Contract{}, errs
	}
	return Contract{
		ID:         row.ID,
		CustomerID: row.CustomerID,
		ProductID:  row.ProductID,
		NetPrice:   row.NetPrice,
		Window:     window,
		Active:     row.IsActive,
	}, nil
}

// ContractResolution is the outcome of ResolveContract. Superseded lists the
// other effective rows when the store held more than one for the pair.
type ContractResolution struct {
	Contract   *Contract
	Superseded []Contract
}

// Ambiguous reports whether more than one contract was effective.
func (r ContractResolution) Ambiguous() bool {
	return len(r.Superseded) > 0
}

// ResolveContract picks the effective contract for customer and product at
// asOf. Duplicates resolve to the lowest id.
func ResolveContract(contracts []Contract, customerID *int64, productID int64, asOf time.Time) ContractResolution {
	if customerID == nil {
		return ContractResolution{}
	}
	effective := make([]Contract, 0, 1)
	for _, c := range contracts {
		if !c.Active || c.CustomerID != *customerID || c.ProductID != productID {
			continue
		}
		if !c.Window.Contains(asOf) {
			continue
		}
		effective = append(effective, c)
	}
	if len(effective) == 0 {
		return ContractResolution{}
	}
	sort.Slice(effective, func(i, j int) bool { return effective[i].ID < effective[j].ID })
	winner := effective[0]
	res := ContractResolution{Contract: &winner}
	if len(effective) > 1 {
		res.Superseded = effective[1:]
	}
	return res
}

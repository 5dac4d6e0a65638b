package pricing

import (
	"fmt"
	"time"
)

// Window is an inclusive validity interval. A nil bound is open.
type Window struct {
	From *time.Time
	To   *time.Time
}

func newWindow(from, to *time.Time) (Window, error) {
	if from != nil && to != nil && from.After(*to) {
		return Window{}, fmt.Errorf("effective window starts after it ends")
	}
	return Window{From: from, To: to}, nil
}

func (w Window) Contains(at time.Time) bool {
	if w.From != nil && at.Before(*w.From) {
		return false
	}
	if w.To != nil && at.After(*w.To) {
		return false
	}
	return true
}

// QtyRange is an inclusive quantity band; nil Max is unbounded.
type QtyRange struct {
	Min int64
	Max *int64
}

func newQtyRange(minQty, maxQty *int64) (QtyRange, error) {
	r := QtyRange{Max: maxQty}
	if minQty != nil {
		r.Min = *minQty
	}
	if r.Min < 0 {
		return QtyRange{}, fmt.Errorf("min quantity %d is negative", r.Min)
	}
	if maxQty != nil && *maxQty < r.Min {
		return QtyRange{}, fmt.Errorf("min quantity %d exceeds max quantity %d", r.Min, *maxQty)
	}
	return r, nil
}

func (r QtyRange) Contains(qty int64) bool {
	if qty < r.Min {
		return false
	}
	return r.Max == nil || qty <= *r.Max
}

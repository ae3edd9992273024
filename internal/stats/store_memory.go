package stats

import (
	"context"
	"errors"
	"sort"

	"bistro/internal/menu"
	"bistro/internal/payments"
	"bistro/pkg/platform/sentinel"
)

// PaymentLister is what MemoryOrders reads from.
type PaymentLister interface {
	All(ctx context.Context) ([]*payments.Payment, error)
}

// MemoryOrders aggregates the in-memory stores. Menu items deleted since the
// payment are skipped, as the database join does.
type MemoryOrders struct {
	payments PaymentLister
	menu     menu.Store
}

func NewMemoryOrders(payments PaymentLister, menu menu.Store) *MemoryOrders {
	return &MemoryOrders{payments: payments, menu: menu}
}

func (m *MemoryOrders) OrderTotals(ctx context.Context) (int64, float64, error) {
	all, err := m.payments.All(ctx)
	if err != nil {
		return 0, 0, err
	}
	var revenue float64
	for _, p := range all {
		revenue += p.Price
	}
	return int64(len(all)), revenue, nil
}

func (m *MemoryOrders) CategoryStats(ctx context.Context) ([]CategoryStat, error) {
	all, err := m.payments.All(ctx)
	if err != nil {
		return nil, err
	}
	byCategory := map[string]*CategoryStat{}
	for _, p := range all {
		for _, id := range p.MenuItemIDs {
			item, err := m.menu.Get(ctx, id)
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			row, ok := byCategory[item.Category]
			if !ok {
				row = &CategoryStat{Category: item.Category}
				byCategory[item.Category] = row
			}
			row.Quantity++
			row.Revenue += item.Price
		}
	}
	out := make([]CategoryStat, 0, len(byCategory))
	for _, row := range byCategory {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

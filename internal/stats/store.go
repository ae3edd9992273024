package stats

import "context"

// Counter is satisfied by the user and menu stores.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// OrderSource aggregates recorded payments.
type OrderSource interface {
	OrderTotals(ctx context.Context) (orders int64, revenue float64, err error)
	CategoryStats(ctx context.Context) ([]CategoryStat, error)
}

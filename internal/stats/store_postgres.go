package stats

import (
	"context"

	"bistro/internal/storage"
)

// PostgresOrders aggregates in the database.
type PostgresOrders struct {
	db storage.DBTX
}

func NewPostgresOrders(db storage.DBTX) *PostgresOrders {
	return &PostgresOrders{db: db}
}

func (p *PostgresOrders) OrderTotals(ctx context.Context) (int64, float64, error) {
	var (
		orders  int64
		revenue float64
	)
	err := storage.Executor(ctx, p.db).QueryRowContext(ctx,
		`SELECT count(*), COALESCE(sum(price), 0) FROM payments`).Scan(&orders, &revenue)
	return orders, revenue, storage.TranslateError("order totals", err)
}

func (p *PostgresOrders) CategoryStats(ctx context.Context) ([]CategoryStat, error) {
	rows, err := storage.Executor(ctx, p.db).QueryContext(ctx, `
		SELECT m.category, count(*) AS quantity, COALESCE(sum(m.price), 0) AS revenue
		FROM payments p
		CROSS JOIN LATERAL unnest(p.menu_item_ids) AS item(menu_id)
		JOIN menu m ON m.id = item.menu_id
		GROUP BY m.category
		ORDER BY m.category
	`)
	if err != nil {
		return nil, storage.TranslateError("category stats", err)
	}
	defer rows.Close()

	var out []CategoryStat
	for rows.Next() {
		var row CategoryStat
		if err := rows.Scan(&row.Category, &row.Quantity, &row.Revenue); err != nil {
			return nil, storage.TranslateError("scan category stats", err)
		}
		out = append(out, row)
	}
	return out, storage.TranslateError("category stats", rows.Err())
}

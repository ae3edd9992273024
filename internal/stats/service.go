package stats

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	dErrors "bistro/pkg/domain-errors"
)

type Service struct {
	users  Counter
	menu   Counter
	orders OrderSource
}

func NewService(users, menu Counter, orders OrderSource) (*Service, error) {
	if users == nil || menu == nil || orders == nil {
		return nil, errors.New("stats sources are required")
	}
	return &Service{users: users, menu: menu, orders: orders}, nil
}

// Admin runs the three rollups concurrently; the first failure cancels the rest.
func (s *Service) Admin(ctx context.Context) (*AdminStats, error) {
	var out AdminStats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.users.Count(ctx)
		out.Users = n
		return err
	})
	g.Go(func() error {
		n, err := s.menu.Count(ctx)
		out.MenuItems = n
		return err
	})
	g.Go(func() error {
		orders, revenue, err := s.orders.OrderTotals(ctx)
		out.Orders, out.Revenue = orders, revenue
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute admin stats")
	}
	return &out, nil
}

func (s *Service) Orders(ctx context.Context) ([]CategoryStat, error) {
	rows, err := s.orders.CategoryStats(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute order stats")
	}
	if rows == nil {
		rows = []CategoryStat{}
	}
	return rows, nil
}

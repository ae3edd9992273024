//go:build integration

package stats_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"bistro/internal/carts"
	"bistro/internal/menu"
	"bistro/internal/payments"
	"bistro/internal/stats"
	userstore "bistro/internal/users/store"
	"bistro/pkg/domain"
	"bistro/pkg/testutil/containers"
)

// =============================================================================
// Checkout and rollup against Postgres
// =============================================================================
// Justification: the payment transaction, the uuid[] columns and the
// unnest join behind /order-stats only exist in SQL.

type CheckoutSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	menu     *menu.PostgresStore
	carts    *carts.PostgresStore
	payments *payments.Service
	stats    *stats.Service
}

func TestCheckoutSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CheckoutSuite))
}

func (s *CheckoutSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	db := s.postgres.DB
	s.menu = menu.NewPostgresStore(db)
	s.carts = carts.NewPostgresStore(db)

	var err error
	s.payments, err = payments.New(payments.NewPostgresStore(db), s.carts, payments.NewSQLTx(db))
	s.Require().NoError(err)
	s.stats, err = stats.NewService(userstore.NewPostgres(db), s.menu, stats.NewPostgresOrders(db))
	s.Require().NoError(err)
}

func (s *CheckoutSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "payments", "carts", "menu", "users"))
}

func (s *CheckoutSuite) dish(name, category string, price float64) *menu.Item {
	item := &menu.Item{ID: domain.NewMenuItemID(), Name: name, Category: category, Price: price}
	s.Require().NoError(s.menu.Insert(context.Background(), item))
	return item
}

func (s *CheckoutSuite) addToCart(email string, dish *menu.Item) *carts.Item {
	item := &carts.Item{ID: domain.NewCartItemID(), MenuID: dish.ID, Email: email, Name: dish.Name, Price: dish.Price}
	s.Require().NoError(s.carts.Insert(context.Background(), item))
	return item
}

func (s *CheckoutSuite) TestRecordSettlesCartAndFeedsStats() {
	ctx := context.Background()
	soup := s.dish("Soup", "soup", 4.5)
	salad := s.dish("Salad", "salad", 7)
	c1 := s.addToCart("b@x.com", soup)
	c2 := s.addToCart("b@x.com", salad)
	other := s.addToCart("c@x.com", soup)

	res, err := s.payments.Record(ctx, payments.RecordRequest{
		Email:         "b@x.com",
		Price:         11.5,
		TransactionID: "pi_1",
		CartIDs:       []domain.CartItemID{c1.ID, c2.ID, other.ID},
		MenuItemIDs:   []domain.MenuItemID{soup.ID, salad.ID},
	})
	s.Require().NoError(err)
	s.EqualValues(2, res.DeleteResult.DeletedCount, "c@x.com's item is not the payer's to clear")

	left, err := s.carts.ListByEmail(ctx, "b@x.com")
	s.Require().NoError(err)
	s.Empty(left)
	kept, err := s.carts.ListByEmail(ctx, "c@x.com")
	s.Require().NoError(err)
	s.Require().Len(kept, 1)
	s.Equal(other.ID, kept[0].ID)

	history, err := s.payments.History(ctx, "b@x.com")
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.ElementsMatch([]domain.CartItemID{c1.ID, c2.ID, other.ID}, history[0].CartIDs)
	s.Equal("pending", history[0].Status)

	admin, err := s.stats.Admin(ctx)
	s.Require().NoError(err)
	s.EqualValues(2, admin.MenuItems)
	s.EqualValues(1, admin.Orders)
	s.InDelta(11.5, admin.Revenue, 0.001)

	rows, err := s.stats.Orders(ctx)
	s.Require().NoError(err)
	s.Equal([]stats.CategoryStat{
		{Category: "salad", Quantity: 1, Revenue: 7},
		{Category: "soup", Quantity: 1, Revenue: 4.5},
	}, rows)
}

func (s *CheckoutSuite) TestDeletedMenuItemsDropOutOfOrderStats() {
	ctx := context.Background()
	soup := s.dish("Soup", "soup", 4.5)
	gone := s.dish("Special", "special", 20)

	_, err := s.payments.Record(ctx, payments.RecordRequest{
		Email:         "b@x.com",
		Price:         24.5,
		TransactionID: "pi_2",
		MenuItemIDs:   []domain.MenuItemID{soup.ID, gone.ID},
	})
	s.Require().NoError(err)
	_, err = s.menu.Delete(ctx, gone.ID)
	s.Require().NoError(err)

	rows, err := s.stats.Orders(ctx)
	s.Require().NoError(err)
	s.Equal([]stats.CategoryStat{{Category: "soup", Quantity: 1, Revenue: 4.5}}, rows)
}

package stats

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bistro/internal/menu"
	"bistro/internal/payments"
	"bistro/pkg/testutil"
)

type brokenOrders struct{}

func (brokenOrders) OrderTotals(context.Context) (int64, float64, error) {
	return 0, 0, errors.New("connection reset")
}

func (brokenOrders) CategoryStats(context.Context) ([]CategoryStat, error) {
	return nil, errors.New("connection reset")
}

func newTestHandler(t *testing.T, orders OrderSource) *Handler {
	t.Helper()
	svc, err := NewService(fixedCount(3), fixedCount(7), orders)
	require.NoError(t, err)
	return NewHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleAdmin(t *testing.T) {
	items, paid := seed(t)
	h := newTestHandler(t, NewMemoryOrders(paid, items))

	rr := testutil.DoRequest(http.HandlerFunc(h.HandleAdmin), testutil.NewRequest(t, http.MethodGet, "/admin-stats"))
	testutil.AssertStatusOK(t, rr)
	assert.JSONEq(t, `{"users":3,"menuItems":7,"orders":2,"revenue":21}`, rr.Body.String())
}

func TestHandleOrdersWithoutPaymentsIsEmptyList(t *testing.T) {
	h := newTestHandler(t, NewMemoryOrders(payments.NewInMemoryStore(), menu.NewInMemoryStore()))

	rr := testutil.DoRequest(http.HandlerFunc(h.HandleOrders), testutil.NewRequest(t, http.MethodGet, "/order-stats"))
	testutil.AssertStatusOK(t, rr)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestHandlersHideStoreFailures(t *testing.T) {
	h := newTestHandler(t, brokenOrders{})

	for path, handle := range map[string]http.HandlerFunc{
		"/admin-stats": h.HandleAdmin,
		"/order-stats": h.HandleOrders,
	} {
		t.Run(path, func(t *testing.T) {
			rr := testutil.DoRequest(handle, testutil.NewRequest(t, http.MethodGet, path))
			testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
			assert.NotContains(t, rr.Body.String(), "connection reset")
		})
	}
}

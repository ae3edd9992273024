package payments

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"bistro/internal/authz"
	"bistro/internal/carts"
	"bistro/pkg/domain"
	dErrors "bistro/pkg/domain-errors"
	"bistro/pkg/platform/audit"
	"bistro/pkg/platform/audit/store/memory"
	"bistro/pkg/requestcontext"
)

type stubProcessor struct {
	amounts []int64
	err     error
}

func (p *stubProcessor) CreateIntent(_ context.Context, amountCents int64) (string, error) {
	p.amounts = append(p.amounts, amountCents)
	if p.err != nil {
		return "", p.err
	}
	return "pi_secret_123", nil
}

type failingPaymentStore struct{ InMemoryStore }

func (f *failingPaymentStore) Insert(context.Context, *Payment) error {
	return errors.New("disk full")
}

// =============================================================================
// Payments Service Test Suite
// =============================================================================
// Justification: checkout couples two writes (payment insert, cart removal)
// and converts currency units; both are easy to regress silently.

type PaymentsSuite struct {
	suite.Suite
	payments  *InMemoryStore
	carts     *carts.InMemoryStore
	processor *stubProcessor
	events    *memory.Store
	service   *Service
	ctx       context.Context
}

func TestPaymentsSuite(t *testing.T) {
	suite.Run(t, new(PaymentsSuite))
}

func (s *PaymentsSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.payments = NewInMemoryStore()
	s.carts = carts.NewInMemoryStore()
	s.processor = &stubProcessor{}
	s.events = memory.New()
	var err error
	s.service, err = New(s.payments, s.carts, NewMemoryTx(),
		WithProcessor(s.processor),
		WithAuditEmitter(audit.NewEmitter(s.events, logger)),
		WithLogger(logger),
	)
	s.Require().NoError(err)
	s.ctx = context.Background()
}

func (s *PaymentsSuite) addCartItem(email string) domain.CartItemID {
	id := domain.NewCartItemID()
	s.Require().NoError(s.carts.Insert(s.ctx, &carts.Item{ID: id, MenuID: domain.NewMenuItemID(), Email: email, Price: 5}))
	return id
}

func (s *PaymentsSuite) TestNew() {
	_, err := New(nil, s.carts, NewMemoryTx())
	s.Error(err)
	_, err = New(s.payments, nil, NewMemoryTx())
	s.Error(err)
	_, err = New(s.payments, s.carts, nil)
	s.Error(err)
}

func (s *PaymentsSuite) TestCreateIntent() {
	s.Run("price is converted to cents", func() {
		res, err := s.service.CreateIntent(s.ctx, 7.3)
		s.Require().NoError(err)
		s.Equal("pi_secret_123", res.ClientSecret)
		s.Equal([]int64{730}, s.processor.amounts)
	})

	s.Run("no processor is unavailable", func() {
		svc, err := New(s.payments, s.carts, NewMemoryTx())
		s.Require().NoError(err)
		_, err = svc.CreateIntent(s.ctx, 10)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	s.Run("sub-cent price is rejected", func() {
		_, err := s.service.CreateIntent(s.ctx, 0.001)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *PaymentsSuite) TestRecordClearsSettledCartItems() {
	paid := s.addCartItem("a@x.com")
	kept := s.addCartItem("a@x.com")

	res, err := s.service.Record(s.ctx, RecordRequest{
		Email: "a@x.com", Price: 5, TransactionID: "pi_1", CartIDs: []domain.CartItemID{paid},
	})
	s.Require().NoError(err)
	s.True(res.PaymentResult.Acknowledged)
	s.EqualValues(1, res.DeleteResult.DeletedCount)

	left, err := s.carts.ListByEmail(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Require().Len(left, 1)
	s.Equal(kept, left[0].ID)

	history, err := s.service.History(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(StatusPending, history[0].Status)
	s.False(history[0].Date.IsZero())
	s.Len(s.events.ByAction(audit.ActionPaymentRecorded), 1)
}

func (s *PaymentsSuite) TestFailedInsertLeavesCartUntouched() {
	item := s.addCartItem("a@x.com")
	svc, err := New(&failingPaymentStore{}, s.carts, NewMemoryTx())
	s.Require().NoError(err)

	_, err = svc.Record(s.ctx, RecordRequest{
		Email: "a@x.com", Price: 5, TransactionID: "pi_1", CartIDs: []domain.CartItemID{item},
	})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	left, err := s.carts.ListByEmail(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Len(left, 1)
}

func (s *PaymentsSuite) TestRecordOnlyClearsPayersOwnItems() {
	mine := s.addCartItem("a@x.com")
	theirs := s.addCartItem("b@x.com")

	res, err := s.service.Record(s.ctx, RecordRequest{
		Email: "a@x.com", Price: 5, TransactionID: "pi_1", CartIDs: []domain.CartItemID{mine, theirs},
	})
	s.Require().NoError(err)
	s.EqualValues(1, res.DeleteResult.DeletedCount)

	left, err := s.carts.ListByEmail(s.ctx, "b@x.com")
	s.Require().NoError(err)
	s.Require().Len(left, 1)
	s.Equal(theirs, left[0].ID)
}

func (s *PaymentsSuite) TestVerifiedPayerMustBeTheCaller() {
	svc, err := New(s.payments, s.carts, NewMemoryTx(), WithVerifiedPayer())
	s.Require().NoError(err)
	item := s.addCartItem("b@x.com")
	req := RecordRequest{Email: "b@x.com", Price: 5, TransactionID: "pi_1", CartIDs: []domain.CartItemID{item}}

	s.Run("anonymous caller is refused", func() {
		_, err := svc.Record(s.ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.ErrorIs(err, authz.ErrOwnershipMismatch)
	})

	s.Run("another caller is refused", func() {
		ctx := requestcontext.WithIdentity(s.ctx, requestcontext.VerifiedIdentity{Email: "a@x.com"})
		_, err := svc.Record(ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("the owner settles their cart", func() {
		ctx := requestcontext.WithIdentity(s.ctx, requestcontext.VerifiedIdentity{Email: "b@x.com"})
		res, err := svc.Record(ctx, req)
		s.Require().NoError(err)
		s.EqualValues(1, res.DeleteResult.DeletedCount)
	})
}

func (s *PaymentsSuite) TestHistoryIsExactEmailMatch() {
	for _, email := range []string{"a@x.com", "b@x.com", "B@x.com", "b@x.com"} {
		_, err := s.service.Record(s.ctx, RecordRequest{Email: email, Price: 1, TransactionID: "t"})
		s.Require().NoError(err)
	}
	history, err := s.service.History(s.ctx, "b@x.com")
	s.Require().NoError(err)
	s.Len(history, 2)
	for _, p := range history {
		s.Equal("b@x.com", p.Email)
	}
}

func TestHandlers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cartStore := carts.NewInMemoryStore()
	svc, err := New(NewInMemoryStore(), cartStore, NewMemoryTx(), WithProcessor(&stubProcessor{}))
	require.NoError(t, err)
	h := NewHandler(svc, logger)

	r := chi.NewRouter()
	r.Post("/create-payment-intent", h.HandleCreateIntent)
	r.Post("/payments", h.HandleRecord)
	r.Get("/payments/{email}", h.HandleHistory)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, path, reader))
		return rec
	}

	rec := do(http.MethodPost, "/create-payment-intent", `{"price":12.5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"clientSecret":"pi_secret_123"}`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/create-payment-intent", `{"price":0}`).Code)

	rec = do(http.MethodPost, "/payments", `{"email":"b@x.com","price":12.5,"transactionId":"pi_9","cartIds":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var recorded RecordResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recorded))
	assert.NotEmpty(t, recorded.PaymentResult.InsertedID)

	rec = do(http.MethodGet, "/payments/b@x.com", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, "pi_9", history[0]["transactionId"])
}

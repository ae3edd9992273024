package payments

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"bistro/internal/authz"
	"bistro/internal/storage"
	"bistro/pkg/domain"
	dErrors "bistro/pkg/domain-errors"
	"bistro/pkg/platform/audit"
	"bistro/pkg/requestcontext"
)

// StatusPending is stored when the client does not report a status.
const StatusPending = "pending"

// AuditEmitter receives operations events. *audit.Emitter satisfies it.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event)
}

type Service struct {
	payments  Store
	carts     CartDeleter
	tx        TxRunner
	processor Processor
	audit     AuditEmitter
	logger    *slog.Logger

	verifiedPayer bool
}

type Option func(*Service)

// WithProcessor enables payment intents. Without one, CreateIntent answers
// service unavailable.
func WithProcessor(p Processor) Option {
	return func(s *Service) { s.processor = p }
}

// WithVerifiedPayer makes Record accept only payments whose email is the
// authenticated caller's. It is enabled with the owner cart policy.
func WithVerifiedPayer() Option {
	return func(s *Service) { s.verifiedPayer = true }
}

func WithAuditEmitter(emitter AuditEmitter) Option {
	return func(s *Service) { s.audit = emitter }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(payments Store, carts CartDeleter, tx TxRunner, opts ...Option) (*Service, error) {
	if payments == nil {
		return nil, errors.New("payments store is required")
	}
	if carts == nil {
		return nil, errors.New("carts store is required")
	}
	if tx == nil {
		return nil, errors.New("tx runner is required")
	}
	s := &Service{payments: payments, carts: carts, tx: tx, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateIntent converts a dollar price to cents and asks the processor for a
// card payment intent.
func (s *Service) CreateIntent(ctx context.Context, price float64) (*IntentResult, error) {
	if s.processor == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "payments are not configured")
	}
	amount := int64(math.Round(price * 100))
	if amount <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "price must be positive")
	}
	secret, err := s.processor.CreateIntent(ctx, amount)
	if err != nil {
		return nil, err
	}
	return &IntentResult{ClientSecret: secret}, nil
}

// Record stores the payment and removes the cart items it settled. Both
// happen in one transaction: a failed insert leaves the cart untouched.
func (s *Service) Record(ctx context.Context, req RecordRequest) (*RecordResult, error) {
	if s.verifiedPayer {
		if caller := requestcontext.Email(ctx); caller == "" || caller != req.Email {
			return nil, dErrors.Wrap(authz.ErrOwnershipMismatch, dErrors.CodeForbidden, "payment email does not match the caller")
		}
	}
	payment := &Payment{
		ID:            domain.NewPaymentID(),
		Email:         req.Email,
		Price:         req.Price,
		TransactionID: req.TransactionID,
		Date:          req.Date,
		CartIDs:       req.CartIDs,
		MenuItemIDs:   req.MenuItemIDs,
		Status:        req.Status,
	}
	if payment.Date.IsZero() {
		payment.Date = requestcontext.Now(ctx)
	}
	if payment.Status == "" {
		payment.Status = StatusPending
	}

	var deleted storage.DeleteResult
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.payments.Insert(ctx, payment); err != nil {
			return err
		}
		var err error
		deleted, err = s.carts.DeleteMany(ctx, payment.Email, payment.CartIDs)
		return err
	})
	if err != nil {
		if _, ok := dErrors.As(err); ok {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record payment")
	}

	if s.audit != nil {
		s.audit.Emit(ctx, audit.Event{
			Action:     audit.ActionPaymentRecorded,
			ActorEmail: payment.Email,
			Subject:    payment.ID.String(),
		})
	}
	return &RecordResult{
		PaymentResult: storage.Inserted(payment.ID.String()),
		DeleteResult:  deleted,
	}, nil
}

// History lists the payments recorded for email. The route is gated so email
// is always the verified caller's own.
func (s *Service) History(ctx context.Context, email string) ([]*Payment, error) {
	payments, err := s.payments.ListByEmail(ctx, email)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list payments")
	}
	return payments, nil
}

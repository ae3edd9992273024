package payments

import (
	"context"
	"errors"
	"net/http"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	dErrors "bistro/pkg/domain-errors"
)

// Processor creates payment intents with the card processor.
type Processor interface {
	CreateIntent(ctx context.Context, amountCents int64) (clientSecret string, err error)
}

// StripeProcessor creates card-only USD payment intents.
type StripeProcessor struct {
	client *client.API
}

func NewStripeProcessor(secretKey string) *StripeProcessor {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeProcessor{client: sc}
}

func (p *StripeProcessor) CreateIntent(ctx context.Context, amountCents int64) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountCents),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := p.client.PaymentIntents.New(params)
	if err != nil {
		return "", mapStripeError(err)
	}
	return pi.ClientSecret, nil
}

// mapStripeError keeps processor errors out of the response body except for
// the message Stripe marks as user-facing on 4xx.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode >= http.StatusInternalServerError {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "payment processor unavailable")
		}
		if stripeErr.HTTPStatusCode == http.StatusTooManyRequests {
			return dErrors.Wrap(err, dErrors.CodeTooManyRequests, "payment processor is throttling requests")
		}
		return dErrors.Wrap(err, dErrors.CodeBadRequest, stripeErr.Msg)
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "payment processor unavailable")
}

package stripe

import (
	"context"
	"errors"
	"misikaMarket/domain"
	"net/http"
	"time"

	stripeapi "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

type StripeConfig struct {
	SecretKey string
	Currency  string
	// BaseURL overrides the API endpoint, used against a local stub.
	BaseURL string
}

type StripeRepository struct {
	client   paymentintent.Client
	currency string
}

func NewStripeRepository(cfg StripeConfig) *StripeRepository {
	backendCfg := &stripeapi.BackendConfig{
		HTTPClient:        &http.Client{Timeout: 10 * time.Second},
		MaxNetworkRetries: stripeapi.Int64(1),
		LeveledLogger:     &stripeapi.LeveledLogger{Level: stripeapi.LevelNull},
	}
	if cfg.BaseURL != "" {
		backendCfg.URL = stripeapi.String(cfg.BaseURL)
	}

	return &StripeRepository{
		client: paymentintent.Client{
			B:   stripeapi.GetBackendWithConfig(stripeapi.APIBackend, backendCfg),
			Key: cfg.SecretKey,
		},
		currency: cfg.Currency,
	}
}

// CreatePaymentIntent starts a card payment for amountMinor units of the
// configured currency.
func (r *StripeRepository) CreatePaymentIntent(ctx context.Context, amountMinor int64, metadata map[string]string) (domain.PaymentIntent, error) {
	params := &stripeapi.PaymentIntentParams{
		Amount:   stripeapi.Int64(amountMinor),
		Currency: stripeapi.String(r.currency),
		AutomaticPaymentMethods: &stripeapi.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripeapi.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := r.client.New(params)
	if err != nil {
		return domain.PaymentIntent{}, domain.NewUpstreamError("failed to create payment intent", err)
	}

	return domain.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}

func (r *StripeRepository) GetPaymentIntent(ctx context.Context, id string) (domain.PaymentIntent, error) {
	params := &stripeapi.PaymentIntentParams{}
	params.Context = ctx

	pi, err := r.client.Get(id, params)
	if err != nil {
		var stripeErr *stripeapi.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return domain.PaymentIntent{}, domain.NewNotFoundError("payment intent")
		}
		return domain.PaymentIntent{}, domain.NewUpstreamError("failed to retrieve payment intent", err)
	}

	return domain.PaymentIntent{
		ID:       pi.ID,
		Status:   string(pi.Status),
		Amount:   pi.Amount,
		Metadata: pi.Metadata,
	}, nil
}

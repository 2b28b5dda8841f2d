package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/quotakit/pkg/catalog"
	"github.com/dmitrymomot/quotakit/pkg/usage"
)

// defaultSuccessURL is where the mock checkout redirects after "payment".
const defaultSuccessURL = "http://localhost:3000/payment/success"

// Checkout is the result of starting a mock checkout session.
type Checkout struct {
	URL       string
	SessionID string
}

// Option configures the Service.
type Option func(*Service)

// WithSuccessURL overrides the checkout success redirect target.
func WithSuccessURL(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.successURL = url
		}
	}
}

// Service implements the mock payment flow: it issues checkout sessions
// without calling a real billing provider and, on confirmation, writes a
// ledger row and assigns the purchased plan.
type Service struct {
	catalog    *catalog.Catalog
	store      usage.Store
	ledger     Ledger
	successURL string
}

// New returns a payment Service. Panics on nil dependencies to fail fast.
func New(cat *catalog.Catalog, store usage.Store, ledger Ledger, opts ...Option) *Service {
	if cat == nil {
		panic("payment: catalog is required")
	}
	if store == nil {
		panic("payment: usage.Store is required")
	}
	if ledger == nil {
		panic("payment: Ledger is required")
	}

	s := &Service{
		catalog:    cat,
		store:      store,
		ledger:     ledger,
		successURL: defaultSuccessURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCheckout validates the plan and returns a mock checkout session that
// redirects straight to the success URL. A real provider integration would
// create a hosted session here instead.
func (s *Service) CreateCheckout(_ context.Context, _ uuid.UUID, planID string) (Checkout, error) {
	if _, err := s.catalog.Get(planID); err != nil {
		return Checkout{}, err
	}

	sessionID := "mock_" + uuid.NewString()
	return Checkout{
		URL:       fmt.Sprintf("%s?plan_id=%s&session_id=%s", s.successURL, planID, sessionID),
		SessionID: sessionID,
	}, nil
}

// ConfirmPayment finalizes a checkout: it records a succeeded ledger entry
// with the plan price and assigns the plan unconditionally, bypassing the
// resolver's upgrade-only rule. The session id is accepted as-is; the mock
// flow has nothing to verify it against.
// Returns the assigned plan's display name.
func (s *Service) ConfirmPayment(ctx context.Context, userID uuid.UUID, planID, _ string) (string, error) {
	plan, err := s.catalog.Get(planID)
	if err != nil {
		return "", err
	}

	// The user may be paying before ever touching a metered endpoint.
	if _, err := s.store.GetOrCreate(ctx, userID); err != nil {
		return "", errors.Join(ErrPaymentFailed, err)
	}

	if err := s.ledger.Record(ctx, Payment{
		UserID:   userID,
		Amount:   plan.Price,
		Provider: ProviderMockStripe,
		Status:   StatusSucceeded,
	}); err != nil {
		return "", errors.Join(ErrPaymentFailed, err)
	}

	if err := s.store.SetPlan(ctx, userID, planID); err != nil {
		return "", errors.Join(ErrPaymentFailed, err)
	}

	return plan.Name, nil
}

package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/gateway"
	"github.com/AfroSamurai-hub/OzzServe/pkg/ident"
)

// =====================================================
// MOCK STRIPE GATEWAY
// =====================================================

// MockStripeGateway is the no-key flow: it issues pi_mock_ references and
// never leaves the process. Also used by tests, which can force failures.
type MockStripeGateway struct {
	mu sync.Mutex

	FailAuthorize bool
	FailCapture   bool
	FailCancel    bool

	Authorized []string
	Captured   []string
	Cancelled  []string
}

func NewMockStripeGateway() *MockStripeGateway {
	return &MockStripeGateway{}
}

var _ gateway.StripeGateway = (*MockStripeGateway)(nil)

func (m *MockStripeGateway) AuthorizeIntent(ctx context.Context, req gateway.AuthorizeRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailAuthorize {
		return "", fmt.Errorf("mock authorize failed")
	}

	ref := ident.MockIntentRef()
	m.Authorized = append(m.Authorized, ref)
	return ref, nil
}

func (m *MockStripeGateway) CaptureIntent(ctx context.Context, providerRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCapture {
		return fmt.Errorf("mock capture failed")
	}
	m.Captured = append(m.Captured, providerRef)
	return nil
}

func (m *MockStripeGateway) CancelIntent(ctx context.Context, providerRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCancel {
		return fmt.Errorf("mock cancel failed")
	}
	m.Cancelled = append(m.Cancelled, providerRef)
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/booking/model"
	catalogmodel "github.com/AfroSamurai-hub/OzzServe/internal/domains/catalog/model"
	catalogrepo "github.com/AfroSamurai-hub/OzzServe/internal/domains/catalog/repository"
	notification "github.com/AfroSamurai-hub/OzzServe/internal/domains/notification/model"
	paymentmodel "github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/model"
	providermodel "github.com/AfroSamurai-hub/OzzServe/internal/domains/provider/model"
	"github.com/AfroSamurai-hub/OzzServe/pkg/ident"
)

// =====================================================
// FAKES
// =====================================================

// fakeTxManager serializes "transactions" on one mutex, standing in for
// the row lock the real store takes.
type fakeTxManager struct {
	mu sync.Mutex
}

func (m *fakeTxManager) ExecuteInTransaction(_ context.Context, fn func(pgx.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(nil)
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*model.Booking
	events   []model.BookingEvent
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*model.Booking)}
}

func (r *fakeBookingRepo) put(b *model.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.bookings[b.ID] = &cp
}

func (r *fakeBookingRepo) get(id uuid.UUID) model.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.bookings[id]
}

func (r *fakeBookingRepo) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType
	}
	return out
}

func (r *fakeBookingRepo) InsertTx(_ context.Context, _ pgx.Tx, b *model.Booking) error {
	r.put(b)
	return nil
}

func (r *fakeBookingRepo) GetForUpdateTx(_ context.Context, _ pgx.Tx, id uuid.UUID) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, model.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return r.GetForUpdateTx(ctx, nil, id)
}

func (r *fakeBookingRepo) UpdateStatusTx(_ context.Context, _ pgx.Tx, id uuid.UUID, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != from {
		return model.ErrStatusDrift
	}
	b.Status = to
	return nil
}

func (r *fakeBookingRepo) AssignProviderTx(_ context.Context, _ pgx.Tx, id uuid.UUID, providerUID, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != from {
		return model.ErrStatusDrift
	}
	if b.ProviderID != nil && *b.ProviderID != providerUID {
		return model.ErrStatusDrift
	}
	b.Status = to
	b.ProviderID = &providerUID
	return nil
}

func (r *fakeBookingRepo) ClearProviderTx(_ context.Context, _ pgx.Tx, id uuid.UUID, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != from {
		return model.ErrStatusDrift
	}
	b.Status = to
	b.ProviderID = nil
	return nil
}

func (r *fakeBookingRepo) SetCompletePendingTx(_ context.Context, _ pgx.Tx, id uuid.UUID, from string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != from {
		return model.ErrStatusDrift
	}
	b.Status = model.StatusCompletePending
	b.CompletePendingUntil = &until
	return nil
}

func (r *fakeBookingRepo) SetPaymentRefTx(_ context.Context, _ pgx.Tx, id uuid.UUID, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return model.ErrBookingNotFound
	}
	b.StripePaymentIntentID = &ref
	return nil
}

func (r *fakeBookingRepo) AppendEventTx(_ context.Context, _ pgx.Tx, event *model.BookingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeBookingRepo) ListByCustomer(_ context.Context, customerID string, q model.ListQuery) ([]model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Booking
	for _, b := range r.bookings {
		if b.CustomerID == customerID && (q.Status == "" || b.Status == q.Status) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListByProvider(_ context.Context, providerUID string, q model.ListQuery) ([]model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Booking
	for _, b := range r.bookings {
		if b.IsAssignedTo(providerUID) && (q.Status == "" || b.Status == q.Status) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) SweepExpired(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bookings {
		if b.Status == model.StatusPendingPayment && b.CreatedAt.Before(cutoff) {
			b.Status = model.StatusExpired
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) FindGraceExpired(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for _, b := range r.bookings {
		if b.Status == model.StatusCompletePending && b.GraceExpired(now) && len(ids) < limit {
			ids = append(ids, b.ID)
		}
	}
	return ids, nil
}

type outboxRecord struct {
	recipient string
	kind      string
}

type fakeOutbox struct {
	mu   sync.Mutex
	rows []outboxRecord
}

func (o *fakeOutbox) EnqueueTx(_ context.Context, _ pgx.Tx, _ uuid.UUID, recipientUID, kind string, _ map[string]interface{}) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rows = append(o.rows, outboxRecord{recipient: recipientUID, kind: kind})
	return nil
}

func (o *fakeOutbox) kinds() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.rows))
	for i, r := range o.rows {
		out[i] = r.kind
	}
	return out
}

type fakePayments struct {
	mu sync.Mutex

	failCapture  bool
	noAuthorized bool

	created  int
	captured int
	released int
	fees     []int64

	lastAmount int64
}

func (p *fakePayments) CreateIntent(_ context.Context, _ pgx.Tx, bookingID uuid.UUID, priceSnapshotCents *int64) (*paymentmodel.PaymentIntent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	amount := paymentmodel.FallbackAmountCents
	if priceSnapshotCents != nil {
		amount = *priceSnapshotCents
	}
	p.created++
	p.lastAmount = amount
	return &paymentmodel.PaymentIntent{
		ID:          ident.NewID(),
		BookingID:   bookingID,
		Provider:    paymentmodel.ProviderStripe,
		ProviderRef: "pi_mock_test",
		AmountCents: amount,
		Currency:    paymentmodel.DefaultCurrency,
		Status:      paymentmodel.IntentStatusCreated,
	}, nil
}

func (p *fakePayments) Capture(_ context.Context, _ pgx.Tx, bookingID uuid.UUID) (*paymentmodel.PaymentIntent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.noAuthorized {
		return nil, paymentmodel.ErrNoAuthorizedIntent
	}
	if p.failCapture {
		return nil, errors.New("gateway down")
	}
	p.captured++
	return &paymentmodel.PaymentIntent{BookingID: bookingID, Status: paymentmodel.IntentStatusSucceeded}, nil
}

func (p *fakePayments) Release(_ context.Context, _ pgx.Tx, _ uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released++
	return nil
}

func (p *fakePayments) Fee(_ context.Context, _ pgx.Tx, bookingID uuid.UUID, amountCents int64) (*paymentmodel.PaymentIntent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fees = append(p.fees, amountCents)
	return &paymentmodel.PaymentIntent{BookingID: bookingID, AmountCents: amountCents, Status: paymentmodel.IntentStatusSucceeded}, nil
}

func (p *fakePayments) ListIntents(_ context.Context, _ uuid.UUID) ([]paymentmodel.PaymentIntent, error) {
	return nil, nil
}

type fakeCatalog struct {
	services map[uuid.UUID]catalogmodel.Service
}

func (c *fakeCatalog) GetService(_ context.Context, id uuid.UUID) (*catalogmodel.Service, error) {
	svc, ok := c.services[id]
	if !ok {
		return nil, catalogrepo.ErrServiceNotFound
	}
	return &svc, nil
}

func (c *fakeCatalog) ListServices(_ context.Context) ([]catalogmodel.ServiceResponse, error) {
	return nil, nil
}

type fakeProviders struct {
	candidates []string
}

func (p *fakeProviders) Register(_ context.Context, _ string, _ providermodel.RegisterProviderRequest) (*providermodel.Provider, error) {
	return nil, nil
}
func (p *fakeProviders) Get(_ context.Context, _ string) (*providermodel.Provider, error) {
	return nil, nil
}
func (p *fakeProviders) SetOnline(_ context.Context, _ string, _ bool) error  { return nil }
func (p *fakeProviders) UpdateLocation(_ context.Context, _ string, _, _ float64) error {
	return nil
}
func (p *fakeProviders) Candidates(_ context.Context, _ uuid.UUID, limit int) ([]string, error) {
	if len(p.candidates) > limit {
		return p.candidates[:limit], nil
	}
	return p.candidates, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// =====================================================
// HARNESS
// =====================================================

type harness struct {
	svc       BookingService
	repo      *fakeBookingRepo
	outbox    *fakeOutbox
	payments  *fakePayments
	catalog   *fakeCatalog
	providers *fakeProviders
	clock     *fakeClock
	serviceID uuid.UUID
}

func newHarness() *harness {
	serviceID := ident.NewID()
	h := &harness{
		repo:      newFakeBookingRepo(),
		outbox:    &fakeOutbox{},
		payments:  &fakePayments{},
		catalog:   &fakeCatalog{services: map[uuid.UUID]catalogmodel.Service{}},
		providers: &fakeProviders{candidates: []string{"prov-1", "prov-2", "prov-3"}},
		clock:     &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		serviceID: serviceID,
	}
	h.catalog.services[serviceID] = catalogmodel.Service{
		ID:         serviceID,
		Name:       "Geyser repair",
		PriceCents: 45000,
		IsActive:   true,
	}
	h.svc = NewBookingService(&fakeTxManager{}, h.repo, h.outbox, h.payments, h.catalog, h.providers, h.clock)
	return h
}

func (h *harness) seed(status string, mutate ...func(*model.Booking)) uuid.UUID {
	price := int64(45000)
	name := "Geyser repair"
	b := &model.Booking{
		ID:                  ident.NewID(),
		Status:              status,
		CustomerID:          "user-1",
		ServiceID:           h.serviceID,
		SlotID:              "slot-1",
		CandidateList:       []string{"prov-1", "prov-2", "prov-3"},
		OTP:                 "4321",
		ExpiresAt:           h.clock.Now().Add(model.PaymentWindow),
		ServiceNameSnapshot: &name,
		PriceSnapshotCents:  &price,
		CreatedAt:           h.clock.Now(),
		UpdatedAt:           h.clock.Now(),
	}
	for _, fn := range mutate {
		fn(b)
	}
	h.repo.put(b)
	return b.ID
}

func assign(uid string) func(*model.Booking) {
	return func(b *model.Booking) {
		b.ProviderID = &uid
	}
}

// =====================================================
// CREATE / PAY
// =====================================================

func TestCreateBooking(t *testing.T) {
	h := newHarness()

	b, err := h.svc.Create(context.Background(), model.CreateBookingRequest{
		ServiceID: h.serviceID,
		SlotID:    "slot-1",
		UserID:    "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusPendingPayment, b.Status)
	assert.Equal(t, []string{"prov-1", "prov-2", "prov-3"}, b.CandidateList)
	assert.Len(t, b.OTP, 4)
	assert.Equal(t, h.clock.Now().Add(model.PaymentWindow), b.ExpiresAt)
	require.NotNil(t, b.PriceSnapshotCents)
	assert.Equal(t, int64(45000), *b.PriceSnapshotCents)
	require.NotNil(t, b.ServiceNameSnapshot)
	assert.Equal(t, "Geyser repair", *b.ServiceNameSnapshot)

	assert.Equal(t, []string{model.EventCreateBooking}, h.repo.eventTypes())
}

func TestCreateBookingUnknownService(t *testing.T) {
	h := newHarness()

	b, err := h.svc.Create(context.Background(), model.CreateBookingRequest{
		ServiceID: ident.NewID(),
		SlotID:    "slot-1",
		UserID:    "user-1",
	})
	require.NoError(t, err)

	assert.Nil(t, b.PriceSnapshotCents)
	assert.Nil(t, b.ServiceNameSnapshot)
}

func TestPayUsesSnapshotAmount(t *testing.T) {
	h := newHarness()
	id := h.seed(model.StatusPendingPayment)

	resp, err := h.svc.Pay(context.Background(), id, "user-1", "user")
	require.NoError(t, err)

	assert.Equal(t, int64(45000), resp.AmountCents)
	assert.Equal(t, "ZAR", resp.Currency)
	assert.Equal(t, 1, h.payments.created)

	stored := h.repo.get(id)
	require.NotNil(t, stored.StripePaymentIntentID)
	assert.Equal(t, "pi_mock_test", *stored.StripePaymentIntentID)
}

func TestPayRejectsOtherCustomer(t *testing.T) {
	h := newHarness()
	id := h.seed(model.StatusPendingPayment)

	_, err := h.svc.Pay(context.Background(), id, "user-2", "user")
	assertCode(t, err, model.CodeForbidden)
	assert.Zero(t, h.payments.created)
}

// =====================================================
// ACCEPT
// =====================================================

func TestAccept(t *testing.T) {
	h := newHarness()
	id := h.seed(model.StatusPaidSearching)

	b, err := h.svc.Accept(context.Background(), id, "prov-2")
	require.NoError(t, err)

	assert.Equal(t, model.StatusAccepted, b.Status)
	require.NotNil(t, b.ProviderID)
	assert.Equal(t, "prov-2", *b.ProviderID)

	assert.Equal(t, []string{notification.KindBookingAccepted}, h.outbox.kinds())
	assert.Equal(t, "user-1", h.outbox.rows[0].recipient)
}

func TestAcceptNotACandidate(t *testing.T) {
	h := newHarness()
	id := h.seed(model.StatusPaidSearching)

	_, err := h.svc.Accept(context.Background(), id, "prov-99")
	assertCode(t, err, model.CodeNotACandidate)
}

func TestAcceptWrongStatus(t *testing.T) {
	h := newHarness()
	id := h.seed(model.StatusPendingPayment)

	_, err := h.svc.Accept(context.Background(), id, "prov-1")
	assertCode(t, err, model.CodeInvalidTransition)
}

func TestAcceptClaimedByOther(t *testing.T) {
	h := newHarness()
	id := h.seed(model.StatusPaidSearching, assign("prov-1"))

	_, err := h.svc.Accept(context.Background(), id, "prov-2")
	assertCode(t, err, model.CodeOwnedByOtherProvider)
}

func TestConcurrentAcceptExactlyOneWinner(t *testing.T) {
	h := newHarness()

	const contenders = 50
	candidates := make([]string, contenders)
	for i := range candidates {
		candidates[i] = fmt.Sprintf("prov-%d", i)
	}
	id := h.seed(model.StatusPaidSearching, func(b *model.Booking) {
		b.CandidateList = candidates
	})

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.svc.Accept(context.Background(), id, candidates[i])
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one accept must succeed")

	stored := h.repo.get(id)
	assert.Equal(t, model.StatusAccepted, stored.Status)
	require.NotNil(t, stored.ProviderID)
}

// =====================================================
// PROGRESS / OTP
// =====================================================

func TestTravelByUnassignedProvider(t *testing.T) {
	h := newHarness()
	id := h.seed(model.StatusAccepted, assign("prov-1"))

	_, err := h.svc.Travel(context.Background(), id, "prov-2")
	assertCode(t, err, model.CodeOwnedByOtherProvider)
}

func TestStartRequiresMatchingOTP(t *testing.T) {
	h := newHarness()
	id := h.seed(model.StatusArrived, assign("prov-1"))

	_, err := h.svc.Start(context.Background(), id, "prov-1", "0000")
	assertCode(t, err, model.CodeInvalidOTP)
	assert.Equal(t, model.StatusArrived, h.repo.get(id).Status)

	b, err := h.svc.Start(context.Background(), id, "prov-1", "4321")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, b.Status)
}

func TestStartOutOfOrder(t *testing.T) {
	h := newHarness()
	id := h.seed(model.StatusEnRoute, assign("prov-1"))

	_, err := h.svc.Start(context.Background(), id, "prov-1", "4321")
	assertCode(t, err, model.CodeInvalidTransition)
}

// =====================================================
// COMPLETE / CONFIRM
// =====================================================

func TestComplete(t *testing.T) {
	h := newHarness()
	id := h.seed(model.StatusInProgress, assign("prov-1"))

	b, err := h.svc.Complete(context.Background(), id, "prov-1")
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompletePending, b.Status)
	require.NotNil(t, b.CompletePendingUntil)
	assert.Equal(t, h.clock.Now().Add(model.GraceWindow), *b.CompletePendingUntil)
	assert.Equal(t, 1, h.payments.captured)
}

func TestCompleteCaptureFailureStaysInProgress(t *testing.T) {
	h := newHarness()
	h.payments.failCapture = true
	id := h.seed(model.StatusInProgress, assign("prov-1"))

	_, err := h.svc.Complete(context.Background(), id, "prov-1")
	assertCode(t, err, model.CodeCaptureFailed)

	// The failure is durable: event and customer notification committed,
	// status untouched so the provider can retry.
	assert.Equal(t, model.StatusInProgress, h.repo.get(id).Status)
	assert.Contains(t, h.repo.eventTypes(), model.EventCaptureFailed)
	assert.Equal(t, []string{notification.KindCaptureFailed}, h.outbox.kinds())

	// Retry once the gateway recovers.
	h.payments.failCapture = false
	b, err := h.svc.Complete(context.Background(), id, "prov-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompletePending, b.Status)
}

func TestConfirmComplete(t *testing.T) {
	h := newHarness()
	until := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	id := h.seed(model.StatusCompletePending, assign("prov-1"), func(b *model.Booking) {
		b.CompletePendingUntil = &until
	})
	// Main intent already captured at complete time.
	h.payments.noAuthorized = true

	b, err := h.svc.ConfirmComplete(context.Background(), id, "user-1", "user")
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, b.Status)

	// Second confirmation is a no-op, not an error.
	b, err = h.svc.ConfirmComplete(context.Background(), id, "user-1", "user")
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, b.Status)
}

// =====================================================
// CANCEL
// =====================================================

func TestCancelEnRouteChargesFee(t *testing.T) {
	h := newHarness()
	id := h.seed(model.StatusEnRoute, assign("prov-1"))

	b, err := h.svc.Cancel(context.Background(), id, "user-1", "user")
	require.NoError(t, err)

	assert.Equal(t, model.StatusCancelled, b.Status)
	assert.Equal(t, []int64{model.CancellationFeeCents}, h.payments.fees)
	assert.Equal(t, 1, h.payments.released)
}

func TestCancelSearchingIsFeeFree(t *testing.T) {
	h := newHarness()
	id := h.seed(model.StatusPaidSearching)

	b, err := h.svc.Cancel(context.Background(), id, "user-1", "user")
	require.NoError(t, err)

	assert.Equal(t, model.StatusCancelled, b.Status)
	assert.Empty(t, h.payments.fees)
	assert.Equal(t, 1, h.payments.released)
}

func TestCancelByOtherCustomer(t *testing.T) {
	h := newHarness()
	id := h.seed(model.StatusPaidSearching)

	_, err := h.svc.Cancel(context.Background(), id, "user-2", "user")
	assertCode(t, err, model.CodeForbidden)
}

func TestCancelMidJobRejected(t *testing.T) {
	h := newHarness()
	id := h.seed(model.StatusInProgress, assign("prov-1"))

	_, err := h.svc.Cancel(context.Background(), id, "user-1", "user")
	assertCode(t, err, model.CodeInvalidTransition)
}

func TestProviderCancelRedispatches(t *testing.T) {
	h := newHarness()
	id := h.seed(model.StatusEnRoute, assign("prov-1"))

	b, err := h.svc.ProviderCancel(context.Background(), id, "prov-1")
	require.NoError(t, err)

	assert.Equal(t, model.StatusPaidSearching, b.Status)
	assert.Nil(t, b.ProviderID)

	stored := h.repo.get(id)
	assert.Equal(t, []string{"prov-1", "prov-2", "prov-3"}, stored.CandidateList,
		"candidates survive a re-dispatch")
	assert.Equal(t, []string{notification.KindProviderCancelled}, h.outbox.kinds())

	// Another candidate can claim it again.
	b, err = h.svc.Accept(context.Background(), id, "prov-2")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, b.Status)
}

// =====================================================
// ISSUE / REVIEW
// =====================================================

func TestIssueWithinGraceWindow(t *testing.T) {
	h := newHarness()
	until := h.clock.Now().Add(20 * time.Minute)
	id := h.seed(model.StatusCompletePending, assign("prov-1"), func(b *model.Booking) {
		b.CompletePendingUntil = &until
	})

	b, err := h.svc.Issue(context.Background(), id, "user-1", "work not finished")
	require.NoError(t, err)

	assert.Equal(t, model.StatusNeedsReview, b.Status)
	assert.Equal(t, []string{notification.KindIssueRaised}, h.outbox.kinds())
	assert.Equal(t, "admin", h.outbox.rows[0].recipient)
}

func TestIssueAfterGraceWindow(t *testing.T) {
	h := newHarness()
	until := h.clock.Now().Add(20 * time.Minute)
	id := h.seed(model.StatusCompletePending, assign("prov-1"), func(b *model.Booking) {
		b.CompletePendingUntil = &until
	})

	h.clock.Advance(21 * time.Minute)

	_, err := h.svc.Issue(context.Background(), id, "user-1", "work not finished")
	assertCode(t, err, model.CodeGraceExpired)
	assert.Equal(t, model.StatusCompletePending, h.repo.get(id).Status)
}

func TestResolveReview(t *testing.T) {
	h := newHarness()
	h.payments.noAuthorized = true
	id := h.seed(model.StatusNeedsReview, assign("prov-1"))

	b, err := h.svc.ResolveReview(context.Background(), id, "admin-1", model.ResolveReviewRequest{
		Outcome: model.StatusClosed,
		Note:    "work verified on site",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, b.Status)
}

func TestResolveReviewRefund(t *testing.T) {
	h := newHarness()
	id := h.seed(model.StatusNeedsReview, assign("prov-1"))

	b, err := h.svc.ResolveReview(context.Background(), id, "admin-1", model.ResolveReviewRequest{
		Outcome: model.StatusCancelled,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, b.Status)
	assert.Equal(t, 1, h.payments.released)
}

// =====================================================
// VISIBILITY
// =====================================================

func TestGetVisibility(t *testing.T) {
	h := newHarness()
	id := h.seed(model.StatusPaidSearching)

	owner, err := h.svc.Get(context.Background(), id, "user-1", "user")
	require.NoError(t, err)
	assert.Equal(t, "4321", owner.OTP)

	candidate, err := h.svc.Get(context.Background(), id, "prov-1", "provider")
	require.NoError(t, err)
	assert.Empty(t, candidate.OTP)

	_, err = h.svc.Get(context.Background(), id, "user-2", "user")
	assert.ErrorIs(t, err, model.ErrBookingNotFound, "strangers see not-found, not forbidden")
}

// =====================================================
// SWEEP / GRACE CLOSE
// =====================================================

func TestSweepExpired(t *testing.T) {
	h := newHarness()

	stale := h.seed(model.StatusPendingPayment, func(b *model.Booking) {
		b.CreatedAt = h.clock.Now().Add(-25 * time.Hour)
	})
	fresh := h.seed(model.StatusPendingPayment)
	paid := h.seed(model.StatusPaidSearching, func(b *model.Booking) {
		b.CreatedAt = h.clock.Now().Add(-25 * time.Hour)
	})

	swept, err := h.svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	assert.Equal(t, model.StatusExpired, h.repo.get(stale).Status)
	assert.Equal(t, model.StatusPendingPayment, h.repo.get(fresh).Status)
	assert.Equal(t, model.StatusPaidSearching, h.repo.get(paid).Status,
		"sweep only touches unpaid bookings")
}

func TestCloseGraced(t *testing.T) {
	h := newHarness()
	h.payments.noAuthorized = true

	past := h.clock.Now().Add(-time.Minute)
	lapsed := h.seed(model.StatusCompletePending, assign("prov-1"), func(b *model.Booking) {
		b.CompletePendingUntil = &past
	})
	future := h.clock.Now().Add(20 * time.Minute)
	open := h.seed(model.StatusCompletePending, assign("prov-1"), func(b *model.Booking) {
		b.CompletePendingUntil = &future
	})

	closed, err := h.svc.CloseGraced(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), closed)

	assert.Equal(t, model.StatusClosed, h.repo.get(lapsed).Status)
	assert.Equal(t, model.StatusCompletePending, h.repo.get(open).Status)
	assert.Equal(t, []string{notification.KindBookingClosed}, h.outbox.kinds())
}

// =====================================================
// WEBHOOK-DRIVEN RELEASE
// =====================================================

func TestMarkPaidSearching(t *testing.T) {
	h := newHarness()
	id := h.seed(model.StatusPendingPayment)

	err := h.svc.MarkPaidSearchingTx(context.Background(), nil, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaidSearching, h.repo.get(id).Status)

	// A replayed authorization is ignored.
	err = h.svc.MarkPaidSearchingTx(context.Background(), nil, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaidSearching, h.repo.get(id).Status)
}

// =====================================================
// HELPERS
// =====================================================

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var bookingErr *model.BookingError
	require.ErrorAs(t, err, &bookingErr)
	assert.Equal(t, code, bookingErr.Code)
}

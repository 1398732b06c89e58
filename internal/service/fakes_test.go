package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jaspindersingh83/s30mocks-backend/internal/model"
	"github.com/jaspindersingh83/s30mocks-backend/internal/notify"
	"github.com/jaspindersingh83/s30mocks-backend/internal/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is an in-memory database shared by the fake stores.
// A single mutex gives every method the atomicity of one SQL statement.
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	slots      map[int64]*model.Slot
	interviews map[int64]*model.Interview
	payments   map[int64]*model.Payment
	prices     map[model.InterviewType]*model.Price
	users      map[int64]*model.User

	// loseNextReserve makes Reserve report a lost race once
	loseNextReserve bool
	priceReads      int
}

func newMemStore() *memStore {
	return &memStore{
		slots:      make(map[int64]*model.Slot),
		interviews: make(map[int64]*model.Interview),
		payments:   make(map[int64]*model.Payment),
		prices:     make(map[model.InterviewType]*model.Price),
		users:      make(map[int64]*model.User),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func ptr[T any](v T) *T {
	return &v
}

// fakeTx serialises transactions. It never rolls back, so anything a
// failed operation leaves behind is visible to the test.
type fakeTx struct {
	mu sync.Mutex
}

func (t *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

type fakeSlots struct{ *memStore }

func (f fakeSlots) Create(_ context.Context, slot *model.Slot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot.ID = f.id()
	slot.CreatedAt = time.Now()
	c := *slot
	f.slots[slot.ID] = &c
	return nil
}

func (f fakeSlots) GetByID(_ context.Context, id int64) (*model.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[id]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (f fakeSlots) LockInterviewer(context.Context, int64) error { return nil }

func (f fakeSlots) FindOverlapping(_ context.Context, interviewerID int64, start, end time.Time) (*model.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.slots {
		if s.InterviewerID == interviewerID && s.Overlaps(start, end) {
			c := *s
			return &c, nil
		}
	}
	return nil, nil
}

func (f fakeSlots) Reserve(_ context.Context, slotID, interviewID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loseNextReserve {
		f.loseNextReserve = false
		return false, nil
	}
	s, ok := f.slots[slotID]
	if !ok || s.IsBooked {
		return false, nil
	}
	s.IsBooked = true
	s.InterviewID = ptr(interviewID)
	return true, nil
}

func (f fakeSlots) Release(_ context.Context, slotID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.slots[slotID]; ok {
		s.IsBooked = false
		s.InterviewID = nil
	}
	return nil
}

func (f fakeSlots) DeleteUnbooked(_ context.Context, slotID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[slotID]
	if !ok || s.IsBooked {
		return false, nil
	}
	delete(f.slots, slotID)
	return true, nil
}

func (f fakeSlots) ListAvailable(_ context.Context, filter model.SlotFilter, now time.Time) ([]*model.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Slot
	for _, s := range f.slots {
		if s.IsBooked || !s.StartTime.After(now) {
			continue
		}
		if filter.InterviewerID != 0 && s.InterviewerID != filter.InterviewerID {
			continue
		}
		if filter.InterviewType != "" && s.InterviewType != filter.InterviewType {
			continue
		}
		if !filter.From.IsZero() && s.StartTime.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !s.StartTime.Before(filter.To) {
			continue
		}
		c := *s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

type fakeInterviews struct{ *memStore }

func (f fakeInterviews) Create(_ context.Context, iv *model.Interview) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	iv.ID = f.id()
	iv.CreatedAt = time.Now()
	iv.UpdatedAt = iv.CreatedAt
	c := *iv
	f.interviews[iv.ID] = &c
	return nil
}

func (f fakeInterviews) GetByID(_ context.Context, id int64) (*model.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	iv, ok := f.interviews[id]
	if !ok {
		return nil, nil
	}
	c := *iv
	return &c, nil
}

func (f fakeInterviews) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.interviews, id)
	return nil
}

func (f fakeInterviews) SetPayment(_ context.Context, id, paymentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	iv, ok := f.interviews[id]
	if !ok {
		return fmt.Errorf("set interview payment: interview %d not found", id)
	}
	iv.PaymentID = ptr(paymentID)
	return nil
}

// update applies fn when the interview is in one of the from statuses
func (f fakeInterviews) update(id int64, from []model.InterviewStatus, fn func(iv *model.Interview)) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	iv, ok := f.interviews[id]
	if !ok || !containsStatus(from, iv.Status) {
		return false
	}
	fn(iv)
	iv.UpdatedAt = time.Now()
	return true
}

func (f fakeInterviews) TransitionStatus(_ context.Context, id int64, from []model.InterviewStatus, to model.InterviewStatus) (bool, error) {
	return f.update(id, from, func(iv *model.Interview) { iv.Status = to }), nil
}

func (f fakeInterviews) Cancel(_ context.Context, id int64, from []model.InterviewStatus, by int64, at time.Time) (bool, error) {
	return f.update(id, from, func(iv *model.Interview) {
		iv.Status = model.InterviewStatusCancelled
		iv.CancelledBy = ptr(by)
		iv.CancelledAt = ptr(at)
	}), nil
}

func (f fakeInterviews) AssignProblem(_ context.Context, id int64, problem string) (bool, error) {
	return f.update(id, []model.InterviewStatus{model.InterviewStatusScheduled}, func(iv *model.Interview) {
		iv.ProblemStatement = ptr(problem)
		iv.Status = model.InterviewStatusInProgress
	}), nil
}

func (f fakeInterviews) SaveFeedback(_ context.Context, id int64, rating int, comments string) (bool, error) {
	return f.update(id, []model.InterviewStatus{model.InterviewStatusInProgress}, func(iv *model.Interview) {
		iv.FeedbackRating = ptr(rating)
		iv.FeedbackComments = ptr(comments)
		iv.Status = model.InterviewStatusCompleted
	}), nil
}

func (f fakeInterviews) SaveRecording(_ context.Context, id int64, url string) (bool, error) {
	from := []model.InterviewStatus{model.InterviewStatusInProgress, model.InterviewStatusCompleted}
	return f.update(id, from, func(iv *model.Interview) {
		iv.RecordingURL = ptr(url)
		iv.Status = model.InterviewStatusCompleted
	}), nil
}

func (f fakeInterviews) LockCandidate(context.Context, int64) error { return nil }

func (f fakeInterviews) ListWithUnresolvedPayment(_ context.Context, candidateID int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for _, iv := range f.interviews {
		if iv.CandidateID != candidateID || iv.Status == model.InterviewStatusCancelled {
			continue
		}
		var p *model.Payment
		if iv.PaymentID != nil {
			p = f.payments[*iv.PaymentID]
		}
		if p == nil || p.Status == model.PaymentStatusPending || p.Status == model.PaymentStatusSubmitted || p.Status == model.PaymentStatusRejected {
			ids = append(ids, iv.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type fakePayments struct{ *memStore }

// activeFor returns another active payment of the interview; caller holds the lock
func (f fakePayments) activeFor(interviewID, exceptID int64) *model.Payment {
	for _, p := range f.payments {
		if p.ID != exceptID && p.InterviewID != nil && *p.InterviewID == interviewID && p.IsActive() {
			return p
		}
	}
	return nil
}

func (f fakePayments) Create(_ context.Context, p *model.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.InterviewID != nil && f.activeFor(*p.InterviewID, 0) != nil {
		return fmt.Errorf("create payment: %w", repository.ErrDuplicate)
	}
	p.ID = f.id()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	c := *p
	f.payments[p.ID] = &c
	return nil
}

func (f fakePayments) GetByID(_ context.Context, id int64) (*model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (f fakePayments) FindActiveByInterview(_ context.Context, interviewID int64) (*model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p := f.activeFor(interviewID, 0); p != nil {
		c := *p
		return &c, nil
	}
	return nil, nil
}

func (f fakePayments) FindPendingPrebooking(_ context.Context, payerID, slotID int64) (*model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.PaidBy == payerID && p.IsPreBooking && p.SlotID != nil && *p.SlotID == slotID && p.Status == model.PaymentStatusPending {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (f fakePayments) SubmitProof(_ context.Context, id int64, transactionRef, screenshotURL string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok || !p.CanSubmitProof() {
		return false, nil
	}
	if p.InterviewID != nil && f.activeFor(*p.InterviewID, id) != nil {
		return false, fmt.Errorf("submit payment proof: %w", repository.ErrDuplicate)
	}
	p.Status = model.PaymentStatusSubmitted
	p.TransactionRef = ptr(transactionRef)
	p.ScreenshotURL = ptr(screenshotURL)
	p.VerifiedBy = nil
	p.VerifiedAt = nil
	p.RejectionReason = nil
	return true, nil
}

func (f fakePayments) Review(_ context.Context, id int64, status model.PaymentStatus, verifierID int64, reason *string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok || p.Status != model.PaymentStatusSubmitted {
		return false, nil
	}
	p.Status = status
	p.VerifiedBy = ptr(verifierID)
	p.VerifiedAt = ptr(at)
	p.RejectionReason = reason
	return true, nil
}

func (f fakePayments) LinkToInterview(_ context.Context, id, interviewID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return fmt.Errorf("link payment: payment %d not found", id)
	}
	if p.IsActive() && f.activeFor(interviewID, id) != nil {
		return fmt.Errorf("link payment: %w", repository.ErrDuplicate)
	}
	p.InterviewID = ptr(interviewID)
	p.SlotID = nil
	p.IsPreBooking = false
	return nil
}

func (f fakePayments) UnlinkFromInterview(_ context.Context, id, slotID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.payments[id]; ok {
		p.InterviewID = nil
		p.SlotID = ptr(slotID)
		p.IsPreBooking = true
	}
	return nil
}

type fakePrices struct{ *memStore }

func (f fakePrices) Get(_ context.Context, t model.InterviewType) (*model.Price, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.priceReads++
	p, ok := f.prices[t]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (f fakePrices) Upsert(_ context.Context, p *model.Price) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.UpdatedAt = time.Now()
	c := *p
	f.prices[p.InterviewType] = &c
	return nil
}

func (f fakePrices) InsertIfMissing(_ context.Context, p *model.Price) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.prices[p.InterviewType]; ok {
		return false, nil
	}
	c := *p
	f.prices[p.InterviewType] = &c
	return true, nil
}

type fakeUsers struct{ *memStore }

func (f fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return fmt.Errorf("create user: %w", repository.ErrDuplicate)
		}
	}
	u.ID = f.id()
	u.CreatedAt = time.Now()
	c := *u
	f.users[u.ID] = &c
	return nil
}

func (f fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (f fakeUsers) Update(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return fmt.Errorf("update user: user %d not found", u.ID)
	}
	if u.TelegramID != nil {
		for _, other := range f.users {
			if other.ID != u.ID && other.TelegramID != nil && *other.TelegramID == *u.TelegramID {
				return fmt.Errorf("update user: %w", repository.ErrDuplicate)
			}
		}
	}
	c := *u
	f.users[u.ID] = &c
	return nil
}

type fakePriceCache struct {
	mu      sync.Mutex
	prices  map[model.InterviewType]*model.Price
	err     error
	invalid []model.InterviewType
}

func newFakePriceCache() *fakePriceCache {
	return &fakePriceCache{prices: make(map[model.InterviewType]*model.Price)}
}

func (c *fakePriceCache) Get(_ context.Context, t model.InterviewType) (*model.Price, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.prices[t], nil
}

func (c *fakePriceCache) Set(_ context.Context, p *model.Price) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.prices[p.InterviewType] = p
	return nil
}

func (c *fakePriceCache) Invalidate(_ context.Context, t model.InterviewType) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalid = append(c.invalid, t)
	delete(c.prices, t)
	return c.err
}

type fakeReminders struct {
	mu        sync.Mutex
	scheduled map[int64]time.Time
	cancelled []int64
	err       error
}

func newFakeReminders() *fakeReminders {
	return &fakeReminders{scheduled: make(map[int64]time.Time)}
}

func (r *fakeReminders) Schedule(_ context.Context, interviewID int64, fireAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.scheduled[interviewID]; !ok {
		r.scheduled[interviewID] = fireAt
	}
	return nil
}

func (r *fakeReminders) Cancel(_ context.Context, interviewID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.scheduled, interviewID)
	r.cancelled = append(r.cancelled, interviewID)
	return r.err
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *fakeNotifier) Notify(_ context.Context, e notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *fakeNotifier) types() []notify.EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.EventType, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

func (n *fakeNotifier) last() notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events[len(n.events)-1]
}

type fakeBlobs struct {
	uploads []string
	err     error
}

func (b *fakeBlobs) Upload(_ context.Context, data []byte, mimeType, folder string) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	b.uploads = append(b.uploads, folder)
	return fmt.Sprintf("https://res.example.com/%s/%d.png", folder, len(b.uploads)), nil
}

var errStoreDown = errors.New("connection refused")

// fixture wires every service over one memStore with a fixed clock
type fixture struct {
	store     *memStore
	reminders *fakeReminders
	notifier  *fakeNotifier
	blobs     *fakeBlobs
	cache     *fakePriceCache

	prices   *PriceService
	payments *PaymentService
	slots    *SlotService
	users    *UserService
	booking  *BookingService

	now time.Time

	admin        model.Actor
	interviewer  model.Actor
	candidate    model.Actor
	candidate2   model.Actor
	noUPIRecruit model.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zap.NewNop()
	store := newMemStore()
	tx := &fakeTx{}

	f := &fixture{
		store:     store,
		reminders: newFakeReminders(),
		notifier:  &fakeNotifier{},
		blobs:     &fakeBlobs{},
		cache:     newFakePriceCache(),
		now:       time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }

	f.prices = NewPriceService(fakePrices{store}, f.cache, logger)
	f.payments = NewPaymentService(fakePayments{store}, f.blobs, logger)
	f.payments.now = clock
	f.slots = NewSlotService(tx, fakeSlots{store}, fakeUsers{store}, f.prices, logger)
	f.slots.now = clock
	f.users = NewUserService(fakeUsers{store}, logger)
	f.booking = NewBookingService(tx, f.slots, fakeInterviews{store}, fakeUsers{store},
		f.payments, f.prices, f.reminders, f.notifier,
		BookingSettings{MeetingBaseURL: "https://meet.s30mocks.test/"}, logger)
	f.booking.now = clock

	ctx := context.Background()
	require.NoError(t, f.prices.SeedDefaults(ctx))

	f.admin = f.addUser(t, "admin@s30.test", "Admin", model.RoleAdmin)
	f.interviewer = f.addUser(t, "priya@s30.test", "Priya", model.RoleInterviewer)
	f.candidate = f.addUser(t, "arjun@s30.test", "Arjun", model.RoleCandidate)
	f.candidate2 = f.addUser(t, "meera@s30.test", "Meera", model.RoleCandidate)
	f.noUPIRecruit = f.addUser(t, "kiran@s30.test", "Kiran", model.RoleInterviewer)

	_, err := f.users.SetPaymentDetails(ctx, f.interviewer, f.interviewer.UserID, "priya@okaxis", "Priya S")
	require.NoError(t, err)

	return f
}

func (f *fixture) addUser(t *testing.T, email, name string, role model.Role) model.Actor {
	t.Helper()
	u, err := f.users.RegisterUser(context.Background(), email, name, role)
	require.NoError(t, err)
	return model.Actor{UserID: u.ID, Role: role}
}

// tomorrowAt returns hour:00 on the day after the fixture clock
func (f *fixture) tomorrowAt(hour int) time.Time {
	d := f.now.AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
}

func (f *fixture) createDSASlot(t *testing.T, start time.Time) *model.Slot {
	t.Helper()
	slot, err := f.slots.CreateSlot(context.Background(), f.interviewer, f.interviewer.UserID,
		start, start.Add(40*time.Minute), model.InterviewTypeDSA)
	require.NoError(t, err)
	return slot
}

func (f *fixture) slot(t *testing.T, id int64) *model.Slot {
	t.Helper()
	s, err := fakeSlots{f.store}.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

func (f *fixture) payment(t *testing.T, id int64) *model.Payment {
	t.Helper()
	p, err := fakePayments{f.store}.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func (f *fixture) interview(t *testing.T, id int64) *model.Interview {
	t.Helper()
	iv, err := fakeInterviews{f.store}.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, iv)
	return iv
}

func (f *fixture) interviewCount() int {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return len(f.store.interviews)
}

// server/internal/dispatch/service_test.go
package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"disaster-relief-api-server/internal/models"
	"disaster-relief-api-server/internal/routing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store upholding the same atomic guards as the
// MongoDB implementation: unique dispatch per request, unique active dispatch
// per volunteer, compare-and-swap transitions.
type memStore struct {
	mu         sync.Mutex
	requests   map[string]*models.ReliefRequest
	dispatches map[string]*models.Dispatch
	requesters map[string]*models.Requester
	users      map[string]*models.User
	centres    map[string]*models.ReliefCentre
}

func newMemStore() *memStore {
	return &memStore{
		requests:   make(map[string]*models.ReliefRequest),
		dispatches: make(map[string]*models.Dispatch),
		requesters: make(map[string]*models.Requester),
		users:      make(map[string]*models.User),
		centres:    make(map[string]*models.ReliefCentre),
	}
}

func (m *memStore) GetRequest(ctx context.Context, requestID string) (*models.ReliefRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req, ok := m.requests[requestID]; ok {
		cp := *req
		return &cp, nil
	}
	return nil, ErrRequestNotFound
}

func (m *memStore) TransitionRequest(ctx context.Context, requestID string, from, to models.RequestStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return ErrRequestNotFound
	}
	if req.Status != from {
		return ErrConflict
	}
	req.Status = to
	return nil
}

func (m *memStore) CreateDispatch(ctx context.Context, d *models.Dispatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.dispatches {
		if existing.RequestID == d.RequestID {
			return ErrAlreadyDispatched
		}
		if existing.VolunteerID == d.VolunteerID && existing.Status.IsActive() {
			return ErrVolunteerBusy
		}
	}
	cp := *d
	m.dispatches[d.DispatchID] = &cp
	return nil
}

func (m *memStore) GetDispatch(ctx context.Context, dispatchID string) (*models.Dispatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.dispatches[dispatchID]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, ErrDispatchNotFound
}

func (m *memStore) GetDispatchByRequest(ctx context.Context, requestID string) (*models.Dispatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.dispatches {
		if d.RequestID == requestID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, ErrDispatchNotFound
}

func (m *memStore) GetActiveDispatchByVolunteer(ctx context.Context, volunteerID string) (*models.Dispatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.dispatches {
		if d.VolunteerID == volunteerID && d.Status.IsActive() {
			cp := *d
			return &cp, nil
		}
	}
	return nil, ErrDispatchNotFound
}

func (m *memStore) TransitionDispatch(ctx context.Context, dispatchID string, from, to models.DispatchStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dispatches[dispatchID]
	if !ok {
		return ErrDispatchNotFound
	}
	if d.Status != from {
		return ErrConflict
	}
	d.Status = to
	return nil
}

func (m *memStore) SetDispatchLocation(ctx context.Context, dispatchID string, lat, lng float64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dispatches[dispatchID]
	if !ok {
		return ErrDispatchNotFound
	}
	if !d.Status.IsActive() {
		return ErrDispatchTerminal
	}
	d.VolunteerLatitude = &lat
	d.VolunteerLongitude = &lng
	d.LocationUpdatedAt = &at
	return nil
}

func (m *memStore) GetRequesterByDevice(ctx context.Context, deviceID string) (*models.Requester, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.requesters[deviceID]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, ErrInvalidDevice
}

func (m *memStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrUserNotFound
}

func (m *memStore) GetCentre(ctx context.Context, centreID string) (*models.ReliefCentre, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.centres[centreID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, ErrCentreNotFound
}

// stubRouter returns the same route for every call, or an error.
type stubRouter struct {
	route *routing.Route
	err   error
}

func (s *stubRouter) Route(ctx context.Context, origin, dest routing.Point) (*routing.Route, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.route, nil
}

func newTestService(store Store) *Service {
	return NewService(store, &stubRouter{route: &routing.Route{
		Summary: routing.RouteSummary{Distance: 3000, Duration: 480},
	}}, zerolog.Nop())
}

func seedRequest(store *memStore, requestID, deviceID string) {
	store.requests[requestID] = &models.ReliefRequest{
		RequestID:   requestID,
		RequesterID: deviceID,
		CentreID:    "RC-TEST01",
		Status:      models.RequestPending,
		Latitude:    12.82,
		Longitude:   80.04,
	}
}

func TestResolveRequester(t *testing.T) {
	store := newMemStore()
	store.requesters["dev-1"] = &models.Requester{DeviceID: "dev-1", FullName: "Priya", Phone: "9876543210"}
	svc := newTestService(store)

	rctx, err := svc.ResolveRequester(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.Equal(t, "dev-1", rctx.DeviceID)
	assert.Equal(t, "Priya", rctx.FullName)

	_, err = svc.ResolveRequester(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrInvalidDevice)
}

func TestAccept(t *testing.T) {
	store := newMemStore()
	seedRequest(store, "RR-1", "dev-1")
	svc := newTestService(store)
	vctx := VolunteerContext{UserID: "VOL-1", Name: "Arun"}

	d, err := svc.Accept(context.Background(), vctx, "RR-1")
	require.NoError(t, err)
	assert.Equal(t, "RR-1", d.RequestID)
	assert.Equal(t, "VOL-1", d.VolunteerID)
	assert.Equal(t, models.DispatchAssigned, d.Status)
	assert.NotEmpty(t, d.DispatchID)

	req, err := store.GetRequest(context.Background(), "RR-1")
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, req.Status)
}

func TestAcceptUnknownRequest(t *testing.T) {
	svc := newTestService(newMemStore())

	_, err := svc.Accept(context.Background(), VolunteerContext{UserID: "VOL-1"}, "RR-NOPE")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestAcceptNonPendingRequest(t *testing.T) {
	store := newMemStore()
	seedRequest(store, "RR-1", "dev-1")
	store.requests["RR-1"].Status = models.RequestCompleted
	svc := newTestService(store)

	_, err := svc.Accept(context.Background(), VolunteerContext{UserID: "VOL-1"}, "RR-1")
	assert.ErrorIs(t, err, ErrRequestNotPending)
}

func TestAcceptWhileBusy(t *testing.T) {
	store := newMemStore()
	seedRequest(store, "RR-1", "dev-1")
	seedRequest(store, "RR-2", "dev-2")
	svc := newTestService(store)
	vctx := VolunteerContext{UserID: "VOL-1"}

	_, err := svc.Accept(context.Background(), vctx, "RR-1")
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), vctx, "RR-2")
	assert.ErrorIs(t, err, ErrVolunteerBusy)
}

func TestAcceptAfterCompletionFreesVolunteer(t *testing.T) {
	store := newMemStore()
	seedRequest(store, "RR-1", "dev-1")
	seedRequest(store, "RR-2", "dev-2")
	svc := newTestService(store)
	vctx := VolunteerContext{UserID: "VOL-1"}

	_, err := svc.Accept(context.Background(), vctx, "RR-1")
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(context.Background(), vctx, "RR-1", "IN_PROGRESS"))
	require.NoError(t, svc.UpdateStatus(context.Background(), vctx, "RR-1", "COMPLETED"))

	d, err := svc.Accept(context.Background(), vctx, "RR-2")
	require.NoError(t, err)
	assert.Equal(t, "RR-2", d.RequestID)
}

func TestAcceptConcurrentSingleWinner(t *testing.T) {
	store := newMemStore()
	seedRequest(store, "RR-1", "dev-1")
	svc := newTestService(store)

	const racers = 16
	var wg sync.WaitGroup
	errs := make([]error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			vctx := VolunteerContext{UserID: "VOL-" + string(rune('A'+i))}
			_, errs[i] = svc.Accept(context.Background(), vctx, "RR-1")
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		// Losers fail on the uniqueness guard or on the already-flipped status,
		// depending on interleaving.
		if err != ErrAlreadyDispatched && err != ErrRequestNotPending {
			t.Fatalf("unexpected loser error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)

	req, err := store.GetRequest(context.Background(), "RR-1")
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, req.Status)
	assert.Len(t, store.dispatches, 1)
}

func TestUpdateStatusLifecycle(t *testing.T) {
	store := newMemStore()
	seedRequest(store, "RR-1", "dev-1")
	svc := newTestService(store)
	vctx := VolunteerContext{UserID: "VOL-1"}

	d, err := svc.Accept(context.Background(), vctx, "RR-1")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(context.Background(), vctx, "RR-1", "IN_PROGRESS"))
	got, err := store.GetDispatch(context.Background(), d.DispatchID)
	require.NoError(t, err)
	assert.Equal(t, models.DispatchInProgress, got.Status)
	req, _ := store.GetRequest(context.Background(), "RR-1")
	assert.Equal(t, models.RequestInProgress, req.Status)

	require.NoError(t, svc.UpdateStatus(context.Background(), vctx, "RR-1", "COMPLETED"))
	got, err = store.GetDispatch(context.Background(), d.DispatchID)
	require.NoError(t, err)
	assert.Equal(t, models.DispatchCompleted, got.Status)
	req, _ = store.GetRequest(context.Background(), "RR-1")
	assert.Equal(t, models.RequestCompleted, req.Status)
}

func TestUpdateStatusCannotSkipInProgress(t *testing.T) {
	store := newMemStore()
	seedRequest(store, "RR-1", "dev-1")
	svc := newTestService(store)
	vctx := VolunteerContext{UserID: "VOL-1"}

	_, err := svc.Accept(context.Background(), vctx, "RR-1")
	require.NoError(t, err)

	err = svc.UpdateStatus(context.Background(), vctx, "RR-1", "COMPLETED")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatusRejectsUnknownTarget(t *testing.T) {
	store := newMemStore()
	seedRequest(store, "RR-1", "dev-1")
	svc := newTestService(store)
	vctx := VolunteerContext{UserID: "VOL-1"}

	_, err := svc.Accept(context.Background(), vctx, "RR-1")
	require.NoError(t, err)

	err = svc.UpdateStatus(context.Background(), vctx, "RR-1", "DELIVERED")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	// Backward transitions are not a thing either.
	err = svc.UpdateStatus(context.Background(), vctx, "RR-1", "ASSIGNED")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatusNonOwnerSeesNotFound(t *testing.T) {
	store := newMemStore()
	seedRequest(store, "RR-1", "dev-1")
	svc := newTestService(store)

	_, err := svc.Accept(context.Background(), VolunteerContext{UserID: "VOL-1"}, "RR-1")
	require.NoError(t, err)

	err = svc.UpdateStatus(context.Background(), VolunteerContext{UserID: "VOL-2"}, "RR-1", "IN_PROGRESS")
	assert.ErrorIs(t, err, ErrDispatchNotFound)
}

func TestUpdateStatusAfterTerminal(t *testing.T) {
	store := newMemStore()
	seedRequest(store, "RR-1", "dev-1")
	svc := newTestService(store)
	vctx := VolunteerContext{UserID: "VOL-1"}

	_, err := svc.Accept(context.Background(), vctx, "RR-1")
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(context.Background(), vctx, "RR-1", "IN_PROGRESS"))
	require.NoError(t, svc.UpdateStatus(context.Background(), vctx, "RR-1", "COMPLETED"))

	err = svc.UpdateStatus(context.Background(), vctx, "RR-1", "IN_PROGRESS")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateLocation(t *testing.T) {
	store := newMemStore()
	seedRequest(store, "RR-1", "dev-1")
	svc := newTestService(store)
	vctx := VolunteerContext{UserID: "VOL-1"}

	d, err := svc.Accept(context.Background(), vctx, "RR-1")
	require.NoError(t, err)

	updated, err := svc.UpdateLocation(context.Background(), vctx, d.DispatchID, 12.81, 80.02)
	require.NoError(t, err)
	require.NotNil(t, updated.VolunteerLatitude)
	assert.Equal(t, 12.81, *updated.VolunteerLatitude)
	assert.Equal(t, 80.02, *updated.VolunteerLongitude)
	assert.NotNil(t, updated.LocationUpdatedAt)

	// Last write wins.
	updated, err = svc.UpdateLocation(context.Background(), vctx, d.DispatchID, 12.79, 80.01)
	require.NoError(t, err)
	assert.Equal(t, 12.79, *updated.VolunteerLatitude)

	got, err := store.GetDispatch(context.Background(), d.DispatchID)
	require.NoError(t, err)
	assert.Equal(t, 12.79, *got.VolunteerLatitude)
	assert.Equal(t, 80.01, *got.VolunteerLongitude)
}

func TestUpdateLocationGuards(t *testing.T) {
	store := newMemStore()
	seedRequest(store, "RR-1", "dev-1")
	svc := newTestService(store)
	vctx := VolunteerContext{UserID: "VOL-1"}

	d, err := svc.Accept(context.Background(), vctx, "RR-1")
	require.NoError(t, err)

	_, err = svc.UpdateLocation(context.Background(), vctx, "DP-NOPE", 12.8, 80.0)
	assert.ErrorIs(t, err, ErrDispatchNotFound)

	_, err = svc.UpdateLocation(context.Background(), VolunteerContext{UserID: "VOL-2"}, d.DispatchID, 12.8, 80.0)
	assert.ErrorIs(t, err, ErrNotOwner)

	require.NoError(t, svc.UpdateStatus(context.Background(), vctx, "RR-1", "IN_PROGRESS"))
	require.NoError(t, svc.UpdateStatus(context.Background(), vctx, "RR-1", "COMPLETED"))

	_, err = svc.UpdateLocation(context.Background(), vctx, d.DispatchID, 12.8, 80.0)
	assert.ErrorIs(t, err, ErrDispatchTerminal)

	// The rejected write must not have touched the stored location.
	got, err := store.GetDispatch(context.Background(), d.DispatchID)
	require.NoError(t, err)
	assert.Nil(t, got.VolunteerLatitude)
}

// completingStore completes the dispatch right after handing out an active
// snapshot, simulating a completion that lands between the service's read and
// its location write.
type completingStore struct {
	*memStore
}

func (c *completingStore) GetDispatch(ctx context.Context, dispatchID string) (*models.Dispatch, error) {
	d, err := c.memStore.GetDispatch(ctx, dispatchID)
	if err != nil {
		return nil, err
	}
	c.memStore.TransitionDispatch(ctx, dispatchID, models.DispatchAssigned, models.DispatchCompleted)
	return d, nil
}

func TestUpdateLocationRacingCompletion(t *testing.T) {
	store := newMemStore()
	seedRequest(store, "RR-1", "dev-1")
	svc := newTestService(&completingStore{memStore: store})
	vctx := VolunteerContext{UserID: "VOL-1"}

	d, err := svc.Accept(context.Background(), vctx, "RR-1")
	require.NoError(t, err)

	_, err = svc.UpdateLocation(context.Background(), vctx, d.DispatchID, 12.8, 80.0)
	assert.ErrorIs(t, err, ErrDispatchTerminal)

	got, err := store.GetDispatch(context.Background(), d.DispatchID)
	require.NoError(t, err)
	assert.Equal(t, models.DispatchCompleted, got.Status)
	assert.Nil(t, got.VolunteerLatitude, "terminal dispatch must keep its stored coordinates unchanged")
}

func TestMyActiveDispatch(t *testing.T) {
	store := newMemStore()
	seedRequest(store, "RR-1", "dev-1")
	svc := newTestService(store)
	vctx := VolunteerContext{UserID: "VOL-1"}

	d, err := svc.MyActiveDispatch(context.Background(), vctx)
	require.NoError(t, err)
	assert.Nil(t, d)

	accepted, err := svc.Accept(context.Background(), vctx, "RR-1")
	require.NoError(t, err)

	d, err = svc.MyActiveDispatch(context.Background(), vctx)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, accepted.DispatchID, d.DispatchID)

	require.NoError(t, svc.UpdateStatus(context.Background(), vctx, "RR-1", "IN_PROGRESS"))
	require.NoError(t, svc.UpdateStatus(context.Background(), vctx, "RR-1", "COMPLETED"))

	d, err = svc.MyActiveDispatch(context.Background(), vctx)
	require.NoError(t, err)
	assert.Nil(t, d)
}

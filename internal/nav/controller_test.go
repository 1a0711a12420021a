package nav

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

type recordingListener struct {
	mu         sync.Mutex
	modes      []Mode
	notices    []string
	modeCh     chan Mode
	suggestCh  chan []Suggestion
	routeCh    chan *RouteSummary
	progressCh chan Progress
	noticeCh   chan string
}

func newRecordingListener() *recordingListener {
	return &recordingListener{
		modeCh:     make(chan Mode, 16),
		suggestCh:  make(chan []Suggestion, 16),
		routeCh:    make(chan *RouteSummary, 16),
		progressCh: make(chan Progress, 16),
		noticeCh:   make(chan string, 16),
	}
}

func (l *recordingListener) ModeChanged(mode Mode) {
	l.mu.Lock()
	l.modes = append(l.modes, mode)
	l.mu.Unlock()
	l.modeCh <- mode
}

func (l *recordingListener) SuggestionsChanged(suggestions []Suggestion) {
	l.suggestCh <- suggestions
}

func (l *recordingListener) RouteChanged(route *RouteSummary) {
	l.routeCh <- route
}

func (l *recordingListener) ProgressChanged(progress Progress) {
	l.progressCh <- progress
}

func (l *recordingListener) Notice(text string) {
	l.mu.Lock()
	l.notices = append(l.notices, text)
	l.mu.Unlock()
	l.noticeCh <- text
}

type fakePlaces struct {
	mu          sync.Mutex
	queries     []string
	suggestions []Suggestion
	points      map[string]GeoPoint
}

func (p *fakePlaces) Suggest(_ context.Context, text string, _ string) ([]Suggestion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queries = append(p.queries, text)
	return p.suggestions, nil
}

func (p *fakePlaces) Resolve(_ context.Context, id string) (GeoPoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	point, ok := p.points[id]
	if !ok {
		return GeoPoint{}, &NotFoundError{What: "place " + id}
	}
	return point, nil
}

func (p *fakePlaces) queryCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queries)
}

// stubDirections answers every request immediately with a fixed result.
type stubDirections struct {
	route RouteSummary
	err   error
}

func (d *stubDirections) Route(_ context.Context, _, _ GeoPoint, _ TransportMode) (RouteSummary, error) {
	return d.route, d.err
}

type directionsResult struct {
	route RouteSummary
	err   error
}

type directionsCall struct {
	mode    TransportMode
	release chan directionsResult
}

// gatedDirections parks each request until the test releases it, so
// completion order can be forced.
type gatedDirections struct {
	calls chan *directionsCall
}

func newGatedDirections() *gatedDirections {
	return &gatedDirections{calls: make(chan *directionsCall, 16)}
}

func (d *gatedDirections) Route(_ context.Context, _, _ GeoPoint, mode TransportMode) (RouteSummary, error) {
	call := &directionsCall{mode: mode, release: make(chan directionsResult, 1)}
	d.calls <- call
	result := <-call.release
	return result.route, result.err
}

type resolveCall struct {
	id      string
	release chan GeoPoint
}

// gatedPlaces parks each resolve until the test releases it.
type gatedPlaces struct {
	calls chan *resolveCall
}

func newGatedPlaces() *gatedPlaces {
	return &gatedPlaces{calls: make(chan *resolveCall, 16)}
}

func (p *gatedPlaces) Suggest(_ context.Context, _ string, _ string) ([]Suggestion, error) {
	return nil, nil
}

func (p *gatedPlaces) Resolve(_ context.Context, id string) (GeoPoint, error) {
	call := &resolveCall{id: id, release: make(chan GeoPoint, 1)}
	p.calls <- call
	return <-call.release, nil
}

func waitResolve(t *testing.T, places *gatedPlaces) *resolveCall {
	t.Helper()
	select {
	case call := <-places.calls:
		return call
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a resolve request")
		return nil
	}
}

type fakeSub struct {
	ch   chan Position
	once sync.Once
}

func (s *fakeSub) Updates() <-chan Position { return s.ch }

func (s *fakeSub) Close() error {
	s.once.Do(func() { close(s.ch) })
	return nil
}

func (s *fakeSub) closed() bool {
	select {
	case _, ok := <-s.ch:
		return !ok
	default:
		return false
	}
}

type fakeSource struct {
	mu   sync.Mutex
	subs []*fakeSub
	err  error
}

func (f *fakeSource) Subscribe(_ context.Context) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	sub := &fakeSub{ch: make(chan Position, 16)}
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (f *fakeSource) subscriptions() []*fakeSub {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakeSub(nil), f.subs...)
}

type fakeStore struct {
	mu        sync.Mutex
	home      *Destination
	favorites []string
	trips     []string
}

func (s *fakeStore) CurrentUserID() string { return "user-1" }

func (s *fakeStore) HomeLocation() (Destination, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.home == nil {
		return Destination{}, false
	}
	return *s.home, true
}

func (s *fakeStore) SaveFavorite(_ context.Context, name string, _ GeoPoint, _ Destination) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorites = append(s.favorites, name)
	return nil
}

func (s *fakeStore) ScheduleTrip(_ context.Context, name string, _ time.Time, _ GeoPoint, _ Destination, _ TransportMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips = append(s.trips, name)
	return nil
}

type fixture struct {
	controller *Controller
	listener   *recordingListener
	places     *fakePlaces
	source     *fakeSource
	store      *fakeStore
}

func newFixture(t *testing.T, directions Directions) *fixture {
	t.Helper()
	listener := newRecordingListener()
	places := &fakePlaces{points: map[string]GeoPoint{}}
	source := &fakeSource{}
	store := &fakeStore{}
	controller := New(Deps{
		Places:     places,
		Directions: directions,
		Positions:  source,
		Store:      store,
		Listener:   listener,
	}, Config{DebounceDelay: 30 * time.Millisecond})
	t.Cleanup(controller.Close)
	controller.SetOrigin(GeoPoint{Lat: 0, Lng: 0})
	return &fixture{controller: controller, listener: listener, places: places, source: source, store: store}
}

func waitRoute(t *testing.T, listener *recordingListener) *RouteSummary {
	t.Helper()
	select {
	case route := <-listener.routeCh:
		return route
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a route update")
		return nil
	}
}

func waitMode(t *testing.T, listener *recordingListener) Mode {
	t.Helper()
	select {
	case mode := <-listener.modeCh:
		return mode
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a mode change")
		return ""
	}
}

func waitNotice(t *testing.T, listener *recordingListener) string {
	t.Helper()
	select {
	case text := <-listener.noticeCh:
		return text
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a notice")
		return ""
	}
}

func previewRoute() RouteSummary {
	return RouteSummary{
		Path:         []GeoPoint{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}},
		DistanceText: "111 km",
		DurationText: "2 hours 47 mins",
	}
}

// enterPreview drives the controller into preview with a computed route.
func enterPreview(t *testing.T, f *fixture) {
	t.Helper()
	require.NoError(t, f.controller.SelectDestination(GeoPoint{Lat: 0, Lng: 1}, "Obelisco"))
	require.Nil(t, waitRoute(t, f.listener), "route clears on destination change")
	require.NotNil(t, waitRoute(t, f.listener), "route computes")
	require.Equal(t, ModePreview, f.controller.Mode())
}

func TestDebounceIssuesSingleRequest(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &stubDirections{route: previewRoute()})
	f.places.suggestions = []Suggestion{{ID: "a", Description: "Pizzeria Guerrin"}}

	for _, text := range []string{"pi", "piz", "pizz", "pizza"} {
		f.controller.SetQuery(text)
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case suggestions := <-f.listener.suggestCh:
		require.Len(t, suggestions, 1)
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for suggestions")
	}
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, f.places.queryCount(), "only the final keystroke should reach the search backend")
	f.places.mu.Lock()
	assert.Equal(t, []string{"pizza"}, f.places.queries)
	f.places.mu.Unlock()
}

func TestShortQueryClearsSuggestions(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &stubDirections{route: previewRoute()})

	f.controller.SetQuery("p")

	select {
	case suggestions := <-f.listener.suggestCh:
		assert.Nil(t, suggestions)
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for suggestion clear")
	}
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, f.places.queryCount(), "short queries never reach the search backend")
}

func TestSelectDestinationEntersPreview(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &stubDirections{route: previewRoute()})

	enterPreview(t, f)

	destination := f.controller.Destination()
	require.NotNil(t, destination)
	assert.Equal(t, "Obelisco", destination.Description)
	assert.Equal(t, "111 km", f.controller.Route().DistanceText)
}

func TestStaleDirectionsResponseDropped(t *testing.T) {
	t.Parallel()
	directions := newGatedDirections()
	f := newFixture(t, directions)

	require.NoError(t, f.controller.SelectDestination(GeoPoint{Lat: 0, Lng: 1}, "Obelisco"))
	require.Nil(t, waitRoute(t, f.listener))
	first := <-directions.calls

	require.NoError(t, f.controller.ChangeTransportMode(TransportWalking))
	second := <-directions.calls
	require.Equal(t, TransportWalking, second.mode)

	// The newer request completes first, then the superseded one.
	second.release <- directionsResult{route: RouteSummary{Path: []GeoPoint{{}, {}}, DurationText: "walking"}}
	walking := waitRoute(t, f.listener)
	require.NotNil(t, walking)
	assert.Equal(t, "walking", walking.DurationText)

	first.release <- directionsResult{route: RouteSummary{Path: []GeoPoint{{}, {}}, DurationText: "driving"}}
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, "walking", f.controller.Route().DurationText, "a superseded response must not overwrite a newer one")
	assert.Empty(t, f.listener.routeCh)
}

func TestCancelPreviewDropsLateResponse(t *testing.T) {
	t.Parallel()
	directions := newGatedDirections()
	f := newFixture(t, directions)

	require.NoError(t, f.controller.SelectDestination(GeoPoint{Lat: 0, Lng: 1}, "Obelisco"))
	require.Nil(t, waitRoute(t, f.listener))
	call := <-directions.calls

	require.NoError(t, f.controller.CancelPreview())
	call.release <- directionsResult{route: previewRoute()}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, ModeIdle, f.controller.Mode())
	assert.Nil(t, f.controller.Route(), "a response arriving after cancel must not resurrect the preview")
	assert.Nil(t, f.controller.Destination())
}

func TestStartNavigationPreconditions(t *testing.T) {
	t.Parallel()
	directions := newGatedDirections()
	f := newFixture(t, directions)

	assert.Error(t, f.controller.StartNavigation(), "idle cannot start navigating")

	require.NoError(t, f.controller.SelectDestination(GeoPoint{Lat: 0, Lng: 1}, "Obelisco"))
	require.Nil(t, waitRoute(t, f.listener))
	assert.Error(t, f.controller.StartNavigation(), "preview without a computed route cannot start navigating")
	assert.Empty(t, f.source.subscriptions(), "no subscription may be acquired on a rejected start")
}

func TestNavigationHoldsSingleSubscription(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &stubDirections{route: previewRoute()})

	enterPreview(t, f)
	require.NoError(t, f.controller.StartNavigation())
	require.Equal(t, ModeNavigating, f.controller.Mode())
	require.Len(t, f.source.subscriptions(), 1)

	require.NoError(t, f.controller.StopNavigation())
	assert.Equal(t, ModeIdle, f.controller.Mode())
	assert.True(t, f.source.subscriptions()[0].closed(), "stop must release the feed")

	enterPreview(t, f)
	require.NoError(t, f.controller.StartNavigation())
	subs := f.source.subscriptions()
	require.Len(t, subs, 2)
	assert.True(t, subs[0].closed())
	assert.False(t, subs[1].closed())
}

func TestCloseReleasesSubscription(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &stubDirections{route: previewRoute()})

	enterPreview(t, f)
	require.NoError(t, f.controller.StartNavigation())
	f.controller.Close()

	require.Len(t, f.source.subscriptions(), 1)
	assert.True(t, f.source.subscriptions()[0].closed())
}

func TestPermissionDeniedStaysInPreview(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &stubDirections{route: previewRoute()})
	f.source.err = &PermissionError{What: "location"}

	enterPreview(t, f)
	err := f.controller.StartNavigation()
	require.Error(t, err)
	assert.Equal(t, ModePreview, f.controller.Mode(), "denied location access keeps the preview intact")
	assert.NotEmpty(t, waitNotice(t, f.listener))
	assert.NotNil(t, f.controller.Route())
}

func TestPositionUpdateRecomputesProgress(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &stubDirections{route: previewRoute()})

	enterPreview(t, f)
	require.NoError(t, f.controller.StartNavigation())
	sub := f.source.subscriptions()[0]
	sub.ch <- Position{GeoPoint: GeoPoint{Lat: 0, Lng: 0}, At: time.Now()}

	select {
	case progress := <-f.listener.progressCh:
		assert.InDelta(t, 111.19, progress.RemainingKm, 0.1)
		assert.Equal(t, 167, progress.RemainingMinutes)
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for progress")
	}
}

func TestEstimateMinutes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		km   float64
		mode TransportMode
		want int
	}{
		{"degree of longitude driving", 111.1949, TransportDriving, 167},
		{"short hop walking", 1.0, TransportWalking, 12},
		{"transit crosstown", 10.0, TransportTransit, 24},
		{"arrived", 0, TransportDriving, 0},
		{"unknown mode falls back to driving", 40, TransportMode("hoverboard"), 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, EstimateMinutes(tt.km, tt.mode))
		})
	}
}

func TestChangeTransportModeOutsidePreview(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &stubDirections{route: previewRoute()})

	assert.Error(t, f.controller.ChangeTransportMode(TransportWalking))
	assert.Error(t, f.controller.ChangeTransportMode(TransportMode("submarine")))
}

func TestGoHomeWithoutHomeLocation(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &stubDirections{route: previewRoute()})

	err := f.controller.GoHome()
	require.Error(t, err)
	assert.Equal(t, ModeIdle, f.controller.Mode())
	assert.NotEmpty(t, waitNotice(t, f.listener))
}

func TestGoHomeSelectsHome(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &stubDirections{route: previewRoute()})
	f.store.home = &Destination{GeoPoint: GeoPoint{Lat: -34.6, Lng: -58.4}, Description: "Home"}

	require.NoError(t, f.controller.GoHome())
	assert.Equal(t, ModePreview, f.controller.Mode())
	assert.Equal(t, "Home", f.controller.Destination().Description)
}

type failingGeocoder struct{}

func (failingGeocoder) ReverseGeocode(_ context.Context, _ GeoPoint) (string, error) {
	return "", &TransportError{Op: "reverse geocode", Err: context.DeadlineExceeded}
}

func TestLongPressFallsBackToGenericLabel(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &stubDirections{route: previewRoute()})
	f.controller.deps.Geocoder = failingGeocoder{}

	f.controller.LongPress(GeoPoint{Lat: -34.6, Lng: -58.4})

	assert.Equal(t, ModePreview, waitMode(t, f.listener))
	assert.Equal(t, FallbackLabel, f.controller.Destination().Description)
}

func TestStaleResolveDropped(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &stubDirections{route: previewRoute()})
	places := newGatedPlaces()
	f.controller.deps.Places = places

	returned := make(chan struct{})
	go func() {
		f.controller.SelectSuggestion("pid-slow", "Slow corner")
		close(returned)
	}()
	first := waitResolve(t, places)
	select {
	case <-returned:
	case <-time.After(waitTimeout):
		t.Fatal("selecting a suggestion must not block on the resolve")
	}

	f.controller.SelectSuggestion("pid-fast", "Fast corner")
	second := waitResolve(t, places)
	require.Equal(t, "pid-fast", second.id)

	// The newer resolve completes first, then the superseded one.
	second.release <- GeoPoint{Lat: 1, Lng: 1}
	require.Nil(t, waitRoute(t, f.listener))
	require.NotNil(t, waitRoute(t, f.listener))
	require.Equal(t, "Fast corner", f.controller.Destination().Description)

	first.release <- GeoPoint{Lat: 9, Lng: 9}
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, "Fast corner", f.controller.Destination().Description,
		"a superseded resolve must not change the destination")
}

func TestDirectionsFailureKeepsPreview(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &stubDirections{err: &NotFoundError{What: "route"}})

	require.NoError(t, f.controller.SelectDestination(GeoPoint{Lat: 0, Lng: 1}, "Obelisco"))
	require.Nil(t, waitRoute(t, f.listener), "route clears on destination change")
	require.Nil(t, waitRoute(t, f.listener), "a failed fetch leaves no route")
	assert.NotEmpty(t, waitNotice(t, f.listener))

	assert.Equal(t, ModePreview, f.controller.Mode(), "a failed fetch never leaves preview")
	assert.Nil(t, f.controller.Route())
	assert.NotNil(t, f.controller.Destination())
}

func TestDueNorthHeadingPreserved(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &stubDirections{route: previewRoute()})

	enterPreview(t, f)
	require.NoError(t, f.controller.StartNavigation())
	sub := f.source.subscriptions()[0]

	// The destination lies due east, but the fix says due north.
	north := 0.0
	sub.ch <- Position{GeoPoint: GeoPoint{Lat: 0, Lng: 0}, Heading: &north, At: time.Now()}

	select {
	case progress := <-f.listener.progressCh:
		assert.Zero(t, progress.Bearing, "a zero heading is a real heading, not an absent one")
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for progress")
	}
}

func TestSaveFavoriteRequiresDestination(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &stubDirections{route: previewRoute()})

	assert.Error(t, f.controller.SaveFavorite(context.Background(), "Work run"))

	enterPreview(t, f)
	assert.Error(t, f.controller.SaveFavorite(context.Background(), ""))
	require.NoError(t, f.controller.SaveFavorite(context.Background(), "Work run"))
	assert.Equal(t, []string{"Work run"}, f.store.favorites)
}

func TestScheduleTrip(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &stubDirections{route: previewRoute()})

	enterPreview(t, f)
	departAt := time.Now().Add(2 * time.Hour)
	require.NoError(t, f.controller.ScheduleTrip(context.Background(), "Morning commute", departAt))
	assert.Equal(t, []string{"Morning commute"}, f.store.trips)
}

package push

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-hub-backend/internal/badge"
)

type fakeDisplay struct {
	mu        sync.Mutex
	alerts    []Alert
	dismissed int
	fail      bool
}

func (d *fakeDisplay) Show(_ context.Context, alert Alert) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return nil, errors.New("display unavailable")
	}
	d.alerts = append(d.alerts, alert)
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.dismissed++
	}, nil
}

type recordingSetter struct {
	mu     sync.Mutex
	values []int
}

func (s *recordingSetter) Supported() bool { return true }
func (s *recordingSetter) Set(_ context.Context, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = append(s.values, n)
	return nil
}
func (s *recordingSetter) Clear(ctx context.Context) error { return s.Set(ctx, 0) }

func startedEngine(t *testing.T, setter badge.Setter) *badge.Engine {
	e := badge.New(setter, func(context.Context) (int, error) { return 0, nil })
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	e.Start(ctx)
	return e
}

func TestPresent_ShowsAlertAndAdvancesBadge(t *testing.T) {
	display := &fakeDisplay{}
	setter := &recordingSetter{}
	engine := startedEngine(t, setter)
	p := NewPresenter(display, engine, func(string) {})

	err := p.Present(context.Background(), Payload{Title: "Notice", Body: "Water outage", URL: "/notifications"})
	require.NoError(t, err)

	require.Len(t, display.alerts, 1)
	assert.Equal(t, "Notice", display.alerts[0].Title)
	assert.Eventually(t, func() bool { return engine.Current() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestPresent_SameBadgeStateAsNativeDisplay(t *testing.T) {
	// Native path: a successful system notification increments the badge.
	nativeEngine := startedEngine(t, &recordingSetter{})
	nativeEngine.Increment()

	// Fallback path: the presenter handles the identical payload.
	fallbackEngine := startedEngine(t, &recordingSetter{})
	p := NewPresenter(&fakeDisplay{}, fallbackEngine, func(string) {})
	require.NoError(t, p.Present(context.Background(), Payload{Title: "Notice", URL: "/notifications"}))

	assert.Eventually(t, func() bool {
		return nativeEngine.Current() == fallbackEngine.Current() && fallbackEngine.Current() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestPresent_TapNavigatesToLinkOverURL(t *testing.T) {
	display := &fakeDisplay{}
	engine := startedEngine(t, &recordingSetter{})

	var navigated string
	p := NewPresenter(display, engine, func(url string) { navigated = url })

	payload := Payload{
		Title: "Package",
		URL:   "/notifications",
		Link:  "https://tracker.example.com/p/1",
	}
	require.NoError(t, p.Present(context.Background(), payload))

	require.Len(t, display.alerts, 1)
	require.NotNil(t, display.alerts[0].OnTap)
	display.alerts[0].OnTap()
	assert.Equal(t, "https://tracker.example.com/p/1", navigated)
}

func TestPresent_AlertAutoExpires(t *testing.T) {
	display := &fakeDisplay{}
	engine := startedEngine(t, &recordingSetter{})
	p := NewPresenter(display, engine, func(string) {})
	p.ttl = 20 * time.Millisecond

	require.NoError(t, p.Present(context.Background(), Payload{Title: "Notice"}))

	assert.Eventually(t, func() bool {
		display.mu.Lock()
		defer display.mu.Unlock()
		return display.dismissed == 1
	}, time.Second, 10*time.Millisecond)
}

func TestPresent_DisplayFailureSurfaced(t *testing.T) {
	display := &fakeDisplay{fail: true}
	engine := startedEngine(t, &recordingSetter{})
	p := NewPresenter(display, engine, func(string) {})

	err := p.Present(context.Background(), Payload{Title: "Notice"})
	assert.Error(t, err)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, engine.Current(), "a failed display must not advance the badge")
}

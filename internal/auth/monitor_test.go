package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trilhalab/portalctl/internal/session"
)

func testMonitorOptions() MonitorOptions {
	return MonitorOptions{
		SettleDelay:   time.Millisecond,
		SweepInterval: 50 * time.Millisecond,
		SweepJitter:   0,
	}
}

func savedSession(t *testing.T, store *session.Store, exp time.Time) {
	t.Helper()
	require.NoError(t, store.Save(&session.Session{
		ID: "1", Name: "A", Email: "a@b.com", Role: session.RoleManager,
		Token: makeToken(t, exp),
	}))
}

func TestMonitorInitialStateIsLoading(t *testing.T) {
	svc, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	monitor := NewMonitor(svc, store, testMonitorOptions(), nil)

	assert.Equal(t, StateLoading, monitor.Current().State)
}

func TestMonitorLoadsExistingSession(t *testing.T) {
	svc, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	savedSession(t, store, time.Now().Add(time.Hour))

	monitor := NewMonitor(svc, store, testMonitorOptions(), nil)
	require.NoError(t, monitor.Start(context.Background()))
	defer monitor.Stop()

	require.Eventually(t, func() bool {
		return monitor.Current().State == StateAuthenticated
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "a@b.com", monitor.Current().Session.Email)
}

func TestMonitorLoadsAnonymous(t *testing.T) {
	svc, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	monitor := NewMonitor(svc, store, testMonitorOptions(), nil)
	require.NoError(t, monitor.Start(context.Background()))
	defer monitor.Stop()

	require.Eventually(t, func() bool {
		return monitor.Current().State == StateAnonymous
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMonitorLoginUpdatesStateSynchronously(t *testing.T) {
	user := map[string]any{"_id": "1", "name": "A", "email": "a@b.com", "roles": []string{"manager"}}
	svc, store := newTestService(t, loginHandler(t, user, makeToken(t, time.Now().Add(time.Hour))))

	monitor := NewMonitor(svc, store, testMonitorOptions(), nil)
	require.NoError(t, monitor.Start(context.Background()))
	defer monitor.Stop()

	_, err := monitor.Login(context.Background(), "a@b.com", "123456")
	require.NoError(t, err)

	// No waiting: the snapshot must be current the moment Login returns.
	assert.Equal(t, StateAuthenticated, monitor.Current().State)

	monitor.Logout()
	assert.Equal(t, StateAnonymous, monitor.Current().State)
	assert.Nil(t, store.Load())
}

func TestMonitorSweepLogsOutExpiredSession(t *testing.T) {
	svc, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	savedSession(t, store, time.Now().Add(2*time.Second))

	monitor := NewMonitor(svc, store, testMonitorOptions(), nil)
	require.NoError(t, monitor.Start(context.Background()))
	defer monitor.Stop()

	require.Eventually(t, func() bool {
		return monitor.Current().State == StateAuthenticated
	}, time.Second, 10*time.Millisecond)

	// The sweep notices expiry and drops to anonymous without any store event.
	require.Eventually(t, func() bool {
		return monitor.Current().State == StateAnonymous
	}, 5*time.Second, 20*time.Millisecond)
	assert.Nil(t, store.Load())
}

func TestMonitorSeesExternalStoreChange(t *testing.T) {
	svc, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	monitor := NewMonitor(svc, store, MonitorOptions{
		SettleDelay:   time.Millisecond,
		SweepInterval: time.Hour, // only store events can wake it
	}, nil)
	require.NoError(t, monitor.Start(context.Background()))
	defer monitor.Stop()

	require.Eventually(t, func() bool {
		return monitor.Current().State == StateAnonymous
	}, 2*time.Second, 10*time.Millisecond)

	savedSession(t, store, time.Now().Add(time.Hour))

	require.Eventually(t, func() bool {
		return monitor.Current().State == StateAuthenticated
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMonitorSubscribeReceivesTransitions(t *testing.T) {
	svc, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	savedSession(t, store, time.Now().Add(time.Hour))

	monitor := NewMonitor(svc, store, testMonitorOptions(), nil)
	ch := monitor.Subscribe()
	require.NoError(t, monitor.Start(context.Background()))
	defer monitor.Stop()

	select {
	case snap := <-ch:
		assert.Equal(t, StateAuthenticated, snap.State)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a snapshot after the initial load")
	}
}

func TestMonitorStopTwice(t *testing.T) {
	svc, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	monitor := NewMonitor(svc, store, testMonitorOptions(), nil)
	require.NoError(t, monitor.Start(context.Background()))

	monitor.Stop()
	monitor.Stop()
}

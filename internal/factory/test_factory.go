package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/demesup/awale/internal/dependencies/mocks"
	"github.com/demesup/awale/internal/services/auth"
	"github.com/demesup/awale/internal/session"
	"github.com/demesup/awale/internal/storage/memory"
	"github.com/demesup/awale/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Memory     *memory.Storage

	// Notifications records every asynchronous delivery, in addition to
	// the hub delivering it to connected clients
	Notifications *testutil.RecordingNotifier
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	recorder := testutil.NewRecordingNotifier()
	logger := testutil.NopLogger()

	hub := session.NewHub(logger)
	notifier := teeNotifier{hub, recorder}
	hasher := auth.New(auth.Config{Cost: bcrypt.MinCost})

	app := newWithDependencies(store, hasher, mockClock, mockRandom, hub, notifier, Config{}, logger)

	return &TestApp{
		App:           app,
		MockClock:     mockClock,
		MockRandom:    mockRandom,
		Memory:        store,
		Notifications: recorder,
	}
}

type teeNotifier struct {
	hub      *session.Hub
	recorder *testutil.RecordingNotifier
}

func (t teeNotifier) Deliver(connID, msg string) {
	t.hub.Deliver(connID, msg)
	t.recorder.Deliver(connID, msg)
}

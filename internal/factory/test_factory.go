package factory

import (
	"time"

	"github.com/mcoot/battleship-client/internal/dependencies/mocks"
	"github.com/mcoot/battleship-client/internal/session/memory"
	"github.com/mcoot/battleship-client/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Store      *memory.Store
}

// NewTestApp creates an App against baseURL with an in-memory session and
// mocked clock and random
func NewTestApp(baseURL string) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app, err := newWithDependencies(store, mockClock, mockRandom, Config{BaseURL: baseURL}, testutil.NopLogger())
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Store:      store,
	}
}

package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/comus-party/justeprix/internal/dependencies/mocks"
	"github.com/comus-party/justeprix/internal/services/session"
	"github.com/comus-party/justeprix/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked
// dependencies and fast pacing. The owner URL points nowhere, so result
// reports fail and settlement falls back to plain removal.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	cfg := session.Config{
		NextRoundDelay:     5 * time.Millisecond,
		PersonalScoreDelay: 5 * time.Millisecond,
		SettlementPace:     5 * time.Millisecond,
		RedirectDelay:      5 * time.Millisecond,
		RedirectURL:        "/",
	}

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	app := newWithDependencies(store, mockClock, mockRandom, "http://owner.invalid", cfg, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

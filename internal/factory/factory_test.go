package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/comus-party/justeprix/internal/services/session"
)

func TestApplySessionDefaultsZeroConfig(t *testing.T) {
	got := applySessionDefaults(session.Config{})

	assert.Equal(t, session.DefaultConfig(), got)
}

func TestApplySessionDefaultsKeepsPartialConfig(t *testing.T) {
	got := applySessionDefaults(session.Config{AllowSinglePlayer: true})

	assert.True(t, got.AllowSinglePlayer)
	assert.Equal(t, session.DefaultConfig().NextRoundDelay, got.NextRoundDelay)
	assert.Equal(t, session.DefaultConfig().RedirectDelay, got.RedirectDelay)
	assert.Equal(t, session.DefaultConfig().RedirectURL, got.RedirectURL)
}

func TestApplySessionDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := session.Config{
		AllowSinglePlayer:  true,
		NextRoundDelay:     time.Millisecond,
		PersonalScoreDelay: 2 * time.Millisecond,
		SettlementPace:     3 * time.Millisecond,
		RedirectDelay:      4 * time.Millisecond,
		RedirectURL:        "https://owner.example/home",
	}

	assert.Equal(t, cfg, applySessionDefaults(cfg))
}

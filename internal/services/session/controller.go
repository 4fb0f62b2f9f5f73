package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/comus-party/justeprix/internal/dependencies/clock"
	"github.com/comus-party/justeprix/internal/model"
	"github.com/comus-party/justeprix/internal/services/scoring"
	"github.com/comus-party/justeprix/internal/services/settlement"
	"github.com/comus-party/justeprix/internal/storage"
)

// MaxPlayers is the largest roster a session accepts
const MaxPlayers = 10

// Broadcaster delivers events to a session's bound connections.
// Broadcasts are observed by every bound connection in emission order;
// SendToPlayer is private delivery to a single connection.
type Broadcaster interface {
	BroadcastToSession(id model.SessionID, ev model.Event)
	SendToPlayer(id model.SessionID, displayName string, ev model.Event)
	CloseSession(id model.SessionID)
}

// Reporter delivers final results to the owner service. The returned
// bool mirrors the owner's declared success flag and is authoritative.
type Reporter interface {
	ReportResults(ctx context.Context, id model.SessionID, scores map[model.PlayerID]int, winners []model.PlayerID) (bool, error)
}

// Config holds the controller's tunable behavior
type Config struct {
	// AllowSinglePlayer lowers the round auto-start minimum to 1
	AllowSinglePlayer bool

	// Pacing delays. These exist so clients can read what happened;
	// they are scheduled tasks, never blocking sleeps.
	NextRoundDelay     time.Duration
	PersonalScoreDelay time.Duration
	SettlementPace     time.Duration
	RedirectDelay      time.Duration

	// RedirectURL is where clients are sent after settlement
	RedirectURL string
}

// DefaultConfig returns the pacing profile used in production
func DefaultConfig() Config {
	return Config{
		NextRoundDelay:     3 * time.Second,
		PersonalScoreDelay: 1 * time.Second,
		SettlementPace:     2 * time.Second,
		RedirectDelay:      7500 * time.Millisecond,
		RedirectURL:        "/",
	}
}

// MinPlayers returns the connected-player minimum for a round to start
func (c Config) MinPlayers() int {
	if c.AllowSinglePlayer {
		return 1
	}
	return 2
}

// Controller is the session directory and round lifecycle state
// machine. It owns the set of live sessions (via storage), drives round
// start/guess/close/advance transitions, and runs settlement.
type Controller struct {
	storage     storage.Storage
	scoring     *scoring.Service
	broadcaster Broadcaster
	reporter    Reporter
	clock       clock.Clock
	logger      *slog.Logger
	cfg         Config

	locks *sessionLocks
	sched *Scheduler
}

// NewController creates a new session Controller
func NewController(
	storage storage.Storage,
	scoringService *scoring.Service,
	broadcaster Broadcaster,
	reporter Reporter,
	clock clock.Clock,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:     storage,
		scoring:     scoringService,
		broadcaster: broadcaster,
		reporter:    reporter,
		clock:       clock,
		logger:      logger.With(slog.String("component", "session")),
		cfg:         cfg,
		locks:       newSessionLocks(),
		sched:       NewScheduler(),
	}
}

// CreateSession validates an admission request and registers the
// session. Admission failures are returned synchronously and the
// session is never created.
func (c *Controller) CreateSession(ctx context.Context, id model.SessionID, settings model.Settings, players []model.PlayerSeed) (*model.Session, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if len(players) < c.cfg.MinPlayers() {
		return nil, model.ErrRosterTooSmall
	}
	if len(players) > MaxPlayers {
		return nil, model.ErrRosterTooLarge
	}

	exists, err := c.storage.SessionExists(ctx, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.ErrSessionExists
	}

	now := c.clock.Now()
	session := &model.Session{
		ID:        id,
		Settings:  settings,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, seed := range players {
		if err := session.AddPlayer(seed); err != nil {
			return nil, fmt.Errorf("%w: %q", err, seed.DisplayName)
		}
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		c.logger.Error("failed to save session",
			slog.String("session_id", string(id)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("session created",
		slog.String("session_id", string(id)),
		slog.Int("players", len(players)),
		slog.Int("rounds", settings.NbRounds),
		slog.String("difficulty", string(settings.Difficulty)),
	)

	return session, nil
}

// GetSession retrieves a session by id
func (c *Controller) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return c.storage.GetSession(ctx, id)
}

// ListSessions returns the ids of all live sessions
func (c *Controller) ListSessions(ctx context.Context) ([]model.SessionID, error) {
	return c.storage.ListSessionIDs(ctx)
}

// BindResult describes a successful connection binding
type BindResult struct {
	DisplayName string
	Difficulty  model.Difficulty
	RoundActive bool
	RoundNumber int
}

// BindConnection resolves a join token and marks the player connected.
// On failure the caller must not join the connection to any broadcast
// group; the connection then receives no further events.
//
// The join announcement is broadcast here, before the new connection is
// registered with the dispatcher, so the joining player does not see
// their own arrival message.
func (c *Controller) BindConnection(ctx context.Context, id model.SessionID, token string) (*BindResult, error) {
	mu := c.locks.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	player, err := session.FindByToken(token)
	if err != nil {
		return nil, err
	}

	player.Connected = true
	session.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.broadcaster.BroadcastToSession(id, model.MessageEvent{
		Speaker: model.SystemSpeaker,
		Text:    fmt.Sprintf("%s joined the game!", player.DisplayName),
	})

	c.logger.Info("connection bound",
		slog.String("session_id", string(id)),
		slog.String("player", player.DisplayName),
	)

	return &BindResult{
		DisplayName: player.DisplayName,
		Difficulty:  session.Settings.Difficulty,
		RoundActive: session.RoundActive,
		RoundNumber: session.CurrentRound,
	}, nil
}

// PlayerReady runs after a bound connection has joined the broadcast
// group: it rebroadcasts the leaderboard and auto-starts a round once
// enough players are connected.
func (c *Controller) PlayerReady(ctx context.Context, id model.SessionID) {
	mu := c.locks.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return
	}

	c.broadcastLeaderboard(session)

	if session.Over || session.RoundActive || session.GameOver() {
		return
	}
	if session.ConnectedCount() < c.cfg.MinPlayers() {
		return
	}

	c.broadcaster.BroadcastToSession(id, model.MessageEvent{
		Speaker: model.SystemSpeaker,
		Text:    "The game begins!",
	})
	c.startRoundLocked(ctx, session)
}

// Disconnect marks the player disconnected but retains their state and
// score; a later reconnection is not supported, but the roster entry
// survives so settlement still reports them.
func (c *Controller) Disconnect(ctx context.Context, id model.SessionID, displayName string) {
	mu := c.locks.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return
	}

	player := session.GetPlayer(displayName)
	if player == nil {
		return
	}

	player.Connected = false
	session.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveSession(ctx, session); err != nil {
		c.logger.Error("failed to save session on disconnect",
			slog.String("session_id", string(id)),
			slog.String("error", err.Error()),
		)
		return
	}

	c.broadcastLeaderboard(session)

	c.logger.Info("connection closed",
		slog.String("session_id", string(id)),
		slog.String("player", displayName),
	)
}

// SubmitGuess evaluates one guess. Guesses outside an active round and
// malformed values are dropped without any broadcast; this is the
// backpressure gate against stale or duplicate client sends, and it is
// also what guarantees a single winner per round: the round-active flag
// is flipped under the session lock before any side effect, so every
// other in-flight guess, correct or not, sees an inactive round.
func (c *Controller) SubmitGuess(ctx context.Context, id model.SessionID, displayName string, rawGuess string) {
	guess, ok := scoring.ParseGuess(rawGuess)
	if !ok {
		return
	}

	mu := c.locks.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return
	}
	if session.Over || !session.RoundActive || session.Target == nil {
		return
	}
	player := session.GetPlayer(displayName)
	if player == nil {
		return
	}

	target := *session.Target
	indicator := scoring.Compare(guess, target)

	// Every guess is echoed immediately, matching or not
	c.broadcaster.BroadcastToSession(id, model.MessageEvent{
		Speaker:   displayName,
		Text:      rawGuess,
		Indicator: indicator,
	})

	if indicator != model.IndicatorCorrect {
		return
	}

	// Close the round before any scoring side effect
	session.Target = nil
	session.RoundActive = false
	if err := c.scoring.AwardPoint(session, displayName); err != nil {
		c.logger.Error("failed to award point",
			slog.String("session_id", string(id)),
			slog.String("player", displayName),
			slog.String("error", err.Error()),
		)
		return
	}
	session.UpdatedAt = c.clock.Now()

	gameOver := session.GameOver()
	if gameOver {
		session.Over = true
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		c.logger.Error("failed to save session after win",
			slog.String("session_id", string(id)),
			slog.String("error", err.Error()),
		)
		return
	}

	c.broadcaster.BroadcastToSession(id, model.MessageEvent{
		Speaker: model.SystemSpeaker,
		Text: fmt.Sprintf("Correct answer from %s! The value was %s!",
			displayName, session.Settings.Difficulty.FormatCenti(target)),
	})
	c.broadcastLeaderboard(session)

	c.logger.Info("round won",
		slog.String("session_id", string(id)),
		slog.String("player", displayName),
		slog.Int("round", session.CurrentRound),
		slog.Int("score", player.Score),
	)

	score := player.Score
	c.sched.After(id, c.cfg.PersonalScoreDelay, func() {
		c.sendPersonalScore(id, displayName, score)
	})

	if gameOver {
		c.sched.After(id, c.cfg.PersonalScoreDelay, func() {
			c.settleAnnounce(id)
		})
		return
	}

	c.sched.After(id, c.cfg.NextRoundDelay, func() {
		c.startNextRound(id)
	})
}

// TerminateSession is the administrative teardown path: pending tasks
// are cancelled, the broadcast group is closed, and the session is
// removed without settlement or reporting.
func (c *Controller) TerminateSession(ctx context.Context, id model.SessionID) error {
	mu := c.locks.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	if _, err := c.storage.GetSession(ctx, id); err != nil {
		return err
	}

	c.removeSession(ctx, id)
	c.logger.Info("session terminated", slog.String("session_id", string(id)))
	return nil
}

// startRoundLocked draws a target and enters RoundActive. Caller holds
// the session lock and saves afterwards via this method.
func (c *Controller) startRoundLocked(ctx context.Context, session *model.Session) {
	target := c.scoring.DrawTarget(session.Settings.Difficulty)
	session.Target = &target
	session.RoundActive = true
	session.CurrentRound++
	session.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveSession(ctx, session); err != nil {
		c.logger.Error("failed to save session at round start",
			slog.String("session_id", string(session.ID)),
			slog.String("error", err.Error()),
		)
		return
	}

	c.broadcaster.BroadcastToSession(session.ID, model.NewRoundEvent{
		RoundNumber: session.CurrentRound,
		Difficulty:  session.Settings.Difficulty,
	})

	c.logger.Info("round started",
		slog.String("session_id", string(session.ID)),
		slog.Int("round", session.CurrentRound),
	)
}

// startNextRound is the scheduled follow-up after a won round
func (c *Controller) startNextRound(id model.SessionID) {
	ctx := context.Background()

	mu := c.locks.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		// Session torn down while the task was pending
		return
	}
	if session.Over || session.RoundActive || session.GameOver() {
		return
	}

	c.startRoundLocked(ctx, session)
}

func (c *Controller) sendPersonalScore(id model.SessionID, displayName string, score int) {
	ctx := context.Background()

	mu := c.locks.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	if _, err := c.storage.GetSession(ctx, id); err != nil {
		return
	}

	c.broadcaster.SendToPlayer(id, displayName, model.MessageEvent{
		Speaker: model.SystemSpeaker,
		Text:    fmt.Sprintf("Your score: %d point(s)", score),
	})
}

// Settlement runs as a chain of scheduled steps so that pacing delays
// never block other sessions. Each step re-checks that the session
// still exists and no-ops otherwise.

func (c *Controller) settleAnnounce(id model.SessionID) {
	ctx := context.Background()

	mu := c.locks.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	if _, err := c.storage.GetSession(ctx, id); err != nil {
		return
	}

	c.broadcaster.BroadcastToSession(id, model.MessageEvent{
		Speaker: model.SystemSpeaker,
		Text:    "The game is over! Thanks for playing.",
	})
	c.broadcaster.BroadcastToSession(id, model.EndGameEvent{})

	c.sched.After(id, c.cfg.SettlementPace, func() {
		c.settleLeaderboard(id)
	})
}

func (c *Controller) settleLeaderboard(id model.SessionID) {
	ctx := context.Background()

	mu := c.locks.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return
	}

	entries := c.scoring.Leaderboard(session)
	if len(entries) > 0 {
		parts := make([]string, 0, len(entries))
		for _, e := range entries {
			parts = append(parts, fmt.Sprintf("%s: %d point(s)", e.DisplayName, e.Score))
		}
		c.broadcaster.BroadcastToSession(id, model.MessageEvent{
			Speaker: model.SystemSpeaker,
			Text:    "Final standings - " + strings.Join(parts, ", "),
		})
	}

	c.sched.After(id, c.cfg.SettlementPace, func() {
		c.settleOutcome(id)
	})
}

func (c *Controller) settleOutcome(id model.SessionID) {
	ctx := context.Background()

	mu := c.locks.lockFor(id)
	mu.Lock()

	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		mu.Unlock()
		return
	}

	entries := c.scoring.Leaderboard(session)
	outcome := settlement.Compute(entries)
	c.announceOutcome(id, outcome)

	// The full roster is reported, disconnected players included
	scores := make(map[model.PlayerID]int, len(session.Players))
	for _, p := range session.Players {
		scores[p.ID] = p.Score
	}
	winners := outcome.WinnerIDs()
	mu.Unlock()

	// The report call is the one suspension point that leaves the
	// session lock: it is at-most-once, and a negative outcome is
	// recoverable - the session is removed either way.
	ok, err := c.reporter.ReportResults(ctx, id, scores, winners)
	if err != nil || !ok {
		c.logger.Warn("result report failed",
			slog.String("session_id", string(id)),
			slog.Bool("accepted", ok),
			slog.Any("error", err),
		)
		mu.Lock()
		c.removeSession(ctx, id)
		mu.Unlock()
		return
	}

	c.logger.Info("results reported",
		slog.String("session_id", string(id)),
		slog.Int("winners", len(winners)),
	)

	c.sched.After(id, c.cfg.RedirectDelay, func() {
		c.redirectAndRemove(id)
	})
}

func (c *Controller) announceOutcome(id model.SessionID, outcome settlement.Outcome) {
	switch outcome.Kind {
	case settlement.OutcomeNoPlayers:
		// Nobody left to tell
		c.logger.Error("settlement with no connected players",
			slog.String("session_id", string(id)))
	case settlement.OutcomeAlone:
		c.broadcaster.BroadcastToSession(id, model.MessageEvent{
			Speaker: model.SystemSpeaker,
			Text:    "You finished the game alone... no winner this time!",
		})
	case settlement.OutcomeTie:
		c.broadcaster.BroadcastToSession(id, model.MessageEvent{
			Speaker: model.SystemSpeaker,
			Text:    "It's a perfect tie! No winner this time.",
		})
	case settlement.OutcomeWinners:
		names := make([]string, 0, len(outcome.Winners))
		for _, w := range outcome.Winners {
			names = append(names, w.DisplayName)
		}
		label := "And the winner is"
		if len(names) > 1 {
			label = "And the winners are"
		}
		c.broadcaster.BroadcastToSession(id, model.MessageEvent{
			Speaker: model.SystemSpeaker,
			Text:    fmt.Sprintf("%s... %s!", label, strings.Join(names, ", ")),
		})
	}
}

func (c *Controller) redirectAndRemove(id model.SessionID) {
	ctx := context.Background()

	mu := c.locks.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	if _, err := c.storage.GetSession(ctx, id); err != nil {
		return
	}

	c.broadcaster.BroadcastToSession(id, model.RedirectEvent{
		Destination: c.cfg.RedirectURL,
	})

	c.removeSession(ctx, id)
	c.logger.Info("session settled and removed", slog.String("session_id", string(id)))
}

// removeSession deletes the session and everything attached to it.
// Caller holds the session lock.
func (c *Controller) removeSession(ctx context.Context, id model.SessionID) {
	if err := c.storage.DeleteSession(ctx, id); err != nil {
		c.logger.Error("failed to delete session",
			slog.String("session_id", string(id)),
			slog.String("error", err.Error()),
		)
	}
	c.sched.CancelSession(id)
	c.broadcaster.CloseSession(id)
	c.locks.drop(id)
}

// broadcastLeaderboard emits the current standings. Caller holds the
// session lock.
func (c *Controller) broadcastLeaderboard(session *model.Session) {
	c.broadcaster.BroadcastToSession(session.ID, model.LeaderboardEvent{
		Entries: c.scoring.Leaderboard(session),
	})
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateSession(ctx context.Context, id model.SessionID, settings model.Settings, players []model.PlayerSeed) (*model.Session, error)
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	ListSessions(ctx context.Context) ([]model.SessionID, error)
	BindConnection(ctx context.Context, id model.SessionID, token string) (*BindResult, error)
	PlayerReady(ctx context.Context, id model.SessionID)
	Disconnect(ctx context.Context, id model.SessionID, displayName string)
	SubmitGuess(ctx context.Context, id model.SessionID, displayName string, rawGuess string)
	TerminateSession(ctx context.Context, id model.SessionID) error
}

var _ ControllerInterface = (*Controller)(nil)

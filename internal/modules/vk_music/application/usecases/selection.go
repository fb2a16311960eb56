package usecases

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"

	"github.com/bulbex/bulbex/internal/modules/vk_music/domain"
)

// DefaultSelectionTimeout bounds how long search candidates stay selectable.
const DefaultSelectionTimeout = 30 * time.Second

// SelectionSession binds a set of candidate tracks to one pending user
// choice. The resolved flag is a single-assignment gate: whichever of
// {valid selection, timeout} claims it first executes its side effect,
// the loser becomes a no-op.
type SelectionSession struct {
	ID                    string
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID
	Candidates            []domain.Track

	mu       sync.Mutex
	resolved bool
	timer    *time.Timer
}

// claim marks the session terminal. Returns false if it already was.
func (s *SelectionSession) claim() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resolved {
		return false
	}
	s.resolved = true

	if s.timer != nil {
		s.timer.Stop()
	}
	return true
}

// IsResolved reports whether the session is terminal.
func (s *SelectionSession) IsResolved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved
}

// OpenSelectionInput contains the input for the Open use case.
type OpenSelectionInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID
	Candidates            []domain.Track

	// OnExpired runs after a timeout wins the session, letting the
	// presentation layer disable the candidate buttons.
	OnExpired func()
}

// SelectInput contains the input for the Select use case.
type SelectInput struct {
	SessionID string
	Index     int
}

// SelectOutput contains the result of the Select use case.
type SelectOutput struct {
	Track   domain.Track
	Enqueue EnqueueOutput
}

// SelectionService tracks open selection sessions across guilds.
type SelectionService struct {
	playback *PlaybackService
	timeout  time.Duration

	mu       sync.Mutex
	sessions map[string]*SelectionSession
}

// NewSelectionService creates a new SelectionService.
// A non-positive timeout falls back to DefaultSelectionTimeout.
func NewSelectionService(playback *PlaybackService, timeout time.Duration) *SelectionService {
	if timeout <= 0 {
		timeout = DefaultSelectionTimeout
	}
	return &SelectionService{
		playback: playback,
		timeout:  timeout,
		sessions: make(map[string]*SelectionSession),
	}
}

// Open creates a selection session over the candidate tracks and arms its
// expiry timer.
func (s *SelectionService) Open(input OpenSelectionInput) *SelectionSession {
	session := &SelectionSession{
		ID:                    uuid.NewString(),
		GuildID:               input.GuildID,
		UserID:                input.UserID,
		NotificationChannelID: input.NotificationChannelID,
		Candidates:            input.Candidates,
	}

	session.timer = time.AfterFunc(s.timeout, func() {
		s.expire(session, input.OnExpired)
	})

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	slog.Debug("opened selection session",
		"session", session.ID,
		"guild", session.GuildID,
		"candidates", len(session.Candidates),
	)

	return session
}

// Select resolves a session with the chosen candidate and enqueues it.
// Only the first valid selection is honored; later attempts and attempts
// after expiry return ErrSelectionClosed.
func (s *SelectionService) Select(ctx context.Context, input SelectInput) (*SelectOutput, error) {
	s.mu.Lock()
	session, ok := s.sessions[input.SessionID]
	s.mu.Unlock()

	if !ok {
		return nil, ErrSelectionClosed
	}

	// An out-of-range index must not consume the session.
	if input.Index < 0 || input.Index >= len(session.Candidates) {
		return nil, ErrInvalidSelection
	}

	if !session.claim() {
		return nil, ErrSelectionClosed
	}
	s.remove(session.ID)

	track := session.Candidates[input.Index]

	output, err := s.playback.Enqueue(ctx, EnqueueInput{
		GuildID:               session.GuildID,
		UserID:                session.UserID,
		NotificationChannelID: session.NotificationChannelID,
		Track:                 track,
	})
	if err != nil {
		return nil, err
	}

	return &SelectOutput{
		Track:   track,
		Enqueue: *output,
	}, nil
}

// expire is the timer path. If it wins the gate and the guild session is
// connected but idle, the bot leaves the voice channel.
func (s *SelectionService) expire(session *SelectionSession, onExpired func()) {
	if !session.claim() {
		return
	}
	s.remove(session.ID)

	slog.Debug("selection session expired",
		"session", session.ID,
		"guild", session.GuildID,
	)

	if s.playback.IsConnectedIdle(session.GuildID) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.playback.Disconnect(ctx, session.GuildID); err != nil {
			slog.Error("failed to disconnect after selection expiry",
				"guild", session.GuildID,
				"error", err,
			)
		}
	}

	if onExpired != nil {
		onExpired()
	}
}

func (s *SelectionService) remove(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// Shutdown stops all pending session timers.
func (s *SelectionService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, session := range s.sessions {
		session.claim()
		delete(s.sessions, id)
	}
}

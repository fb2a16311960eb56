package usecases

import (
	"context"
	"sync"

	"github.com/disgoorg/snowflake/v2"

	"github.com/bulbex/bulbex/internal/modules/vk_music/domain"
)

func testTrack(title string) domain.Track {
	return domain.NewTrack("Artist", title, 180, "https://cs0.vkuseraudio.net/"+title+".mp3")
}

type mockRepository struct {
	mu     sync.Mutex
	states map[snowflake.ID]*domain.PlayerState
}

func newMockRepository() *mockRepository {
	return &mockRepository{states: make(map[snowflake.ID]*domain.PlayerState)}
}

func (m *mockRepository) Get(guildID snowflake.ID) *domain.PlayerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[guildID]
}

func (m *mockRepository) Save(state *domain.PlayerState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.GuildID()] = state
}

func (m *mockRepository) Delete(guildID snowflake.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, guildID)
}

type mockAudioPlayer struct {
	mu        sync.Mutex
	played    []domain.Track
	stopCalls int
	playErr   error
}

func (m *mockAudioPlayer) Play(_ context.Context, _ snowflake.ID, track domain.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.playErr != nil {
		return m.playErr
	}
	m.played = append(m.played, track)
	return nil
}

func (m *mockAudioPlayer) Stop(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopCalls++
	return nil
}

func (m *mockAudioPlayer) playedTracks() []domain.Track {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Track, len(m.played))
	copy(out, m.played)
	return out
}

func (m *mockAudioPlayer) stopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

type mockVoiceConnection struct {
	mu         sync.Mutex
	joinCalls  []snowflake.ID
	leaveCalls []snowflake.ID
	joinErr    error

	// joinHook, when set, runs before the join is recorded. It may block
	// to simulate a slow voice handshake.
	joinHook func(guildID snowflake.ID)
}

func (m *mockVoiceConnection) JoinChannel(_ context.Context, guildID snowflake.ID, channelID snowflake.ID) error {
	if m.joinHook != nil {
		m.joinHook(guildID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.joinErr != nil {
		return m.joinErr
	}
	m.joinCalls = append(m.joinCalls, channelID)
	return nil
}

func (m *mockVoiceConnection) LeaveChannel(_ context.Context, guildID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.leaveCalls = append(m.leaveCalls, guildID)
	return nil
}

func (m *mockVoiceConnection) leaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.leaveCalls)
}

type mockVoiceStateProvider struct {
	channels map[snowflake.ID]snowflake.ID
}

func newMockVoiceStateProvider() *mockVoiceStateProvider {
	return &mockVoiceStateProvider{channels: make(map[snowflake.ID]snowflake.ID)}
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(_, userID snowflake.ID) (snowflake.ID, error) {
	return m.channels[userID], nil
}

type recordingPublisher struct {
	mu              sync.Mutex
	enqueued        []domain.TrackEnqueuedEvent
	playbackStarted []domain.PlaybackStartedEvent
	sessionEnded    []domain.SessionEndedEvent
}

func (r *recordingPublisher) PublishTrackEnqueued(event domain.TrackEnqueuedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enqueued = append(r.enqueued, event)
}

func (r *recordingPublisher) PublishTrackEnded(domain.TrackEndedEvent) {}

func (r *recordingPublisher) PublishPlaybackStarted(event domain.PlaybackStartedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playbackStarted = append(r.playbackStarted, event)
}

func (r *recordingPublisher) PublishSessionEnded(event domain.SessionEndedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessionEnded = append(r.sessionEnded, event)
}

func (r *recordingPublisher) sessionEndedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessionEnded)
}

type playbackFixture struct {
	service    *PlaybackService
	repo       *mockRepository
	player     *mockAudioPlayer
	voice      *mockVoiceConnection
	voiceState *mockVoiceStateProvider
	publisher  *recordingPublisher
}

func newPlaybackFixture() *playbackFixture {
	repo := newMockRepository()
	player := &mockAudioPlayer{}
	voice := &mockVoiceConnection{}
	voiceState := newMockVoiceStateProvider()
	publisher := &recordingPublisher{}

	return &playbackFixture{
		service:    NewPlaybackService(repo, player, voice, voiceState, publisher),
		repo:       repo,
		player:     player,
		voice:      voice,
		voiceState: voiceState,
		publisher:  publisher,
	}
}

const (
	testGuildID        = snowflake.ID(100)
	testUserID         = snowflake.ID(200)
	testVoiceChannelID = snowflake.ID(300)
	testTextChannelID  = snowflake.ID(400)
)

// placeUser puts the test user into the default voice channel.
func (f *playbackFixture) placeUser() {
	f.voiceState.channels[testUserID] = testVoiceChannelID
}

func (f *playbackFixture) enqueue(track domain.Track) (*EnqueueOutput, error) {
	return f.service.Enqueue(context.Background(), EnqueueInput{
		GuildID:               testGuildID,
		UserID:                testUserID,
		NotificationChannelID: testTextChannelID,
		Track:                 track,
	})
}

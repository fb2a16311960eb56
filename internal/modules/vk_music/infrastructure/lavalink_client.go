package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"

	"github.com/bulbex/bulbex/internal/modules/vk_music/application/ports"
	"github.com/bulbex/bulbex/internal/modules/vk_music/domain"
)

const voiceConnectTimeout = 10 * time.Second

// voiceHandshake collects one guild's voice handshake. Discord delivers
// VoiceStateUpdate and VoiceServerUpdate in either order, and Lavalink
// rejects a lone half, so both are held here until the pair is complete.
type voiceHandshake struct {
	mu sync.Mutex

	stateSeen bool
	channelID *snowflake.ID
	sessionID string

	serverSeen bool
	token      string
	endpoint   string

	// joined is armed by JoinChannel and closed once the pair completes.
	joined chan struct{}
}

func (h *voiceHandshake) applyState(channelID *snowflake.ID, sessionID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stateSeen = true
	h.channelID = channelID
	h.sessionID = sessionID
	return h.stateSeen && h.serverSeen
}

func (h *voiceHandshake) applyServer(token, endpoint string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.serverSeen = true
	h.token = token
	h.endpoint = endpoint
	return h.stateSeen && h.serverSeen
}

// take drains the completed pair and rearms the handshake for the next
// channel move, signalling any waiting JoinChannel call.
func (h *voiceHandshake) take() (channelID *snowflake.ID, sessionID, token, endpoint string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channelID, sessionID = h.channelID, h.sessionID
	token, endpoint = h.token, h.endpoint

	h.stateSeen, h.serverSeen = false, false
	h.channelID, h.sessionID = nil, ""
	h.token, h.endpoint = "", ""

	if h.joined != nil {
		close(h.joined)
		h.joined = nil
	}
	return
}

func (h *voiceHandshake) arm() chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.joined == nil {
		h.joined = make(chan struct{})
	}
	return h.joined
}

// LavalinkAdapter streams VK source URLs through a Lavalink node. It
// implements the audio player and voice connection ports and publishes
// track-end events that drive queue progression.
type LavalinkAdapter struct {
	link    disgolink.Client
	session *discordgo.Session
	botID   snowflake.ID

	mu         sync.Mutex
	handshakes map[snowflake.ID]*voiceHandshake

	publisher ports.EventPublisher
}

// LavalinkConfig holds node connection settings.
type LavalinkConfig struct {
	Address  string
	Password string
}

// NewLavalinkAdapter creates the adapter and connects its node.
func NewLavalinkAdapter(session *discordgo.Session, config LavalinkConfig) (*LavalinkAdapter, error) {
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bot ID: %w", err)
	}

	adapter := &LavalinkAdapter{
		session:    session,
		botID:      botID,
		handshakes: make(map[snowflake.ID]*voiceHandshake),
	}
	adapter.link = disgolink.New(botID,
		disgolink.WithListenerFunc(adapter.onTrackStart),
		disgolink.WithListenerFunc(adapter.onTrackEnd),
		disgolink.WithListenerFunc(adapter.onTrackException),
		disgolink.WithListenerFunc(adapter.onTrackStuck),
	)

	node, err := adapter.link.AddNode(context.Background(), disgolink.NodeConfig{
		Name:     "main",
		Address:  config.Address,
		Password: config.Password,
		Secure:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add Lavalink node: %w", err)
	}
	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", config.Address)

	return adapter, nil
}

// SetEventPublisher wires the publisher used for track-end events.
func (c *LavalinkAdapter) SetEventPublisher(publisher ports.EventPublisher) {
	c.publisher = publisher
}

func (c *LavalinkAdapter) handshake(guildID snowflake.ID) *voiceHandshake {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, ok := c.handshakes[guildID]
	if !ok {
		h = &voiceHandshake{}
		c.handshakes[guildID] = h
	}
	return h
}

func (c *LavalinkAdapter) dropHandshake(guildID snowflake.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handshakes, guildID)
}

// JoinChannel connects to a voice channel and blocks until the voice
// handshake completes or the wait times out.
func (c *LavalinkAdapter) JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error {
	joined := c.handshake(guildID).arm()

	if err := c.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), false, false); err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	select {
	case <-joined:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for voice connection: %w", ctx.Err())
	case <-time.After(voiceConnectTimeout):
		return fmt.Errorf("timeout waiting for voice connection")
	}
}

// LeaveChannel destroys the guild's player and disconnects from voice.
func (c *LavalinkAdapter) LeaveChannel(ctx context.Context, guildID snowflake.ID) error {
	if player := c.link.ExistingPlayer(guildID); player != nil {
		if err := player.Destroy(ctx); err != nil {
			slog.Warn("failed to destroy player", "guild", guildID, "error", err)
		}
	}

	if err := c.session.ChannelVoiceJoinManual(guildID.String(), "", false, false); err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

// Play resolves the track's VK source URL on the node and starts it.
func (c *LavalinkAdapter) Play(ctx context.Context, guildID snowflake.ID, track domain.Track) error {
	node := c.link.BestNode()
	if node == nil {
		return fmt.Errorf("no available Lavalink node")
	}

	result, err := node.LoadTracks(ctx, track.URL)
	if err != nil {
		return fmt.Errorf("failed to load track source: %w", err)
	}
	loaded, ok := result.Data.(lavalink.Track)
	if !ok {
		return fmt.Errorf("track source %q did not resolve to a playable stream", track.Display())
	}

	if err := c.link.Player(guildID).Update(ctx, lavalink.WithEncodedTrack(loaded.Encoded)); err != nil {
		return fmt.Errorf("failed to play track: %w", err)
	}
	return nil
}

// Stop forcibly ends the current stream. The node emits a track-end
// event with reason stopped, which advances the queue.
func (c *LavalinkAdapter) Stop(ctx context.Context, guildID snowflake.ID) error {
	if err := c.link.Player(guildID).Update(ctx, lavalink.WithNullTrack()); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}
	return nil
}

// OnVoiceServerUpdate feeds the server half of the voice handshake.
// Must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice server update", "error", err)
		return
	}

	h := c.handshake(guildID)
	if h.applyServer(event.Token, event.Endpoint) {
		c.forwardHandshake(guildID, h)
	}
}

// OnVoiceStateUpdate feeds the state half of the voice handshake. Updates
// for users other than the bot are ignored.
func (c *LavalinkAdapter) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	if event.UserID != c.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	// An empty channel means the bot left voice. No server half follows.
	if event.ChannelID == "" {
		c.link.OnVoiceStateUpdate(context.Background(), guildID, nil, event.SessionID)
		c.dropHandshake(guildID)
		return
	}

	channelID, err := snowflake.Parse(event.ChannelID)
	if err != nil {
		slog.Error("failed to parse channel ID in voice state update", "error", err)
		return
	}

	h := c.handshake(guildID)
	if h.applyState(&channelID, event.SessionID) {
		c.forwardHandshake(guildID, h)
	}
}

func (c *LavalinkAdapter) forwardHandshake(guildID snowflake.ID, h *voiceHandshake) {
	channelID, sessionID, token, endpoint := h.take()

	slog.Debug("forwarding voice handshake to Lavalink",
		"guild", guildID,
		"channel", channelID,
	)

	c.link.OnVoiceStateUpdate(context.Background(), guildID, channelID, sessionID)
	c.link.OnVoiceServerUpdate(context.Background(), guildID, token, endpoint)
}

func (c *LavalinkAdapter) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	slog.Debug("track started", "guild", player.GuildID(), "track", event.Track.Info.Title)
}

func (c *LavalinkAdapter) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	slog.Debug("track ended", "guild", player.GuildID(), "reason", event.Reason)

	if c.publisher != nil {
		c.publisher.PublishTrackEnded(domain.TrackEndedEvent{
			GuildID: player.GuildID(),
			Reason:  mapEndReason(event.Reason),
		})
	}
}

func (c *LavalinkAdapter) onTrackException(player disgolink.Player, event lavalink.TrackExceptionEvent) {
	slog.Warn("track exception", "guild", player.GuildID(), "error", event.Exception.Message)
}

func (c *LavalinkAdapter) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	slog.Warn("track stuck", "guild", player.GuildID(), "threshold", event.Threshold)
}

func mapEndReason(reason lavalink.TrackEndReason) domain.TrackEndReason {
	switch reason {
	case lavalink.TrackEndReasonFinished:
		return domain.TrackEndFinished
	case lavalink.TrackEndReasonLoadFailed:
		return domain.TrackEndLoadFailed
	case lavalink.TrackEndReasonReplaced:
		return domain.TrackEndReplaced
	case lavalink.TrackEndReasonCleanup:
		return domain.TrackEndCleanup
	default:
		return domain.TrackEndStopped
	}
}

var (
	_ ports.AudioPlayer     = (*LavalinkAdapter)(nil)
	_ ports.VoiceConnection = (*LavalinkAdapter)(nil)
)

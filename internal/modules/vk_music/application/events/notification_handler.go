package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bulbex/bulbex/internal/modules/vk_music/application/ports"
)

// NotificationEventHandler renders playback events as channel messages.
type NotificationEventHandler struct {
	notifier ports.NotificationSender
	bus      *Bus

	wg   sync.WaitGroup
	done chan struct{}
}

// NewNotificationEventHandler creates a new NotificationEventHandler.
func NewNotificationEventHandler(notifier ports.NotificationSender, bus *Bus) *NotificationEventHandler {
	return &NotificationEventHandler{
		notifier: notifier,
		bus:      bus,
		done:     make(chan struct{}),
	}
}

// Start begins listening for events in background goroutines.
func (h *NotificationEventHandler) Start(ctx context.Context) {
	h.wg.Add(2)

	go func() {
		defer h.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.done:
				return
			case event, ok := <-h.bus.PlaybackStarted():
				if !ok {
					return
				}
				if err := h.notifier.SendNowPlaying(event.NotificationChannelID, event.Track); err != nil {
					slog.Error("failed to send now-playing notification",
						"guild", event.GuildID,
						"error", err,
					)
				}
			}
		}
	}()

	go func() {
		defer h.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.done:
				return
			case event, ok := <-h.bus.SessionEnded():
				if !ok {
					return
				}
				if err := h.notifier.SendSessionEnded(event.NotificationChannelID); err != nil {
					slog.Error("failed to send session-ended notification",
						"guild", event.GuildID,
						"error", err,
					)
				}
			}
		}
	}()

	slog.Debug("notification event handler started")
}

// Stop stops the event handler and waits for goroutines to finish.
func (h *NotificationEventHandler) Stop() {
	close(h.done)
	h.wg.Wait()
	slog.Debug("notification event handler stopped")
}

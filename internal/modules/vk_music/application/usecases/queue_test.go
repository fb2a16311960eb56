package usecases

import (
	"context"
	"testing"
)

func TestQueueListDisconnectedGuild(t *testing.T) {
	f := newPlaybackFixture()
	svc := NewQueueService(f.repo)

	output := svc.List(testGuildID)
	if !output.IsEmpty() {
		t.Error("expected an empty listing for a disconnected guild")
	}
	if output.CurrentTrack != nil {
		t.Error("expected no current track")
	}
}

func TestQueueListShowsCurrentAndPending(t *testing.T) {
	f := newPlaybackFixture()
	f.placeUser()
	svc := NewQueueService(f.repo)

	for _, title := range []string{"one", "two", "three"} {
		if _, err := f.enqueue(testTrack(title)); err != nil {
			t.Fatalf("enqueue failed: %v", err)
		}
	}
	if err := f.service.PlayNext(context.Background(), testGuildID); err != nil {
		t.Fatalf("PlayNext failed: %v", err)
	}

	output := svc.List(testGuildID)
	if output.IsEmpty() {
		t.Fatal("expected a non-empty listing")
	}
	if output.CurrentTrack == nil || output.CurrentTrack.Title != "one" {
		t.Errorf("expected current track %q, got %v", "one", output.CurrentTrack)
	}
	if len(output.Tracks) != 2 {
		t.Fatalf("expected 2 pending tracks, got %d", len(output.Tracks))
	}
	if output.Tracks[0].Title != "two" || output.Tracks[1].Title != "three" {
		t.Errorf("unexpected pending order: %v", output.Tracks)
	}
}

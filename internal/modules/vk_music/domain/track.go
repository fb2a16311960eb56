package domain

import "strconv"

// Track is a playable VK audio item. Immutable once constructed;
// instances are shared freely between the queue and notifications.
type Track struct {
	Artist   string
	Title    string
	Duration int    // seconds
	URL      string // streamable source locator
}

// NewTrack creates a Track. A negative duration is clamped to zero.
func NewTrack(artist, title string, duration int, url string) Track {
	if duration < 0 {
		duration = 0
	}
	return Track{
		Artist:   artist,
		Title:    title,
		Duration: duration,
		URL:      url,
	}
}

// Display returns the "Artist - Title" form used in messages and logs.
func (t Track) Display() string {
	return t.Artist + " - " + t.Title
}

// IsPlayable reports whether the track has a source locator.
// VK returns unavailable tracks with an empty url.
func (t Track) IsPlayable() bool {
	return t.URL != ""
}

// FormattedDuration returns the duration as mm:ss, or hh:mm:ss past an hour.
func (t Track) FormattedDuration() string {
	hours := t.Duration / 3600
	minutes := (t.Duration % 3600) / 60
	seconds := t.Duration % 60

	if hours > 0 {
		return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

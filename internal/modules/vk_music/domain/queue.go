package domain

// Queue is the ordered list of pending tracks for one guild session.
// Strictly FIFO: tracks leave only from the head, in insertion order.
type Queue struct {
	tracks []Track
}

// NewQueue creates a new empty Queue.
func NewQueue() Queue {
	return Queue{tracks: make([]Track, 0)}
}

// Enqueue appends a track to the tail.
func (q *Queue) Enqueue(track Track) {
	q.tracks = append(q.tracks, track)
}

// PopNext removes and returns the head track.
// Returns nil when the queue is empty.
func (q *Queue) PopNext() *Track {
	if len(q.tracks) == 0 {
		return nil
	}

	track := q.tracks[0]
	q.tracks = q.tracks[1:]
	return &track
}

// List returns a read-only snapshot of the pending tracks in order.
func (q *Queue) List() []Track {
	result := make([]Track, len(q.tracks))
	copy(result, q.tracks)
	return result
}

// Len returns the number of pending tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty reports whether the queue has no pending tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}

// Clear empties the queue in place.
func (q *Queue) Clear() {
	q.tracks = q.tracks[:0]
}

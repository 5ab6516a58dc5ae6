package tweets

import "time"

// Status tracks a payload through the posting sink.
type Status string

const (
	StatusPending Status = "pending"
	StatusPosted  Status = "posted"
	StatusFailed  Status = "failed"
)

// ChangeType labels what kind of change a thread describes.
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// Payload is one tweet-sized chunk of a change thread. Immutable once
// created; the posting layer transitions Status afterwards.
type Payload struct {
	ID               string     `json:"id"`
	Section          string     `json:"section"`
	ChangeType       ChangeType `json:"change_type"`
	ContentFormatted string     `json:"content_formatted"`
	ThreadID         string     `json:"thread_id"`
	ThreadPart       int        `json:"thread_part"`
	TotalThreadParts int        `json:"total_thread_parts"`
	Status           Status     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	SimilarityScore  *float64   `json:"similarity_score,omitempty"`
}

// Threads groups payloads by thread id, preserving first-seen thread order
// and part order within each thread.
func Threads(payloads []Payload) [][]Payload {
	var order []string
	byThread := make(map[string][]Payload)
	for _, p := range payloads {
		if _, ok := byThread[p.ThreadID]; !ok {
			order = append(order, p.ThreadID)
		}
		byThread[p.ThreadID] = append(byThread[p.ThreadID], p)
	}
	grouped := make([][]Payload, 0, len(order))
	for _, id := range order {
		grouped = append(grouped, byThread[id])
	}
	return grouped
}

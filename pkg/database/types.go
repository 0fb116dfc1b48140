package database

import "time"

// Dispatch outcomes
const (
	OutcomeSent       = "sent"
	OutcomeNotFound   = "not_found"
	OutcomeSendFailed = "send_failed"
)

// ValidOutcome reports whether outcome is one of the known dispatch outcomes
func ValidOutcome(outcome string) bool {
	switch outcome {
	case OutcomeSent, OutcomeNotFound, OutcomeSendFailed:
		return true
	default:
		return false
	}
}

// Dispatch records one handled trigger message
type Dispatch struct {
	ID           string
	GuildID      string
	ChannelID    string
	Trigger      string
	ReactionType string
	Provider     string
	Outcome      string
	Attempts     int
	Duration     time.Duration
	CreatedAt    time.Time
}

// ReactionCount summarizes dispatches for one reaction type
type ReactionCount struct {
	ReactionType string
	Sent         int64
	NotFound     int64
	SendFailed   int64
	LastSeenAt   time.Time
}

// Total returns the number of dispatches of any outcome
func (c ReactionCount) Total() int64 {
	return c.Sent + c.NotFound + c.SendFailed
}

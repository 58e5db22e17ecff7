package model

import (
	"fmt"
	"time"
)

// Kind represents the type of activity a backup record describes.
type Kind string

const (
	KindPull  Kind = "pull"
	KindIssue Kind = "issue"
)

var validKinds = []Kind{KindPull, KindIssue}

// ValidateKind returns an error if k is not a recognized record kind.
func ValidateKind(k Kind) error {
	for _, v := range validKinds {
		if k == v {
			return nil
		}
	}
	return fmt.Errorf("invalid record kind %q: must be one of %v", k, validKinds)
}

// Event names used by the backup tool that this extractor inspects.
const (
	EventCommented = "commented"
	EventReviewed  = "reviewed"
	EventMerged    = "merged"
)

// Event is a single timeline entry on a pull request or issue. Actor is the
// raw login recorded by the backup; it may be empty when the backup carries
// no user for the event (deleted accounts).
type Event struct {
	Kind       string
	Actor      string
	OccurredAt time.Time
}

// Comment is a discussion or review comment. Author is the raw recorded login.
type Comment struct {
	Author    string
	CreatedAt time.Time
	Body      string
}

// Record is one unit of repository activity read from a backup directory.
// It is owned by the backup reader and never mutated after creation; identity
// resolution produces a new ResolvedRecord instead of editing in place.
type Record struct {
	Kind      Kind
	Number    int
	Author    string
	Title     string
	State     string
	CreatedAt time.Time
	ClosedAt  *time.Time

	// Diff stats, present for pulls only.
	Additions int
	Deletions int
	Commits   int

	Events   []Event
	Comments []Comment
}

// MergeEvent returns the first "merged" timeline event, or nil if the record
// was never merged. Only pulls carry merge events.
func (r *Record) MergeEvent() *Event {
	for i := range r.Events {
		if r.Events[i].Kind == EventMerged {
			return &r.Events[i]
		}
	}
	return nil
}

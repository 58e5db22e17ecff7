package model

import "time"

// ExportVersion is the schema version written into every extraction output
// file so downstream consumers can detect format changes.
const ExportVersion = 1

// ResolvedEvent mirrors Event with the actor resolved through the username
// map. Actor is nil when the backup recorded no user for the event.
type ResolvedEvent struct {
	Kind       string    `json:"event"`
	Actor      *Identity `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ResolvedComment mirrors Comment with the author resolved. Author is nil
// when the backup recorded no user for the comment (deleted accounts).
type ResolvedComment struct {
	Author    *Identity `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Body      string    `json:"body,omitempty"`
}

// ResolvedRecord is a Record whose actor references have been rewritten to
// resolved identities. It is the unit serialized to output.
type ResolvedRecord struct {
	Kind      Kind       `json:"kind"`
	Number    int        `json:"number"`
	Author    Identity   `json:"author"`
	Title     string     `json:"title,omitempty"`
	State     string     `json:"state,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`

	Additions int `json:"additions,omitempty"`
	Deletions int `json:"deletions,omitempty"`
	Commits   int `json:"commits,omitempty"`

	Events   []ResolvedEvent   `json:"events"`
	Comments []ResolvedComment `json:"comments"`
}

// MergeEvent returns the first "merged" timeline event, or nil.
func (r *ResolvedRecord) MergeEvent() *ResolvedEvent {
	for i := range r.Events {
		if r.Events[i].Kind == EventMerged {
			return &r.Events[i]
		}
	}
	return nil
}

// ExtractionResult is the complete extraction output for one repository.
// It is created fresh per repository, serialized to a single JSON file, and
// discarded; records appear in the reader's order.
type ExtractionResult struct {
	Version        int              `json:"version"`
	Repository     string           `json:"repository"`
	ExtractedAt    time.Time        `json:"extracted_at"`
	Records        []ResolvedRecord `json:"records"`
	UnmappedLogins []string         `json:"unmapped_logins"`
}

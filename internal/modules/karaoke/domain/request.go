package domain

import (
	"strings"

	"github.com/disgoorg/snowflake/v2"
)

// RequestID is a unique identifier for a song request.
// It is assigned by the record store at creation and never changes.
type RequestID snowflake.ID

// String returns the decimal form of the ID.
func (id RequestID) String() string {
	return snowflake.ID(id).String()
}

// ParseRequestID parses a decimal RequestID.
func ParseRequestID(s string) (RequestID, error) {
	id, err := snowflake.Parse(s)
	if err != nil {
		return 0, err
	}
	return RequestID(id), nil
}

// Timestamp is a logical creation time in milliseconds assigned by the store.
// A pending Timestamp stands for a write time the store has not resolved yet.
type Timestamp struct {
	Millis  int64
	Pending bool
}

// At returns a resolved Timestamp.
func At(millis int64) Timestamp {
	return Timestamp{Millis: millis}
}

// PendingTimestamp returns a placeholder for a not-yet-resolved write time.
func PendingTimestamp() Timestamp {
	return Timestamp{Pending: true}
}

// Resolve returns the timestamp in milliseconds, using now for pending values.
func (t Timestamp) Resolve(now int64) int64 {
	if t.Pending {
		return now
	}
	return t.Millis
}

// RequestRecord is one submitted song request.
type RequestRecord struct {
	ID              RequestID
	ParticipantName string
	Song            string
	Artist          *string // nil when the submitter gave no artist
	BackingTrackURL string
	CreatedAt       Timestamp
	Completed       bool
	ManualOrder     *int // nil when the record is not pinned
}

// IsPinned returns true if the record carries an explicit manual position.
func (r *RequestRecord) IsPinned() bool {
	return r.ManualOrder != nil
}

// ArtistName returns the artist or an empty string.
func (r *RequestRecord) ArtistName() string {
	if r.Artist == nil {
		return ""
	}
	return *r.Artist
}

// Clone returns a deep copy of the record.
func (r RequestRecord) Clone() RequestRecord {
	if r.Artist != nil {
		artist := *r.Artist
		r.Artist = &artist
	}
	if r.ManualOrder != nil {
		order := *r.ManualOrder
		r.ManualOrder = &order
	}
	return r
}

// Apply returns a copy of the record with the patch applied.
func (r RequestRecord) Apply(patch RecordPatch) RequestRecord {
	r = r.Clone()
	if patch.Completed != nil {
		r.Completed = *patch.Completed
	}
	if patch.ManualOrder != nil {
		order := *patch.ManualOrder
		r.ManualOrder = &order
	}
	return r
}

// RecordDraft holds the caller-supplied fields of a record about to be created.
// The store assigns ID and CreatedAt.
type RecordDraft struct {
	ParticipantName string
	Song            string
	Artist          *string
	BackingTrackURL string
}

// NewRecordDraft normalizes submit input into a RecordDraft.
// Song and artist are trimmed; a blank artist becomes absent.
func NewRecordDraft(participant, song, artist string) RecordDraft {
	rec := RecordDraft{
		ParticipantName: strings.TrimSpace(participant),
		Song:            strings.TrimSpace(song),
	}
	if a := strings.TrimSpace(artist); a != "" {
		rec.Artist = &a
	}
	return rec
}

// ArtistName returns the artist or an empty string.
func (d RecordDraft) ArtistName() string {
	if d.Artist == nil {
		return ""
	}
	return *d.Artist
}

// RecordPatch is a partial update. Nil fields are left unchanged.
type RecordPatch struct {
	Completed   *bool
	ManualOrder *int
}

// PinPatch returns a patch setting the manual order.
func PinPatch(order int) RecordPatch {
	return RecordPatch{ManualOrder: &order}
}

// CompletePatch returns a patch marking a record completed.
func CompletePatch() RecordPatch {
	completed := true
	return RecordPatch{Completed: &completed}
}

// Snapshot is the full set of records at a point in time, as delivered by the store.
// ObservedAt is the store's logical "now" and resolves pending timestamps.
type Snapshot struct {
	Records    []RequestRecord
	ObservedAt int64
}

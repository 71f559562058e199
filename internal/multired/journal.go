package multired

import (
	"sync/atomic"
	"time"
)

// EntryKind classifies journal entries.
type EntryKind string

const (
	EntrySubmission EntryKind = "submission"
	EntryResult     EntryKind = "result"
	EntryError      EntryKind = "error"
)

// Entry is one immutable audit record. The original submitted text is stored
// unchanged here even when the backend adapts it for publication.
type Entry struct {
	ID      int64
	Kind    EntryKind
	Time    time.Time
	Text    string
	Targets []Target
	Result  *Result
	Outcome *Outcome
}

// Journal records every user action and its outcome with monotonic ids. It is
// display/audit state only; entries are never mutated once appended.
type Journal struct {
	seq     atomic.Int64
	entries []Entry
	now     func() time.Time
}

// NewJournal returns an empty journal.
func NewJournal() *Journal {
	return &Journal{now: time.Now}
}

func (j *Journal) append(e Entry) Entry {
	e.ID = j.seq.Add(1)
	e.Time = j.now()
	j.entries = append(j.entries, e)
	return e
}

// Submission records a user's publish attempt with the targets chosen.
func (j *Journal) Submission(text string, targets []Target) Entry {
	cp := append([]Target(nil), targets...)
	return j.append(Entry{Kind: EntrySubmission, Text: text, Targets: cp})
}

// Success records the normalized outcome of a publish.
func (j *Journal) Success(result *Result, outcome *Outcome) Entry {
	return j.append(Entry{Kind: EntryResult, Result: result, Outcome: outcome})
}

// Failure records a publish-level error message.
func (j *Journal) Failure(message string) Entry {
	return j.append(Entry{Kind: EntryError, Text: message})
}

// Entries returns a snapshot of the journal in append order.
func (j *Journal) Entries() []Entry {
	return append([]Entry(nil), j.entries...)
}

// Len returns the number of entries recorded so far.
func (j *Journal) Len() int { return len(j.entries) }

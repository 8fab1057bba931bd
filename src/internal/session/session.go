// Package session owns the live collection for one run and the two-phase
// import flow around human conflict resolution. The caller drives the event
// loop; the session only holds state and transitions.
package session

import (
	"errors"
	"fmt"

	"refhub/src/internal/dedupe"
	"refhub/src/internal/record"
)

// ErrNoPendingImport is returned when Confirm or selection calls arrive
// without an import awaiting resolution.
var ErrNoPendingImport = errors.New("no pending import")

// MergeResult reports what a merge did to the collection.
type MergeResult struct {
	Added   int
	Updated int
	Total   int
}

// PendingImport is the transient state of one import awaiting human
// tie-breaks: the similarity groups, the full filtered batch for reassembly,
// and one selection slot per group (default 0, the anchor).
type PendingImport struct {
	Groups     []dedupe.Group
	Batch      []record.Record
	Selections []int
}

// Session holds the collection and at most one pending import.
type Session struct {
	records []record.Record
	pending *PendingImport
}

// New starts a session over an existing collection.
func New(records []record.Record) *Session {
	return &Session{records: records}
}

// Records returns the current collection.
func (s *Session) Records() []record.Record { return s.records }

// Replace swaps in a new collection wholesale, e.g. after a remote pull. Any
// pending import is abandoned: its groups were computed against the old
// collection.
func (s *Session) Replace(records []record.Record) {
	s.records = records
	s.pending = nil
}

// Pending returns the import awaiting resolution, or nil.
func (s *Session) Pending() *PendingImport { return s.pending }

// BeginImport runs a parsed batch through the exact-duplicate filter and the
// similarity grouper. When no group needs a human decision the batch merges
// immediately and the result is returned; otherwise the import parks as
// pending and the caller must Confirm or Abandon it.
func (s *Session) BeginImport(batch []record.Record) (*PendingImport, *MergeResult) {
	batch = dedupe.FilterExact(batch)
	groups := dedupe.FindSimilar(batch, s.records)
	if len(groups) == 0 {
		res := s.merge(batch)
		return nil, &res
	}
	s.pending = &PendingImport{
		Groups:     groups,
		Batch:      batch,
		Selections: make([]int, len(groups)),
	}
	return s.pending, nil
}

// SetSelection records the user's choice for one group. Choices may be
// changed any number of times before Confirm.
func (s *Session) SetSelection(group, member int) error {
	if s.pending == nil {
		return ErrNoPendingImport
	}
	if group < 0 || group >= len(s.pending.Groups) {
		return fmt.Errorf("group %d out of range", group)
	}
	if member < 0 || member >= len(s.pending.Groups[group]) {
		return fmt.Errorf("selection %d out of range for group %d", member, group)
	}
	s.pending.Selections[group] = member
	return nil
}

// ConfirmImport applies all selections at once, merges the reassembled batch,
// and clears the pending state unconditionally.
func (s *Session) ConfirmImport() (MergeResult, error) {
	if s.pending == nil {
		return MergeResult{}, ErrNoPendingImport
	}
	p := s.pending
	s.pending = nil
	batch := dedupe.Resolve(p.Groups, p.Selections, p.Batch)
	return s.merge(batch), nil
}

// AbandonImport discards the pending import. The collection is untouched and
// a later import starts clean.
func (s *Session) AbandonImport() { s.pending = nil }

func (s *Session) merge(batch []record.Record) MergeResult {
	merged, added, updated := dedupe.Merge(s.records, batch)
	s.records = merged
	return MergeResult{Added: added, Updated: updated, Total: len(merged)}
}

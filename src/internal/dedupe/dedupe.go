// Package dedupe implements the merge and duplicate-resolution engine: the
// exact-duplicate filter, the similarity grouper, conflict reassembly, and
// the field-count merge against an existing collection.
package dedupe

import (
	"refhub/src/internal/record"
)

// Group is a set of batch records that collide with its first member (the
// anchor) on normalized citation key or normalized title. Groups are only
// surfaced when they have at least two members.
type Group []record.Record

type pairKey struct {
	title string
	key   string
}

// FilterExact removes records from a batch that are byte-identical to an
// earlier record under normalization of both title and citation key. Order is
// preserved; the first occurrence wins. Records with empty title and empty
// key collapse onto each other.
func FilterExact(batch []record.Record) []record.Record {
	seen := make(map[pairKey]bool, len(batch))
	out := make([]record.Record, 0, len(batch))
	for _, r := range batch {
		k := pairKey{title: r.NormTitle(), key: r.NormKey()}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// FindSimilar partitions a filtered batch into groups of records that share a
// normalized title or normalized citation key with the group's anchor record.
// Membership is decided against the anchor only, not pairwise among members.
// A group whose anchor exactly matches an existing collection record on the
// corresponding title/key pair is dropped: it is already reconciled with the
// library and not worth surfacing.
func FindSimilar(batch, existing []record.Record) []Group {
	existingByTitle := make(map[string]record.Record, len(existing))
	existingByKey := make(map[string]record.Record, len(existing))
	for _, e := range existing {
		existingByTitle[e.NormTitle()] = e
		existingByKey[e.NormKey()] = e
	}

	var groups []Group
	processed := make([]bool, len(batch))
	for i, anchor := range batch {
		if processed[i] {
			continue
		}
		title1 := anchor.NormTitle()
		key1 := anchor.NormKey()
		group := Group{anchor}
		processed[i] = true

		for j := i + 1; j < len(batch); j++ {
			if processed[j] {
				continue
			}
			other := batch[j]
			if key1 == other.NormKey() || title1 == other.NormTitle() {
				group = append(group, other)
				processed[j] = true
			}
		}

		// Raw ID and raw title on purpose: only a full correspondence with a
		// library record counts as already reconciled.
		if e, ok := existingByTitle[title1]; ok && e.ID == anchor.ID {
			continue
		}
		if e, ok := existingByKey[key1]; ok && e.Title() == anchor.Title() {
			continue
		}

		if len(group) > 1 {
			groups = append(groups, group)
		}
	}
	return groups
}

// Resolve reassembles a batch after the user has chosen one member per group:
// the chosen records, followed by every batch record whose raw citation key
// appears in no group. Selections out of range fall back to the first member.
func Resolve(groups []Group, selections []int, batch []record.Record) []record.Record {
	out := make([]record.Record, 0, len(batch))
	conflictKeys := make(map[string]bool)
	for i, g := range groups {
		choice := 0
		if i < len(selections) && selections[i] >= 0 && selections[i] < len(g) {
			choice = selections[i]
		}
		out = append(out, g[choice])
		for _, r := range g {
			conflictKeys[r.ID] = true
		}
	}
	for _, r := range batch {
		if !conflictKeys[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

// Merge folds a resolved batch into the existing collection, collapsing on
// normalized title. When both sides have a record for a title, the one with
// strictly more populated fields wins; a winning incoming record inherits the
// stored record's citation key so identifiers stay stable across merges.
// Incoming records with an empty title cannot be deduplicated safely and are
// dropped. The returned collection keeps the existing order first, then new
// records in batch order.
func Merge(existing, incoming []record.Record) (merged []record.Record, added, updated int) {
	index := make(map[string]record.Record, len(existing))
	order := make([]string, 0, len(existing))
	for _, e := range existing {
		k := e.NormTitle()
		if _, ok := index[k]; !ok {
			order = append(order, k)
		}
		index[k] = e
	}

	for _, in := range incoming {
		if in.Title() == "" {
			continue
		}
		k := in.NormTitle()
		stored, ok := index[k]
		if !ok {
			order = append(order, k)
			index[k] = in
			added++
			continue
		}
		if in.FieldCount() > stored.FieldCount() {
			if stored.ID != "" {
				in.ID = stored.ID
			}
			index[k] = in
			updated++
		}
	}

	merged = make([]record.Record, 0, len(order))
	for _, k := range order {
		merged = append(merged, index[k])
	}
	return merged, added, updated
}

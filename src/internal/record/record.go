package record

import (
	"regexp"
	"sort"
	"strings"
)

// Well-known field names used for display and comparisons. The field set is
// open; nothing outside this list is rejected.
const (
	FieldTitle     = "title"
	FieldAuthor    = "author"
	FieldYear      = "year"
	FieldJournal   = "journal"
	FieldBooktitle = "booktitle"
)

// Record is a single bibliographic entry: an open field map plus the citation
// key (ID) and the BibTeX entry type. Field names are case-sensitive.
type Record struct {
	ID     string
	Type   string
	Fields map[string]string
}

// New returns a record with an allocated field map.
func New(id, typ string) Record {
	return Record{ID: id, Type: typ, Fields: map[string]string{}}
}

// Get returns the value of the named field, or "" when absent.
func (r Record) Get(name string) string { return r.Fields[name] }

// Set assigns a field value, allocating the map when needed.
func (r *Record) Set(name, value string) {
	if r.Fields == nil {
		r.Fields = map[string]string{}
	}
	r.Fields[name] = value
}

// Unset removes a field.
func (r *Record) Unset(name string) { delete(r.Fields, name) }

// Title returns the raw title field.
func (r Record) Title() string { return r.Fields[FieldTitle] }

// FieldCount is the number of populated fields including the citation key.
// Derived comparison keys are never counted.
func (r Record) FieldCount() int { return len(r.Fields) + 1 }

// Clone returns a deep copy so callers can mutate fields without aliasing.
func (r Record) Clone() Record {
	out := Record{ID: r.ID, Type: r.Type, Fields: make(map[string]string, len(r.Fields))}
	for k, v := range r.Fields {
		out.Fields[k] = v
	}
	return out
}

// FieldNames returns the record's field names sorted for deterministic output.
func (r Record) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// NormTitle is the record's title comparison key.
func (r Record) NormTitle() string { return NormalizeTitle(r.Title()) }

// NormKey is the record's citation-key comparison key.
func (r Record) NormKey() string { return NormalizeKey(r.ID) }

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeTitle lowercases the title and strips every rune that is not an
// ASCII letter or digit. Empty input normalizes to "".
func NormalizeTitle(title string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(title), "")
}

// NormalizeKey applies the title normalization to a citation key.
func NormalizeKey(id string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(id), "")
}

// FindByID returns the index of the record with the given citation key, or -1.
func FindByID(records []Record, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

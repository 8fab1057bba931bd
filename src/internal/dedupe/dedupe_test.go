package dedupe

import (
	"testing"

	"refhub/src/internal/record"
)

func rec(id, title string, extra ...string) record.Record {
	r := record.New(id, "article")
	if title != "" {
		r.Set(record.FieldTitle, title)
	}
	for i := 0; i+1 < len(extra); i += 2 {
		r.Set(extra[i], extra[i+1])
	}
	return r
}

func TestFilterExact(t *testing.T) {
	batch := []record.Record{
		rec("x1", "A"),
		rec("x1", "A"),
		rec("x2", "A"),
	}
	got := FilterExact(batch)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ID != "x1" || got[1].ID != "x2" {
		t.Fatalf("order not preserved: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestFilterExactEmptyPair(t *testing.T) {
	batch := []record.Record{rec("", ""), rec("", "")}
	if got := FilterExact(batch); len(got) != 1 {
		t.Fatalf("records with empty title and key should collapse, got %d", len(got))
	}
}

func TestFindSimilarGroupsByTitle(t *testing.T) {
	batch := []record.Record{
		rec("a", "Deep Learning"),
		rec("b", "deep learning!!"),
		rec("c", "Other"),
	}
	groups := FindSimilar(batch, nil)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0]
	if len(g) != 2 || g[0].ID != "a" || g[1].ID != "b" {
		t.Fatalf("unexpected group: %+v", g)
	}
}

func TestFindSimilarGroupsByKey(t *testing.T) {
	batch := []record.Record{
		rec("smith2020", "First Paper"),
		rec("Smith_2020", "Second Paper"),
	}
	groups := FindSimilar(batch, nil)
	if len(groups) != 1 || len(groups[0]) != 2 {
		t.Fatalf("expected one group of two, got %+v", groups)
	}
}

func TestFindSimilarAnchorOnlyMatching(t *testing.T) {
	// b matches the anchor by key, c matches the anchor by title. c does not
	// match b at all, but membership is decided against the anchor only.
	batch := []record.Record{
		rec("k1", "Title One"),
		rec("k1", "Unrelated"),
		rec("k9", "Title One"),
	}
	groups := FindSimilar(batch, nil)
	if len(groups) != 1 || len(groups[0]) != 3 {
		t.Fatalf("expected a single group of three, got %+v", groups)
	}
}

func TestFindSimilarExcludesReconciledGroup(t *testing.T) {
	existing := []record.Record{rec("a", "Deep Learning")}
	batch := []record.Record{
		rec("a", "Deep Learning"),
		rec("b", "deep learning!!"),
	}
	// Anchor matches an existing record on both title and key, so the whole
	// group is considered already reconciled.
	if groups := FindSimilar(batch, existing); len(groups) != 0 {
		t.Fatalf("expected no groups, got %+v", groups)
	}
}

func TestFindSimilarKeepsGroupWhenOnlyTitleMatchesLibrary(t *testing.T) {
	existing := []record.Record{rec("other-key", "Deep Learning")}
	batch := []record.Record{
		rec("a", "Deep Learning"),
		rec("b", "deep learning!!"),
	}
	if groups := FindSimilar(batch, existing); len(groups) != 1 {
		t.Fatalf("title match with a different key must still surface, got %+v", groups)
	}
}

func TestResolve(t *testing.T) {
	a := rec("a", "T1")
	b := rec("b", "T1")
	c := rec("c", "Solo")
	groups := []Group{{a, b}}
	batch := []record.Record{a, b, c}

	got := Resolve(groups, []int{1}, batch)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ID != "b" || got[1].ID != "c" {
		t.Fatalf("unexpected reassembly: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestResolveDefaultsToFirstMember(t *testing.T) {
	a := rec("a", "T1")
	b := rec("b", "T1")
	got := Resolve([]Group{{a, b}}, nil, []record.Record{a, b})
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected anchor by default, got %+v", got)
	}
}

func TestMergeAddsAndUpdates(t *testing.T) {
	existing := []record.Record{
		rec("smith2017", "Attention Is All You Need", record.FieldAuthor, "Vaswani"),
	}
	incoming := []record.Record{
		rec("vaswani17", "attention is all you need!",
			record.FieldAuthor, "Vaswani, A.",
			record.FieldYear, "2017",
			record.FieldJournal, "NeurIPS"),
		rec("new1", "A Fresh Paper"),
	}
	merged, added, updated := Merge(existing, incoming)
	if added != 1 || updated != 1 {
		t.Fatalf("added=%d updated=%d", added, updated)
	}
	if len(merged) != 2 {
		t.Fatalf("expected 2 records, got %d", len(merged))
	}
	// Identifier continuity: the richer incoming record wins but keeps the
	// stored citation key.
	winner := merged[0]
	if winner.ID != "smith2017" {
		t.Fatalf("expected stored key smith2017, got %s", winner.ID)
	}
	if winner.Get(record.FieldJournal) != "NeurIPS" || winner.Get(record.FieldYear) != "2017" {
		t.Fatalf("expected incoming field values, got %+v", winner.Fields)
	}
	if winner.Get(record.FieldAuthor) != "Vaswani, A." {
		t.Fatalf("merge is max-fields, not a union: %+v", winner.Fields)
	}
}

func TestMergeExistingWinsOnFewerOrEqualFields(t *testing.T) {
	existing := []record.Record{
		rec("a", "Paper", record.FieldAuthor, "X", record.FieldYear, "2020"),
	}
	incoming := []record.Record{rec("b", "paper")}
	merged, added, updated := Merge(existing, incoming)
	if added != 0 || updated != 0 {
		t.Fatalf("added=%d updated=%d", added, updated)
	}
	if merged[0].ID != "a" || merged[0].Get(record.FieldAuthor) != "X" {
		t.Fatalf("existing record should win silently: %+v", merged[0])
	}
}

func TestMergeIdempotent(t *testing.T) {
	existing := []record.Record{}
	batch := []record.Record{
		rec("a", "One", record.FieldYear, "2001"),
		rec("b", "Two"),
	}
	merged, added, updated := Merge(existing, batch)
	if added != 2 || updated != 0 {
		t.Fatalf("first merge: added=%d updated=%d", added, updated)
	}
	again, added2, updated2 := Merge(merged, batch)
	if added2 != 0 || updated2 != 0 {
		t.Fatalf("second merge must be a no-op: added=%d updated=%d", added2, updated2)
	}
	if len(again) != len(merged) {
		t.Fatalf("collection changed on re-merge")
	}
	for i := range again {
		if again[i].ID != merged[i].ID {
			t.Fatalf("order changed on re-merge")
		}
	}
}

func TestMergeTitleUniquenessInvariant(t *testing.T) {
	existing := []record.Record{rec("a", "Alpha"), rec("b", "Beta")}
	incoming := []record.Record{
		rec("c", "ALPHA!", record.FieldYear, "1999", record.FieldAuthor, "C"),
		rec("d", "Gamma"),
		rec("e", "gamma"),
	}
	merged, _, _ := Merge(existing, incoming)
	seen := map[string]bool{}
	for _, r := range merged {
		k := r.NormTitle()
		if seen[k] {
			t.Fatalf("duplicate normalized title %q in merged collection", k)
		}
		seen[k] = true
	}
}

func TestMergeDropsUntitled(t *testing.T) {
	incoming := []record.Record{
		rec("nokey", "", record.FieldAuthor, "Anon", record.FieldYear, "2024"),
		rec("ok", "Titled"),
	}
	merged, added, _ := Merge(nil, incoming)
	if added != 1 || len(merged) != 1 || merged[0].ID != "ok" {
		t.Fatalf("untitled record must never reach the collection: %+v", merged)
	}
}

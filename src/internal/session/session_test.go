package session

import (
	"errors"
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

func TestBeginImportImmediateMerge(t *testing.T) {
	s := New(nil)
	pending, res := s.BeginImport([]record.Record{rec("a", "One"), rec("b", "Two")})
	if pending != nil {
		t.Fatalf("no conflicts expected")
	}
	if res == nil || res.Added != 2 || res.Updated != 0 || res.Total != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(s.Records()) != 2 {
		t.Fatalf("collection not updated")
	}
}

func TestBeginImportParksConflicts(t *testing.T) {
	s := New(nil)
	pending, res := s.BeginImport([]record.Record{
		rec("a", "Same Title"),
		rec("b", "same title!"),
		rec("c", "Solo"),
	})
	if res != nil {
		t.Fatalf("expected pending import, got immediate result %+v", res)
	}
	if pending == nil || len(pending.Groups) != 1 || len(pending.Batch) != 3 {
		t.Fatalf("unexpected pending state: %+v", pending)
	}
	if len(s.Records()) != 0 {
		t.Fatalf("collection must be untouched while pending")
	}
	// Pending state must survive re-observation between Begin and Confirm.
	if s.Pending() != pending {
		t.Fatalf("pending state was recomputed")
	}
}

func TestConfirmImportAppliesSelections(t *testing.T) {
	s := New(nil)
	pending, _ := s.BeginImport([]record.Record{
		rec("a", "Same Title"),
		rec("b", "same title!", record.FieldYear, "2020"),
		rec("c", "Solo"),
	})
	if pending == nil {
		t.Fatalf("expected conflicts")
	}
	if err := s.SetSelection(0, 1); err != nil {
		t.Fatalf("set selection: %v", err)
	}
	// Selections stay revisable until the single confirming call.
	if err := s.SetSelection(0, 0); err != nil {
		t.Fatalf("reset selection: %v", err)
	}
	if err := s.SetSelection(0, 1); err != nil {
		t.Fatalf("set selection again: %v", err)
	}
	res, err := s.ConfirmImport()
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if res.Added != 2 || res.Total != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if record.FindByID(s.Records(), "b") < 0 {
		t.Fatalf("chosen member missing from collection")
	}
	if record.FindByID(s.Records(), "a") >= 0 {
		t.Fatalf("losing member leaked into collection")
	}
	if s.Pending() != nil {
		t.Fatalf("pending state must clear on confirm")
	}
}

func TestConfirmWithoutPending(t *testing.T) {
	s := New(nil)
	if _, err := s.ConfirmImport(); !errors.Is(err, ErrNoPendingImport) {
		t.Fatalf("expected ErrNoPendingImport, got %v", err)
	}
}

func TestSetSelectionBounds(t *testing.T) {
	s := New(nil)
	pending, _ := s.BeginImport([]record.Record{rec("a", "T"), rec("b", "t")})
	if pending == nil {
		t.Fatalf("expected conflicts")
	}
	if err := s.SetSelection(5, 0); err == nil {
		t.Fatalf("group bound not checked")
	}
	if err := s.SetSelection(0, 9); err == nil {
		t.Fatalf("member bound not checked")
	}
}

func TestAbandonImport(t *testing.T) {
	existing := []record.Record{rec("lib", "Library Paper")}
	s := New(existing)
	pending, _ := s.BeginImport([]record.Record{rec("a", "T"), rec("b", "t")})
	if pending == nil {
		t.Fatalf("expected conflicts")
	}
	s.AbandonImport()
	if s.Pending() != nil {
		t.Fatalf("pending state not cleared")
	}
	if len(s.Records()) != 1 || s.Records()[0].ID != "lib" {
		t.Fatalf("abandon must not touch the collection")
	}
	// A later import starts clean.
	if _, res := s.BeginImport([]record.Record{rec("x", "Fresh")}); res == nil || res.Added != 1 {
		t.Fatalf("stale state contaminated the next import")
	}
}

func TestReplaceDropsPending(t *testing.T) {
	s := New(nil)
	if pending, _ := s.BeginImport([]record.Record{rec("a", "T"), rec("b", "t")}); pending == nil {
		t.Fatalf("expected conflicts")
	}
	s.Replace([]record.Record{rec("r", "Remote")})
	if s.Pending() != nil {
		t.Fatalf("replace must abandon pending import")
	}
	if len(s.Records()) != 1 {
		t.Fatalf("collection not replaced")
	}
}

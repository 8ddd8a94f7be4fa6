package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestCheck_CountsBlocksAndFlagsProblems(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ok.md"), "---\ntitle: \"Route\"\ndate: 2011-07-06\ntype: \"text\"\n---\n\n### Day 1\n\n1. Walk\n2. Camp\n\nDone.\n")
	writeFile(t, filepath.Join(dir, "sub", "empty.md"), "---\ntitle: \"Empty\"\ndate: 2011-07-06\ntype: \"text\"\n---\n\n")
	writeFile(t, filepath.Join(dir, "sub", "notes.txt"), "ignored")

	a := newTestApp(t, Config{})
	report, err := a.Check(context.Background(), dir)
	if !errors.Is(err, ErrCheckFailed) {
		t.Fatalf("expected ErrCheckFailed, got %v", err)
	}
	if len(report.Files) != 2 || report.Problems != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	ok := report.Files[0]
	if ok.Title != "Route" || ok.Date != "2011-07-06" || ok.Type != "text" {
		t.Fatalf("front matter %+v", ok)
	}
	if ok.Headings != 1 || ok.Lists != 1 || ok.Paragraphs != 1 || len(ok.Problems) != 0 {
		t.Fatalf("block counts %+v", ok)
	}
	if p := report.Files[1].Problems; len(p) != 1 || p[0] != "empty body" {
		t.Fatalf("empty.md problems %v", p)
	}
}

func TestCheck_MissingFields(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), "---\ntype: \"forum\"\n---\n\ntext\n")
	a := newTestApp(t, Config{})
	report, err := a.Check(context.Background(), dir)
	if !errors.Is(err, ErrCheckFailed) {
		t.Fatalf("expected ErrCheckFailed, got %v", err)
	}
	if got := report.Files[0].Problems; len(got) != 2 || got[0] != "missing title" || got[1] != "missing date" {
		t.Fatalf("problems %v", got)
	}
}

package app

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func pageXML(title, url, parent, pubDate, content string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		"<item><pubDate>" + pubDate + "</pubDate><title><![CDATA[" + title + "]]></title>" +
		"<url><![CDATA[" + url + "]]></url><parent><![CDATA[" + parent + "]]></parent>" +
		"<content><![CDATA[" + content + "]]></content></item>"
}

func newTestApp(t *testing.T, cfg Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func fixture(t *testing.T) (src, target string) {
	t.Helper()
	dir := t.TempDir()
	src = filepath.Join(dir, "pages")
	target = filepath.Join(dir, "content")
	writeFile(t, filepath.Join(src, "a.xml"), pageXML("Alpha", "alpha", "bukovo_net", "Tue, 22 Jul 2014 15:49:08 -0400", "&lt;p&gt;One&lt;/p&gt;"))
	writeFile(t, filepath.Join(src, "b.xml"), pageXML("Beta", "beta", "bukovo_net", "garbage", "&lt;p&gt;Two&lt;/p&gt;"))
	writeFile(t, filepath.Join(src, "c.xml"), pageXML("Gamma", "gamma", "elsewhere", "", "&lt;p&gt;Three&lt;/p&gt;"))
	writeFile(t, filepath.Join(src, "d.xml"), pageXML("Delta", "", "bukovo_net", "", "&lt;p&gt;Four&lt;/p&gt;"))
	writeFile(t, filepath.Join(src, "broken.xml"), "<item><title>")
	return src, target
}

func TestMigrate_SelectsByParent(t *testing.T) {
	src, target := fixture(t)
	a := newTestApp(t, Config{SourceDir: src, TargetRoot: target})
	report, err := a.Migrate(context.Background(), "text")
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if report.Migrated != 2 || report.Skipped != 1 || report.Failed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	out := filepath.Join(target, "texts", "bukovo-net")
	b, err := os.ReadFile(filepath.Join(out, "alpha.md"))
	if err != nil {
		t.Fatalf("read alpha: %v", err)
	}
	if want := "---\ntitle: \"Alpha\"\ndate: 2014-07-22\ntype: \"text\"\n---\n\nOne\n"; string(b) != want {
		t.Fatalf("alpha.md:\n%q\nwant\n%q", b, want)
	}
	b, err = os.ReadFile(filepath.Join(out, "beta.md"))
	if err != nil {
		t.Fatalf("read beta: %v", err)
	}
	if !strings.Contains(string(b), "date: 2005-01-01\n") {
		t.Fatalf("malformed pubDate should fall back to the profile date:\n%s", b)
	}
	if _, err := os.Stat(filepath.Join(out, "gamma.md")); !os.IsNotExist(err) {
		t.Fatalf("page with another parent must not be migrated")
	}
	var noURL bool
	for _, e := range report.Entries {
		if e.Status == StatusSkipped && e.Reason == ReasonNoURL && strings.HasSuffix(e.Source, "d.xml") {
			noURL = true
		}
	}
	if !noURL {
		t.Fatalf("expected d.xml skipped for missing url: %+v", report.Entries)
	}
}

func TestMigrate_SkipsExistingUnlessOverwrite(t *testing.T) {
	src, target := fixture(t)
	existing := filepath.Join(target, "texts", "bukovo-net", "alpha.md")
	writeFile(t, existing, "hand edited\n")

	a := newTestApp(t, Config{SourceDir: src, TargetRoot: target})
	report, err := a.Migrate(context.Background(), "text")
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if report.Migrated != 1 || report.Skipped != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if b, _ := os.ReadFile(existing); string(b) != "hand edited\n" {
		t.Fatalf("existing file was modified: %q", b)
	}

	a = newTestApp(t, Config{SourceDir: src, TargetRoot: target, Overwrite: true})
	if _, err := a.Migrate(context.Background(), "text"); err != nil {
		t.Fatalf("Migrate overwrite: %v", err)
	}
	if b, _ := os.ReadFile(existing); !strings.HasPrefix(string(b), "---\ntitle: \"Alpha\"") {
		t.Fatalf("overwrite did not replace file: %q", b)
	}
}

func TestMigrate_DryRunWritesNothing(t *testing.T) {
	src, target := fixture(t)
	manifest := filepath.Join(t.TempDir(), "run", "manifest.json")
	a := newTestApp(t, Config{SourceDir: src, TargetRoot: target, DryRun: true, ManifestPath: manifest})
	report, err := a.Migrate(context.Background(), "text")
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if report.Migrated != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	for _, e := range report.Entries {
		if e.Status == StatusPlanned && (e.SHA256 == "" || e.Chars == 0) {
			t.Fatalf("planned entry without digest: %+v", e)
		}
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatalf("dry run must not create the target root")
	}

	b, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	var got struct {
		Meta    manifestMeta `json:"meta"`
		Entries []Entry      `json:"entries"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("manifest json: %v", err)
	}
	if !got.Meta.DryRun || got.Meta.Profile != "text" || got.Meta.RunID == "" || len(got.Entries) != 3 {
		t.Fatalf("unexpected manifest %+v", got)
	}
}

func TestMigrate_SlugsAndFailures(t *testing.T) {
	src, target := fixture(t)
	writeFile(t, filepath.Join(src, "evil.xml"), pageXML("Evil", "../escape", "", "", "x"))
	a := newTestApp(t, Config{SourceDir: src, TargetRoot: target})

	report, err := a.Migrate(context.Background(), "narrative", "c", "missing", "evil", "broken.xml")
	if !errors.Is(err, ErrDocumentsFailed) {
		t.Fatalf("expected ErrDocumentsFailed, got %v", err)
	}
	if report.Migrated != 1 || report.Skipped != 1 || report.Failed != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Entries[1].Reason != ReasonMissingSource {
		t.Fatalf("missing slug entry %+v", report.Entries[1])
	}
	b, err := os.ReadFile(filepath.Join(target, "texts", "gamma.md"))
	if err != nil {
		t.Fatalf("read gamma: %v", err)
	}
	if want := "---\ntitle: \"Gamma\"\ndate: 2006-01-01\ntype: \"texts\"\n---\n\nThree\n"; string(b) != want {
		t.Fatalf("gamma.md:\n%q\nwant\n%q", b, want)
	}
	entries, _ := os.ReadDir(filepath.Join(target, "texts"))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".gsmigrate-") {
			t.Fatalf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestMigrate_NarrativeUsesItsOwnSlugs(t *testing.T) {
	src, target := fixture(t)
	writeFile(t, filepath.Join(src, "tlavina.xml"), pageXML("Lavina", "tlavina", "", "", "&lt;p&gt;Snow &lt;i&gt;fell&lt;/i&gt;&lt;/p&gt;"))
	a := newTestApp(t, Config{SourceDir: src, TargetRoot: target})

	report, err := a.Migrate(context.Background(), "narrative")
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if report.Migrated != 1 || report.Skipped != 6 || report.Failed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	entries, _ := os.ReadDir(filepath.Join(target, "texts"))
	if len(entries) != 1 || entries[0].Name() != "tlavina.md" {
		t.Fatalf("narrative picked up unrelated pages: %v", entries)
	}

	check, err := a.Check(context.Background(), target)
	if err != nil {
		t.Fatalf("narrative output should pass check: %v %+v", err, check)
	}
	if len(check.Files) != 1 || check.Files[0].Date != "2006-01-01" {
		t.Fatalf("unexpected check report %+v", check)
	}
}

func TestMigrate_ProfileWithoutSelection(t *testing.T) {
	src, target := fixture(t)
	a := newTestApp(t, Config{SourceDir: src, TargetRoot: target})
	report, err := a.Migrate(context.Background(), "forum")
	if !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	if len(report.Entries) != 0 {
		t.Fatalf("nothing should be processed: %+v", report)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatalf("target root must not be created")
	}

	writeFile(t, filepath.Join(src, "thread.xml"), pageXML("Thread", "thread", "", "", "&lt;p&gt;Вася 14 марта 2002 в 12:01:33&lt;/p&gt;&lt;p&gt;hi&lt;/p&gt;"))
	report, err = a.Migrate(context.Background(), "forum", "thread")
	if err != nil || report.Migrated != 1 {
		t.Fatalf("forum with slugs: %+v %v", report, err)
	}
}

func TestMigrate_RouteIndexPage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "pages")
	target := filepath.Join(dir, "content")
	writeFile(t, filepath.Join(src, "arkhiz_routes.xml"), pageXML("Routes", "arkhiz_routes", "", "", "&lt;p&gt;All routes&lt;/p&gt;"))
	writeFile(t, filepath.Join(src, "tokmak.xml"), pageXML("Tokmak", "tokmak", "arkhiz_routes", "", "&lt;ol&gt;&lt;li&gt;Up&lt;/li&gt;&lt;/ol&gt;"))
	writeFile(t, filepath.Join(src, "other.xml"), pageXML("Other", "other", "", "", "&lt;p&gt;x&lt;/p&gt;"))

	a := newTestApp(t, Config{SourceDir: src, TargetRoot: target})
	report, err := a.Migrate(context.Background(), "route")
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if report.Migrated != 2 || len(report.Entries) != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	index := filepath.Join(target, "texts", "arkhiz_routes.md")
	if report.Entries[0].Output != index {
		t.Fatalf("index page should come first and land next to the routes: %+v", report.Entries[0])
	}
	b, err := os.ReadFile(index)
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if !strings.Contains(string(b), "date: 2011-07-06\n") || !strings.HasSuffix(string(b), "All routes\n") {
		t.Fatalf("index page:\n%s", b)
	}
	if _, err := os.Stat(filepath.Join(target, "texts", "arkhiz_routes", "tokmak.md")); err != nil {
		t.Fatalf("route page missing: %v", err)
	}

	other := filepath.Join(dir, "explicit")
	a = newTestApp(t, Config{SourceDir: src, TargetRoot: other})
	report, err = a.Migrate(context.Background(), "route", "tokmak")
	if err != nil || report.Migrated != 1 {
		t.Fatalf("explicit slugs: %+v %v", report, err)
	}
	if _, err := os.Stat(filepath.Join(other, "texts", "arkhiz_routes.md")); !os.IsNotExist(err) {
		t.Fatalf("index page must not be written when slugs are given")
	}
}

func TestMigrate_UnknownProfileAndCancel(t *testing.T) {
	src, target := fixture(t)
	a := newTestApp(t, Config{SourceDir: src, TargetRoot: target})
	if _, err := a.Migrate(context.Background(), "nope"); err == nil {
		t.Fatalf("expected unknown profile error")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := a.Migrate(ctx, "text")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(report.Entries) != 0 {
		t.Fatalf("cancelled run should not process documents: %+v", report)
	}
}

func TestMigrate_PDFProofCopies(t *testing.T) {
	src, target := fixture(t)
	pdfDir := filepath.Join(t.TempDir(), "proofs")
	a := newTestApp(t, Config{SourceDir: src, TargetRoot: target, PDFDir: pdfDir})
	if _, err := a.Migrate(context.Background(), "text"); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(pdfDir, "alpha.pdf"))
	if err != nil {
		t.Fatalf("pdf proof missing: %v", err)
	}
	if !strings.HasPrefix(string(b), "%PDF-") {
		t.Fatalf("not a pdf: %q", b[:8])
	}
}

func TestOutputName(t *testing.T) {
	if n, err := outputName(" tokmak "); err != nil || n != "tokmak.md" {
		t.Fatalf("outputName=%q %v", n, err)
	}
	for _, bad := range []string{"", "..", "a/b", `a\b`} {
		if _, err := outputName(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

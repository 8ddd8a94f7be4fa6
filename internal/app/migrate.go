package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gsmigrate/internal/page"
	"github.com/hyperifyio/gsmigrate/internal/profile"
)

// ErrDocumentsFailed is returned by Migrate when at least one document could
// not be converted or written. Per the exit code policy this maps to exit 2.
var ErrDocumentsFailed = errors.New("one or more documents failed")

// ErrNoSelection is returned by Migrate for a profile that names neither
// slugs nor a parent when no slugs are passed in.
var ErrNoSelection = errors.New("profile selects no pages; pass slugs")

// Status of one document in a batch.
type Status string

const (
	StatusMigrated Status = "migrated"
	// StatusPlanned marks a document converted in dry-run mode.
	StatusPlanned Status = "planned"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Skip reasons.
const (
	ReasonNoURL         = "no URL"
	ReasonExists        = "already exists"
	ReasonMissingSource = "xml not found"
)

// Entry records the outcome for one source file.
type Entry struct {
	Source string `json:"source"`
	Output string `json:"output,omitempty"`
	URL    string `json:"url,omitempty"`
	Title  string `json:"title,omitempty"`
	Date   string `json:"date,omitempty"`
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
	SHA256 string `json:"sha256,omitempty"`
	Chars  int    `json:"chars,omitempty"`
}

// Report summarizes a batch.
type Report struct {
	Profile  string  `json:"profile"`
	Migrated int     `json:"migrated"`
	Skipped  int     `json:"skipped"`
	Failed   int     `json:"failed"`
	Entries  []Entry `json:"entries"`
}

func (r *Report) add(e Entry) {
	switch e.Status {
	case StatusMigrated, StatusPlanned:
		r.Migrated++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	}
	r.Entries = append(r.Entries, e)
}

type source struct {
	path    string
	page    *page.Page
	missing bool
	index   bool
}

func (a *App) sourcePath(slug string) string {
	return filepath.Join(a.cfg.SourceDir, strings.TrimSuffix(slug, ".xml")+".xml")
}

// indexSource returns the profile's index page when it exists. A missing
// index page is not reported.
func (a *App) indexSource(prof profile.Profile) (source, bool) {
	if prof.Index == "" {
		return source{}, false
	}
	path := a.sourcePath(prof.Index)
	if _, err := os.Stat(path); err != nil {
		log.Debug().Err(err).Str("file", path).Msg("index page not migrated")
		return source{}, false
	}
	return source{path: path, index: true}, true
}

// Migrate converts every page selected by the named profile. When slugs are
// given they replace the profile's own selection. The batch continues past
// failed documents; ErrDocumentsFailed is returned with the report when any
// document failed. A cancelled context stops the batch between documents.
func (a *App) Migrate(ctx context.Context, profileName string, slugs ...string) (Report, error) {
	prof, err := a.profiles.Get(profileName)
	if err != nil {
		return Report{}, err
	}
	if len(slugs) > 0 {
		prof.Slugs = slugs
		prof.Index = ""
	}
	report := Report{Profile: prof.Name}
	if !prof.HasSelection() {
		return report, fmt.Errorf("%w: %s", ErrNoSelection, prof.Name)
	}

	sources, err := a.selectSources(prof)
	if err != nil {
		return report, err
	}
	if index, ok := a.indexSource(prof); ok {
		sources = append([]source{index}, sources...)
	}
	targetDir := filepath.Join(a.cfg.TargetRoot, filepath.FromSlash(prof.Target))
	if !a.cfg.DryRun {
		if err := os.MkdirAll(targetDir, 0o755); err != nil {
			return report, fmt.Errorf("create target dir: %w", err)
		}
	}
	log.Info().Str("profile", prof.Name).Int("sources", len(sources)).Str("target", targetDir).Bool("dry_run", a.cfg.DryRun).Msg("migration started")

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		dir := targetDir
		if src.index {
			dir = filepath.Dir(targetDir)
		}
		e := a.migrateOne(src, prof, dir)
		switch e.Status {
		case StatusFailed:
			log.Error().Str("file", e.Source).Str("url", e.URL).Str("reason", e.Reason).Msg("document failed")
		case StatusSkipped:
			log.Info().Str("file", e.Source).Str("url", e.URL).Str("reason", e.Reason).Msg("skipped")
		default:
			log.Info().Str("file", e.Source).Str("url", e.URL).Str("out", e.Output).Msg(string(e.Status))
		}
		report.add(e)
	}

	if a.cfg.ManifestPath != "" {
		if err := writeManifest(a.cfg.ManifestPath, a.cfg.DryRun, report); err != nil {
			log.Warn().Err(err).Str("file", a.cfg.ManifestPath).Msg("manifest not written")
		}
	}
	log.Info().Int("migrated", report.Migrated).Int("skipped", report.Skipped).Int("failed", report.Failed).Msg("migration finished")
	if report.Failed > 0 {
		return report, ErrDocumentsFailed
	}
	return report, nil
}

// selectSources lists the source files for a profile in a stable order.
func (a *App) selectSources(prof profile.Profile) ([]source, error) {
	if len(prof.Slugs) > 0 {
		out := make([]source, 0, len(prof.Slugs))
		for _, slug := range prof.Slugs {
			path := a.sourcePath(slug)
			_, err := os.Stat(path)
			out = append(out, source{path: path, missing: errors.Is(err, os.ErrNotExist)})
		}
		return out, nil
	}

	paths, err := filepath.Glob(filepath.Join(a.cfg.SourceDir, "*.xml"))
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	sort.Strings(paths)
	out := make([]source, 0, len(paths))
	for _, path := range paths {
		if prof.Index != "" && path == a.sourcePath(prof.Index) {
			continue
		}
		p, err := page.ParseFile(path)
		if err != nil {
			log.Debug().Err(err).Str("file", path).Msg("ignored during selection")
			continue
		}
		if p.Parent == prof.Parent {
			out = append(out, source{path: path, page: &p})
		}
	}
	return out, nil
}

func (a *App) migrateOne(src source, prof profile.Profile, targetDir string) Entry {
	e := Entry{Source: src.path}
	if src.missing {
		e.Status, e.Reason = StatusSkipped, ReasonMissingSource
		return e
	}

	var p page.Page
	if src.page != nil {
		p = *src.page
	} else {
		var err error
		if p, err = page.ParseFile(src.path); err != nil {
			e.Status, e.Reason = StatusFailed, err.Error()
			return e
		}
	}
	e.URL, e.Title = p.URL, p.Title
	if strings.TrimSpace(p.URL) == "" {
		e.Status, e.Reason = StatusSkipped, ReasonNoURL
		return e
	}
	name, err := outputName(p.URL)
	if err != nil {
		e.Status, e.Reason = StatusFailed, err.Error()
		return e
	}
	e.Output = filepath.Join(targetDir, name)
	if !a.cfg.Overwrite {
		if _, err := os.Stat(e.Output); err == nil {
			e.Status, e.Reason = StatusSkipped, ReasonExists
			return e
		}
	}

	doc, err := a.ConvertPage(p, prof)
	if err != nil {
		e.Status, e.Reason = StatusFailed, err.Error()
		return e
	}
	e.Date = doc.Date
	e.SHA256 = computeSHA256Hex(string(doc.Output))
	e.Chars = len(doc.Output)
	if a.cfg.DryRun {
		e.Status = StatusPlanned
		return e
	}
	if err := writeFileAtomic(e.Output, doc.Output); err != nil {
		e.Status, e.Reason = StatusFailed, err.Error()
		return e
	}
	e.Status = StatusMigrated

	if a.cfg.PDFDir != "" {
		pdfPath := filepath.Join(a.cfg.PDFDir, strings.TrimSuffix(name, ".md")+".pdf")
		if err := writeProofPDF(p.Title, doc.Body, pdfPath, a.cfg.PDFFont); err != nil {
			log.Warn().Err(err).Str("file", pdfPath).Msg("pdf proof not written")
		}
	}
	return e
}

// writeFileAtomic writes data to a temporary file in the destination
// directory and renames it into place, so a failure never leaves a partial
// output file behind.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".gsmigrate-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

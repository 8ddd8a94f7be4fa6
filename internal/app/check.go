package app

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/hyperifyio/gsmigrate/internal/frontmatter"
)

// ErrCheckFailed is returned by Check when any file has problems.
var ErrCheckFailed = errors.New("check found problems")

// CheckFile is the result for one markdown file.
type CheckFile struct {
	Path       string
	Title      string
	Type       string
	Date       string
	Headings   int
	Lists      int
	Paragraphs int
	Problems   []string
}

// CheckReport summarizes a Check run.
type CheckReport struct {
	Files    []CheckFile
	Problems int
}

// Check parses every *.md file under dir and verifies that it carries a
// front matter block with title, date and type and a non-empty body. The
// body's block structure is counted with a CommonMark parser.
func (a *App) Check(ctx context.Context, dir string) (CheckReport, error) {
	var report CheckReport
	md := goldmark.New()
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		f := checkFile(md, path, src)
		for _, p := range f.Problems {
			log.Warn().Str("file", path).Str("reason", p).Msg("check")
		}
		report.Problems += len(f.Problems)
		report.Files = append(report.Files, f)
		return nil
	})
	if err != nil {
		return report, err
	}
	log.Info().Int("files", len(report.Files)).Int("problems", report.Problems).Msg("check finished")
	if report.Problems > 0 {
		return report, ErrCheckFailed
	}
	return report, nil
}

func checkFile(md goldmark.Markdown, path string, src []byte) CheckFile {
	f := CheckFile{Path: path}
	doc, err := frontmatter.Parse(src)
	if err != nil {
		f.Problems = append(f.Problems, err.Error())
		return f
	}
	f.Title, f.Type = doc.Title, doc.Type
	if !doc.Date.IsZero() {
		f.Date = doc.Date.Format("2006-01-02")
	}
	if strings.TrimSpace(f.Title) == "" {
		f.Problems = append(f.Problems, "missing title")
	}
	if f.Date == "" {
		f.Problems = append(f.Problems, "missing date")
	}
	if strings.TrimSpace(f.Type) == "" {
		f.Problems = append(f.Problems, "missing type")
	}
	if len(strings.TrimSpace(string(doc.Body))) == 0 {
		f.Problems = append(f.Problems, "empty body")
		return f
	}

	root := md.Parser().Parse(text.NewReader(doc.Body))
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindHeading:
			f.Headings++
		case ast.KindList:
			f.Lists++
		case ast.KindParagraph:
			f.Paragraphs++
		}
		return ast.WalkContinue, nil
	})
	return f
}

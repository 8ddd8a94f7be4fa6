package app

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gsmigrate/internal/forum"
	"github.com/hyperifyio/gsmigrate/internal/frontmatter"
	"github.com/hyperifyio/gsmigrate/internal/markdown"
	"github.com/hyperifyio/gsmigrate/internal/page"
	"github.com/hyperifyio/gsmigrate/internal/profile"
)

// Document is one converted page, ready to be written.
type Document struct {
	Source string
	Page   page.Page
	// Date is the front matter date, possibly the profile fallback or "".
	Date string
	// Body is the markdown body without front matter.
	Body string
	// Output is the complete file content.
	Output []byte
}

// ConvertPage converts a decoded page under the given profile.
func (a *App) ConvertPage(p page.Page, prof profile.Profile) (Document, error) {
	var body string
	if prof.IsForum() {
		opts, err := prof.ForumFormatOptions(a.headers)
		if err != nil {
			return Document{}, err
		}
		body = forum.Format(p.Content, opts).String()
	} else {
		body = markdown.ConvertHTML(p.Content, prof.Caps())
	}

	date, err := p.Date(prof.DefaultDate)
	if err != nil {
		log.Debug().Err(err).Str("url", p.URL).Str("fallback", prof.DefaultDate).Msg("pubDate not usable")
	}

	out, err := frontmatter.Render(frontmatter.Meta{Title: p.Title, Date: date, Type: prof.Type}, body)
	if err != nil {
		return Document{}, err
	}
	return Document{Page: p, Date: date, Body: body, Output: out}, nil
}

// ConvertFile decodes and converts one export file.
func (a *App) ConvertFile(path string, prof profile.Profile) (Document, error) {
	p, err := page.ParseFile(path)
	if err != nil {
		return Document{}, err
	}
	doc, err := a.ConvertPage(p, prof)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// outputName maps a page URL to its file name. URLs that would escape the
// target directory are rejected.
func outputName(url string) (string, error) {
	u := strings.TrimSpace(url)
	switch {
	case u == "":
		return "", fmt.Errorf("empty url")
	case u == "." || u == ".." || strings.ContainsAny(u, `/\`) || strings.ContainsRune(u, 0):
		return "", fmt.Errorf("unsafe url %q", url)
	}
	return u + ".md", nil
}

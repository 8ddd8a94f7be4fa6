// Package page decodes GetSimple CMS page exports (data/pages/*.xml).
package page

import (
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// DefaultTitle is used when a page has no title element or an empty one.
const DefaultTitle = "Untitled"

// PubDateLayout is the RFC-2822 style layout of the pubDate element, e.g.
// "Tue, 22 Jul 2014 15:49:08 -0400". A single digit day is accepted.
const PubDateLayout = "Mon, 2 Jan 2006 15:04:05 -0700"

var (
	// ErrEmptyDocument is returned when the input holds no XML element.
	ErrEmptyDocument = errors.New("page: no xml root element")
	// ErrMalformedDate reports a pubDate that does not match PubDateLayout.
	ErrMalformedDate = errors.New("page: malformed pubDate")
)

// Page is one exported CMS page. Missing elements are left at their
// defaults: Title falls back to DefaultTitle, everything else to "".
type Page struct {
	Title   string
	URL     string
	Parent  string
	PubDate string
	// Content is the HTML body, already unescaped from its stored form.
	Content string
	Author  string
}

// fields lists the elements Parse captures. The first element of each name
// anywhere in the document wins.
var fields = []string{"title", "url", "parent", "pubDate", "content", "author"}

// Parse decodes a page export. Declared non-UTF-8 encodings are converted.
func Parse(r io.Reader) (Page, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = xml.HTMLEntity

	values := make(map[string]string, len(fields))
	var (
		sawRoot bool
		cur     string
		depth   int
		buf     strings.Builder
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Page{}, fmt.Errorf("decode xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			sawRoot = true
			if cur != "" {
				depth++
				continue
			}
			if _, seen := values[t.Name.Local]; seen || !wanted(t.Name.Local) {
				continue
			}
			cur = t.Name.Local
			depth = 0
			buf.Reset()
		case xml.EndElement:
			if cur == "" {
				continue
			}
			if depth > 0 {
				depth--
				continue
			}
			values[cur] = buf.String()
			cur = ""
		case xml.CharData:
			if cur != "" {
				buf.Write(t)
			}
		}
	}
	if !sawRoot {
		return Page{}, ErrEmptyDocument
	}

	p := Page{
		Title:   html.UnescapeString(strings.TrimSpace(values["title"])),
		URL:     strings.TrimSpace(values["url"]),
		Parent:  strings.TrimSpace(values["parent"]),
		PubDate: strings.TrimSpace(values["pubDate"]),
		Author:  strings.TrimSpace(values["author"]),
		// The CMS stores the body entity-escaped inside the XML text.
		Content: html.UnescapeString(values["content"]),
	}
	if p.Title == "" {
		p.Title = DefaultTitle
	}
	return p, nil
}

// ParseFile opens and decodes one export file.
func ParseFile(path string) (Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return Page{}, err
	}
	defer f.Close()
	p, err := Parse(f)
	if err != nil {
		return Page{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func wanted(name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

// PubTime parses a pubDate value.
func PubTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrMalformedDate)
	}
	t, err := time.Parse(PubDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	return t, nil
}

// FormatDate returns s as YYYY-MM-DD in its own UTC offset. When s cannot be
// parsed it returns fallback together with the parse error, which callers
// treat as informational.
func FormatDate(s, fallback string) (string, error) {
	t, err := PubTime(s)
	if err != nil {
		return fallback, err
	}
	return t.Format("2006-01-02"), nil
}

// Date is FormatDate applied to the page's pubDate.
func (p Page) Date(fallback string) (string, error) {
	return FormatDate(p.PubDate, fallback)
}

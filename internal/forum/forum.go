// Package forum formats exported forum threads: the page body is converted
// with the plain extractor profile, split into posts, and post header lines
// are set in bold.
package forum

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hyperifyio/gsmigrate/internal/markdown"
)

// SplitMode selects how a thread body is cut into posts.
type SplitMode string

const (
	// SplitParagraph treats every paragraph as one post.
	SplitParagraph SplitMode = "paragraph"
	// SplitHeader starts a new post at every header line. Text before the
	// first header is kept as an intro.
	SplitHeader SplitMode = "header"
)

// ParseSplitMode validates a split mode name. Empty means SplitParagraph.
func ParseSplitMode(s string) (SplitMode, error) {
	switch SplitMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", SplitParagraph:
		return SplitParagraph, nil
	case SplitHeader:
		return SplitHeader, nil
	}
	return "", fmt.Errorf("forum: unknown split mode %q", s)
}

// PostSeparator is written between posts.
const PostSeparator = "\n\n---\n\n"

// Options configures Format.
type Options struct {
	Split   SplitMode
	Headers *Matcher
	// SplitQuotes moves inline ">" and ">>" quote markers that follow text
	// onto their own paragraph.
	SplitQuotes bool
}

// Thread is a formatted forum page.
type Thread struct {
	Intro string
	Posts []string
}

// String renders the thread body.
func (t Thread) String() string {
	body := strings.Join(t.Posts, PostSeparator)
	switch {
	case t.Intro == "":
		return body
	case body == "":
		return t.Intro
	}
	return t.Intro + "\n\n" + body
}

var quoteMarker = regexp.MustCompile(`(\S)\s+(>>?)(\s)`)

// Format converts an HTML thread body.
func Format(body string, opts Options) Thread {
	paras := paragraphs(markdown.ConvertHTML(body, markdown.Plain))
	var th Thread
	switch opts.Split {
	case SplitHeader:
		th = splitByHeader(paras, opts)
	default:
		for _, p := range paras {
			post := [][]string{p}
			if opts.Headers.Match(p[0]) {
				post = [][]string{{bold(p[0])}}
				if len(p) > 1 {
					post = append(post, p[1:])
				}
			}
			th.Posts = append(th.Posts, opts.finish(post))
		}
	}
	return th
}

func splitByHeader(paras [][]string, opts Options) Thread {
	var (
		th      Thread
		intro   [][]string
		cur     [][]string
		started bool
	)
	flush := func(run []string) {
		if len(run) == 0 {
			return
		}
		if started {
			cur = append(cur, run)
		} else {
			intro = append(intro, run)
		}
	}
	for _, p := range paras {
		var run []string
		for _, line := range p {
			if !opts.Headers.Match(line) {
				run = append(run, line)
				continue
			}
			flush(run)
			run = nil
			if started {
				th.Posts = append(th.Posts, opts.finish(cur))
			}
			started = true
			cur = [][]string{{bold(line)}}
		}
		flush(run)
	}
	if started {
		th.Posts = append(th.Posts, opts.finish(cur))
	}
	th.Intro = opts.finish(intro)
	return th
}

func (o Options) finish(paras [][]string) string {
	blocks := make([]string, 0, len(paras))
	for _, p := range paras {
		blocks = append(blocks, strings.Join(p, " \n"))
	}
	s := strings.Join(blocks, "\n\n")
	if o.SplitQuotes {
		s = quoteMarker.ReplaceAllString(s, "$1\n\n$2$3")
	}
	return s
}

// paragraphs splits converted markdown into paragraphs of trimmed lines.
func paragraphs(md string) [][]string {
	var out [][]string
	for _, block := range strings.Split(md, "\n\n") {
		var lines []string
		for _, l := range strings.Split(block, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				lines = append(lines, l)
			}
		}
		if len(lines) > 0 {
			out = append(out, lines)
		}
	}
	return out
}

func bold(line string) string {
	return "**" + line + "**"
}

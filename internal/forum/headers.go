package forum

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

//go:embed headers.yaml
var defaultHeaders []byte

// HeaderTable maps a locale to the patterns that recognise a post header
// line (author and timestamp) in that locale's exports.
type HeaderTable map[string][]string

// DefaultHeaders returns the built-in table.
func DefaultHeaders() HeaderTable {
	t, err := ParseHeaders(defaultHeaders)
	if err != nil {
		panic(fmt.Sprintf("forum: built-in header table: %v", err))
	}
	return t
}

// ParseHeaders decodes a YAML header table.
func ParseHeaders(b []byte) (HeaderTable, error) {
	var t HeaderTable
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("parse header table: %w", err)
	}
	return t, nil
}

// LoadHeaders reads a YAML header table from path.
func LoadHeaders(path string) (HeaderTable, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseHeaders(b)
}

// Merge returns a copy of t where locales present in other replace t's.
func (t HeaderTable) Merge(other HeaderTable) HeaderTable {
	out := make(HeaderTable, len(t)+len(other))
	for k, v := range t {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range other {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Locales lists the table's locales in sorted order.
func (t HeaderTable) Locales() []string {
	out := make([]string, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Matcher compiles the patterns of the given locales, or of every locale
// when none are given.
func (t HeaderTable) Matcher(locales ...string) (*Matcher, error) {
	if len(locales) == 0 {
		locales = t.Locales()
	}
	m := &Matcher{}
	for _, loc := range locales {
		pats, ok := t[loc]
		if !ok {
			return nil, fmt.Errorf("header table: unknown locale %q", loc)
		}
		for i, p := range pats {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("header table: %s[%d]: %w", loc, i, err)
			}
			m.res = append(m.res, re)
		}
	}
	return m, nil
}

// Matcher recognises post header lines.
type Matcher struct {
	res []*regexp.Regexp
}

// Match reports whether line is a post header. A nil Matcher matches nothing.
func (m *Matcher) Match(line string) bool {
	if m == nil {
		return false
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	for _, re := range m.res {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

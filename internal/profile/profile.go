// Package profile defines content categories: which pages a category
// covers, how their HTML is converted, and how the output is tagged.
package profile

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/hyperifyio/gsmigrate/internal/forum"
	"github.com/hyperifyio/gsmigrate/internal/markdown"
)

// ErrUnknownProfile is returned by Set.Get for names not in the set.
var ErrUnknownProfile = errors.New("profile: unknown profile")

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Profile describes one content category.
type Profile struct {
	Name string `yaml:"name" json:"name" toml:"name"`
	// Type is the category tag written to front matter.
	Type string `yaml:"type" json:"type" toml:"type"`
	// Preset names a capability set (plain, structured, narrative). When
	// empty, Capabilities is used as given.
	Preset       string                `yaml:"preset" json:"preset" toml:"preset"`
	Capabilities markdown.Capabilities `yaml:"capabilities" json:"capabilities" toml:"capabilities"`
	// DefaultDate (YYYY-MM-DD) replaces a missing or malformed pubDate.
	// Empty omits the date in that case.
	DefaultDate string `yaml:"defaultDate" json:"defaultDate" toml:"defaultDate"`
	// Parent selects pages whose parent element equals it.
	Parent string `yaml:"parent" json:"parent" toml:"parent"`
	// Slugs lists source files (without .xml) explicitly; it overrides Parent.
	Slugs []string `yaml:"slugs" json:"slugs" toml:"slugs"`
	// Index names the category's index page (without .xml). It is written
	// next to Target rather than into it, and only when the profile's own
	// selection is used.
	Index string `yaml:"index" json:"index" toml:"index"`
	// Target is the output directory, relative to the target root.
	Target string        `yaml:"target" json:"target" toml:"target"`
	Forum  *ForumOptions `yaml:"forum" json:"forum" toml:"forum"`
}

// ForumOptions turns a profile into a forum thread profile.
type ForumOptions struct {
	Split       string   `yaml:"split" json:"split" toml:"split"`
	Locales     []string `yaml:"locales" json:"locales" toml:"locales"`
	SplitQuotes bool     `yaml:"splitQuotes" json:"splitQuotes" toml:"splitQuotes"`
}

// Validate implements validation.Validatable.
func (f ForumOptions) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Split, validation.In("paragraph", "header")),
		validation.Field(&f.Locales, validation.Each(validation.Required)),
	)
}

// Validate checks the profile definition.
func (p Profile) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Match(namePattern)),
		validation.Field(&p.Type, validation.Required),
		validation.Field(&p.Preset, validation.In("plain", "structured", "narrative")),
		validation.Field(&p.DefaultDate, validation.Date("2006-01-02")),
		validation.Field(&p.Slugs, validation.Each(validation.Required)),
		validation.Field(&p.Index, validation.Match(namePattern)),
		validation.Field(&p.Target, validation.Required),
		validation.Field(&p.Forum),
	)
}

// Caps returns the extractor capabilities for the profile.
func (p Profile) Caps() markdown.Capabilities {
	if p.Preset != "" {
		if c, ok := markdown.CapabilitiesByName(p.Preset); ok {
			return c
		}
	}
	return p.Capabilities
}

// HasSelection reports whether the profile picks pages on its own.
func (p Profile) HasSelection() bool { return len(p.Slugs) > 0 || p.Parent != "" }

// IsForum reports whether pages are formatted as forum threads.
func (p Profile) IsForum() bool { return p.Forum != nil }

// ForumFormatOptions compiles the forum options against a header table.
func (p Profile) ForumFormatOptions(headers forum.HeaderTable) (forum.Options, error) {
	if p.Forum == nil {
		return forum.Options{}, fmt.Errorf("profile %s: not a forum profile", p.Name)
	}
	split, err := forum.ParseSplitMode(p.Forum.Split)
	if err != nil {
		return forum.Options{}, err
	}
	m, err := headers.Matcher(p.Forum.Locales...)
	if err != nil {
		return forum.Options{}, fmt.Errorf("profile %s: %w", p.Name, err)
	}
	return forum.Options{Split: split, Headers: m, SplitQuotes: p.Forum.SplitQuotes}, nil
}

// Set is a collection of profiles keyed by name.
type Set map[string]Profile

// Builtin returns the profiles of the original site migration.
func Builtin() Set {
	return Set{
		"text": {
			Name:        "text",
			Type:        "text",
			Preset:      "plain",
			DefaultDate: "2005-01-01",
			Parent:      "bukovo_net",
			Target:      "texts/bukovo-net",
		},
		"route": {
			Name:        "route",
			Type:        "text",
			Preset:      "structured",
			DefaultDate: "2011-07-06",
			Parent:      "arkhiz_routes",
			Index:       "arkhiz_routes",
			Target:      "texts/arkhiz_routes",
		},
		"narrative": {
			Name:        "narrative",
			Type:        "texts",
			Preset:      "narrative",
			DefaultDate: "2006-01-01",
			Slugs: []string{
				"tluchshe_gor", "ice_heart", "tlavina", "tnahar_exp",
				"mountain_ru_2006", "remember", "mem_bukovonet",
			},
			Target: "texts",
		},
		// forum has no page selection of its own; batches name their slugs.
		"forum": {
			Name:        "forum",
			Type:        "forum",
			Preset:      "plain",
			DefaultDate: "2002-01-01",
			Target:      "texts",
			Forum:       &ForumOptions{Split: "paragraph", Locales: []string{"ru"}, SplitQuotes: true},
		},
	}
}

// With returns a copy of s where each of list replaces or adds a profile.
// Every profile is validated.
func (s Set) With(list ...Profile) (Set, error) {
	out := make(Set, len(s)+len(list))
	for k, v := range s {
		out[k] = v
	}
	for _, p := range list {
		p.Name = strings.TrimSpace(p.Name)
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.Name, err)
		}
		out[p.Name] = p
	}
	return out, nil
}

// Get returns the named profile.
func (s Set) Get(name string) (Profile, error) {
	p, ok := s[strings.TrimSpace(name)]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownProfile, name, strings.Join(s.Names(), ", "))
	}
	return p, nil
}

// Names lists profile names in sorted order.
func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

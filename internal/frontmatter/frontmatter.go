// Package frontmatter renders and reads the YAML metadata block that heads
// every migrated markdown file.
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	yaml "gopkg.in/yaml.v3"
)

const delimiter = "---"

// Meta is the metadata written for a migrated page.
type Meta struct {
	Title string
	// Date is YYYY-MM-DD; an empty date is omitted.
	Date string
	// Type is the content category tag consumed by the site templates.
	Type string
}

// Render returns the front matter block, a blank line and body.
// title and type are always double-quoted; date is a bare YAML date.
func Render(m Meta, body string) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value *yaml.Node) {
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
	}
	add("title", quoted(m.Title))
	if d := strings.TrimSpace(m.Date); d != "" {
		add("date", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp", Value: d})
	}
	if t := strings.TrimSpace(m.Type); t != "" {
		add("type", quoted(t))
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}
	buf.WriteString(delimiter + "\n\n")
	buf.WriteString(strings.TrimSpace(body))
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

func quoted(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Style: yaml.DoubleQuotedStyle, Value: v}
}

// Document is a parsed markdown file.
type Document struct {
	Title string
	Date  time.Time
	Type  string
	// Extra holds any other keys found in the block.
	Extra map[string]any
	Body  []byte
}

type envelope struct {
	Title string         `yaml:"title"`
	Date  time.Time      `yaml:"date"`
	Type  string         `yaml:"type"`
	Extra map[string]any `yaml:",inline"`
}

// Parse reads a markdown file with a front matter block.
func Parse(src []byte) (Document, error) {
	var env envelope
	body, err := frontmatter.Parse(bytes.NewReader(src), &env)
	if err != nil {
		return Document{}, fmt.Errorf("parse front matter: %w", err)
	}
	return Document{
		Title: env.Title,
		Date:  env.Date,
		Type:  env.Type,
		Extra: env.Extra,
		Body:  body,
	}, nil
}

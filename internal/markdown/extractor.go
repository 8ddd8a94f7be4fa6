package markdown

import (
    "html"
    "strconv"
    "strings"
    "unicode"

    "golang.org/x/text/unicode/norm"
)

// Capabilities selects which markup the extractor translates. Paragraphs and
// line breaks are always handled; everything else is opt-in so that
// simple narrative pages and structured route pages share one code path.
type Capabilities struct {
    Headings              bool `yaml:"headings" json:"headings" toml:"headings"`
    Lists                 bool `yaml:"lists" json:"lists" toml:"lists"`
    BoldHeadingParagraphs bool `yaml:"boldHeadingParagraphs" json:"boldHeadingParagraphs" toml:"boldHeadingParagraphs"`
    Emphasis              bool `yaml:"emphasis" json:"emphasis" toml:"emphasis"`
    Links                 bool `yaml:"links" json:"links" toml:"links"`
    Quotes                bool `yaml:"quotes" json:"quotes" toml:"quotes"`
    Rules                 bool `yaml:"rules" json:"rules" toml:"rules"`
}

var (
    // Plain handles paragraphs and line breaks only.
    Plain = Capabilities{}
    // Structured adds headings, ordered lists and bold-class paragraphs as
    // third level headings. Used for stepwise route descriptions.
    Structured = Capabilities{Headings: true, Lists: true, BoldHeadingParagraphs: true}
    // Narrative adds inline emphasis, links, quote blocks and delimiters.
    Narrative = Capabilities{Headings: true, Emphasis: true, Links: true, Quotes: true, Rules: true}
)

// CapabilitiesByName resolves a named capability set.
func CapabilitiesByName(name string) (Capabilities, bool) {
    switch strings.ToLower(strings.TrimSpace(name)) {
    case "plain", "":
        return Plain, true
    case "structured":
        return Structured, true
    case "narrative":
        return Narrative, true
    }
    return Capabilities{}, false
}

type block int

const (
    blockNone block = iota
    blockParagraph
    blockHeading
    blockListItem
)

// state is the per-document formatter state.
type state struct {
    current    block
    inList     bool
    ordered    bool
    itemIndex  int
    hasContent bool
}

type divKind int

const (
    divPlain divKind = iota
    divQuote
    divRule
)

// inline is an open emphasis or link. Its opening marker is written lazily
// when the first text arrives so that empty elements leave no markers.
type inline struct {
    tag     string
    open    string
    close   string
    flushed bool
}

// quoteFrame holds the output and state that were active before a quote
// block opened.
type quoteFrame struct {
    buf   *strings.Builder
    saved state
}

// Extractor converts a token stream into markdown. It never fails: unknown
// tags are ignored and close tags without a matching open state are no-ops.
// An Extractor is single use; create a new one per document.
type Extractor struct {
    caps Capabilities
    st   state

    buf    *strings.Builder
    quotes []quoteFrame
    divs   []divKind

    inlines      []inline
    rawDepth     int
    ruleDepth    int
    pendingSpace bool
    afterInline  bool
}

// New returns an extractor for one document.
func New(caps Capabilities) *Extractor {
    return &Extractor{caps: caps, buf: &strings.Builder{}}
}

// Convert runs tokens through a fresh extractor and returns the finalized markdown.
func Convert(tokens []Token, caps Capabilities) string {
    e := New(caps)
    for _, t := range tokens {
        e.Handle(t)
    }
    return e.String()
}

// ConvertHTML tokenizes src and streams it through a fresh extractor.
func ConvertHTML(src string, caps Capabilities) string {
    e := New(caps)
    eachToken(strings.NewReader(src), e.Handle)
    return e.String()
}

// String returns the finalized markdown for everything handled so far.
// Unterminated quote blocks are folded into the output.
func (e *Extractor) String() string {
    for len(e.quotes) > 0 {
        e.closeInlines()
        e.closeQuote()
    }
    e.closeInlines()
    return Finalize(e.buf.String())
}

// Handle processes one token.
func (e *Extractor) Handle(t Token) {
    switch t.Kind {
    case StartTagKind:
        e.startTag(t)
    case EndTagKind:
        e.endTag(t.Name)
    case TextKind:
        e.text(t.Data)
    }
}

func (e *Extractor) skipping() bool {
    return e.rawDepth > 0 || e.ruleDepth > 0
}

func (e *Extractor) startTag(t Token) {
    if t.Name == "div" {
        e.openDiv(t)
        return
    }
    if t.Name == "script" || t.Name == "style" {
        e.rawDepth++
        return
    }
    if e.skipping() {
        return
    }

    switch t.Name {
    case "p":
        if e.st.current == blockListItem {
            // paragraphs inside a list item belong to the item
            return
        }
        if e.st.current == blockParagraph || e.st.current == blockHeading {
            e.closeBlock()
        }
        if e.afterInline {
            e.sep("\n\n")
        }
        if e.caps.BoldHeadingParagraphs && t.HasClass("b") {
            e.sep("\n\n")
            e.st.current = blockHeading
            e.st.hasContent = false
            return
        }
        e.st.current = blockParagraph
    case "br":
        e.sep(" \n")
    case "ol", "ul":
        if !e.caps.Lists {
            return
        }
        e.st.inList = true
        e.st.ordered = t.Name == "ol"
        e.st.itemIndex = 0
    case "li":
        if !e.caps.Lists {
            return
        }
        if e.st.current == blockListItem {
            e.closeInlines()
            e.sep("\n")
        }
        if !e.st.inList {
            e.st.inList = true
            e.st.ordered = true
        }
        e.st.itemIndex++
        e.st.current = blockListItem
        e.st.hasContent = false
    case "h1", "h2", "h3", "h4", "h5", "h6":
        if !e.caps.Headings {
            e.startTag(Token{Kind: StartTagKind, Name: "p"})
            return
        }
        level := int(t.Name[1] - '0')
        e.sep("\n" + strings.Repeat("#", level) + " ")
    case "b", "strong":
        if e.caps.Emphasis {
            e.inlines = append(e.inlines, inline{tag: t.Name, open: "**", close: "**"})
        }
    case "i", "em":
        if e.caps.Emphasis {
            e.inlines = append(e.inlines, inline{tag: t.Name, open: "*", close: "*"})
        }
    case "a":
        if !e.caps.Links {
            return
        }
        href := strings.TrimSpace(t.Attr("href"))
        if href == "" {
            e.inlines = append(e.inlines, inline{tag: "a"})
            return
        }
        e.inlines = append(e.inlines, inline{tag: "a", open: "[", close: "](" + href + ")"})
    }
}

func (e *Extractor) endTag(name string) {
    if name == "div" {
        e.closeDiv()
        return
    }
    if name == "script" || name == "style" {
        if e.rawDepth > 0 {
            e.rawDepth--
        }
        return
    }
    if e.skipping() {
        return
    }

    switch name {
    case "p":
        if e.st.current == blockParagraph || e.st.current == blockHeading {
            e.closeBlock()
        }
    case "ol", "ul":
        if !e.caps.Lists || !e.st.inList {
            return
        }
        if e.st.current == blockListItem {
            e.closeInlines()
            e.sep("\n")
            e.st.current = blockNone
        }
        e.st.inList = false
        e.sep("\n\n")
    case "li":
        if e.caps.Lists && e.st.current == blockListItem {
            e.closeInlines()
            e.sep("\n")
            e.st.current = blockNone
        }
    case "h1", "h2", "h3", "h4", "h5", "h6":
        if !e.caps.Headings {
            e.endTag("p")
            return
        }
        e.closeInlines()
        e.sep("\n\n")
    case "b", "strong", "i", "em", "a":
        e.closeInline(name)
    }
}

// closeBlock ends an open paragraph or heading with a blank line.
func (e *Extractor) closeBlock() {
    e.closeInlines()
    e.sep("\n\n")
    e.st.current = blockNone
    e.st.hasContent = false
}

func (e *Extractor) openDiv(t Token) {
    kind := divPlain
    if !e.skipping() {
        switch {
        case e.caps.Rules && (t.HasClass("delimeter") || t.HasClass("delimiter")):
            kind = divRule
        case e.caps.Quotes && t.HasClass("quote"):
            kind = divQuote
        }
    }
    e.divs = append(e.divs, kind)
    switch kind {
    case divRule:
        e.closeInlines()
        e.sep("\n\n---\n\n")
        e.ruleDepth++
    case divQuote:
        e.closeInlines()
        e.quotes = append(e.quotes, quoteFrame{buf: e.buf, saved: e.st})
        e.buf = &strings.Builder{}
        e.st = state{}
        e.afterInline = false
    }
}

func (e *Extractor) closeDiv() {
    if len(e.divs) == 0 {
        return
    }
    kind := e.divs[len(e.divs)-1]
    e.divs = e.divs[:len(e.divs)-1]
    switch kind {
    case divRule:
        e.ruleDepth--
    case divQuote:
        e.closeInlines()
        e.closeQuote()
    }
}

// closeQuote finalizes the innermost quote buffer and writes it, prefixed
// with "> ", into the enclosing buffer.
func (e *Extractor) closeQuote() {
    if len(e.quotes) == 0 {
        return
    }
    inner := Finalize(e.buf.String())
    top := e.quotes[len(e.quotes)-1]
    e.quotes = e.quotes[:len(e.quotes)-1]
    e.buf = top.buf
    e.st = top.saved
    if inner == "" {
        return
    }
    lines := strings.Split(inner, "\n")
    for i, l := range lines {
        if l == "" {
            lines[i] = ">"
        } else {
            lines[i] = "> " + l
        }
    }
    e.sep("\n\n" + strings.Join(lines, "\n") + "\n\n")
}

// closeInline ends the innermost open inline element named tag.
func (e *Extractor) closeInline(tag string) {
    for i := len(e.inlines) - 1; i >= 0; i-- {
        if e.inlines[i].tag != tag {
            continue
        }
        in := e.inlines[i]
        e.inlines = append(e.inlines[:i], e.inlines[i+1:]...)
        if in.flushed && in.close != "" {
            e.buf.WriteString(in.close)
            e.afterInline = true
        }
        return
    }
}

// closeInlines writes closers for every emitted inline element and forgets
// them. Inline markup never spans blocks.
func (e *Extractor) closeInlines() {
    for i := len(e.inlines) - 1; i >= 0; i-- {
        if e.inlines[i].flushed && e.inlines[i].close != "" {
            e.buf.WriteString(e.inlines[i].close)
        }
    }
    e.inlines = e.inlines[:0]
}

// sep writes structural output. Word spacing does not carry across it.
func (e *Extractor) sep(s string) {
    e.buf.WriteString(s)
    e.pendingSpace = false
    e.afterInline = false
}

func decodeText(data string) string {
    s := html.UnescapeString(data)
    s = strings.ReplaceAll(s, "\u00a0", " ")
    return norm.NFC.String(s)
}

func (e *Extractor) text(data string) {
    if e.skipping() {
        return
    }
    decoded := decodeText(data)
    trimmed := strings.TrimSpace(decoded)
    if trimmed == "" {
        if decoded != "" && e.afterInline {
            e.pendingSpace = true
        }
        return
    }
    leading := len(strings.TrimLeftFunc(decoded, unicode.IsSpace)) != len(decoded)
    trailing := len(strings.TrimRightFunc(decoded, unicode.IsSpace)) != len(decoded)

    switch {
    case e.st.current == blockHeading && !e.st.hasContent:
        e.buf.WriteString("### ")
        e.st.hasContent = true
    case e.st.current == blockListItem && !e.st.hasContent:
        if e.st.ordered {
            e.buf.WriteString(strconv.Itoa(e.st.itemIndex))
            e.buf.WriteString(". ")
        } else {
            e.buf.WriteString("- ")
        }
        e.st.hasContent = true
    default:
        if e.afterInline && (e.pendingSpace || leading) {
            e.buf.WriteByte(' ')
        }
    }
    for i := range e.inlines {
        if !e.inlines[i].flushed {
            e.buf.WriteString(e.inlines[i].open)
            e.inlines[i].flushed = true
        }
    }
    e.buf.WriteString(trimmed)
    e.afterInline = true
    e.pendingSpace = trailing
}

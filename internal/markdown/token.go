package markdown

import (
    "io"
    "strings"

    "golang.org/x/net/html"
)

// Kind identifies the type of a Token.
type Kind int

const (
    StartTagKind Kind = iota
    EndTagKind
    TextKind
)

// Token is a single markup event in document order.
type Token struct {
    Kind Kind
    // Name is the lowercase tag name for start and end tags.
    Name string
    // Attrs holds decoded attribute values of a start tag.
    Attrs map[string]string
    // Data is the raw text of a text token. Entities are not yet decoded.
    Data string
}

// Start builds a start tag token. attrs are key/value pairs.
func Start(name string, attrs ...string) Token {
    t := Token{Kind: StartTagKind, Name: strings.ToLower(name)}
    if len(attrs) > 1 {
        t.Attrs = make(map[string]string, len(attrs)/2)
        for i := 0; i+1 < len(attrs); i += 2 {
            t.Attrs[strings.ToLower(attrs[i])] = attrs[i+1]
        }
    }
    return t
}

// End builds an end tag token.
func End(name string) Token {
    return Token{Kind: EndTagKind, Name: strings.ToLower(name)}
}

// Text builds a text token from raw (still entity-encoded) data.
func Text(data string) Token {
    return Token{Kind: TextKind, Data: data}
}

// Attr returns the value of the named attribute or "".
func (t Token) Attr(key string) string {
    if t.Attrs == nil {
        return ""
    }
    return t.Attrs[key]
}

// HasClass reports whether the class attribute lists name.
func (t Token) HasClass(name string) bool {
    for _, c := range strings.Fields(t.Attr("class")) {
        if c == name {
            return true
        }
    }
    return false
}

// eachToken runs r through the html tokenizer and calls fn for every tag and
// text event. Self-closing tags are delivered as a start tag followed by an
// end tag. Comments and doctypes are dropped.
func eachToken(r io.Reader, fn func(Token)) {
    z := html.NewTokenizer(r)
    for {
        tt := z.Next()
        switch tt {
        case html.ErrorToken:
            return
        case html.TextToken:
            fn(Text(string(z.Raw())))
        case html.StartTagToken, html.SelfClosingTagToken:
            name, hasAttr := z.TagName()
            tok := Token{Kind: StartTagKind, Name: strings.ToLower(string(name))}
            for hasAttr {
                var key, val []byte
                key, val, hasAttr = z.TagAttr()
                if tok.Attrs == nil {
                    tok.Attrs = map[string]string{}
                }
                tok.Attrs[strings.ToLower(string(key))] = string(val)
            }
            fn(tok)
            if tt == html.SelfClosingTagToken {
                fn(End(tok.Name))
            }
        case html.EndTagToken:
            name, _ := z.TagName()
            fn(End(string(name)))
        }
    }
}

// Tokenize returns the token sequence for an HTML fragment.
func Tokenize(src string) []Token {
    var out []Token
    eachToken(strings.NewReader(src), func(t Token) { out = append(out, t) })
    return out
}

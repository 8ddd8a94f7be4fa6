package markdown

import "strings"

// Finalize normalizes whitespace in concatenated extractor output.
// Block handlers emit separators unconditionally; this pass is what keeps
// the result tidy. Every run of spaces collapses to one space, runs of three
// or more newlines collapse to a blank line, and leading and trailing
// whitespace is trimmed. Finalize is idempotent.
func Finalize(s string) string {
    var b strings.Builder
    b.Grow(len(s))
    newlines := 0 // consecutive newlines at the end of b
    for i := 0; i < len(s); i++ {
        switch c := s[i]; c {
        case ' ':
            if i == 0 || s[i-1] != ' ' {
                b.WriteByte(' ')
            }
            newlines = 0
        case '\n':
            if newlines < 2 {
                b.WriteByte('\n')
            }
            newlines++
        default:
            b.WriteByte(c)
            newlines = 0
        }
    }
    return strings.TrimSpace(b.String())
}

package app

import (
    "bufio"
    "fmt"
    "os"
    "path/filepath"
    "regexp"
    "strings"

    "github.com/jung-kurt/gofpdf"
)

var (
    linkRe     = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`) // [text](url)
    emphasisRe = regexp.MustCompile(`\*{1,2}([^*]+)\*{1,2}`)
)

// writeProofPDF renders a proof copy of a migrated page: the title, then the
// markdown body line by line with headings enlarged, list and quote markers
// kept, and emphasis markers stripped. Links become clickable. fontPath names
// a TrueType font used for UTF-8 text; without it the core Helvetica font is
// used through the cp1252 translator and characters outside it are lost.
func writeProofPDF(title, markdown, outPath, fontPath string) error {
    pdf := gofpdf.New("P", "mm", "A4", "")
    family := "Helvetica"
    tr := func(s string) string { return s }
    if fontPath != "" {
        ttf, err := os.ReadFile(fontPath)
        if err != nil {
            return fmt.Errorf("pdf font: %w", err)
        }
        family = "proof"
        pdf.AddUTF8FontFromBytes(family, "", ttf)
    } else {
        tr = pdf.UnicodeTranslatorFromDescriptor("")
    }
    if err := pdf.Error(); err != nil {
        return fmt.Errorf("pdf font: %w", err)
    }
    pdf.SetTitle(title, true)
    pdf.AddPage()

    pdf.SetFont(family, "", 16)
    pdf.MultiCell(0, 8, tr(title), "", "L", false)
    pdf.Ln(4)
    pdf.SetFont(family, "", 11)

    // Render line by line to avoid huge paragraphs
    scanner := bufio.NewScanner(strings.NewReader(markdown))
    scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
    for scanner.Scan() {
        s := strings.TrimSpace(scanner.Text())
        if s == "" {
            pdf.Ln(3)
            continue
        }
        s = emphasisRe.ReplaceAllString(s, "$1")
        if strings.HasPrefix(s, "#") {
            i := 0
            for i < len(s) && s[i] == '#' { i++ }
            text := strings.TrimSpace(s[i:])
            if text == "" { continue }
            size := 14.0
            if i >= 3 { size = 12.0 }
            pdf.SetFont(family, "", size)
            pdf.MultiCell(0, 7, tr(text), "", "L", false)
            pdf.SetFont(family, "", 11)
            continue
        }
        parts := linkRe.FindAllStringSubmatchIndex(s, -1)
        if len(parts) == 0 {
            pdf.MultiCell(0, 5, tr(s), "", "L", false)
            continue
        }
        pos := 0
        for _, m := range parts {
            // m: [fullStart, fullEnd, textStart, textEnd, urlStart, urlEnd]
            if m[0] > pos {
                pdf.Write(5, tr(s[pos:m[0]]))
            }
            pdf.WriteLinkString(5, tr(s[m[2]:m[3]]), s[m[4]:m[5]])
            pos = m[1]
        }
        if pos < len(s) {
            pdf.Write(5, tr(s[pos:]))
        }
        pdf.Ln(6)
    }
    if err := scanner.Err(); err != nil {
        return err
    }
    if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
        return err
    }
    return pdf.OutputFileAndClose(outPath)
}

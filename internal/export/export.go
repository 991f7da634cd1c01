// Package export renders a task sequence as markdown, JSON or PDF
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adriangreen/tm-list/internal/tasks"
	"github.com/jung-kurt/gofpdf"
)

// Formats accepted by Render
const (
	FormatMarkdown = "md"
	FormatJSON     = "json"
	FormatPDF      = "pdf"
)

// Render encodes seq in the named format
func Render(seq tasks.Sequence, format, title string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatMarkdown, "markdown":
		return []byte(Markdown(seq, title)), nil
	case FormatJSON:
		return JSON(seq)
	case FormatPDF:
		return PDF(seq, title)
	default:
		return nil, fmt.Errorf("unknown format %s", format)
	}
}

// Markdown renders seq as a task checklist under a heading
func Markdown(seq tasks.Sequence, title string) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	if len(seq) == 0 {
		b.WriteString("_Nothing to do._\n")
		return b.String()
	}
	for _, t := range seq {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s\n", mark, escapeMarkdown(t.Description))
	}
	open, done := seq.Counts()
	fmt.Fprintf(&b, "\n%d open, %d done\n", open, done)
	return b.String()
}

type jsonTask struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Position    int    `json:"position"`
}

// JSON renders seq in the same shape it is persisted in
func JSON(seq tasks.Sequence) ([]byte, error) {
	out := make([]jsonTask, len(seq))
	for i, t := range seq {
		out[i] = jsonTask{Description: t.Description, Completed: t.Completed, Position: int(t.Position)}
	}
	return json.MarshalIndent(out, "", "  ")
}

// PDF renders seq as a one-column printable checklist
func PDF(seq tasks.Sequence, title string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, tr(title))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	for _, t := range seq {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %d. %s", box, int(t.Position)+1, t.Description)
		pdf.MultiCell(0, 6, tr(line), "0", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(strings.ReplaceAll(s, "\n", " "))
}

package ui

import (
	"fmt"
	"strings"

	"github.com/adriangreen/tm-list/internal/view"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Row columns, left to right: cursor marker, checkbox, gap, text, gap,
// affordance
const (
	cursorWidth   = 2
	checkboxWidth = 3
	textColumn    = cursorWidth + checkboxWidth + 1
	minTextWidth  = 8

	// header, input, gap above rows, gap below rows, footer, status
	chromeHeight = 6
	rowsTop      = 3
	inputRow     = 1
)

const (
	reorderGlyph = "↑"
	deleteGlyph  = "✕"
)

// zone is a clickable run of cells on one screen line
type zone struct {
	y, x0, x1 int // x1 is exclusive
}

func (z zone) contains(x, y int) bool {
	return y == z.y && x >= z.x0 && x < z.x1
}

// screenLayout is computed once per frame and shared by View and the mouse
// handler so hit testing always matches what was drawn
type screenLayout struct {
	header    string
	inputLine string
	footer    string

	refresh zone
	append  zone
	clear   zone

	first, visible int // rows drawn: rows[first : first+visible]
	textWidth      int
	affordanceX    int
	footerY        int
}

// rowAt maps a screen line to a row index
func (l screenLayout) rowAt(y int) (int, bool) {
	i := y - rowsTop
	if i < 0 || i >= l.visible {
		return 0, false
	}
	return l.first + i, true
}

// maxRows returns how many rows fit between the input line and the footer
func (m Model) maxRows() int {
	if !m.ready || m.height <= 0 {
		return len(m.renderer.Rows())
	}
	n := m.height - chromeHeight
	if n < 1 {
		n = 1
	}
	return n
}

func (m Model) textWidth() int {
	w := m.width - textColumn - 2
	if w < minTextWidth {
		w = minTextWidth
	}
	return w
}

func (m Model) layout() screenLayout {
	l := screenLayout{textWidth: m.textWidth()}
	l.affordanceX = textColumn + l.textWidth + 1

	// Header: title on the left, refresh control on the right
	title := m.styles.Header.Render("tm-list")
	refresh := m.styles.Button.Render("refresh")
	l.header, l.refresh = alignRight(title, refresh, m.width, 0)

	// Input line: prompt and field on the left, append control on the right
	left := m.styles.Subtle.Render("› ") + m.input.View()
	appendBtn := m.styles.Button.Render("+ append")
	l.inputLine, l.append = alignRight(left, appendBtn, m.width, inputRow)

	rows := m.renderer.Rows()
	l.first = m.offset
	if l.first > len(rows) {
		l.first = len(rows)
	}
	l.visible = len(rows) - l.first
	if limit := m.maxRows(); l.visible > limit {
		l.visible = limit
	}

	// an empty list shows a one line placeholder instead of rows
	l.footerY = rowsTop + l.visible + 1
	if len(rows) == 0 {
		l.footerY++
	}

	clearBtn := m.styles.Button.Render("clear completed")
	open, done := m.renderer.Counts()
	l.footer = clearBtn + "  " + m.styles.Subtle.Render(fmt.Sprintf("%d open, %d done", open, done))
	l.clear = zone{y: l.footerY, x0: 0, x1: lipgloss.Width(clearBtn)}

	return l
}

// alignRight places right at the end of a width-wide line after left and
// returns the line with the zone right occupies
func alignRight(left, right string, width, y int) (string, zone) {
	lw, rw := lipgloss.Width(left), lipgloss.Width(right)
	gap := width - lw - rw
	if gap < 1 {
		gap = 1
	}
	x0 := lw + gap
	return left + strings.Repeat(" ", gap) + right, zone{y: y, x0: x0, x1: x0 + rw}
}

// renderRow draws one row. The cursor marker only shows while the list has
// focus.
func (m Model) renderRow(i int, row view.Row, textWidth int) string {
	marker := "  "
	if i == m.cursor && m.focus == focusList {
		marker = m.styles.RowCursor.Render("> ")
	}

	box := "[ ]"
	if row.Completed {
		box = "[x]"
	}
	box = m.styles.Checkbox.Render(box)

	var text string
	if row.State == view.Editing {
		text = m.styles.RowEditing.Render(pad(m.editor.View(), textWidth))
	} else {
		desc := strings.ReplaceAll(row.Description, "\n", " ")
		desc = pad(ansi.Truncate(desc, textWidth, "…"), textWidth)
		switch {
		case row.State == view.Selected:
			text = m.styles.RowSelected.Render(desc)
		case row.Completed:
			text = m.styles.RowDone.Render(desc)
		default:
			text = m.styles.Row.Render(desc)
		}
	}

	affordance := " "
	switch {
	case row.ShowReorder():
		affordance = m.styles.Affordance.Render(reorderGlyph)
	case row.ShowDelete():
		affordance = m.styles.Danger.Render(deleteGlyph)
	}

	return marker + box + " " + text + " " + affordance
}

// pad right-fills s with spaces up to width cells, truncating when longer
func pad(s string, width int) string {
	w := ansi.StringWidth(s)
	if w > width {
		return ansi.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-w)
}

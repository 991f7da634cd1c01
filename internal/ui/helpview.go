package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// renderHelpOverlay renders the full key and mouse reference
func (m Model) renderHelpOverlay() string {
	var sections []string

	sections = append(sections, m.styles.Title.Render("tm-list help"), "")

	sections = append(sections, m.styles.Subtle.Render("Keyboard"))
	sections = append(sections, m.help.FullHelpView(m.keyMap.FullHelp()), "")

	sections = append(sections, m.styles.Subtle.Render("Mouse"))
	mouseHelp := []string{
		"  [ ]        toggle done",
		"  text       select, double click to edit",
		"  " + reorderGlyph + "          move up (unselected rows)",
		"  " + deleteGlyph + "          delete (selected rows)",
		"  refresh    reload from storage",
		"  + append   add the typed item",
		"  clear      remove completed items",
	}
	sections = append(sections, strings.Join(mouseHelp, "\n"), "")

	if row := m.describeRow(); row != "" {
		sections = append(sections, m.styles.Subtle.Render("Cursor: "+row), "")
	}

	sections = append(sections, m.styles.Help.Render("Press ")+m.renderBinding(m.keyMap.Help)+m.styles.Help.Render(" or esc to close help"))

	content := strings.Join(sections, "\n")

	width := 70
	if m.width < width+4 {
		width = m.width - 4
	}
	overlayStyle := m.styles.Panel.
		Padding(1, 2).
		Width(width).
		MaxHeight(m.height)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlayStyle.Render(content))
}

// renderBinding formats a key binding for display
func (m Model) renderBinding(binding key.Binding) string {
	keys := binding.Keys()
	formatted := make([]string, len(keys))
	for i, k := range keys {
		if k == " " {
			k = "space"
		}
		formatted[i] = m.styles.HelpKey.Render(k)
	}
	return strings.Join(formatted, "/")
}

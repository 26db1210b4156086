package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/harrylevesque/ecoadmin/internal/admin"
	"github.com/harrylevesque/ecoadmin/internal/models"
	"github.com/harrylevesque/ecoadmin/internal/resource"
)

const cellWidth = 18

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2E7D32"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#2E7D32"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#D32F2F"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#1565C0"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#757575"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#616161"))
	panelStyle    = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#2E7D32")).Padding(0, 1)
	dangerStyle   = panelStyle.BorderForeground(lipgloss.Color("#D32F2F"))
)

func (m Model) View() string {
	var body, help string
	switch m.screen {
	case admin.ScreenLogin:
		body, help = m.loginView(), "tab switch field • enter sign in • esc quit"
	case admin.ScreenDashboard:
		body, help = m.dashboardView(), "↑/↓ move • enter open • r refresh • l logout • q quit"
	default:
		body, help = m.resourceView()
	}
	parts := []string{body}
	if m.status != "" {
		parts = append(parts, noticeStyle.Render(m.status))
	}
	parts = append(parts, helpStyle.Render(help))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) loginView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("EcoTrails Admin Login"),
		"",
		m.email.View(),
		m.password.View(),
		"",
	)
}

func (m Model) dashboardView() string {
	lines := []string{titleStyle.Render("Admin Dashboard"), ""}
	for i, s := range m.sections {
		line := "  " + s.Label
		switch {
		case s.Counted:
			line += fmt.Sprintf(" (%d)", s.Count)
		case s.Err != nil:
			line += " (unavailable)"
		}
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(append(lines, ""), "\n")
}

func (m Model) resourceView() (string, string) {
	mgr, ok := m.managers[m.screen]
	if !ok {
		return titleStyle.Render(m.screen), "esc back"
	}
	st := mgr.Snapshot()
	def := mgr.Definition()

	header := st.Title
	if len(def.Filters) > 0 {
		header += "  [" + st.FilterKey + "]"
	}
	if st.Query != "" {
		header += "  /" + st.Query
	}
	switch {
	case st.Loading:
		header += "  loading..."
	case st.Saving:
		header += "  saving..."
	}
	lines := []string{titleStyle.Render(header), ""}

	if def.Single {
		if len(st.Items) > 0 {
			lines = append(lines, fieldLines(def, st.Items[0])...)
		}
	} else {
		lines = append(lines, m.table(st, def)...)
	}
	if m.mode == inputQuery {
		lines = append(lines, "", "Query (expr, e.g. status == \"pending\"):", m.input.View())
	}
	if panel := m.modalView(st, def); panel != "" {
		lines = append(lines, "", panel)
	}
	if st.Err != nil {
		lines = append(lines, "", errorStyle.Render(st.Err.Error()+" (r to retry)"))
	} else if st.Notice != "" {
		lines = append(lines, "", noticeStyle.Render(st.Notice))
	}
	return strings.Join(lines, "\n"), m.help(st, def)
}

func (m Model) table(st resource.State, def resource.Definition) []string {
	var cells []string
	for _, c := range def.Columns {
		cells = append(cells, pad(c))
	}
	lines := []string{headerStyle.Render(strings.Join(cells, " "))}
	if len(st.Filtered) == 0 {
		return append(lines, helpStyle.Render("No records."))
	}
	for i, rec := range st.Filtered {
		cells = cells[:0]
		for _, c := range def.Columns {
			cells = append(cells, pad(rec.String(c)))
		}
		line := strings.Join(cells, " ")
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

func (m Model) modalView(st resource.State, def resource.Definition) string {
	switch cur := st.Modal.(type) {
	case resource.Viewing:
		lines := append([]string{titleStyle.Render("Record " + cur.ID)}, fieldLines(def, cur.Record)...)
		return panelStyle.Render(strings.Join(lines, "\n"))
	case resource.Editing, resource.Adding:
		draft := draftOf(cur)
		title := "New record"
		if e, ok := cur.(resource.Editing); ok {
			title = "Editing " + e.ID
		}
		lines := []string{titleStyle.Render(title)}
		for i, f := range draftFields(def, draft) {
			line := labelStyle.Render(f+": ") + draft.String(f)
			if i == m.fieldCursor {
				if m.mode == inputField {
					line = labelStyle.Render(f+": ") + m.input.View()
				} else {
					line = selectedStyle.Render(f+": "+draft.String(f))
				}
			}
			lines = append(lines, line)
		}
		return panelStyle.Render(strings.Join(lines, "\n"))
	case resource.ConfirmingDelete:
		return dangerStyle.Render(fmt.Sprintf("Delete %s %s? This cannot be undone. (y/n)", def.Title, cur.ID))
	}
	return ""
}

func (m Model) help(st resource.State, def resource.Definition) string {
	if m.mode != inputNone {
		return "enter apply • esc cancel"
	}
	var keys []string
	switch st.Modal.(type) {
	case resource.None:
		if def.Single {
			return "r refresh • esc back • q quit"
		}
		keys = append(keys, "↑/↓ move", "enter view")
		if def.Edit != resource.EditNone {
			keys = append(keys, "e edit")
		}
		if def.Creatable {
			keys = append(keys, "a add")
		}
		if len(def.Filters) > 0 {
			keys = append(keys, "f filter")
		}
		keys = append(keys, "/ query", "r refresh", "esc back", "q quit")
	case resource.Viewing:
		keys = append(keys, "esc close")
		if def.Edit != resource.EditNone {
			keys = append(keys, "e edit")
		}
		if def.Deletable {
			keys = append(keys, "d delete")
		}
		keys = append(keys, statusHelp(def)...)
	case resource.Editing:
		keys = append(keys, "↑/↓ field", "enter change", "ctrl+s save", "esc cancel")
		if def.Deletable {
			keys = append(keys, "d delete")
		}
		keys = append(keys, statusHelp(def)...)
	case resource.Adding:
		keys = append(keys, "↑/↓ field", "enter change", "ctrl+s save", "esc cancel")
	case resource.ConfirmingDelete:
		keys = append(keys, "y confirm", "n cancel")
	}
	return strings.Join(keys, " • ")
}

func statusHelp(def resource.Definition) []string {
	var out []string
	for i, a := range def.StatusActions {
		out = append(out, fmt.Sprintf("%d %s", i+1, a))
	}
	return out
}

func fieldLines(def resource.Definition, rec models.Record) []string {
	var lines []string
	for _, f := range recordFields(def, rec) {
		lines = append(lines, labelStyle.Render(f+": ")+rec.String(f))
	}
	return lines
}

func pad(s string) string {
	r := []rune(s)
	if len(r) > cellWidth {
		return string(r[:cellWidth-1]) + "…"
	}
	return s + strings.Repeat(" ", cellWidth-len(r))
}

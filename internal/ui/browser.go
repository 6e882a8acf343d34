package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/channelsync/internal/paging"
	"github.com/five82/channelsync/internal/state"
)

var (
	sortOrders  = []string{"position", "created_at", "updated_at"}
	typeFilters = []string{"", "Text", "Image", "Link", "Attachment", "Media", "Channel"}
)

// handleBrowserKey processes keyboard input for the collection list.
func (m Model) handleBrowserKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := m.snapshot.Count
	page := max(m.listHeight(), 1)

	switch {
	case key.Matches(msg, m.keys.Down):
		m.cursor++
	case key.Matches(msg, m.keys.Up):
		m.cursor--
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = count - 1
	case key.Matches(msg, m.keys.PageDown):
		m.cursor += page
	case key.Matches(msg, m.keys.PageUp):
		m.cursor -= page

	case key.Matches(msg, m.keys.Remove):
		m.removeSelected()
	case key.Matches(msg, m.keys.MoveUp):
		if m.cursor > 0 {
			m.moveSelected(m.cursor - 1)
		}
	case key.Matches(msg, m.keys.MoveDown):
		m.moveSelected(m.cursor + 1)
	case key.Matches(msg, m.keys.MoveTop):
		m.moveSelected(0)
	case key.Matches(msg, m.keys.MoveBottom):
		m.moveSelected(-1)
	case key.Matches(msg, m.keys.RefreshItem):
		cmd := m.refreshSelected()
		return m, cmd
	case key.Matches(msg, m.keys.Revalidate):
		pages := m.ctrl.RevalidateAll(m.ctx)
		m.notice = fmt.Sprintf("refreshing %d page(s)", len(pages))
	case key.Matches(msg, m.keys.Reset):
		m.mut.AppendStructuralReset(m.ctx)
		m.cursor, m.offset = 0, 0
		m.notice = "reloading from the first page"

	case key.Matches(msg, m.keys.CycleSort):
		m.prefs.Sort = nextValue(sortOrders, m.prefs.Sort)
		m.applyIdentity()
	case key.Matches(msg, m.keys.ToggleDirection):
		if m.prefs.Direction == state.DirectionAsc {
			m.prefs.Direction = state.DirectionDesc
		} else {
			m.prefs.Direction = state.DirectionAsc
		}
		m.applyIdentity()
	case key.Matches(msg, m.keys.CycleType):
		m.prefs.TypeFilter = nextValue(typeFilters, m.prefs.TypeFilter)
		m.applyIdentity()
	default:
		return m, nil
	}

	m.syncSnapshot()
	m.ensureVisible()
	m.requestPages()
	return m, nil
}

// selected returns the item under the cursor, or nil for an unloaded slot.
func (m Model) selected() *state.Item {
	if m.cursor < 0 || m.cursor >= len(m.snapshot.Items) {
		return nil
	}
	return m.snapshot.Items[m.cursor]
}

func (m *Model) removeSelected() {
	item := m.selected()
	if !item.Resolved() {
		m.notice = "item not loaded yet"
		return
	}
	if m.mut.RemoveLocal(m.ctx, item.Key()) {
		m.notice = "removed " + item.ID + " from view"
	}
}

// moveSelected moves the item under the cursor to target and keeps the
// cursor on it. A target of -1 means the last position.
func (m *Model) moveSelected(target int) {
	if target < -1 {
		return
	}
	last := m.snapshot.Count - 1
	if !m.mut.MoveLocal(m.ctx, m.cursor, target) {
		return
	}
	if target == -1 {
		target = last
	}
	m.cursor = target
	if item := m.selected(); item != nil {
		m.notice = fmt.Sprintf("moved %s to %d", item.ID, target+1)
	}
}

func (m *Model) refreshSelected() tea.Cmd {
	item := m.selected()
	if !item.Resolved() {
		return nil
	}
	if item.Type == state.TypeChannel {
		m.notice = "collections are not refreshed in place"
		return nil
	}
	ctx, mut := m.ctx, m.mut
	id, kind := item.ID, state.ConnectableKind(item.Type)
	return func() tea.Msg {
		return itemRefreshedMsg{id: id, ok: mut.ReplaceInPlace(ctx, id, kind)}
	}
}

// applyIdentity switches the controller to the sort, direction and filter
// held in prefs and persists them.
func (m *Model) applyIdentity() {
	id := m.ctrl.Identity()
	id.Sort = m.prefs.Sort
	id.Direction = m.prefs.Direction
	id.TypeFilter = m.prefs.TypeFilter
	if err := m.ctrl.SetIdentity(id); err != nil {
		m.notice = err.Error()
		return
	}
	m.cursor, m.offset = 0, 0
	m.savePrefs()
}

// requestPages asks for every unrequested page covering the visible rows
// plus the page after them. It backs off while the view is offline.
func (m *Model) requestPages() {
	if m.ctrl == nil || m.snapshot.IsOffline() {
		return
	}
	var pages []int
	if m.snapshot.Count == 0 {
		pages = []int{1}
	} else {
		size := m.identity.PageSize
		last := min(m.offset+max(m.listHeight(), 1), m.snapshot.Count) - 1
		for p := paging.PageFromIndex(m.offset, size); p <= paging.PageFromIndex(last, size); p++ {
			pages = append(pages, p)
		}
		if next := last + 1; next < m.snapshot.Count {
			pages = append(pages, paging.PageFromIndex(next, size))
		}
	}
	for _, p := range slices.Compact(pages) {
		if !m.ctrl.HasQueriedPage(p) {
			m.ctrl.GetPage(m.ctx, p)
		}
	}
}

func (m *Model) clampCursor() {
	m.cursor = min(m.cursor, m.snapshot.Count-1)
	m.cursor = max(m.cursor, 0)
}

func (m *Model) ensureVisible() {
	m.clampCursor()
	h := max(m.listHeight(), 1)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	m.offset = max(min(m.offset, m.snapshot.Count-h), 0)
}

// listHeight is the number of rows inside the list box.
func (m Model) listHeight() int {
	// header, command bar, two borders, detail line
	return m.height - 5
}

// renderBrowser renders the collection list and the selection detail line.
func (m Model) renderBrowser() string {
	styles := m.theme.Styles()
	contentHeight := m.height - 3

	if m.snapshot.Count == 0 {
		msg := "Empty collection"
		if m.snapshot.Version == 0 {
			msg = "Loading collection..."
		}
		return lipgloss.Place(m.width, contentHeight+1, lipgloss.Center, lipgloss.Center, styles.MutedText.Render(msg))
	}

	box := m.renderTitledBox(m.listTitle(), m.renderRows(m.width-2), m.width, contentHeight, true)
	return box + "\n" + m.renderDetailLine()
}

func (m Model) listTitle() string {
	return fmt.Sprintf("%s (%d/%d)", m.identity.CollectionID, m.snapshot.Resolved(), m.snapshot.Count)
}

// renderRows renders the visible rows. Slots without data render as
// placeholders until their page arrives.
func (m Model) renderRows(width int) string {
	h := max(m.listHeight(), 1)
	end := min(m.offset+h, m.snapshot.Count)
	numWidth := digits(m.snapshot.Count)

	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		var item *state.Item
		if i < len(m.snapshot.Items) {
			item = m.snapshot.Items[i]
		}
		bgColor := m.theme.FocusBg
		if i == m.cursor {
			bgColor = m.theme.SelectionBg
		}
		content := m.formatRow(i, item, numWidth, width, bgColor, i == m.cursor)
		lines = append(lines, NewBgStyle(bgColor).FillLine(content, width))
	}
	return strings.Join(lines, "\n")
}

// formatRow formats one slot as "  12  Image       4821  Title".
func (m Model) formatRow(index int, item *state.Item, numWidth, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()

	numStyle, typeStyle, idStyle, titleStyle := styles.FaintText, styles.MutedText, styles.MutedText, styles.Text
	if item != nil {
		typeStyle = styles.TypeStyle(item.Type)
	}
	if selected {
		sel := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		numStyle, typeStyle, idStyle, titleStyle = sel, sel.Bold(true), sel, sel
	}

	num := bg.Render(fmt.Sprintf("%*d", numWidth, index+1), numStyle)
	if item == nil {
		return bg.Space() + num + bg.Spaces(2) + bg.Render("···", styles.FaintText)
	}

	const typeWidth, idWidth = 11, 10
	titleWidth := max(width-numWidth-typeWidth-idWidth-6, 8)
	return bg.Space() + num + bg.Spaces(2) +
		bg.Render(padRight(truncate(orDash(item.Type), typeWidth), typeWidth), typeStyle) + bg.Space() +
		bg.Render(padRight(truncate(orDash(item.ID), idWidth), idWidth), idStyle) + bg.Space() +
		bg.Render(truncate(orDash(item.Title()), titleWidth), titleStyle)
}

// renderDetailLine describes the slot under the cursor.
func (m Model) renderDetailLine() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	page := paging.PageFromIndex(m.cursor, m.identity.PageSize)
	parts := []string{
		bg.Render("Page", styles.MutedText) + bg.Space() + bg.Render(fmt.Sprintf("%d", page), styles.Text),
	}
	if item := m.selected(); item.Resolved() {
		parts = append(parts,
			bg.Render("ID", styles.MutedText)+bg.Space()+bg.Render(item.ID, styles.AccentText),
			bg.Render("Kind", styles.MutedText)+bg.Space()+bg.Render(state.ConnectableKind(item.Type), styles.Text),
		)
	} else {
		parts = append(parts, bg.Render("not loaded", styles.FaintText))
	}
	return styles.Footer.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderTitledBox renders content in a box with the title embedded in the
// top border: ┌─── Title ───┐
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColorStr, bgColorStr := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColorStr, bgColorStr = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 0))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	top := bg.Render("┌"+strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad)+"┐", borderStyle)
	bottom := bg.Render("└"+strings.Repeat("─", innerWidth)+"┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).Background(lipgloss.Color(bgColorStr))
	contentLines := strings.Split(content, "\n")
	rows := make([]string, 0, max(height-2, 0))
	for i := 0; i < height-2; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		rows = append(rows, bg.Render("│", borderStyle)+contentStyle.Render(line)+bg.Render("│", borderStyle))
	}
	return top + "\n" + strings.Join(rows, "\n") + "\n" + bottom
}

// nextValue returns the value after current in values, wrapping around.
func nextValue(values []string, current string) string {
	i := slices.Index(values, current)
	return values[(i+1)%len(values)]
}

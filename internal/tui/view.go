package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/username/calendar-pager/internal/adapter"
	"github.com/username/calendar-pager/internal/layout"
)

// toastView is one toast line; alpha is its opacity.
type toastView struct {
	text  string
	alpha float64
}

func newToastView(text string) *toastView {
	return &toastView{text: text}
}

// Add implements toast.Canvas.
func (m *Model) Add(v *toastView) {
	m.overlay = append(m.overlay, v)
}

// Remove implements toast.Canvas.
func (m *Model) Remove(v *toastView) {
	for i, o := range m.overlay {
		if o == v {
			m.overlay = append(m.overlay[:i], m.overlay[i+1:]...)
			return
		}
	}
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	return strings.Join([]string{m.Page(), m.toastLine(), m.help.View(m.keys)}, "\n")
}

// Page renders the month title, the weekday header and the visible grid.
func (m *Model) Page() string {
	lines := []string{m.titleLine(), m.headerLine()}
	lines = append(lines, m.gridLines()...)
	return strings.Join(lines, "\n")
}

func (m *Model) gridHeight() int {
	h := m.height - 3 - lipgloss.Height(m.help.View(m.keys))
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) titleLine() string {
	focus := m.coord.FocusMonth()
	r := m.coord.MonthRange()

	prev, next := "‹", "›"
	if !r.Contains(focus.AddMonths(-1)) {
		prev = " "
	}
	if !r.Contains(focus.AddMonths(1)) {
		next = " "
	}
	title := fmt.Sprintf("%s %s %d %s", prev, time.Month(focus.Number()), focus.Year(), next)
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.theme.Title.Render(title))
}

func (m *Model) headerLine() string {
	var cells []placed
	for _, h := range m.coord.WeekdayHeaders() {
		w := int(math.Round(h.Span.Length()))
		label := lipgloss.PlaceHorizontal(w, lipgloss.Right, m.theme.Weekday.Render(h.Label+" "))
		cells = append(cells, placed{x: int(math.Round(h.Span.Start)), text: label})
	}
	return joinPlaced(cells)
}

// gridLines renders the cells inside the viewport. Cells cut by either
// edge are left out, so a sliding page shows whole columns only.
func (m *Model) gridLines() []string {
	vp := m.Viewport()
	rows := make([][]placed, m.gridHeight())
	rect := layout.Rect{X: m.offset, Y: 0, Width: vp.Width, Height: vp.Height}
	for _, a := range m.coord.Layout().AttributesInRect(rect) {
		x := int(math.Round(a.Frame.X - m.offset))
		y := int(math.Round(a.Frame.Y))
		w := int(math.Round(a.Frame.Width))
		if x < 0 || x+w > m.width || y < 0 || y >= len(rows) {
			continue
		}
		text := lipgloss.PlaceHorizontal(w, lipgloss.Right, m.cell(a.IndexPath))
		rows[y] = append(rows[y], placed{x: x, text: text})
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = joinPlaced(row)
	}
	return lines
}

func (m *Model) cell(path adapter.IndexPath) string {
	if cell, ok := m.cache[path]; ok {
		return cell
	}
	cell := m.coord.CellAt(path)
	m.cache[path] = cell
	return cell
}

func (m *Model) toastLine() string {
	if len(m.overlay) == 0 {
		return ""
	}
	parts := make([]string, len(m.overlay))
	for i, v := range m.overlay {
		parts[i] = m.theme.toastStyle(v.alpha).Render(v.text)
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, strings.Join(parts, "  "))
}

type placed struct {
	x    int
	text string
}

// joinPlaced lays styled strings out at their columns, left to right.
func joinPlaced(cells []placed) string {
	sort.Slice(cells, func(i, j int) bool { return cells[i].x < cells[j].x })
	var b strings.Builder
	col := 0
	for _, c := range cells {
		if c.x > col {
			b.WriteString(strings.Repeat(" ", c.x-col))
			col = c.x
		}
		b.WriteString(c.text)
		col += lipgloss.Width(c.text)
	}
	return b.String()
}

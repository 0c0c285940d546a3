package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// SegmentListModel - Interactive network browsing
// =============================================================================

// SegmentEntry is one row of the interactive segment browser.
type SegmentEntry struct {
	External  string
	Parents   int
	Children  int
	Network   int      // ancestor count, -1 when the segment sits on a cycle
	Ancestors []string // resolved external ids, sorted
}

// SegmentListModel is the bubbletea model for browsing segment networks.
// Enter opens a detail view of the selected segment's network; esc returns
// to the list.
type SegmentListModel struct {
	Segments []SegmentEntry
	Cursor   int
	Height   int
	Offset   int

	inspecting bool
}

// NewSegmentListModel creates a segment browser over the given entries.
func NewSegmentListModel(segments []SegmentEntry) SegmentListModel {
	return SegmentListModel{
		Segments: segments,
		Height:   15,
	}
}

func (m SegmentListModel) Init() tea.Cmd {
	return nil
}

func (m SegmentListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.inspecting {
				m.inspecting = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if !m.inspecting && m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if !m.inspecting && m.Cursor < len(m.Segments)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Segments) > 0 {
				m.inspecting = true
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m SegmentListModel) View() string {
	if m.inspecting {
		return m.detailView()
	}
	return m.listView()
}

func (m SegmentListModel) listView() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Segments"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ inspect  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Segments) {
		end = len(m.Segments)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		s := m.Segments[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		network := fmt.Sprintf("%d", s.Network)
		if s.Network < 0 {
			network = "cycle"
		}

		rows = append(rows, []string{
			cursor,
			s.External,
			fmt.Sprintf("%d", s.Parents),
			fmt.Sprintf("%d", s.Children),
			network,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Segment", "Parents", "Children", "Network").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Segments) {
				return lipgloss.NewStyle()
			}
			s := m.Segments[actualIdx]

			base := lipgloss.NewStyle()
			if s.Network < 0 {
				base = base.Foreground(colorYellow)
			}
			if actualIdx == m.Cursor {
				return base.Foreground(colorCyan).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Segments))))

	return b.String()
}

// detailView lists the selected segment's network members.
func (m SegmentListModel) detailView() string {
	s := m.Segments[m.Cursor]

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Segment " + s.External))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("esc back  q quit"))
	b.WriteString("\n\n")

	if s.Network < 0 {
		b.WriteString(StyleWarning.Render("  on a cycle - network not finalized"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("  %s %s\n", listDimStyle.Render("parents:"), StyleValue.Render(fmt.Sprintf("%d", s.Parents))))
	b.WriteString(fmt.Sprintf("  %s %s\n", listDimStyle.Render("children:"), StyleValue.Render(fmt.Sprintf("%d", s.Children))))
	b.WriteString(fmt.Sprintf("  %s %s\n\n", listDimStyle.Render("network:"), StyleValue.Render(fmt.Sprintf("%d segments", s.Network))))

	const maxShown = 50
	shown := s.Ancestors
	truncated := 0
	if len(shown) > maxShown {
		truncated = len(shown) - maxShown
		shown = shown[:maxShown]
	}

	if len(shown) == 0 {
		b.WriteString(listDimStyle.Render("  (no upstream segments)"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(listSelectedStyle.Render("  " + strings.Join(shown, "  ")))
	b.WriteString("\n")
	if truncated > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  … and %d more", truncated)))
		b.WriteString("\n")
	}

	return b.String()
}

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/componentscope/pkg/design"
)

// errSelectionAborted is returned when the user quits the picker.
var errSelectionAborted = errors.New("canvas selection aborted")

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// CanvasListModel - Interactive canvas selection
// =============================================================================

// canvasItem is one row of the canvas picker.
type canvasItem struct {
	Position     int // 1-based
	Name         string
	Declarations int
	Nodes        int
}

func canvasItems(canvases []*design.Node) []canvasItem {
	items := make([]canvasItem, len(canvases))
	for i, c := range canvases {
		decls := 0
		c.Walk(func(n, _ *design.Node) bool {
			if n.IsDeclaration() {
				decls++
			}
			return true
		})
		items[i] = canvasItem{Position: i + 1, Name: c.Name, Declarations: decls, Nodes: c.Count()}
	}
	return items
}

// CanvasListModel is the bubbletea model for interactive canvas selection.
type CanvasListModel struct {
	Items    []canvasItem
	Cursor   int
	Selected int // 1-based position, 0 until a canvas is chosen
	Height   int
	Offset   int
}

// NewCanvasListModel creates a picker over the given canvases.
func NewCanvasListModel(canvases []*design.Node) CanvasListModel {
	return CanvasListModel{
		Items:  canvasItems(canvases),
		Height: 15,
	}
}

func (m CanvasListModel) Init() tea.Cmd {
	return nil
}

func (m CanvasListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Items) == 0 {
				return m, tea.Quit
			}
			m.Selected = m.Items[m.Cursor].Position
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m CanvasListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Canvas"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Items))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		it := m.Items[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			fmt.Sprintf("%d", it.Position),
			it.Name,
			fmt.Sprintf("%d", it.Declarations),
			fmt.Sprintf("%d", it.Nodes),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Canvas", "Components", "Nodes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Items) {
				return lipgloss.NewStyle()
			}
			it := m.Items[idx]
			base := lipgloss.NewStyle()
			if col >= 3 {
				base = base.Foreground(colorGray)
			}
			switch {
			case idx == m.Cursor && it.Declarations > 0:
				return base.Foreground(colorGreen).Bold(true)
			case idx == m.Cursor:
				return base.Bold(true)
			case it.Declarations == 0:
				return base.Foreground(colorDim)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Items))))

	return b.String()
}

// pickCanvas runs the picker on stderr and returns the chosen 1-based
// canvas position.
func pickCanvas(canvases []*design.Node) (int, error) {
	p := tea.NewProgram(NewCanvasListModel(canvases), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return 0, fmt.Errorf("canvas picker: %w", err)
	}
	m, ok := final.(CanvasListModel)
	if !ok || m.Selected == 0 {
		return 0, errSelectionAborted
	}
	return m.Selected, nil
}

// canPrompt reports whether an interactive picker can be shown.
func canPrompt() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stderr)
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-survivor/internal/config"
	"github.com/vovakirdan/tui-survivor/internal/core"
)

// HighScorer reports the best recorded score of a game.
type HighScorer interface {
	HighScore(gameID string) (int, error)
}

// DifficultyItem is one selectable difficulty.
type DifficultyItem struct {
	Preset config.DifficultyPreset
	Title  string
	Detail string
}

var difficultyItems = []DifficultyItem{
	{config.DifficultyEasy, "Easy", "More health, smaller waves, longer breaks"},
	{config.DifficultyNormal, "Normal", "The configured game"},
	{config.DifficultyHard, "Hard", "Less health, bigger and faster waves"},
}

// menuKeys are the bindings of the difficulty menu.
type menuKeys struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

func defaultMenuKeys() menuKeys {
	return menuKeys{
		Up:     key.NewBinding(key.WithKeys("up", "w", "k")),
		Down:   key.NewBinding(key.WithKeys("down", "s", "j")),
		Select: key.NewBinding(key.WithKeys("enter", " ")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c")),
	}
}

// MenuModel is the Bubble Tea model for the difficulty picker shown before
// a run.
type MenuModel struct {
	title     string
	items     []DifficultyItem
	cursor    int
	width     int
	height    int
	highScore int
	keys      menuKeys
	quitting  bool
	selected  *DifficultyItem
}

// NewMenuModel creates a difficulty menu. Normal is preselected.
func NewMenuModel(scores HighScorer, gameID, title string, cfg core.RuntimeConfig) MenuModel {
	m := MenuModel{
		title:  title,
		items:  difficultyItems,
		cursor: 1,
		width:  cfg.ScreenW,
		height: cfg.ScreenH,
		keys:   defaultMenuKeys(),
	}
	if scores != nil {
		if high, err := scores.HighScore(gameID); err == nil {
			m.highScore = high
		}
	}
	return m
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Select):
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting || m.selected != nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render(spaced(m.title)), m.width))
	b.WriteString("\n\n")
	if m.highScore > 0 {
		b.WriteString(centerText(fmt.Sprintf("Best score: %d", m.highScore), m.width))
		b.WriteString("\n\n")
	}
	b.WriteString(centerText("Select difficulty", m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		line := fmt.Sprintf("  %-7s %s", item.Title, item.Detail)
		if i == m.cursor {
			line = activeStyle.Render(fmt.Sprintf("> %-7s %s", item.Title, item.Detail))
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(centerText("Up/Down: Navigate  |  Enter: Start  |  Q: Quit", m.width)))
	b.WriteString("\n")
	return b.String()
}

// spaced puts a space between the letters of an upper-cased title.
func spaced(s string) string {
	return strings.Join(strings.Split(strings.ToUpper(s), ""), " ")
}

// Selected returns the chosen difficulty, or nil if none was chosen.
func (m MenuModel) Selected() *DifficultyItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// RunMenu shows the difficulty menu. It returns nil when the user quits.
func RunMenu(scores HighScorer, gameID, title string, cfg core.RuntimeConfig) (*DifficultyItem, error) {
	p := tea.NewProgram(
		NewMenuModel(scores, gameID, title, cfg),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok || m.IsQuitting() {
		return nil, nil
	}
	return m.Selected(), nil
}

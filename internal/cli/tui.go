package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/fusiongraph/pkg/webhook"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listNewestStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
)

// =============================================================================
// EventsModel - Live event table
// =============================================================================

// watchHeader describes the subscription shown above the table.
type watchHeader struct {
	Component   string
	EventType   string
	Listen      string
	CallbackURL string
}

// eventMsg carries an event from the receiver into the program.
type eventMsg webhook.Event

// EventsModel is the bubbletea model showing received events, newest first.
type EventsModel struct {
	Header watchHeader
	Events []webhook.Event
	Height int

	source <-chan webhook.Event
}

func newEventsModel(source <-chan webhook.Event, h watchHeader) EventsModel {
	return EventsModel{Header: h, Height: 15, source: source}
}

// waitForEvent reads the next event from source.
func waitForEvent(source <-chan webhook.Event) tea.Cmd {
	if source == nil {
		return nil
	}
	return func() tea.Msg {
		return eventMsg(<-source)
	}
}

func (m EventsModel) Init() tea.Cmd {
	return waitForEvent(m.source)
}

func (m EventsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "c":
			m.Events = nil
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 3 {
			m.Height = 3
		}
	case eventMsg:
		m.Events = append([]webhook.Event{webhook.Event(msg)}, m.Events...)
		return m, waitForEvent(m.source)
	}
	return m, nil
}

func (m EventsModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Watching " + m.Header.Component))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%s via %s → %s", m.Header.EventType, m.Header.CallbackURL, m.Header.Listen)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("c clear  q quit"))
	b.WriteString("\n\n")

	if len(m.Events) == 0 {
		b.WriteString(listDimStyle.Render("  Waiting for events..."))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Height, len(m.Events))
	rows := make([][]string, 0, end)
	for _, e := range m.Events[:end] {
		subject := e.Summary()
		if subject == "" {
			subject = "-"
		}
		rows = append(rows, []string{
			e.ReceivedAt.Local().Format(time.TimeOnly),
			e.EventType,
			subject,
			shortID(e.ID),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Received", "Event", "Subject", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return headerStyle.Padding(0, 1)
			case row == 0:
				return listNewestStyle.Padding(0, 1)
			default:
				return base
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d events]", len(m.Events))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

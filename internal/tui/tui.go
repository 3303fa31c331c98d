// Package tui is the terminal client for the arena: it follows one
// game's WebSocket stream, renders the table, and submits decisions for
// a human seat.
package tui

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/holdem-arena/internal/holdem"
	"github.com/lox/holdem-arena/internal/session"
)

// Model is the Bubble Tea model for one game view.
type Model struct {
	client *Client
	logger *log.Logger

	logViewport viewport.Model
	actionInput textinput.Model

	state    *session.GameState
	seat     int // seat this client drives, -1 when spectating
	gameLog  []string
	status   string // transient feedback line
	lastHand int
	lastStep holdem.Phase

	finished    bool
	quitting    bool
	focusedPane int // 0 = log, 1 = input
	width       int
	height      int
	initialized bool
}

type envelopeMsg Envelope

type streamClosedMsg struct{}

// New builds a model over a connected client. seat is the player id
// this terminal controls, or -1 to spectate.
func New(client *Client, seat int, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "fold, check, call, raise 60, advance, quit"
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 60
	ti.PromptStyle = turnStyle
	ti.Prompt = "> "

	return &Model{
		client:      client,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		seat:        seat,
		lastHand:    -1,
		focusedPane: 1,
	}
}

// Init starts the event pump.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.nextEvent())
}

func (m *Model) nextEvent() tea.Cmd {
	return func() tea.Msg {
		env, ok := <-m.client.Events()
		if !ok {
			return streamClosedMsg{}
		}
		return envelopeMsg(env)
	}
}

// Update handles messages in the TUI.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case envelopeMsg:
		m.applyEnvelope(Envelope(msg))
		cmds = append(cmds, m.nextEvent())

	case streamClosedMsg:
		if !m.finished {
			m.addLog(dimStyle.Render("connection closed"))
			m.finished = true
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			m.client.Close()
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.actionInput.Value())
				m.actionInput.SetValue("")
				if cmd := m.handleCommand(input); cmd != nil {
					return m, cmd
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleCommand parses one input line and sends the matching frame.
func (m *Model) handleCommand(input string) tea.Cmd {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		if m.state != nil && m.state.Status == session.StatusPaused {
			m.sendAdvance()
		}
		return nil
	}

	switch fields[0] {
	case "quit", "q":
		m.quitting = true
		m.client.Close()
		return tea.Sequence(tea.ClearScreen, tea.Quit)

	case "advance", "next", "deal":
		m.sendAdvance()

	case "fold", "check", "call":
		m.sendAction(fields[0], 0)

	case "raise", "bet":
		if len(fields) < 2 {
			m.status = errorStyle.Render("raise needs an amount, e.g. raise 60")
			return nil
		}
		amount, err := strconv.Atoi(fields[1])
		if err != nil || amount <= 0 {
			m.status = errorStyle.Render("bad raise amount " + strconv.Quote(fields[1]))
			return nil
		}
		m.sendAction("raise", amount)

	default:
		m.status = errorStyle.Render("unknown command " + strconv.Quote(fields[0]))
	}
	return nil
}

func (m *Model) sendAction(action string, amount int) {
	if m.seat < 0 {
		m.status = errorStyle.Render("spectating, no seat to act for")
		return
	}
	if err := m.client.SendAction(m.seat, action, amount); err != nil {
		m.status = errorStyle.Render(err.Error())
		return
	}
	m.status = ""
}

func (m *Model) sendAdvance() {
	if err := m.client.SendAdvance(); err != nil {
		m.status = errorStyle.Render(err.Error())
		return
	}
	m.status = ""
}

// applyEnvelope folds one server frame into the display state.
func (m *Model) applyEnvelope(env Envelope) {
	switch env.Type {
	case "state_update":
		var update session.StateUpdateEvent
		if err := json.Unmarshal(env.Data, &update); err != nil || update.State == nil {
			return
		}
		m.applyState(update.State)

	case "action_applied":
		var applied session.ActionAppliedEvent
		if err := json.Unmarshal(env.Data, &applied); err != nil {
			return
		}
		m.addLog(m.describeAction(applied))

	case "error":
		var report struct {
			Kind   string `json:"kind"`
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(env.Data, &report); err != nil {
			return
		}
		line := errorStyle.Render(fmt.Sprintf("%s: %s", report.Kind, report.Detail))
		m.addLog(line)
		m.status = line

	case "terminal":
		var terminal session.TerminalEvent
		if err := json.Unmarshal(env.Data, &terminal); err != nil {
			return
		}
		m.finished = true
		m.addLog(headerStyle.Render(" Game over "))
		for _, r := range terminal.Rankings {
			m.addLog(fmt.Sprintf("  #%d %s with %d chips", r.Rank, r.Name, r.Chips))
		}
	}
}

func (m *Model) applyState(state *session.GameState) {
	if state.HandNumber != m.lastHand && state.HandNumber > 0 {
		m.lastHand = state.HandNumber
		m.lastStep = holdem.PreHand
		m.addLog(boardStyle.Render(fmt.Sprintf("--- Hand %d/%d ---", state.HandNumber, state.MaxHands)))
	}
	if state.Phase != m.lastStep && len(state.Board) > 0 {
		m.lastStep = state.Phase
		m.addLog(fmt.Sprintf("%s  %s", state.Phase, m.formatCards(state.Board)))
	}
	if state.Status == session.StatusPaused && (m.state == nil || m.state.Status != session.StatusPaused) {
		m.addLog(dimStyle.Render("hand settled, press enter to deal the next one"))
	}
	m.state = state
}

func (m *Model) describeAction(applied session.ActionAppliedEvent) string {
	name := fmt.Sprintf("seat %d", applied.Record.PlayerID)
	if m.state != nil {
		for _, s := range m.state.Seats {
			if s.PlayerID == applied.Record.PlayerID {
				name = s.Name
				break
			}
		}
	}

	var verb string
	switch applied.Record.Kind {
	case holdem.Fold:
		verb = errorStyle.Render("folds")
	case holdem.Check:
		verb = successStyle.Render("checks")
	case holdem.Call:
		verb = successStyle.Render("calls")
	case holdem.Raise:
		verb = potStyle.Render(fmt.Sprintf("raises to %d", applied.Record.Amount))
	default:
		verb = applied.Record.Kind.String()
	}

	line := fmt.Sprintf("%s %s", name, verb)
	if applied.Note != "" {
		line += dimStyle.Render(" (" + applied.Note + ")")
	}
	return line
}

func (m *Model) addLog(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// View renders the TUI.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent) + 2

	sidebarContent := m.renderSidebar()
	sidebarWidth := lipgloss.Width(sidebarContent)
	if sidebarWidth < 30 {
		sidebarWidth = 30
	}

	topHeight := m.height - actionHeight - lipgloss.Height(header) - 2
	if topHeight < 1 {
		topHeight = 1
	}
	logWidth := m.width - sidebarWidth - 4
	if logWidth < 1 {
		logWidth = 1
	}

	m.logViewport.Width = logWidth
	m.logViewport.Height = topHeight
	if !m.initialized && logWidth > 1 && topHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	paneBorder := func(focused bool) lipgloss.Style {
		color := lipgloss.Color("#626262")
		if focused {
			color = lipgloss.Color("#04B575")
		}
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(color)
	}

	logPane := paneBorder(m.focusedPane == 0).
		Width(logWidth).Height(topHeight).
		Render(m.logViewport.View())
	sidebarPane := paneBorder(false).
		Width(sidebarWidth).Height(topHeight).
		Render(sidebarContent)
	actionPane := paneBorder(m.focusedPane == 1).
		Width(m.width - 2).
		Render(actionContent)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, header, topRow, actionPane)
}

func (m *Model) renderHeader() string {
	if m.state == nil {
		return headerStyle.Render(" holdem arena ")
	}
	return headerStyle.Render(fmt.Sprintf(" %s  %s  hand %d/%d ",
		m.state.GameID, m.state.Status, m.state.HandNumber, m.state.MaxHands))
}

func (m *Model) renderSidebar() string {
	var b strings.Builder
	if m.state == nil {
		b.WriteString(dimStyle.Render("waiting for state..."))
		return b.String()
	}

	pot := 0
	for _, p := range m.state.Pots {
		pot += p.Total
	}
	b.WriteString(potStyle.Render(fmt.Sprintf("Pot: %d", pot)))
	b.WriteString("\n")
	if len(m.state.Board) > 0 {
		b.WriteString("Board: " + m.formatCards(m.state.Board))
	}
	b.WriteString("\n\n")

	for _, seat := range m.state.Seats {
		marker := "  "
		if m.state.CurrentPlayer != nil && *m.state.CurrentPlayer == seat.PlayerID {
			marker = turnStyle.Render("> ")
		}
		line := fmt.Sprintf("%s%s  %d", marker, seat.Name, seat.Chips)
		if seat.Bet > 0 {
			line += fmt.Sprintf(" (bet %d)", seat.Bet)
		}
		if seat.State == session.SeatFolded {
			line = dimStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
		if len(seat.HoleCards) > 0 {
			b.WriteString("    " + m.formatCards(seat.HoleCards))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *Model) renderActionPane() string {
	var b strings.Builder

	if m.state != nil && m.myTurn() {
		b.WriteString(actionStyle.Render("Your turn: " + strings.Join(m.state.Actions, " ")))
		if m.state.MinRaiseAmount != nil && m.state.MaxRaiseAmount != nil {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  raise %d-%d", *m.state.MinRaiseAmount, *m.state.MaxRaiseAmount)))
		}
		b.WriteString("\n")
	} else if m.finished {
		b.WriteString(dimStyle.Render("Game over, ctrl+c to exit"))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}

	b.WriteString(m.actionInput.View())
	b.WriteString("\n")
	if m.focusedPane == 0 {
		b.WriteString(dimStyle.Render("Log focused: up/down scroll, tab to input"))
	} else {
		b.WriteString(dimStyle.Render("Tab to scroll log, enter to submit, ctrl+c to quit"))
	}
	return b.String()
}

func (m *Model) myTurn() bool {
	return m.seat >= 0 &&
		m.state.CurrentPlayer != nil &&
		*m.state.CurrentPlayer == m.seat
}

// formatCards renders cards with suit colors.
func (m *Model) formatCards(cards []holdem.Card) string {
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		if c.Suit == holdem.Hearts || c.Suit == holdem.Diamonds {
			parts = append(parts, redCardStyle.Render(c.String()))
		} else {
			parts = append(parts, blackCardStyle.Render(c.String()))
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

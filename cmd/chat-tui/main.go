package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"support-chat-backend/internal/client"
	"support-chat-backend/internal/model"
	"support-chat-backend/internal/websocket"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type appConfig struct {
	server   string
	role     string
	name     string
	email    string
	password string
	chatID   string
}

type uiTheme struct {
	header    lipgloss.Style
	customer  lipgloss.Style
	staff     lipgloss.Style
	ai        lipgloss.Style
	muted     lipgloss.Style
	errorLine lipgloss.Style
}

func newTheme() uiTheme {
	pink := lipgloss.Color("#ff71ce")
	blue := lipgloss.Color("#01cdfe")
	mint := lipgloss.Color("#05ffa1")
	muted := lipgloss.Color("#9ca3d8")

	return uiTheme{
		header: lipgloss.NewStyle().
			Foreground(blue).
			Bold(true).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		customer:  lipgloss.NewStyle().Foreground(mint).Bold(true),
		staff:     lipgloss.NewStyle().Foreground(blue).Bold(true),
		ai:        lipgloss.NewStyle().Foreground(pink).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(muted),
		errorLine: lipgloss.NewStyle().Foreground(pink),
	}
}

type readyMsg struct {
	session *client.Session
	conn    *client.Conn
	err     error
}

type changedMsg struct{}

type connClosedMsg struct{ err error }

type sentMsg struct{ err error }

type assignedMsg struct {
	chat model.ChatItem
	err  error
}

type appModel struct {
	cfg     appConfig
	api     *client.HTTPAPI
	events  chan tea.Msg
	ctx     context.Context
	cancel  context.CancelFunc
	session *client.Session
	conn    *client.Conn

	input    textinput.Model
	timeline viewport.Model
	theme    uiTheme
	status   string
	lastErr  error
	width    int
	height   int
}

func newModel(cfg appConfig) appModel {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 2000
	input.Placeholder = "Type a message and press enter"
	if cfg.role == "staff" {
		input.Placeholder = "Type a reply, or /assign to take the chat"
	}
	input.Focus()

	ctx, cancel := context.WithCancel(context.Background())
	return appModel{
		cfg:      cfg,
		api:      client.NewHTTPAPI(cfg.server, nil),
		events:   make(chan tea.Msg, 64),
		ctx:      ctx,
		cancel:   cancel,
		input:    input,
		timeline: viewport.New(0, 0),
		theme:    newTheme(),
		status:   "connecting...",
	}
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.startCmd(), waitMsg(m.events))
}

func waitMsg(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// notify drops the signal when the UI is behind; the next render reads
// the latest session state anyway.
func notify(ch chan<- tea.Msg, msg tea.Msg) {
	select {
	case ch <- msg:
	default:
	}
}

func (m appModel) startCmd() tea.Cmd {
	cfg := m.cfg
	api := m.api
	events := m.events
	ctx := m.ctx

	return func() tea.Msg {
		role := client.RoleCustomer
		author := cfg.name
		chatID := cfg.chatID

		switch cfg.role {
		case "staff":
			role = client.RoleStaff
			if _, err := api.Login(ctx, cfg.email, cfg.password); err != nil {
				return readyMsg{err: fmt.Errorf("login: %w", err)}
			}
			if chatID == "" {
				chats, err := api.ListEscalatedChats(ctx)
				if err != nil {
					return readyMsg{err: fmt.Errorf("list escalated chats: %w", err)}
				}
				if len(chats) == 0 {
					return readyMsg{err: errors.New("no escalated chats; pass -chat to open one")}
				}
				chatID = chats[0].ID
			}
		default:
			if _, err := api.Join(ctx, cfg.name); err != nil {
				return readyMsg{err: fmt.Errorf("join: %w", err)}
			}
			if chatID == "" {
				chat, err := api.CreateChat(ctx, cfg.name)
				if err != nil {
					return readyMsg{err: fmt.Errorf("create chat: %w", err)}
				}
				chatID = chat.ID
			}
		}

		conn, err := client.Dial(ctx, cfg.server, nil)
		if err != nil {
			return readyMsg{err: err}
		}

		session := client.NewSession(client.Options{
			Role:     role,
			Author:   author,
			API:      api,
			Typing:   conn,
			OnChange: func() { notify(events, changedMsg{}) },
		})

		go func() {
			err := conn.Run(ctx, func(env websocket.Envelope) {
				session.Apply(ctx, env)
			})
			notify(events, connClosedMsg{err: err})
		}()

		if err := session.Open(ctx, chatID); err != nil {
			conn.Close()
			return readyMsg{err: fmt.Errorf("open chat: %w", err)}
		}
		session.SetFocus(ctx, true)
		return readyMsg{session: session, conn: conn}
	}
}

func (m appModel) sendCmd(text string) tea.Cmd {
	session := m.session
	ctx := m.ctx
	return func() tea.Msg {
		_, err := session.Send(ctx, text)
		return sentMsg{err: err}
	}
}

func (m appModel) keystrokeCmd(text string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		session.Keystroke(text)
		return nil
	}
}

func (m appModel) focusCmd(focused bool) tea.Cmd {
	session := m.session
	ctx := m.ctx
	return func() tea.Msg {
		session.SetFocus(ctx, focused)
		return nil
	}
}

func (m appModel) assignCmd() tea.Cmd {
	api := m.api
	ctx := m.ctx
	chatID := m.session.Chat().ID
	return func() tea.Msg {
		chat, err := api.AssignStaff(ctx, chatID, "")
		return assignedMsg{chat: chat, err: err}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case readyMsg:
		if msg.err != nil {
			m.lastErr = msg.err
			m.status = "startup failed"
			return m, nil
		}
		m.session = msg.session
		m.conn = msg.conn
		m.status = "connected"
		m.render()

	case changedMsg:
		m.render()
		cmds = append(cmds, waitMsg(m.events))

	case connClosedMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.lastErr = msg.err
			m.status = "disconnected"
		}
		cmds = append(cmds, waitMsg(m.events))

	case sentMsg:
		if msg.err != nil {
			m.lastErr = msg.err
		}

	case assignedMsg:
		if msg.err != nil {
			m.lastErr = msg.err
			break
		}
		m.status = "assigned to " + msg.chat.AssignedStaff

	case tea.FocusMsg:
		if m.session != nil {
			cmds = append(cmds, m.focusCmd(true))
		}

	case tea.BlurMsg:
		if m.session != nil {
			cmds = append(cmds, m.focusCmd(false))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.timeline.Width = msg.Width
		m.timeline.Height = maxInt(3, msg.Height-6)
		m.input.Width = maxInt(10, msg.Width-4)
		m.render()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancel()
			if m.conn != nil {
				m.conn.Close()
			}
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if text == "" || m.session == nil {
				break
			}
			if text == "/assign" && m.cfg.role == "staff" {
				cmds = append(cmds, m.assignCmd())
				break
			}
			m.lastErr = nil
			cmds = append(cmds, m.sendCmd(text))
			return m, tea.Batch(cmds...)
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
		if m.session != nil && msg.Type != tea.KeyEnter {
			cmds = append(cmds, m.keystrokeCmd(m.input.Value()))
		}
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *appModel) render() {
	if m.session == nil {
		return
	}
	var b strings.Builder
	for _, msg := range m.session.Messages() {
		b.WriteString(m.authorStyle(msg.Author).Render(displayAuthor(msg.Author)))
		b.WriteString(m.theme.muted.Render(" " + shortTime(msg.Created)))
		if msg.Read {
			b.WriteString(m.theme.muted.Render(" ✓"))
		}
		b.WriteString("\n")
		b.WriteString(msg.Message)
		b.WriteString("\n\n")
	}
	m.timeline.SetContent(b.String())
	m.timeline.GotoBottom()
}

func (m appModel) authorStyle(author string) lipgloss.Style {
	switch model.ParseAuthor(author).Kind {
	case model.AuthorKindAI:
		return m.theme.ai
	case model.AuthorKindStaff:
		return m.theme.staff
	default:
		return m.theme.customer
	}
}

func displayAuthor(author string) string {
	switch model.ParseAuthor(author).Kind {
	case model.AuthorKindAI:
		return "Assistant"
	case model.AuthorKindStaff:
		return "Support"
	default:
		return author
	}
}

func shortTime(created string) string {
	t, err := time.Parse(model.TimeLayout, created)
	if err != nil {
		return ""
	}
	return t.Local().Format("15:04")
}

func (m appModel) View() string {
	header := "support chat · " + m.status
	if m.session != nil {
		chat := m.session.Chat()
		owner := chat.AssignedStaff
		if owner == "" || owner == model.AuthorAI {
			owner = "assistant"
		}
		header = fmt.Sprintf("chat %s · %s · handled by %s", shortID(chat.ID), m.status, owner)
		if m.cfg.role == "staff" {
			header += " · customer " + chat.DisplayAuthor()
		}
		if chat.NeedsHuman {
			header += " · waiting for staff"
		}
	}

	var b strings.Builder
	b.WriteString(m.theme.header.Render(header))
	b.WriteString("\n")
	b.WriteString(m.timeline.View())
	b.WriteString("\n")
	if m.session != nil && m.session.PeerTyping() {
		b.WriteString(m.theme.muted.Render("typing..."))
	}
	b.WriteString("\n")
	if m.lastErr != nil {
		b.WriteString(m.theme.errorLine.Render("error: " + m.lastErr.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseFlags() appConfig {
	cfg := appConfig{}
	flag.StringVar(&cfg.server, "server", envOr("CHAT_SERVER_URL", "http://localhost:3000"), "Chat server base URL")
	flag.StringVar(&cfg.role, "role", "customer", "Session role (customer|staff)")
	flag.StringVar(&cfg.name, "name", envOr("USER", "guest"), "Customer display name")
	flag.StringVar(&cfg.email, "email", envOr("CHAT_STAFF_EMAIL", ""), "Staff login email")
	flag.StringVar(&cfg.password, "password", envOr("CHAT_STAFF_PASSWORD", ""), "Staff login password")
	flag.StringVar(&cfg.chatID, "chat", "", "Chat id to open (default: new chat for customers, first escalated chat for staff)")
	flag.Parse()
	cfg.role = strings.ToLower(strings.TrimSpace(cfg.role))
	return cfg
}

func main() {
	cfg := parseFlags()
	if cfg.role != "customer" && cfg.role != "staff" {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", cfg.role)
		os.Exit(2)
	}

	p := tea.NewProgram(newModel(cfg), tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "chat-tui fatal error: %v\n", err)
		os.Exit(1)
	}
}

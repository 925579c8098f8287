// Package tui is the terminal map client: an ASCII world map with mouse pan,
// wheel zoom, click-to-pin and marker inspection.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/samirrijal/pinmap/internal/core/domain"
	"github.com/samirrijal/pinmap/internal/core/selection"
	"github.com/samirrijal/pinmap/internal/core/surface"
	"github.com/samirrijal/pinmap/internal/core/usecases"
	"github.com/samirrijal/pinmap/internal/core/viewport"
)

const (
	headerHeight = 1
	footerHeight = 2
	panCells     = 4
)

// Queries is the client query layer.
type Queries interface {
	ListAll(ctx context.Context) (usecases.PinsSnapshot, error)
	Invalidate(key string)
	Create(ctx context.Context, lat, lng float64, memo string) (domain.PinID, error)
	Get(ctx context.Context, id domain.PinID) (*domain.Pin, error)
	InRange(ctx context.Context, b domain.Bounds) ([]domain.PinEntry, error)
}

// Store establishes the connection to the pin store.
type Store interface {
	WaitReady(ctx context.Context, interval time.Duration) error
}

// Config wires the model to its collaborators.
type Config struct {
	Queries        Queries
	Store          Store
	Canvas         viewport.Canvas
	Limits         viewport.Limits
	Surface        surface.Options
	RequestTimeout time.Duration
	ProbeInterval  time.Duration
}

type toast struct {
	text string
	ok   bool
}

// Model is the bubbletea model for the map page.
type Model struct {
	ctx           context.Context
	queries       Queries
	store         Store
	timeout       time.Duration
	probeInterval time.Duration

	surf *surface.Surface
	page *selection.Page

	memo     textarea.Model
	idInput  textinput.Model
	askingID bool

	width, height int
	leftDown      bool

	ready bool
	snap  usecases.PinsSnapshot
	toast toast
	seq   int
}

// New builds the map page. ctx bounds every remote call.
func New(ctx context.Context, cfg Config) Model {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = 2 * time.Second
	}

	ta := textarea.New()
	ta.Placeholder = "Write a memo..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(40)
	ta.SetHeight(4)

	ti := textinput.New()
	ti.Prompt = "#"
	ti.Placeholder = "pin id"
	ti.CharLimit = 20

	return Model{
		ctx:           ctx,
		queries:       cfg.Queries,
		store:         cfg.Store,
		timeout:       cfg.RequestTimeout,
		probeInterval: cfg.ProbeInterval,
		surf:          surface.New(viewport.New(cfg.Canvas, cfg.Limits), cfg.Surface),
		page:          selection.NewPage(),
		memo:          ta,
		idInput:       ti,
		snap:          usecases.PinsSnapshot{Status: usecases.StatusLoading},
	}
}

func (m Model) Init() tea.Cmd {
	return m.waitReady()
}

func (m *Model) notify(text string, ok bool) tea.Cmd {
	m.seq++
	m.toast = toast{text: text, ok: ok}
	return expireToast(m.seq)
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	mapH := h - headerHeight - footerHeight
	if mapH < 1 {
		mapH = 1
	}
	m.surf.SetRect(viewport.Rect{Left: 0, Top: headerHeight, Width: float64(w), Height: float64(mapH)})
	m.memo.SetWidth(min(48, max(20, w/2)))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case readyMsg:
		if msg.err != nil {
			slog.Warn("pin store never became ready", "error", msg.err)
			return m, nil
		}
		m.ready = true
		return m, m.fetchPins()

	case pinsMsg:
		m.snap = msg.snap
		m.surf.SetPins(msg.snap.Pins)
		if msg.err != nil {
			slog.Error("load pins", "error", msg.err)
			return m, m.notify("Failed to load pins", false)
		}
		return m, nil

	case createdMsg:
		notice := m.page.FinishCreate(msg.err)
		if msg.err != nil {
			slog.Error("create pin", "error", msg.err)
			return m, m.notify(notice, false)
		}
		slog.Info("pin created", "pin_id", msg.id)
		m.memo.Reset()
		m.memo.Blur()
		return m, tea.Batch(m.notify(notice, true), m.fetchPins())

	case inspectMsg:
		m.page.OpenInspect(msg.view)
		return m, nil

	case inViewMsg:
		if msg.err != nil {
			return m, m.notify("Failed to query visible pins", false)
		}
		return m, m.notify(fmt.Sprintf("%d pins in view", len(msg.pins)), true)

	case toastExpiredMsg:
		if msg.seq == m.seq {
			m.toast = toast{}
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.askingID {
		switch msg.Type {
		case tea.KeyEsc:
			m.askingID = false
			m.idInput.Blur()
			return m, nil
		case tea.KeyEnter:
			raw := strings.TrimSpace(m.idInput.Value())
			id, err := strconv.ParseUint(strings.TrimPrefix(raw, "#"), 10, 64)
			if err != nil {
				return m, m.notify("Pin id must be a number", false)
			}
			m.askingID = false
			m.idInput.Blur()
			return m, m.loadInspection(domain.PinID(id))
		}
		var cmd tea.Cmd
		m.idInput, cmd = m.idInput.Update(msg)
		return m, cmd
	}

	if d := m.page.Dialog(); d != nil {
		switch msg.Type {
		case tea.KeyEsc:
			m.page.Close()
			if m.page.IsIdle() {
				m.memo.Blur()
			}
			return m, nil
		case tea.KeyCtrlS:
			return m.submit(d)
		}
		if d.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.memo, cmd = m.memo.Update(msg)
		d.SetMemo(m.memo.Value())
		return m, cmd
	}

	if _, ok := m.page.Selection().(selection.Inspecting); ok {
		switch msg.String() {
		case "esc", "enter", "q":
			m.page.Close()
		}
		return m, nil
	}

	r := m.surf.Rect()
	cx, cy := r.Left+r.Width/2, r.Top+r.Height/2
	vp := m.surf.Viewport()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "r":
		m.queries.Invalidate(usecases.AllPinsKey)
		return m, m.fetchPins()
	case "+", "=":
		m.surf.Wheel(1, cx, cy)
	case "-", "_":
		m.surf.Wheel(-1, cx, cy)
	case "0":
		vp.Reset()
	case "left":
		vp.Pan(panCells, 0, r)
	case "right":
		vp.Pan(-panCells, 0, r)
	case "up":
		vp.Pan(0, panCells/2, r)
	case "down":
		vp.Pan(0, -panCells/2, r)
	case "/":
		m.askingID = true
		m.idInput.SetValue("")
		return m, m.idInput.Focus()
	case "v":
		return m, m.pinsInView(vp.Bounds())
	}
	return m, nil
}

func (m Model) submit(d *selection.CreateDialog) (tea.Model, tea.Cmd) {
	req, err := d.Begin()
	switch {
	case errors.Is(err, usecases.ErrEmptyMemo):
		return m, m.notify(selection.NoticeEmptyMemo, false)
	case err != nil:
		return m, nil
	}
	return m, m.createPin(req)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.page.IsIdle() || m.askingID {
		return m, nil
	}
	x, y := float64(msg.X)+0.5, float64(msg.Y)+0.5

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.surf.Wheel(-1, x, y)
	case msg.Button == tea.MouseButtonWheelDown:
		m.surf.Wheel(1, x, y)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.leftDown = true
		m.surf.MouseDown(x, y)
	case msg.Action == tea.MouseActionMotion:
		m.surf.MouseMove(x, y)
	case msg.Action == tea.MouseActionRelease && m.leftDown:
		m.leftDown = false
		m.surf.MouseUp(x, y)
		return m.handleIntent(m.surf.Click(x, y))
	}
	return m, nil
}

func (m Model) handleIntent(in surface.Intent) (tea.Model, tea.Cmd) {
	switch in.Kind {
	case surface.IntentInspect:
		m.page.OpenInspect(selection.NewInspection(in.Pin))
	case surface.IntentCreate:
		m.page.OpenCreate(in.At)
		m.memo.Reset()
		return m, m.memo.Focus()
	}
	return m, nil
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	r := m.surf.Rect()
	mapW, mapH := int(r.Width), int(r.Height)

	var body string
	switch {
	case m.askingID:
		body = lipgloss.Place(mapW, mapH, lipgloss.Center, lipgloss.Center, m.idPromptView())
	case m.page.Dialog() != nil:
		body = lipgloss.Place(mapW, mapH, lipgloss.Center, lipgloss.Center, m.createView(m.page.Dialog()))
	default:
		if in, ok := m.page.Selection().(selection.Inspecting); ok {
			body = lipgloss.Place(mapW, mapH, lipgloss.Center, lipgloss.Center, inspectView(in.View))
		} else {
			body = renderMap(m.surf)
		}
	}

	ui := lipgloss.JoinVertical(lipgloss.Left, m.headerView(), body, m.toastView(), m.helpView())
	return lipgloss.NewStyle().MaxWidth(m.width).MaxHeight(m.height).Render(ui)
}

func (m Model) headerView() string {
	parts := []string{titleStyle.Render(" pinmap ")}
	parts = append(parts, fmt.Sprintf("Pins: %d", len(m.snap.Pins)))
	switch {
	case !m.ready:
		parts = append(parts, dimStyle.Render("connecting to store..."))
	case m.snap.Status == usecases.StatusLoading:
		parts = append(parts, dimStyle.Render("loading..."))
	case m.snap.Status == usecases.StatusError:
		parts = append(parts, errStyle.Render("offline data"))
	}
	parts = append(parts, dimStyle.Render(fmt.Sprintf("zoom %.2fx", m.surf.Viewport().Scale)))
	return strings.Join(parts, "  ")
}

func (m Model) toastView() string {
	if m.toast.text == "" {
		return ""
	}
	if m.toast.ok {
		return okStyle.Render(" " + m.toast.text)
	}
	return errStyle.Render(" " + m.toast.text)
}

func (m Model) helpView() string {
	return dimStyle.Render(" drag pan · wheel/+/- zoom · click add pin · click ● inspect · / find id · v count in view · r refresh · 0 reset · q quit")
}

func coordRows(p domain.GeoPoint) []string {
	return []string{
		labelStyle.Render("Latitude") + selection.FormatCoord(p.Lat),
		labelStyle.Render("Longitude") + selection.FormatCoord(p.Lon),
	}
}

func (m Model) createView(d *selection.CreateDialog) string {
	rows := []string{titleStyle.Render("New pin")}
	rows = append(rows, coordRows(d.At())...)
	rows = append(rows, "", m.memo.View(), dimStyle.Render(fmt.Sprintf("%d characters", d.CharCount())))

	if err := d.Err(); err != nil && !errors.Is(err, usecases.ErrEmptyMemo) {
		rows = append(rows, errStyle.Render(selection.NoticeCreateFailed+": "+err.Error()))
	}

	switch {
	case d.Pending():
		rows = append(rows, dimStyle.Render("Saving..."))
	case d.CanSubmit():
		rows = append(rows, "[ctrl+s] Save  [esc] Cancel")
	default:
		rows = append(rows, dimStyle.Render("[ctrl+s] Save")+"  [esc] Cancel")
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func inspectView(v selection.Inspection) string {
	rows := []string{titleStyle.Render("Pin " + v.IDText())}
	if msg := v.Message(); msg != "" {
		rows = append(rows, errStyle.Render(msg))
	} else {
		rows = append(rows, coordRows(v.Entry.Pin.Point())...)
		rows = append(rows, "", labelStyle.Render("Memo"), v.Memo())
	}
	rows = append(rows, "", dimStyle.Render("[esc] Close"))
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) idPromptView() string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Inspect pin"),
		m.idInput.View(),
		dimStyle.Render("[enter] Open  [esc] Cancel"),
	))
}

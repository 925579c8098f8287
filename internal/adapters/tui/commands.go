package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/samirrijal/pinmap/internal/core/domain"
	"github.com/samirrijal/pinmap/internal/core/selection"
	"github.com/samirrijal/pinmap/internal/core/usecases"
)

const toastTTL = 3 * time.Second

type (
	readyMsg struct{ err error }

	pinsMsg struct {
		snap usecases.PinsSnapshot
		err  error
	}

	createdMsg struct {
		id  domain.PinID
		err error
	}

	inspectMsg struct{ view selection.Inspection }

	inViewMsg struct {
		pins []domain.PinEntry
		err  error
	}

	toastExpiredMsg struct{ seq int }
)

func (m Model) requestCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(m.ctx, m.timeout)
}

func (m Model) waitReady() tea.Cmd {
	return func() tea.Msg {
		return readyMsg{err: m.store.WaitReady(m.ctx, m.probeInterval)}
	}
}

func (m Model) fetchPins() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestCtx()
		defer cancel()
		snap, err := m.queries.ListAll(ctx)
		return pinsMsg{snap: snap, err: err}
	}
}

func (m Model) createPin(req selection.CreateRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestCtx()
		defer cancel()
		id, err := m.queries.Create(ctx, req.Latitude, req.Longitude, req.Memo)
		return createdMsg{id: id, err: err}
	}
}

func (m Model) loadInspection(id domain.PinID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestCtx()
		defer cancel()
		return inspectMsg{view: selection.LoadInspection(ctx, m.queries, id)}
	}
}

func (m Model) pinsInView(b domain.Bounds) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestCtx()
		defer cancel()
		pins, err := m.queries.InRange(ctx, b)
		return inViewMsg{pins: pins, err: err}
	}
}

func expireToast(seq int) tea.Cmd {
	return tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
}

// Package selection holds the page-level UI state: which dialog, if any, is
// open over the map, and the state of the pin creation and inspection flows.
package selection

import "github.com/samirrijal/pinmap/internal/core/domain"

// Selection is one of Idle, PendingCreate or Inspecting.
type Selection interface {
	isSelection()
}

// Idle means no dialog is open.
type Idle struct{}

// PendingCreate holds the coordinate a new pin will be created at.
type PendingCreate struct {
	At domain.GeoPoint
}

// Inspecting shows an existing pin.
type Inspecting struct {
	View Inspection
}

func (Idle) isSelection()          {}
func (PendingCreate) isSelection() {}
func (Inspecting) isSelection()    {}

// Page owns the current selection. Opening one flow replaces the other.
type Page struct {
	sel    Selection
	dialog *CreateDialog
}

// NewPage starts Idle.
func NewPage() *Page {
	return &Page{sel: Idle{}}
}

func (p *Page) Selection() Selection { return p.sel }

// IsIdle reports whether no dialog is open.
func (p *Page) IsIdle() bool {
	_, ok := p.sel.(Idle)
	return ok
}

// Dialog returns the open creation dialog, or nil.
func (p *Page) Dialog() *CreateDialog { return p.dialog }

// Busy reports whether a create request is in flight. The selection cannot
// change until it settles.
func (p *Page) Busy() bool {
	return p.dialog != nil && p.dialog.Pending()
}

// OpenCreate opens a fresh creation dialog at the given coordinate.
func (p *Page) OpenCreate(at domain.GeoPoint) *CreateDialog {
	if p.Busy() {
		return p.dialog
	}
	p.dialog = newCreateDialog(at)
	p.sel = PendingCreate{At: at}
	return p.dialog
}

// OpenInspect shows an inspection, closing any creation dialog.
func (p *Page) OpenInspect(v Inspection) {
	if p.Busy() {
		return
	}
	p.dialog = nil
	p.sel = Inspecting{View: v}
}

// Close returns to Idle. It is a no-op while a create is in flight.
func (p *Page) Close() {
	if p.Busy() {
		return
	}
	p.dialog = nil
	p.sel = Idle{}
}

// FinishCreate records the outcome of the in-flight create. Success closes the
// dialog; failure keeps it open with the memo intact. It returns the
// notification text to show.
func (p *Page) FinishCreate(err error) string {
	if p.dialog == nil {
		return ""
	}
	if p.dialog.Finish(err) {
		p.dialog = nil
		p.sel = Idle{}
		return NoticeCreated
	}
	return NoticeCreateFailed
}

package selection

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/samirrijal/pinmap/internal/core/domain"
	"github.com/samirrijal/pinmap/internal/core/usecases"
)

// User-facing notifications.
const (
	NoticeCreated      = "Pin created successfully!"
	NoticeCreateFailed = "Failed to create pin"
	NoticeEmptyMemo    = "Please enter a memo"
)

// ErrSubmitPending is returned by Begin while a request is already in flight.
var ErrSubmitPending = errors.New("create already in progress")

// CreateRequest is what the dialog submits to the query layer.
type CreateRequest struct {
	Latitude  float64
	Longitude float64
	Memo      string
}

// CreateDialog captures a memo for a fixed coordinate. At most one request is
// in flight per dialog.
type CreateDialog struct {
	at      domain.GeoPoint
	memo    string
	pending bool
	err     error
}

func newCreateDialog(at domain.GeoPoint) *CreateDialog {
	return &CreateDialog{at: at}
}

// At is the read-only coordinate.
func (d *CreateDialog) At() domain.GeoPoint { return d.at }

func (d *CreateDialog) Memo() string { return d.memo }

// SetMemo updates the memo text. Input is frozen while a request is pending.
func (d *CreateDialog) SetMemo(memo string) {
	if d.pending {
		return
	}
	d.memo = memo
}

// CharCount is the memo length in characters.
func (d *CreateDialog) CharCount() int { return utf8.RuneCountInString(d.memo) }

func (d *CreateDialog) Pending() bool { return d.pending }

// Err is the last validation or remote error, cleared by the next Begin.
func (d *CreateDialog) Err() error { return d.err }

// CanSubmit is false while the trimmed memo is empty or a request is in flight.
func (d *CreateDialog) CanSubmit() bool {
	return !d.pending && strings.TrimSpace(d.memo) != ""
}

// Begin validates the memo and marks the dialog pending. The returned request
// carries the trimmed memo.
func (d *CreateDialog) Begin() (CreateRequest, error) {
	if d.pending {
		return CreateRequest{}, ErrSubmitPending
	}
	memo := strings.TrimSpace(d.memo)
	if memo == "" {
		d.err = usecases.ErrEmptyMemo
		return CreateRequest{}, d.err
	}
	d.err = nil
	d.pending = true
	return CreateRequest{Latitude: d.at.Lat, Longitude: d.at.Lon, Memo: memo}, nil
}

// Finish settles the pending request and reports whether the dialog should close.
func (d *CreateDialog) Finish(err error) bool {
	d.pending = false
	if err != nil {
		d.err = err
		return false
	}
	return true
}

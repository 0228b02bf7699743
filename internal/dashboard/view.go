package dashboard

import (
	"github.com/spec-kit/ticket-dashboard/internal/domain"
)

// FetchState is the retrieval lifecycle of the ticket list.
type FetchState string

const (
	StateIdle    FetchState = "idle"
	StateLoading FetchState = "loading"
	StateSuccess FetchState = "success"
	StateError   FetchState = "error"
)

// User-facing messages.
const (
	ReasonLoadFailed       = "failed to load tickets"
	NoticeTicketNotFound   = "ticket not found"
	NoticeTicketLoadFailed = "failed to load ticket"
)

// RequestKey identifies a list request by the filters and page it was issued for.
type RequestKey struct {
	Filters domain.TicketFilters
	Page    int
}

// FetchStatus describes the latest list retrieval and the key it belongs to.
type FetchStatus struct {
	State     FetchState
	Key       RequestKey
	FromCache bool
	// Reason and Err are set only in StateError.
	Reason string
	Err    error
}

// View is an immutable snapshot of a dashboard for rendering.
type View struct {
	SessionID    string
	Filters      domain.TicketFilters
	Page         int
	ItemsPerPage int
	Status       FetchStatus

	// Data is the most recently applied page. It may belong to an earlier
	// request while a newer one is loading or has failed; DataKey tells which.
	Data    *domain.TicketPage
	DataKey RequestKey

	Selection  *domain.Ticket
	DetailOpen bool
	Notice     string
}

// Key returns the request key of the view's current filters and page.
func (v View) Key() RequestKey {
	return RequestKey{Filters: v.Filters, Page: v.Page}
}

// HasActiveFilters reports whether any filter criterion is set.
func (v View) HasActiveFilters() bool {
	return !v.Filters.IsEmpty()
}

// IsLoading reports whether a retrieval for the current key is in flight.
func (v View) IsLoading() bool {
	return v.Status.State == StateLoading
}

// DataIsCurrent reports whether Data was produced for the current filters and page.
func (v View) DataIsCurrent() bool {
	return v.Data != nil && v.DataKey == v.Key()
}

// Tickets returns the tickets for the current key, or nil when none are loaded.
func (v View) Tickets() []domain.TicketSummary {
	if !v.DataIsCurrent() {
		return nil
	}
	return v.Data.Tickets
}

// Pagination returns the metadata of the loaded data, or an empty single page
// before anything has loaded.
func (v View) Pagination() domain.PaginationInfo {
	if v.Data == nil {
		return domain.NewPaginationInfo(1, v.ItemsPerPage, 0)
	}
	return v.Data.Pagination
}

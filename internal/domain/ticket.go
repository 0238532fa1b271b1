package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Terminal reports whether s marks the ticket as done.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID              int64
	Title           string
	Description     string
	Status          TicketStatus
	Priority        TicketPriority
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   *string
	CategoryID      *int64
	AssignedAdminID *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ResolvedAt      *time.Time

	// Read-only, populated by joins.
	CategoryName      *string
	CategoryColor     *string
	AssignedAdminName *string
}

// SetStatus moves the ticket to status. The resolution timestamp is stamped
// the first time the ticket reaches a terminal status and is never cleared.
func (t *Ticket) SetStatus(status TicketStatus, now time.Time) {
	t.Status = status
	if status.Terminal() && t.ResolvedAt == nil {
		stamp := now
		t.ResolvedAt = &stamp
	}
}

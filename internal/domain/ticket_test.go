package domain

import (
	"testing"
	"time"
)

func TestSetStatusStampsResolvedAtOnce(t *testing.T) {
	first := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ticket := &Ticket{Status: TicketStatusOpen}

	ticket.SetStatus(TicketStatusInProgress, first)
	if ticket.ResolvedAt != nil {
		t.Fatalf("in_progress must not stamp resolved_at")
	}

	ticket.SetStatus(TicketStatusResolved, first)
	if ticket.ResolvedAt == nil || !ticket.ResolvedAt.Equal(first) {
		t.Fatalf("resolved_at = %v want %v", ticket.ResolvedAt, first)
	}

	ticket.SetStatus(TicketStatusResolved, first.Add(time.Hour))
	ticket.SetStatus(TicketStatusOpen, first.Add(2*time.Hour))
	ticket.SetStatus(TicketStatusClosed, first.Add(3*time.Hour))
	if !ticket.ResolvedAt.Equal(first) {
		t.Fatalf("resolved_at moved to %v", ticket.ResolvedAt)
	}
	if ticket.Status != TicketStatusClosed {
		t.Fatalf("status = %s", ticket.Status)
	}
}

func TestEnumsValidate(t *testing.T) {
	if !TicketStatus("in_progress").Valid() || TicketStatus("pending").Valid() {
		t.Fatalf("status validation wrong")
	}
	if !TicketPriority("urgent").Valid() || TicketPriority("critical").Valid() {
		t.Fatalf("priority validation wrong")
	}
	if !AdminRole("super_admin").Valid() || AdminRole("root").Valid() {
		t.Fatalf("role validation wrong")
	}
}

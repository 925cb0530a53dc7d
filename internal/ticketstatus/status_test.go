package ticketstatus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/tourism-service/internal/domain"
)

var (
	start = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	end   = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

func ticketWith(status domain.TicketStatus, logs ...domain.ScanLogEntry) domain.Ticket {
	return domain.Ticket{
		Status:        status,
		StartDateTime: start.Format("2006-01-02T15:04:05.000Z"),
		EndDateTime:   end.Format("2006-01-02T15:04:05.000Z"),
		ScanLogs:      logs,
	}
}

func scanAt(offset time.Duration) domain.ScanLogEntry {
	return domain.ScanLogEntry{Status: domain.TicketStatusScanned, DateUpdated: start.Add(offset)}
}

func TestOverrideStatuses(t *testing.T) {
	tests := map[domain.TicketStatus]Label{
		domain.TicketStatusCanceled:   Canceled,
		domain.TicketStatusReschedule: ScheduleChange,
		domain.TicketStatusReassigned: Reassigned,
		domain.TicketStatusRelocate:   Relocate,
		domain.TicketStatusEmergency:  OnEmergency,
	}
	for status, want := range tests {
		ticket := ticketWith(status, scanAt(0))
		assert.Equal(t, want, Compute(ticket, start.Add(-time.Hour)), string(status))
		assert.Equal(t, want, Compute(ticket, end.AddDate(1, 0, 0)), string(status))
	}
}

func TestCreatedTicket(t *testing.T) {
	ticket := ticketWith(domain.TicketStatusCreated)

	tests := []struct {
		name string
		now  time.Time
		want Label
	}{
		{"before start", start.Add(-time.Hour), Queued},
		{"during window", start.Add(time.Hour), Queued},
		{"just past end", end.Add(time.Hour), Queued},
		{"within a month of end", end.AddDate(0, 0, 29), Queued},
		{"beyond a month of end", end.AddDate(0, 1, 0).Add(time.Minute), Invalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compute(ticket, tt.now))
		})
	}
}

func TestCreatedTicketWithoutWindowStaysQueued(t *testing.T) {
	ticket := domain.Ticket{Status: domain.TicketStatusCreated}
	assert.Equal(t, Queued, Compute(ticket, time.Now()))
}

func TestScannedTicket(t *testing.T) {
	duringWindow := start.Add(2 * time.Hour)

	tests := []struct {
		name string
		scan time.Duration
		now  time.Time
		want Label
	}{
		{"now past end", 0, end.Add(time.Minute), Done},
		{"scanned after end", 5 * time.Hour, duringWindow, Done},
		{"fifteen minutes late", 15 * time.Minute, duringWindow, Ongoing},
		{"thirty minutes late", 30 * time.Minute, duringWindow, Ongoing},
		{"forty minutes late", 40 * time.Minute, duringWindow, Delayed},
		{"exactly on start", 0, duringWindow, OnTime},
		{"five minutes early", -5 * time.Minute, duringWindow, OnTime},
		{"fourteen minutes late", 14 * time.Minute, duringWindow, OnTime},
		{"twenty minutes early", -20 * time.Minute, duringWindow, Early},
		{"thirty minutes early", -30 * time.Minute, duringWindow, Early},
		{"ten minutes early", -10 * time.Minute, duringWindow, Unknown},
		{"an hour early", -time.Hour, duringWindow, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := ticketWith(domain.TicketStatusScanned, scanAt(tt.scan))
			assert.Equal(t, tt.want, Compute(ticket, tt.now))
		})
	}
}

func TestScannedTicketUsesFirstScanEntry(t *testing.T) {
	ticket := ticketWith(domain.TicketStatusScanned,
		domain.ScanLogEntry{Status: domain.TicketStatusCreated, DateUpdated: start.Add(-48 * time.Hour)},
		scanAt(-20*time.Minute),
		scanAt(45*time.Minute),
	)
	assert.Equal(t, Early, Compute(ticket, start))
}

func TestScannedStatusWithoutScanEntry(t *testing.T) {
	ticket := ticketWith(domain.TicketStatusScanned,
		domain.ScanLogEntry{Status: domain.TicketStatusCreated, DateUpdated: start})
	assert.Equal(t, Scanned, Compute(ticket, start))
}

func TestLiveTicket(t *testing.T) {
	scanned := scanAt(0)

	tests := []struct {
		name string
		logs []domain.ScanLogEntry
		now  time.Time
		want Label
	}{
		{"never scanned", nil, start.Add(time.Hour), Queued},
		{"well before start", []domain.ScanLogEntry{scanned}, start.Add(-time.Hour), Queued},
		{"ten minutes before start", []domain.ScanLogEntry{scanned}, start.Add(-10 * time.Minute), OnTime},
		{"fifteen minutes before start", []domain.ScanLogEntry{scanned}, start.Add(-15 * time.Minute), OnTime},
		{"at start", []domain.ScanLogEntry{scanned}, start, Ongoing},
		{"at end", []domain.ScanLogEntry{scanned}, end, Ongoing},
		{"just after end", []domain.ScanLogEntry{scanned}, end.Add(5 * time.Minute), Done},
		{"long after end", []domain.ScanLogEntry{scanned}, end.Add(15 * time.Minute), Delayed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := ticketWith(domain.TicketStatusUpdated, tt.logs...)
			assert.Equal(t, tt.want, Compute(ticket, tt.now))
		})
	}
}

func TestLiveTicketWithUnparseableWindow(t *testing.T) {
	ticket := domain.Ticket{
		Status:        domain.TicketStatusUpdated,
		StartDateTime: "",
		EndDateTime:   "garbage",
		ScanLogs:      []domain.ScanLogEntry{scanAt(0)},
	}
	assert.Equal(t, Unknown, Compute(ticket, start))
}

func TestComputeIsDeterministic(t *testing.T) {
	ticket := ticketWith(domain.TicketStatusScanned, scanAt(20*time.Minute))
	now := start.Add(time.Hour)
	first := Compute(ticket, now)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Compute(ticket, now))
	}
}

func TestBadge(t *testing.T) {
	assert.Equal(t, SeverityDanger, Badge(Invalid))
	assert.Equal(t, SeveritySuccess, Badge(OnTime))
	assert.Equal(t, SeverityWarning, Badge(Delayed))
	assert.Equal(t, SeverityNeutral, Badge(Label("something else")))
	for _, label := range []Label{Queued, OnTime, Early, Ongoing, Done, Delayed, Invalid, Canceled,
		ScheduleChange, Reassigned, Relocate, OnEmergency, Unknown, Scanned} {
		_, ok := badges[label]
		assert.True(t, ok, string(label))
	}
}

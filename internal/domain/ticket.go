package domain

import "time"

// TicketStatus is the lifecycle status stamped on a ticket. It is a free string;
// the constants below are the values the service itself writes or interprets.
type TicketStatus string

const (
	TicketStatusCreated    TicketStatus = "created"
	TicketStatusUpdated    TicketStatus = "updated"
	TicketStatusCanceled   TicketStatus = "canceled"
	TicketStatusReschedule TicketStatus = "reschedule"
	TicketStatusReassigned TicketStatus = "reassigned"
	TicketStatusRelocate   TicketStatus = "relocate"
	TicketStatusEmergency  TicketStatus = "emergency"
	TicketStatusScanned    TicketStatus = "scanned"
)

// ScanLogEntry is one append-only record of a ticket status change.
type ScanLogEntry struct {
	Status      TicketStatus `json:"status"`
	DateUpdated time.Time    `json:"date_updated"`
	Remarks     string       `json:"remarks"`
	UserID      string       `json:"userId"`
}

// Ticket is a tourist activity ticket issued by a company.
type Ticket struct {
	TicketID      string          `json:"ticket_id"`
	CompanyID     string          `json:"company_id"`
	EmployeeID    string          `json:"employee_id"`
	UserUID       string          `json:"userUID"`
	Name          string          `json:"name"`
	Contact       string          `json:"contact"`
	Accommodation string          `json:"accommodation"`
	Address       []AddressEntry  `json:"address"`
	Activities    []ActivityGroup `json:"activities"`

	TotalLocals           int     `json:"total_locals"`
	TotalForeigns         int     `json:"total_foreigns"`
	TotalPax              int     `json:"total_pax"`
	IsSingleGroup         bool    `json:"isSingleGroup"`
	IsMixedGroup          bool    `json:"isMixedGroup"`
	TotalDuration         int     `json:"total_duration"`
	TotalDurationReadable string  `json:"total_duration_readable"`
	TotalExpectedPayment  float64 `json:"total_expected_payment"`
	TotalPayment          float64 `json:"total_payment"`
	TotalExpectedSale     float64 `json:"total_expected_sale"`
	TotalMarkup           float64 `json:"total_markup"`
	StartDateTime         string  `json:"start_date_time"`
	EndDateTime           string  `json:"end_date_time"`

	Status      TicketStatus   `json:"status"`
	DateCreated *time.Time     `json:"date_created,omitempty"`
	DateUpdated *time.Time     `json:"date_updated,omitempty"`
	ValidUntil  *time.Time     `json:"valid_until,omitempty"`
	ScanLogs    []ScanLogEntry `json:"scan_logs"`
}

// NewTicket returns a copy of partial with every collection present.
func NewTicket(partial Ticket) Ticket {
	t := partial
	if t.Address == nil {
		t.Address = []AddressEntry{}
	}
	if t.Activities == nil {
		t.Activities = []ActivityGroup{}
	}
	groups := make([]ActivityGroup, len(t.Activities))
	for i, g := range t.Activities {
		groups[i] = g.WithDefaults()
	}
	t.Activities = groups
	if t.ScanLogs == nil {
		t.ScanLogs = []ScanLogEntry{}
	} else {
		t.ScanLogs = append([]ScanLogEntry{}, t.ScanLogs...)
	}
	return t
}

// AllAvailedIDs lists every referenced activity id across groups, deduplicated, in order.
func (t Ticket) AllAvailedIDs() []string {
	seen := map[string]struct{}{}
	ids := []string{}
	for _, g := range t.Activities {
		for _, id := range g.AvailedIDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// AllProviderIDs lists every selected provider id across groups, deduplicated, in order.
func (t Ticket) AllProviderIDs() []string {
	seen := map[string]struct{}{}
	ids := []string{}
	for _, g := range t.Activities {
		for _, id := range g.ActivitySelectedProviders {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// FirstScan returns the first scan-log entry with status scanned.
func (t Ticket) FirstScan() (ScanLogEntry, bool) {
	for _, entry := range t.ScanLogs {
		if entry.Status == TicketStatusScanned {
			return entry, true
		}
	}
	return ScanLogEntry{}, false
}

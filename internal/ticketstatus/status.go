// Package ticketstatus derives the live display status of a ticket from its
// lifecycle status, activity window and scan log.
package ticketstatus

import (
	"time"

	"github.com/spec-kit/tourism-service/internal/domain"
	"github.com/spec-kit/tourism-service/pkg/util"
)

// Label is the human-facing status shown on boards.
type Label string

const (
	Queued         Label = "Queued"
	OnTime         Label = "On Time"
	Early          Label = "Early"
	Ongoing        Label = "Ongoing"
	Done           Label = "Done"
	Delayed        Label = "Delayed"
	Invalid        Label = "Invalid"
	Canceled       Label = "Canceled"
	ScheduleChange Label = "Schedule Change"
	Reassigned     Label = "Reassigned"
	Relocate       Label = "Relocate"
	OnEmergency    Label = "On Emergency"
	Unknown        Label = "Unknown"
	Scanned        Label = "scanned"
)

var overrides = map[domain.TicketStatus]Label{
	domain.TicketStatusCanceled:   Canceled,
	domain.TicketStatusReschedule: ScheduleChange,
	domain.TicketStatusReassigned: Reassigned,
	domain.TicketStatusRelocate:   Relocate,
	domain.TicketStatusEmergency:  OnEmergency,
}

// instant is a point in time that may be unparseable. Every comparison involving an
// invalid instant is false.
type instant struct {
	t  time.Time
	ok bool
}

func parseInstant(value string) instant {
	t, ok := util.ParseDateTime(value)
	return instant{t: t, ok: ok}
}

func at(t time.Time) instant {
	return instant{t: t, ok: !t.IsZero()}
}

func (i instant) before(o instant) bool { return i.ok && o.ok && i.t.Before(o.t) }
func (i instant) after(o instant) bool  { return i.ok && o.ok && i.t.After(o.t) }
func (i instant) notAfter(o instant) bool {
	return i.ok && o.ok && !i.t.After(o.t)
}

func (i instant) add(d time.Duration) instant {
	if !i.ok {
		return i
	}
	return instant{t: i.t.Add(d), ok: true}
}

func (i instant) addMonth() instant {
	if !i.ok {
		return i
	}
	return instant{t: util.AddMonth(i.t), ok: true}
}

// minutesSince returns i - o in minutes; ok is false when either side is invalid.
func (i instant) minutesSince(o instant) (float64, bool) {
	if !i.ok || !o.ok {
		return 0, false
	}
	return i.t.Sub(o.t).Minutes(), true
}

// Compute maps a ticket and the current time to its display label. It is a pure
// function of its inputs.
func Compute(ticket domain.Ticket, now time.Time) Label {
	if label, ok := overrides[ticket.Status]; ok {
		return label
	}

	current := at(now)
	start := parseInstant(ticket.StartDateTime)
	end := parseInstant(ticket.EndDateTime)

	switch ticket.Status {
	case domain.TicketStatusCreated:
		return createdLabel(current, start, end)
	case domain.TicketStatusScanned:
		return scannedLabel(ticket, current, start, end)
	default:
		return liveLabel(ticket, current, start, end)
	}
}

func createdLabel(now, start, end instant) Label {
	if now.before(start) {
		return Queued
	}
	if now.after(end.addMonth()) {
		return Invalid
	}
	return Queued
}

func scannedLabel(ticket domain.Ticket, now, start, end instant) Label {
	entry, ok := ticket.FirstScan()
	if !ok {
		return Scanned
	}
	scannedAt := at(entry.DateUpdated)

	if now.after(end) {
		return Done
	}
	if scannedAt.after(end) {
		return Done
	}

	delta, ok := scannedAt.minutesSince(start)
	if !ok {
		return Unknown
	}
	switch {
	case delta >= 15 && delta <= 30:
		return Ongoing
	case delta > 30:
		return Delayed
	case delta >= -5 && delta < 15:
		return OnTime
	case delta >= -30 && delta < -15:
		return Early
	default:
		// scans between 15 and 5 minutes early, or more than 30 minutes early
		return Unknown
	}
}

func liveLabel(ticket domain.Ticket, now, start, end instant) Label {
	if _, scanned := ticket.FirstScan(); !scanned {
		return Queued
	}

	if now.before(start) {
		if lead, _ := start.minutesSince(now); lead > 15 {
			return Queued
		}
		return OnTime
	}
	if start.notAfter(now) && now.notAfter(end) {
		return Ongoing
	}
	if now.after(end) {
		if now.before(end.add(15 * time.Minute)) {
			return Done
		}
		return Delayed
	}
	return Unknown
}

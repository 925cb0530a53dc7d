// Package aggregation derives a ticket's totals, duration, payment window and markup
// from its address list, activity groups and resolved catalog entries.
package aggregation

import (
	"fmt"
	"math"
	"time"

	"github.com/spec-kit/tourism-service/internal/domain"
	"github.com/spec-kit/tourism-service/pkg/util"
)

// ActivityLookup resolves a catalog activity by id. ok is false when unresolved.
type ActivityLookup func(id string) (domain.Activity, bool)

// LookupFromMap adapts a resolved id → activity map.
func LookupFromMap(activities map[string]domain.Activity) ActivityLookup {
	return func(id string) (domain.Activity, bool) {
		activity, ok := activities[id]
		return activity, ok
	}
}

// DerivedFields are the aggregates written onto a ticket on every save.
type DerivedFields struct {
	TotalLocals           int
	TotalForeigns         int
	TotalPax              int
	IsSingleGroup         bool
	IsMixedGroup          bool
	TotalDuration         int
	TotalDurationReadable string
	TotalExpectedPayment  float64
	TotalPayment          float64
	TotalExpectedSale     float64
	TotalMarkup           float64
	StartDateTime         string
	EndDateTime           string

	// MissingActivityIDs lists availed ids the lookup could not resolve. They
	// contributed zero duration and zero base price.
	MissingActivityIDs []string
}

// ComputeDerivedFields is pure and safe to call concurrently.
func ComputeDerivedFields(ticket domain.Ticket, lookup ActivityLookup) DerivedFields {
	if lookup == nil {
		lookup = func(string) (domain.Activity, bool) { return domain.Activity{}, false }
	}

	var out DerivedFields

	for _, entry := range ticket.Address {
		out.TotalLocals += entry.Locals.IntOr(0)
		out.TotalForeigns += entry.Foreigns.IntOr(0)
	}
	out.TotalPax = out.TotalLocals + out.TotalForeigns
	out.IsSingleGroup = (out.TotalLocals > 0 && out.TotalForeigns == 0) || (out.TotalForeigns > 0 && out.TotalLocals == 0)
	out.IsMixedGroup = out.TotalLocals > 0 && out.TotalForeigns > 0

	missing := map[string]struct{}{}
	var (
		agreedTotal float64
		baseTotal   float64
		start, end  time.Time
		haveStart   bool
		haveEnd     bool
	)

	for _, group := range ticket.Activities {
		ids := group.AvailedIDs()
		pax := groupPax(group)

		out.TotalExpectedPayment += group.ActivityExpectedPrice.FloatOr(0)
		agreed := group.ActivityAgreedPrice.FloatOr(0)
		out.TotalPayment += agreed
		agreedTotal += agreed

		for _, id := range ids {
			activity, ok := lookup(id)
			if !ok {
				if _, seen := missing[id]; !seen {
					missing[id] = struct{}{}
					out.MissingActivityIDs = append(out.MissingActivityIDs, id)
				}
				continue
			}
			out.TotalDuration += activity.ActivityDuration.IntOr(0)
			baseTotal += activity.ActivityBasePrice.FloatOr(0) * float64(pax)
		}

		if t, ok := util.ParseDateTime(group.ActivityDateTimeStart); ok {
			if !haveStart || t.Before(start) {
				start, haveStart = t, true
			}
		}
		if t, ok := util.ParseDateTime(group.ActivityDateTimeEnd); ok {
			if !haveEnd || t.After(end) {
				end, haveEnd = t, true
			}
		}
	}

	out.TotalDurationReadable = FormatDuration(out.TotalDuration)

	if haveStart {
		out.StartDateTime = util.FormatISO(start)
	}
	if haveEnd {
		out.EndDateTime = util.FormatISO(end)
	}

	out.TotalExpectedSale = math.Max(agreedTotal-baseTotal, 0)
	if baseTotal > 0 {
		out.TotalMarkup = (out.TotalExpectedSale / baseTotal) * 100
	}

	return out
}

// Apply writes the derived fields onto t.
func (d DerivedFields) Apply(t *domain.Ticket) {
	t.TotalLocals = d.TotalLocals
	t.TotalForeigns = d.TotalForeigns
	t.TotalPax = d.TotalPax
	t.IsSingleGroup = d.IsSingleGroup
	t.IsMixedGroup = d.IsMixedGroup
	t.TotalDuration = d.TotalDuration
	t.TotalDurationReadable = d.TotalDurationReadable
	t.TotalExpectedPayment = d.TotalExpectedPayment
	t.TotalPayment = d.TotalPayment
	t.TotalExpectedSale = d.TotalExpectedSale
	t.TotalMarkup = d.TotalMarkup
	t.StartDateTime = d.StartDateTime
	t.EndDateTime = d.EndDateTime
}

// groupPax is the group's head count for base-price multiplication. A missing,
// non-numeric or zero count is treated as one person.
func groupPax(group domain.ActivityGroup) int {
	pax := group.ActivityNumPax.IntOr(0)
	if pax == 0 {
		return 1
	}
	return pax
}

// FormatDuration renders minutes as "1 hr", "2 hrs 5 mins", "45 mins".
// Hours pluralize above one; minutes pluralize whenever not exactly one.
func FormatDuration(totalMinutes int) string {
	hours := totalMinutes / 60
	minutes := totalMinutes % 60

	hr := "hr"
	if hours > 1 {
		hr = "hrs"
	}
	min := "min"
	if minutes != 1 {
		min = "mins"
	}

	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%d %s %d %s", hours, hr, minutes, min)
	case hours > 0:
		return fmt.Sprintf("%d %s", hours, hr)
	default:
		return fmt.Sprintf("%d %s", minutes, min)
	}
}

package domain

import (
	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/tourism-service/pkg/util"
)

// AddressEntry describes one group of guests sharing a place of origin.
// Local groups carry region/province/town codes; foreign groups carry a country.
type AddressEntry struct {
	IsForeign      bool    `json:"isForeign"`
	Country        string  `json:"country"`
	Region         string  `json:"region"`
	Province       string  `json:"province"`
	Town           string  `json:"town"`
	Street         string  `json:"street"`
	Barangay       string  `json:"barangay"`
	Locals         Numeric `json:"locals"`
	Foreigns       Numeric `json:"foreigns"`
	Males          Numeric `json:"males"`
	Females        Numeric `json:"females"`
	PreferNotToSay Numeric `json:"prefer_not_to_say"`
	Kids           Numeric `json:"kids"`
	Teens          Numeric `json:"teens"`
	Adults         Numeric `json:"adults"`
	Seniors        Numeric `json:"seniors"`
}

// Pax returns the head count the breakdowns must add up to.
func (a AddressEntry) Pax() int {
	if a.IsForeign {
		return a.Foreigns.IntOr(0)
	}
	return a.Locals.IntOr(0)
}

// SexTotal sums the sex breakdown.
func (a AddressEntry) SexTotal() int {
	return a.Males.IntOr(0) + a.Females.IntOr(0) + a.PreferNotToSay.IntOr(0)
}

// AgeTotal sums the age breakdown.
func (a AddressEntry) AgeTotal() int {
	return a.Kids.IntOr(0) + a.Teens.IntOr(0) + a.Adults.IntOr(0) + a.Seniors.IntOr(0)
}

func init() {
	util.Validator().RegisterStructValidation(validateAddressBreakdown, AddressEntry{})
}

// validateAddressBreakdown enforces at input time that both breakdowns match the pax count.
func validateAddressBreakdown(sl validator.StructLevel) {
	entry := sl.Current().Interface().(AddressEntry)
	pax := entry.Pax()
	field, name := "Locals", "locals"
	if entry.IsForeign {
		field, name = "Foreigns", "foreigns"
	}
	if entry.SexTotal() != pax {
		sl.ReportError(entry.Males, name, field, "sexbreakdown", "")
	}
	if entry.AgeTotal() != pax {
		sl.ReportError(entry.Kids, name, field, "agebreakdown", "")
	}
}

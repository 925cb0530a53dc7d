package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Activity sale units.
const (
	SoldByPax  = "pax"
	SoldByUnit = "unit"
)

// Activity is a catalog entry a ticket can book.
type Activity struct {
	ActivityID        string  `json:"activity_id"`
	ActivityName      string  `json:"activity_name"`
	ActivityArea      string  `json:"activity_area"`
	ActivityDuration  Numeric `json:"activity_duration"`
	ActivityBasePrice Numeric `json:"activity_base_price"`
	ActivityPrice     Numeric `json:"activity_price"`
	ActivityMaxPax    Numeric `json:"activity_maxpax"`
	ActivitySoldBy    string  `json:"activity_sold_by"`
}

// Provider is an accredited operator that can be selected for an activity.
type Provider struct {
	ProviderID      string   `json:"provider_id"`
	ProviderName    string   `json:"provider_name"`
	ProviderContact string   `json:"provider_contact"`
	ActivityIDs     []string `json:"activity_ids"`
}

// AvailedActivity references a catalog activity from an activity group. Input may carry
// either the bare id or the whole activity object; it is always stored as the bare id.
type AvailedActivity struct {
	ID     string
	Detail *Activity
}

// UnmarshalJSON accepts "id" or {"activity_id": "id", ...} / {"id": "id", ...}.
func (a *AvailedActivity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = AvailedActivity{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*a = AvailedActivity{ID: id}
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var nested struct {
			Activity
			ID string `json:"id"`
		}
		if err := json.Unmarshal(data, &nested); err != nil {
			return err
		}
		id := nested.ActivityID
		if id == "" {
			id = nested.ID
		}
		detail := nested.Activity
		detail.ActivityID = id
		*a = AvailedActivity{ID: id, Detail: &detail}
		return nil
	}
	return fmt.Errorf("activities_availed entry must be an id or an activity object, got %s", string(data))
}

// MarshalJSON always writes the bare id.
func (a AvailedActivity) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.ID)
}

// ActivityGroup is one booked activity within a ticket.
type ActivityGroup struct {
	ActivityArea              string            `json:"activity_area"`
	ActivityDateTimeStart     string            `json:"activity_date_time_start"`
	ActivityDateTimeEnd       string            `json:"activity_date_time_end"`
	ActivitiesAvailed         []AvailedActivity `json:"activities_availed"`
	ActivityNumPax            Numeric           `json:"activity_num_pax"`
	ActivityNumUnit           Numeric           `json:"activity_num_unit"`
	ActivityAgreedPrice       Numeric           `json:"activity_agreed_price"`
	ActivityExpectedPrice     Numeric           `json:"activity_expected_price"`
	ActivitySelectedProviders []string          `json:"activity_selected_providers"`
}

// UnmarshalJSON folds the legacy aliases activity_subtotal and expected_payment into
// the canonical agreed/expected price fields. Canonical fields win when both are set.
func (g *ActivityGroup) UnmarshalJSON(data []byte) error {
	type plain ActivityGroup
	var aux struct {
		plain
		ActivitySubtotal Numeric `json:"activity_subtotal"`
		ExpectedPayment  Numeric `json:"expected_payment"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*g = ActivityGroup(aux.plain)
	if strings.TrimSpace(string(g.ActivityAgreedPrice)) == "" {
		g.ActivityAgreedPrice = aux.ActivitySubtotal
	}
	if strings.TrimSpace(string(g.ActivityExpectedPrice)) == "" {
		g.ActivityExpectedPrice = aux.ExpectedPayment
	}
	return nil
}

// AvailedIDs returns the non-empty activity ids of the group in order.
func (g ActivityGroup) AvailedIDs() []string {
	ids := make([]string, 0, len(g.ActivitiesAvailed))
	for _, availed := range g.ActivitiesAvailed {
		if id := strings.TrimSpace(availed.ID); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// WithDefaults replaces nil collections with empty ones.
func (g ActivityGroup) WithDefaults() ActivityGroup {
	if g.ActivitiesAvailed == nil {
		g.ActivitiesAvailed = []AvailedActivity{}
	}
	if g.ActivitySelectedProviders == nil {
		g.ActivitySelectedProviders = []string{}
	}
	return g
}

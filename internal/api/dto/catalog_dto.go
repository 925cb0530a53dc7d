package dto

import "github.com/spec-kit/tourism-service/internal/domain"

// ActivityRequest payload for catalog activities.
type ActivityRequest struct {
	ActivityID        string         `json:"activity_id"`
	ActivityName      string         `json:"activity_name" validate:"required"`
	ActivityArea      string         `json:"activity_area"`
	ActivityDuration  domain.Numeric `json:"activity_duration"`
	ActivityBasePrice domain.Numeric `json:"activity_base_price"`
	ActivityPrice     domain.Numeric `json:"activity_price"`
	ActivityMaxPax    domain.Numeric `json:"activity_maxpax"`
	ActivitySoldBy    string         `json:"activity_sold_by" validate:"omitempty,oneof=pax unit"`
}

// ToDomain maps the request onto an activity.
func (r ActivityRequest) ToDomain() domain.Activity {
	return domain.Activity{
		ActivityID:        r.ActivityID,
		ActivityName:      r.ActivityName,
		ActivityArea:      r.ActivityArea,
		ActivityDuration:  r.ActivityDuration,
		ActivityBasePrice: r.ActivityBasePrice,
		ActivityPrice:     r.ActivityPrice,
		ActivityMaxPax:    r.ActivityMaxPax,
		ActivitySoldBy:    r.ActivitySoldBy,
	}
}

// ProviderRequest payload for catalog providers.
type ProviderRequest struct {
	ProviderID      string   `json:"provider_id"`
	ProviderName    string   `json:"provider_name" validate:"required"`
	ProviderContact string   `json:"provider_contact"`
	ActivityIDs     []string `json:"activity_ids"`
}

// ToDomain maps the request onto a provider.
func (r ProviderRequest) ToDomain() domain.Provider {
	return domain.Provider{
		ProviderID:      r.ProviderID,
		ProviderName:    r.ProviderName,
		ProviderContact: r.ProviderContact,
		ActivityIDs:     r.ActivityIDs,
	}
}

package ticketstatus

// Severity is the badge color tier a label is rendered with.
type Severity string

const (
	SeverityNeutral Severity = "neutral"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

var badges = map[Label]Severity{
	Queued:         SeverityNeutral,
	OnTime:         SeveritySuccess,
	Early:          SeverityInfo,
	Ongoing:        SeverityInfo,
	Done:           SeveritySuccess,
	Delayed:        SeverityWarning,
	Invalid:        SeverityDanger,
	Canceled:       SeverityDanger,
	ScheduleChange: SeverityWarning,
	Reassigned:     SeverityWarning,
	Relocate:       SeverityWarning,
	OnEmergency:    SeverityDanger,
	Unknown:        SeverityNeutral,
	Scanned:        SeverityInfo,
}

// Badge returns the severity tier for a label. Unlisted labels are neutral.
func Badge(label Label) Severity {
	if severity, ok := badges[label]; ok {
		return severity
	}
	return SeverityNeutral
}

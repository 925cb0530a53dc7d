package domain

import "time"

// WorkHistoryEntry records one employment stint with a company.
type WorkHistoryEntry struct {
	WorkHistoryID string `json:"work_history_id"`
	DateStart     string `json:"date_start"`
	DateEnd       string `json:"date_end"`
	CompanyID     string `json:"company_id"`
	CompanyName   string `json:"company_name"`
	Remarks       string `json:"remarks"`
}

// IsOpen reports whether the stint has not ended yet.
func (w WorkHistoryEntry) IsOpen() bool {
	return w.DateEnd == ""
}

// Employee is a company staff member submitted for accreditation. Status tracks
// accreditation; CompanyStatus independently tracks employment with CompanyID.
type Employee struct {
	EmployeeID            string               `json:"employee_id"`
	CompanyID             string               `json:"company_id"`
	CompanyName           string               `json:"company_name"`
	FirstName             string               `json:"first_name"`
	LastName              string               `json:"last_name"`
	Email                 string               `json:"email"`
	Contact               string               `json:"contact"`
	Designation           string               `json:"designation"`
	Status                ApprovalStatus       `json:"status"`
	StatusHistory         []StatusHistoryEntry `json:"status_history"`
	CompanyStatus         ApprovalStatus       `json:"company_status"`
	CompanyStatusHistory  []StatusHistoryEntry `json:"company_status_history"`
	WorkHistory           []WorkHistoryEntry   `json:"work_history"`
	Tickets               []string             `json:"tickets"`
	TourismCertificateIDs []string             `json:"tourism_certificate_ids"`
	LatestCertID          string               `json:"latest_cert_id"`
	LatestCertSummary     *CertificateSummary  `json:"latest_cert_summary,omitempty"`
	DateCreated           *time.Time           `json:"date_created,omitempty"`
}

// FullName joins first and last name.
func (e Employee) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	default:
		return e.FirstName + " " + e.LastName
	}
}

// NewEmployee returns a copy of partial with every collection present and both
// status axes defaulted to under review.
func NewEmployee(partial Employee) Employee {
	e := partial
	if e.Status == "" {
		e.Status = StatusUnderReview
	}
	if e.CompanyStatus == "" {
		e.CompanyStatus = StatusUnderReview
	}
	if e.StatusHistory == nil {
		e.StatusHistory = []StatusHistoryEntry{}
	}
	if e.CompanyStatusHistory == nil {
		e.CompanyStatusHistory = []StatusHistoryEntry{}
	}
	if e.WorkHistory == nil {
		e.WorkHistory = []WorkHistoryEntry{}
	}
	if e.Tickets == nil {
		e.Tickets = []string{}
	}
	if e.TourismCertificateIDs == nil {
		e.TourismCertificateIDs = []string{}
	}
	return e
}

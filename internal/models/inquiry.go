package models

import "time"

type InquiryStatus string

// Status values carry no ordering; any value may follow any other.
const (
	InquiryPending    InquiryStatus = "PENDING"
	InquiryContacted  InquiryStatus = "CONTACTED"
	InquiryInProgress InquiryStatus = "IN_PROGRESS"
	InquiryCompleted  InquiryStatus = "COMPLETED"
	InquiryClosed     InquiryStatus = "CLOSED"
)

var InquiryStatuses = []InquiryStatus{
	InquiryPending, InquiryContacted, InquiryInProgress, InquiryCompleted, InquiryClosed,
}

func (s InquiryStatus) Valid() bool {
	for _, v := range InquiryStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type InquiryPriority string

const (
	PriorityLow    InquiryPriority = "LOW"
	PriorityMedium InquiryPriority = "MEDIUM"
	PriorityHigh   InquiryPriority = "HIGH"
	PriorityUrgent InquiryPriority = "URGENT"
)

func (p InquiryPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Inquiry struct {
	ID          string          `json:"id"`
	ProductID   *string         `json:"productId,omitempty"`
	ProductName *string         `json:"productName,omitempty"`
	FullName    string          `json:"fullName"`
	Email       string          `json:"email"`
	Phone       *string         `json:"phone,omitempty"`
	CompanyName *string         `json:"companyName,omitempty"`
	Region      *string         `json:"region,omitempty"`
	Budget      *string         `json:"budget,omitempty"`
	Message     string          `json:"message"`
	Source      string          `json:"source"`
	Status      InquiryStatus   `json:"status"`
	Priority    InquiryPriority `json:"priority"`
	Notes       *string         `json:"notes,omitempty"`
	AssignedTo  *string         `json:"assignedTo,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type InquiryFilter struct {
	Status   InquiryStatus
	Priority InquiryPriority
	Search   string
	Page     Page
}

// InquiryPatch carries only the fields a triage update touches.
type InquiryPatch struct {
	Status     *InquiryStatus
	Priority   *InquiryPriority
	Notes      *string
	AssignedTo *string
}

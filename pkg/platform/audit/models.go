package audit

import (
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryCompliance covers changes to who may do what: role promotion,
	// user deletion, registration.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers access violations and throttling: rejected
	// credentials, forbidden requests, rate limit hits.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity: credential issuance,
	// catalogue edits, recorded payments.
	CategoryOperations EventCategory = "operations"
)

// Action names an audited occurrence.
type Action string

const (
	ActionCredentialIssued  Action = "credential_issued"
	ActionAccessDenied      Action = "access_denied"
	ActionRateLimitExceeded Action = "rate_limit_exceeded"
	ActionUserRegistered    Action = "user_registered"
	ActionRolePromoted      Action = "role_promoted"
	ActionUserDeleted       Action = "user_deleted"
	ActionMenuItemCreated   Action = "menu_item_created"
	ActionMenuItemUpdated   Action = "menu_item_updated"
	ActionMenuItemDeleted   Action = "menu_item_deleted"
	ActionPaymentRecorded   Action = "payment_recorded"
)

var actionCategories = map[Action]EventCategory{
	ActionUserRegistered: CategoryCompliance,
	ActionRolePromoted:   CategoryCompliance,
	ActionUserDeleted:    CategoryCompliance,

	ActionAccessDenied:      CategorySecurity,
	ActionRateLimitExceeded: CategorySecurity,

	ActionCredentialIssued: CategoryOperations,
	ActionMenuItemCreated:  CategoryOperations,
	ActionMenuItemUpdated:  CategoryOperations,
	ActionMenuItemDeleted:  CategoryOperations,
	ActionPaymentRecorded:  CategoryOperations,
}

// Category returns the EventCategory for this action.
// Unknown actions default to CategoryOperations.
func (a Action) Category() EventCategory {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted from services and gates to capture key actions. It is
// transport-agnostic so sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Action    Action        `json:"action"`
	Timestamp time.Time     `json:"timestamp"`
	// ActorEmail is the verified caller, empty for unauthenticated requests.
	ActorEmail string `json:"actor_email,omitempty"`
	// Subject is what the action touched: a user id, a menu item id, an email.
	Subject  string `json:"subject,omitempty"`
	Decision string `json:"decision,omitempty"`
	Reason   string `json:"reason,omitempty"`

	RequestID string `json:"request_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	Browser   string `json:"browser,omitempty"`
	OS        string `json:"os,omitempty"`
}

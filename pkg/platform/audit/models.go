package audit

import "time"

// EventCategory classifies audit events by their primary purpose. Categories
// drive routing: compliance events are forwarded to the durable kafka sink,
// operations events stay in the local store.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance. These
	// require tamper-proof storage and long retention.
	// Examples: account opening, plan changes, NIC replacement.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Action    string        `json:"action"`
	// AgentID identifies the teller agent who performed the action.
	AgentID string `json:"agent_id,omitempty"`
	// Entity references; string-typed so the package stays free of domain
	// imports and events serialize cleanly.
	CustomerID     string `json:"customer_id,omitempty"`
	AccountID      string `json:"account_id,omitempty"`
	FixedDepositID string `json:"fixed_deposit_id,omitempty"`
	// Reason carries the operator-supplied justification where the flow
	// requires one (plan change, deactivation).
	Reason string `json:"reason,omitempty"`
	// RequestID is the correlation ID from the HTTP request context.
	RequestID string `json:"request_id,omitempty"`
}

// AuditEvent names every action the service records.
type AuditEvent string

const (
	// Customer events
	EventCustomerRegistered AuditEvent = "customer_registered"
	EventNICReplaced        AuditEvent = "nic_replaced"

	// Account events
	EventAccountOpened AuditEvent = "account_opened"
	EventAccountClosed AuditEvent = "account_closed"
	EventPlanChanged   AuditEvent = "plan_changed"

	// Fixed deposit events
	EventFDOpened  AuditEvent = "fd_opened"
	EventFDClosed  AuditEvent = "fd_closed"
	EventFDMatured AuditEvent = "fd_matured"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventCustomerRegistered: CategoryCompliance,
	EventNICReplaced:        CategoryCompliance,
	EventAccountOpened:      CategoryCompliance,
	EventAccountClosed:      CategoryCompliance,
	EventPlanChanged:        CategoryCompliance,
	EventFDOpened:           CategoryCompliance,
	EventFDClosed:           CategoryCompliance,
	EventFDMatured:          CategoryOperations,
}

// CategoryFor returns the category for an event name, defaulting to
// operations for unknown actions.
func CategoryFor(action AuditEvent) EventCategory {
	if c, ok := eventCategories[action]; ok {
		return c
	}
	return CategoryOperations
}

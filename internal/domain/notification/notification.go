package notification

import (
	"context"

	"github.com/propman/backend/internal/domain/shared"
)

// TemplateKey identifies a notification template on the delivery side. The
// engine never renders message bodies itself; it selects a key and supplies
// substitutions.
type TemplateKey string

const (
	// Termination notice templates, keyed by notice type and whether the
	// stated reason mentions overdue rent.
	TemplatePeriodNotice           TemplateKey = "rental.notice.period"
	TemplatePeriodNoticeOverdue    TemplateKey = "rental.notice.period_overdue"
	TemplateImmediateNotice        TemplateKey = "rental.notice.immediate"
	TemplateImmediateNoticeOverdue TemplateKey = "rental.notice.immediate_overdue"

	// Sent to managers when a client requests termination of their own
	// contract.
	TemplateClientTerminationRequest TemplateKey = "rental.notice.client_request"

	// Sent to the client when a notice against their contract is cancelled.
	TemplateNoticeCancelled TemplateKey = "rental.notice.cancelled"

	// Escalation and reminder templates.
	TemplateRentOverdueReminder    TemplateKey = "rental.payment.overdue"
	TemplateContractExpiryReminder TemplateKey = "rental.contract.expiry"
	TemplatePaymentConfirmed       TemplateKey = "rental.payment.confirmed"
)

// Delivery is one outbound notification request
type Delivery struct {
	Recipient     shared.Actor
	Sender        shared.Actor
	Template      TemplateKey
	Substitutions map[string]string
	Link          string
}

// Deliverer sends notifications to their recipients. Implementations must
// not fail the calling business operation on delivery errors beyond
// returning them; callers decide whether delivery is best effort.
type Deliverer interface {
	Deliver(ctx context.Context, d Delivery) error
}

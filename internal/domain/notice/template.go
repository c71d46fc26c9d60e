package notice

import (
	"strings"

	"github.com/propman/backend/internal/domain/notification"
	"github.com/propman/backend/internal/domain/shared"
)

// SelectTemplate resolves the notification template for a termination
// notice. Staff pick between period and immediate variants, with a
// dedicated wording when the reason cites overdue rent. Clients can only
// request period termination of their own contract, which goes to the
// managers as a request rather than a notice.
func SelectTemplate(noticeType Type, reason string, senderType shared.ActorType) (notification.TemplateKey, error) {
	overdue := strings.Contains(strings.ToLower(reason), "overdue")

	if senderType.IsStaff() {
		switch noticeType {
		case TypePeriod:
			if overdue {
				return notification.TemplatePeriodNoticeOverdue, nil
			}
			return notification.TemplatePeriodNotice, nil
		case TypeImmediate:
			if overdue {
				return notification.TemplateImmediateNoticeOverdue, nil
			}
			return notification.TemplateImmediateNotice, nil
		default:
			return "", shared.NewDomainError("INVALID_NOTICE_TYPE", "Notice type must be PERIOD or IMMEDIATE")
		}
	}

	if noticeType == TypeImmediate {
		return "", shared.NewDomainError("FORBIDDEN", "Clients cannot issue immediate termination notices")
	}
	return notification.TemplateClientTerminationRequest, nil
}

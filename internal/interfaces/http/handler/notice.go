package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	noticeapp "github.com/propman/backend/internal/application/notice"
	"github.com/propman/backend/internal/domain/notice"
)

// NoticeHandler handles termination notice endpoints
type NoticeHandler struct {
	BaseHandler
	noticeService *noticeapp.Service
}

// NewNoticeHandler creates a new NoticeHandler
func NewNoticeHandler(noticeService *noticeapp.Service) *NoticeHandler {
	return &NoticeHandler{noticeService: noticeService}
}

// IssueNoticeRequest is the request body for placing a termination notice
type IssueNoticeRequest struct {
	ContractID string `json:"contract_id" binding:"required,uuid"`
	NoticeType string `json:"notice_type" binding:"required,oneof=PERIOD IMMEDIATE"`
	Message    string `json:"message" binding:"max=2000"`
}

// NoticeResponse is the API projection of a rent notice
type NoticeResponse struct {
	ID            string     `json:"id"`
	ContractID    string     `json:"contract_id"`
	ClaimID       string     `json:"claim_id"`
	NoticeType    string     `json:"notice_type"`
	Message       string     `json:"message"`
	SentBy        string     `json:"sent_by"`
	SentByType    string     `json:"sent_by_type"`
	RecipientID   string     `json:"recipient_id"`
	RecipientType string     `json:"recipient_type"`
	IssuedDate    time.Time  `json:"issued_date"`
	EndDate       time.Time  `json:"end_date"`
	Status        string     `json:"status"`
	CancelledBy   *string    `json:"cancelled_by,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
}

func toNoticeResponse(n *notice.RentNotice) NoticeResponse {
	resp := NoticeResponse{
		ID:            n.ID.String(),
		ContractID:    n.ContractID.String(),
		ClaimID:       n.ClaimID.String(),
		NoticeType:    n.NoticeType.String(),
		Message:       n.Message,
		SentBy:        n.SentBy.String(),
		SentByType:    n.SentByType.String(),
		RecipientID:   n.RecipientID.String(),
		RecipientType: n.RecipientType.String(),
		IssuedDate:    n.IssuedDate,
		EndDate:       n.EndDate,
		Status:        n.Status.String(),
		CancelledAt:   n.CancelledAt,
	}
	if n.CancelledBy != nil {
		s := n.CancelledBy.String()
		resp.CancelledBy = &s
	}
	return resp
}

func toNoticeResponses(notices []*notice.RentNotice) []NoticeResponse {
	out := make([]NoticeResponse, 0, len(notices))
	for _, n := range notices {
		out = append(out, toNoticeResponse(n))
	}
	return out
}

// Issue places a termination notice on a contract
func (h *NoticeHandler) Issue(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Caller identity missing")
		return
	}

	var req IssueNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contractID, err := parseUUIDField(req.ContractID, "contract_id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	issued, err := h.noticeService.Issue(c.Request.Context(), actor, noticeapp.IssueInput{
		ContractID: contractID,
		NoticeType: notice.Type(req.NoticeType),
		Message:    req.Message,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toNoticeResponses(issued))
}

// Cancel revokes the active notice set of the notice's contract
func (h *NoticeHandler) Cancel(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Caller identity missing")
		return
	}

	id, err := parseNoticeIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid notice ID")
		return
	}

	if err := h.noticeService.Cancel(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Get returns a notice by ID
func (h *NoticeHandler) Get(c *gin.Context) {
	id, err := parseNoticeIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid notice ID")
		return
	}

	found, err := h.noticeService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toNoticeResponse(found))
}

// ListByContract returns every notice recorded against a contract
func (h *NoticeHandler) ListByContract(c *gin.Context) {
	contractID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	notices, err := h.noticeService.ListByContract(c.Request.Context(), contractID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toNoticeResponses(notices))
}

// RegisterRoutes registers notice routes
func (h *NoticeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	notices := rg.Group("/notices")
	{
		notices.POST("", h.Issue)
		notices.GET("/:noticeId", h.Get)
		notices.POST("/:noticeId/cancel", h.Cancel)
	}
	rg.GET("/contracts/:id/notices", h.ListByContract)
}

package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	billingapp "github.com/propman/backend/internal/application/billing"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/contract"
	"github.com/propman/backend/internal/domain/warning"
)

// BillingHandler handles invoice schedule, payment and warning endpoints
type BillingHandler struct {
	BaseHandler
	scheduleService *billingapp.ScheduleService
	warningService  *billingapp.WarningService
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(scheduleService *billingapp.ScheduleService, warningService *billingapp.WarningService) *BillingHandler {
	return &BillingHandler{
		scheduleService: scheduleService,
		warningService:  warningService,
	}
}

// ReviseScheduleRequest carries the new billing settings of a claim
type ReviseScheduleRequest struct {
	InvoiceDate        string `json:"invoice_date" binding:"required"`
	PaymentFrequency   string `json:"payment_frequency" binding:"required"`
	DueOffsetDays      int    `json:"due_offset_days" binding:"min=0"`
	PenaltyRatePercent string `json:"penalty_rate_percent"`
	Amount             string `json:"amount" binding:"required"`
}

// AttachProofRequest carries an opaque payment proof reference
type AttachProofRequest struct {
	ProofRef string `json:"proof_ref" binding:"required,max=512"`
}

// IssueWarningRequest carries an optional manual warning message
type IssueWarningRequest struct {
	Message string `json:"message" binding:"max=2000"`
}

// InvoiceResponse is the API projection of a recurring invoice
type InvoiceResponse struct {
	ID                 string     `json:"id"`
	ClaimID            string     `json:"claim_id"`
	InvoiceDate        time.Time  `json:"invoice_date"`
	DueDate            time.Time  `json:"due_date"`
	Amount             string     `json:"amount"`
	PenaltyRatePercent string     `json:"penalty_rate_percent"`
	PaymentFrequency   string     `json:"payment_frequency"`
	PaymentStatus      string     `json:"payment_status"`
	PaymentProofRef    *string    `json:"payment_proof_ref,omitempty"`
	ConfirmedBy        *string    `json:"confirmed_by,omitempty"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	Version            int        `json:"version"`
}

// AssessmentResponse is the overdue evaluation of an invoice
type AssessmentResponse struct {
	Overdue       bool   `json:"overdue"`
	PeriodRent    string `json:"period_rent"`
	PenaltyAmount string `json:"penalty_amount"`
	TotalDue      string `json:"total_due"`
}

// InvoiceViewResponse pairs an invoice with its assessment
type InvoiceViewResponse struct {
	Invoice    InvoiceResponse    `json:"invoice"`
	Assessment AssessmentResponse `json:"assessment"`
}

// InvoiceDraftResponse is one previewed, not-persisted invoice
type InvoiceDraftResponse struct {
	InvoiceDate        time.Time `json:"invoice_date"`
	DueDate            time.Time `json:"due_date"`
	Amount             string    `json:"amount"`
	PenaltyRatePercent string    `json:"penalty_rate_percent"`
	PaymentFrequency   string    `json:"payment_frequency"`
}

// WarningResponse is the API projection of a rent warning
type WarningResponse struct {
	ID          string    `json:"id"`
	ClaimID     string    `json:"claim_id"`
	InvoiceID   string    `json:"invoice_id"`
	WarningType string    `json:"warning_type"`
	Message     string    `json:"message"`
	NotifiedBy  string    `json:"notified_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func toInvoiceResponse(inv *billing.RecurringInvoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:                 inv.ID.String(),
		ClaimID:            inv.ClaimID.String(),
		InvoiceDate:        inv.InvoiceDate,
		DueDate:            inv.DueDate,
		Amount:             inv.Amount.String(),
		PenaltyRatePercent: inv.PenaltyRatePercent.String(),
		PaymentFrequency:   inv.PaymentFrequency.String(),
		PaymentStatus:      inv.PaymentStatus.String(),
		PaymentProofRef:    inv.PaymentProofRef,
		ConfirmedAt:        inv.ConfirmedAt,
		CreatedAt:          inv.CreatedAt,
		Version:            inv.Version,
	}
	if inv.ConfirmedBy != nil {
		s := inv.ConfirmedBy.String()
		resp.ConfirmedBy = &s
	}
	return resp
}

func toInvoiceResponses(invoices []*billing.RecurringInvoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceResponse(inv))
	}
	return out
}

func toAssessmentResponse(a billing.Assessment) AssessmentResponse {
	return AssessmentResponse{
		Overdue:       a.Overdue,
		PeriodRent:    a.PeriodRent.String(),
		PenaltyAmount: a.PenaltyAmount.String(),
		TotalDue:      a.TotalDue.String(),
	}
}

func toInvoiceViewResponses(views []billingapp.InvoiceView) []InvoiceViewResponse {
	out := make([]InvoiceViewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, InvoiceViewResponse{
			Invoice:    toInvoiceResponse(v.Invoice),
			Assessment: toAssessmentResponse(v.Assessment),
		})
	}
	return out
}

func toWarningResponse(w *warning.RentWarning) WarningResponse {
	return WarningResponse{
		ID:          w.ID.String(),
		ClaimID:     w.ClaimID.String(),
		InvoiceID:   w.InvoiceID.String(),
		WarningType: w.WarningType.String(),
		Message:     w.Message,
		NotifiedBy:  w.NotifiedBy.String(),
		CreatedAt:   w.CreatedAt,
	}
}

func toWarningResponses(warnings []*warning.RentWarning) []WarningResponse {
	out := make([]WarningResponse, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, toWarningResponse(w))
	}
	return out
}

func (r ReviseScheduleRequest) toSettings() (contract.BillingSettings, error) {
	var settings contract.BillingSettings

	invoiceDate, err := parseDateField(r.InvoiceDate, "invoice_date")
	if err != nil {
		return settings, err
	}
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return settings, fieldError("amount")
	}
	penaltyRate := decimal.Zero
	if r.PenaltyRatePercent != "" {
		if penaltyRate, err = decimal.NewFromString(r.PenaltyRatePercent); err != nil {
			return settings, fieldError("penalty_rate_percent")
		}
	}

	settings = contract.BillingSettings{
		InvoiceDate:        invoiceDate,
		PaymentFrequency:   contract.Frequency(r.PaymentFrequency),
		DueOffsetDays:      r.DueOffsetDays,
		PenaltyRatePercent: penaltyRate,
		Amount:             amount,
	}
	return settings, nil
}

// CreateSchedule expands the claim's billing settings into pending invoices
func (h *BillingHandler) CreateSchedule(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Caller identity missing")
		return
	}

	claimID, err := parseClaimIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid claim ID")
		return
	}

	invoices, err := h.scheduleService.CreateSchedule(c.Request.Context(), actor, claimID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toInvoiceResponses(invoices))
}

// ReviseSchedule replaces pending invoices with a regeneration under new
// billing settings
func (h *BillingHandler) ReviseSchedule(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Caller identity missing")
		return
	}

	claimID, err := parseClaimIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid claim ID")
		return
	}

	var req ReviseScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	settings, err := req.toSettings()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoices, err := h.scheduleService.ReviseSchedule(c.Request.Context(), actor, claimID, settings)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceResponses(invoices))
}

// PreviewSchedule shows what a revision would generate without persisting
func (h *BillingHandler) PreviewSchedule(c *gin.Context) {
	claimID, err := parseClaimIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid claim ID")
		return
	}

	var req ReviseScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	settings, err := req.toSettings()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	drafts, err := h.scheduleService.PreviewSchedule(c.Request.Context(), claimID, settings)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]InvoiceDraftResponse, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, InvoiceDraftResponse{
			InvoiceDate:        d.InvoiceDate,
			DueDate:            d.DueDate,
			Amount:             d.Amount.String(),
			PenaltyRatePercent: d.PenaltyRatePercent.String(),
			PaymentFrequency:   d.PaymentFrequency.String(),
		})
	}
	h.Success(c, out)
}

// ListInvoices returns the claim's invoices with their assessments
func (h *BillingHandler) ListInvoices(c *gin.Context) {
	claimID, err := parseClaimIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid claim ID")
		return
	}

	views, err := h.scheduleService.ListByClaim(c.Request.Context(), claimID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceViewResponses(views))
}

// GetInvoice returns one invoice with its assessment
func (h *BillingHandler) GetInvoice(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	view, err := h.scheduleService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, InvoiceViewResponse{
		Invoice:    toInvoiceResponse(view.Invoice),
		Assessment: toAssessmentResponse(view.Assessment),
	})
}

// AttachProof records a payment proof reference on a pending invoice
func (h *BillingHandler) AttachProof(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Caller identity missing")
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req AttachProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	updated, err := h.scheduleService.AttachPaymentProof(c.Request.Context(), actor, id, req.ProofRef)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(updated))
}

// ConfirmPayment marks an invoice as paid
func (h *BillingHandler) ConfirmPayment(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Caller identity missing")
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	updated, err := h.scheduleService.ConfirmPayment(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(updated))
}

// IssueWarning records a staff-issued final warning against an invoice
func (h *BillingHandler) IssueWarning(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Caller identity missing")
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	// The message is optional, so an absent body means no custom message.
	var req IssueWarningRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	issued, err := h.warningService.IssueManualWarning(c.Request.Context(), actor, id, req.Message)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toWarningResponse(issued))
}

// ListInvoiceWarnings returns the warnings recorded against an invoice
func (h *BillingHandler) ListInvoiceWarnings(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	warnings, err := h.warningService.ListByInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toWarningResponses(warnings))
}

// ListClaimWarnings returns the warnings recorded against a claim
func (h *BillingHandler) ListClaimWarnings(c *gin.Context) {
	claimID, err := parseClaimIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid claim ID")
		return
	}

	warnings, err := h.warningService.ListByClaim(c.Request.Context(), claimID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toWarningResponses(warnings))
}

// RegisterRoutes registers billing routes
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	claims := rg.Group("/claims/:claimId")
	{
		claims.POST("/schedule", h.CreateSchedule)
		claims.PUT("/schedule", h.ReviseSchedule)
		claims.POST("/schedule/preview", h.PreviewSchedule)
		claims.GET("/invoices", h.ListInvoices)
		claims.GET("/warnings", h.ListClaimWarnings)
	}

	invoices := rg.Group("/invoices")
	{
		invoices.GET("/:id", h.GetInvoice)
		invoices.POST("/:id/proof", h.AttachProof)
		invoices.POST("/:id/confirm", h.ConfirmPayment)
		invoices.POST("/:id/warnings", h.IssueWarning)
		invoices.GET("/:id/warnings", h.ListInvoiceWarnings)
	}
}

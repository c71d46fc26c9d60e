package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	contractapp "github.com/propman/backend/internal/application/contract"
	"github.com/propman/backend/internal/domain/contract"
)

// ContractHandler handles rental contract endpoints
type ContractHandler struct {
	BaseHandler
	contractService *contractapp.Service
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contractService *contractapp.Service) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// CreateContractRequest is the request body for registering a contract
type CreateContractRequest struct {
	ClaimID            string `json:"claim_id" binding:"required,uuid"`
	ClientID           string `json:"client_id" binding:"required,uuid"`
	OwnerID            string `json:"owner_id" binding:"required,uuid"`
	StartDate          string `json:"start_date" binding:"required"`
	EndDate            string `json:"end_date" binding:"required"`
	Amount             string `json:"amount" binding:"required"`
	PaymentFrequency   string `json:"payment_frequency" binding:"required"`
	InvoiceDate        string `json:"invoice_date" binding:"required"`
	DueOffsetDays      int    `json:"due_offset_days" binding:"min=0"`
	PenaltyRatePercent string `json:"penalty_rate_percent"`
	NoticePeriodMonths int    `json:"notice_period_months" binding:"min=0"`
}

// SetRenewalStatusRequest is the request body for renewal updates
type SetRenewalStatusRequest struct {
	RenewalStatus string `json:"renewal_status" binding:"required,oneof=NONE PENDING ACCEPTED REJECTED"`
}

// ContractResponse is the API projection of a rental contract
type ContractResponse struct {
	ID                 string     `json:"id"`
	ClaimID            string     `json:"claim_id"`
	ClientID           string     `json:"client_id"`
	OwnerID            string     `json:"owner_id"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            time.Time  `json:"end_date"`
	Amount             string     `json:"amount"`
	PaymentFrequency   string     `json:"payment_frequency"`
	InvoiceDate        time.Time  `json:"invoice_date"`
	DueOffsetDays      int        `json:"due_offset_days"`
	PenaltyRatePercent string     `json:"penalty_rate_percent"`
	NoticePeriodMonths int        `json:"notice_period_months"`
	Status             string     `json:"status"`
	RenewalStatus      string     `json:"renewal_status"`
	EndedAt            *time.Time `json:"ended_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	Version            int        `json:"version"`
}

func toContractResponse(c *contract.RentalContract) ContractResponse {
	return ContractResponse{
		ID:                 c.ID.String(),
		ClaimID:            c.ClaimID.String(),
		ClientID:           c.ClientID.String(),
		OwnerID:            c.OwnerID.String(),
		StartDate:          c.StartDate,
		EndDate:            c.EndDate,
		Amount:             c.Amount.String(),
		PaymentFrequency:   c.PaymentFrequency.String(),
		InvoiceDate:        c.InvoiceDate,
		DueOffsetDays:      c.DueOffsetDays,
		PenaltyRatePercent: c.PenaltyRatePercent.String(),
		NoticePeriodMonths: c.NoticePeriodMonths,
		Status:             c.Status.String(),
		RenewalStatus:      string(c.RenewalStatus),
		EndedAt:            c.EndedAt,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
		Version:            c.Version,
	}
}

func toContractResponses(contracts []*contract.RentalContract) []ContractResponse {
	out := make([]ContractResponse, 0, len(contracts))
	for _, c := range contracts {
		out = append(out, toContractResponse(c))
	}
	return out
}

// parseContractInput converts the wire request into application input
func (r CreateContractRequest) toInput() (contractapp.CreateContractInput, error) {
	var input contractapp.CreateContractInput
	var err error

	if input.ClaimID, err = parseUUIDField(r.ClaimID, "claim_id"); err != nil {
		return input, err
	}
	if input.ClientID, err = parseUUIDField(r.ClientID, "client_id"); err != nil {
		return input, err
	}
	if input.OwnerID, err = parseUUIDField(r.OwnerID, "owner_id"); err != nil {
		return input, err
	}
	if input.StartDate, err = parseDateField(r.StartDate, "start_date"); err != nil {
		return input, err
	}
	if input.EndDate, err = parseDateField(r.EndDate, "end_date"); err != nil {
		return input, err
	}

	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return input, fieldError("amount")
	}
	penaltyRate := decimal.Zero
	if r.PenaltyRatePercent != "" {
		if penaltyRate, err = decimal.NewFromString(r.PenaltyRatePercent); err != nil {
			return input, fieldError("penalty_rate_percent")
		}
	}
	invoiceDate, err := parseDateField(r.InvoiceDate, "invoice_date")
	if err != nil {
		return input, err
	}

	input.Settings = contract.BillingSettings{
		InvoiceDate:        invoiceDate,
		PaymentFrequency:   contract.Frequency(r.PaymentFrequency),
		DueOffsetDays:      r.DueOffsetDays,
		PenaltyRatePercent: penaltyRate,
		Amount:             amount,
	}
	input.NoticePeriodMonths = r.NoticePeriodMonths
	return input, nil
}

// Create registers a contract for an accepted claim
func (h *ContractHandler) Create(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Caller identity missing")
		return
	}

	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	created, err := h.contractService.Create(c.Request.Context(), actor, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toContractResponse(created))
}

// Get returns a contract by ID
func (h *ContractHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	found, err := h.contractService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toContractResponse(found))
}

// GetByClaim returns the contract anchored to a claim
func (h *ContractHandler) GetByClaim(c *gin.Context) {
	claimID, err := parseClaimIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid claim ID")
		return
	}

	found, err := h.contractService.GetByClaim(c.Request.Context(), claimID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toContractResponse(found))
}

// List returns all contracts
func (h *ContractHandler) List(c *gin.Context) {
	contracts, err := h.contractService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toContractResponses(contracts))
}

// End marks a contract as ended
func (h *ContractHandler) End(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Caller identity missing")
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	ended, err := h.contractService.EndContract(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toContractResponse(ended))
}

// SetRenewalStatus updates the renewal negotiation status
func (h *ContractHandler) SetRenewalStatus(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Caller identity missing")
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	var req SetRenewalStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	updated, err := h.contractService.SetRenewalStatus(
		c.Request.Context(), actor, id, contract.RenewalStatus(req.RenewalStatus))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toContractResponse(updated))
}

// RegisterRoutes registers contract routes
func (h *ContractHandler) RegisterRoutes(rg *gin.RouterGroup) {
	contracts := rg.Group("/contracts")
	{
		contracts.POST("", h.Create)
		contracts.GET("", h.List)
		contracts.GET("/:id", h.Get)
		contracts.POST("/:id/end", h.End)
		contracts.PUT("/:id/renewal", h.SetRenewalStatus)
	}
	rg.GET("/claims/:claimId/contract", h.GetByClaim)
}

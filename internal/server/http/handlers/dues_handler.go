package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/tgreer/familysite/internal/domain/errors"
	"github.com/tgreer/familysite/internal/domain/model"
	"github.com/tgreer/familysite/internal/server/http/dto"
	"github.com/tgreer/familysite/internal/usecase"
)

// DuesHandler manages yearly dues endpoints.
type DuesHandler struct {
	facade DuesFacade
}

// NewDuesHandler constructs DuesHandler.
func NewDuesHandler(facade DuesFacade) *DuesHandler {
	return &DuesHandler{facade: facade}
}

// CreateBatch handles POST /api/dues/batches.
func (h *DuesHandler) CreateBatch(c *gin.Context) {
	var req dto.CreateDuesBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	members := make([]usecase.BatchMember, 0, len(req.Members))
	for _, m := range req.Members {
		members = append(members, usecase.BatchMember{UserID: m.UserID, Name: m.Name, Amount: m.Amount})
	}

	batch, ref, err := h.facade.CreateDuesBatch(c.Request.Context(), CurrentUserID(c), req.Year, members)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrEmptyBatch),
			errors.Is(err, domainErrors.ErrInvalidYear),
			errors.Is(err, domainErrors.ErrInvalidAmount):
			c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, domainErrors.ErrAlreadyExists):
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "dues already recorded for a covered member"})
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, toDuesBatchResponse(batch, ref))
}

// ConfirmBatch handles POST /api/dues/batches/:batchID/confirm.
func (h *DuesHandler) ConfirmBatch(c *gin.Context) {
	batchID := model.BatchID(c.Param("batchID"))
	if batchID == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	var req dto.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	batch, outcome, err := h.facade.ConfirmDuesBatch(c.Request.Context(), CurrentUserID(c), batchID, req.PaymentID, req.ReceiptURL)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "dues batch not found"})
		case errors.Is(err, domainErrors.ErrForbidden):
			c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "not your dues batch"})
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	resp := dto.ConfirmDuesBatchResponse{Outcome: string(outcome), Batch: toDuesBatchResponse(batch, "")}
	status := http.StatusOK
	if outcome == usecase.OutcomeConflict {
		status = http.StatusConflict
		resp.Error = domainErrors.ErrConflict.Error()
	}
	c.JSON(status, resp)
}

// ListYear handles GET /api/dues?year=.
func (h *DuesHandler) ListYear(c *gin.Context) {
	year := time.Now().Year()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		year = parsed
	}

	payments, err := h.facade.DuesForYear(c.Request.Context(), year)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	response := make([]dto.DuesPaymentResponse, 0, len(payments))
	for _, p := range payments {
		response = append(response, dto.DuesPaymentResponse{
			ID:         p.ID,
			UserID:     p.UserID,
			MemberName: p.MemberName,
			Year:       p.Year,
			Amount:     p.Amount,
			Status:     string(p.Status),
			Method:     string(p.Method),
		})
	}
	c.JSON(http.StatusOK, response)
}

// RecordManual handles POST /api/admin/dues. Cash and check payments
// collected at the reunion get recorded here, already completed.
func (h *DuesHandler) RecordManual(c *gin.Context) {
	var req dto.ManualDuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	payment, err := h.facade.RecordManualDues(c.Request.Context(), model.DuesPayment{
		UserID:     req.UserID,
		MemberName: req.MemberName,
		Year:       req.Year,
		Amount:     req.Amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidAmount):
			c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, domainErrors.ErrAlreadyExists):
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "dues already recorded for this member"})
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, dto.DuesPaymentResponse{
		ID:         payment.ID,
		UserID:     payment.UserID,
		MemberName: payment.MemberName,
		Year:       payment.Year,
		Amount:     payment.Amount,
		Status:     string(payment.Status),
		Method:     string(payment.Method),
	})
}

func toDuesBatchResponse(batch *model.DuesBatch, ref string) dto.DuesBatchResponse {
	return dto.DuesBatchResponse{
		BatchID:    string(batch.ID),
		Year:       batch.Year,
		Status:     string(batch.Status),
		Reference:  ref,
		ReceiptURL: batch.ReceiptURL,
	}
}

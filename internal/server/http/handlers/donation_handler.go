package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/tgreer/familysite/internal/domain/errors"
	"github.com/tgreer/familysite/internal/domain/model"
	"github.com/tgreer/familysite/internal/server/http/dto"
	"github.com/tgreer/familysite/internal/usecase"
)

// DonationHandler manages donation endpoints. All of them are guest-allowed;
// when a member session is present the donation is linked to the account.
type DonationHandler struct {
	facade DonationFacade
}

// NewDonationHandler constructs DonationHandler.
func NewDonationHandler(facade DonationFacade) *DonationHandler {
	return &DonationHandler{facade: facade}
}

// Create handles POST /api/donations.
func (h *DonationHandler) Create(c *gin.Context) {
	var req dto.CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	donation := model.Donation{
		DonorName:  req.DonorName,
		DonorEmail: req.DonorEmail,
		Amount:     req.Amount,
		Note:       req.Note,
		Year:       req.Year,
	}
	if userID := CurrentUserID(c); userID != 0 {
		donation.UserID = &userID
	}

	created, ref, err := h.facade.CreateDonation(c.Request.Context(), donation)
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidAmount) {
			c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusCreated, toDonationResponse(created, ref))
}

// Get handles GET /api/donations/:id.
func (h *DonationHandler) Get(c *gin.Context) {
	donationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	donation, err := h.facade.Donation(c.Request.Context(), donationID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, toDonationResponse(donation, ""))
}

// Confirm handles POST /api/donations/:id/confirm.
func (h *DonationHandler) Confirm(c *gin.Context) {
	donationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var req dto.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	donation, outcome, err := h.facade.ConfirmDonation(c.Request.Context(), donationID, req.PaymentID, req.ReceiptURL)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "donation not found"})
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	resp := dto.ConfirmDonationResponse{Outcome: string(outcome), Donation: toDonationResponse(donation, "")}
	status := http.StatusOK
	if outcome == usecase.OutcomeConflict {
		status = http.StatusConflict
		resp.Error = domainErrors.ErrConflict.Error()
	}
	c.JSON(status, resp)
}

func toDonationResponse(donation *model.Donation, ref string) dto.DonationResponse {
	return dto.DonationResponse{
		ID:         donation.ID,
		DonorName:  donation.DonorName,
		Amount:     donation.Amount,
		Status:     string(donation.Status),
		Reference:  ref,
		ReceiptURL: donation.ReceiptURL,
		CreatedAt:  donation.CreatedAt,
	}
}

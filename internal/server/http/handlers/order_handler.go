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

// OrderHandler manages merch order endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, model.OrderItem{VariantID: item.VariantID, Quantity: item.Quantity})
	}

	order, ref, err := h.facade.CreateOrder(c.Request.Context(), CurrentUserID(c), items)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrEmptyOrder), errors.Is(err, domainErrors.ErrInvalidAmount):
			c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, domainErrors.ErrNotFound):
			c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: "unknown product variant"})
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order, ref))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.Order(c.Request.Context(), CurrentUserID(c), orderID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrForbidden):
			c.Status(http.StatusForbidden)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order, ""))
}

// Confirm handles POST /api/orders/:id/confirm. The client lands here after
// the processor redirect; the webhook may have already settled the order, in
// which case the outcome is already_applied and that is a success for the client.
func (h *OrderHandler) Confirm(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var req dto.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, outcome, err := h.facade.ConfirmOrder(c.Request.Context(), CurrentUserID(c), orderID, req.PaymentID, req.ReceiptURL)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "order not found"})
		case errors.Is(err, domainErrors.ErrForbidden):
			c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "not your order"})
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	resp := dto.ConfirmOrderResponse{Outcome: string(outcome), Order: toOrderResponse(order, "")}
	status := http.StatusOK
	switch outcome {
	case usecase.OutcomeConflict:
		status = http.StatusConflict
		resp.Error = domainErrors.ErrConflict.Error()
	case usecase.OutcomeStockShort:
		resp.Error = domainErrors.ErrStockShort.Error()
	}
	c.JSON(status, resp)
}

func toOrderResponse(order *model.Order, ref string) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemResponse{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return dto.OrderResponse{
		ID:         order.ID,
		Status:     string(order.Status),
		Reference:  ref,
		Total:      order.Total(),
		Items:      items,
		ReceiptURL: order.ReceiptURL,
		CreatedAt:  order.CreatedAt,
	}
}

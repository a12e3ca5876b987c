package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/pixlabs/rifamart/internal/domain/errors"
	"github.com/pixlabs/rifamart/internal/domain/model"
	"github.com/pixlabs/rifamart/internal/server/http/dto"
)

// CheckoutHandler manages order creation and polling endpoints.
type CheckoutHandler struct {
	facade CheckoutFacade
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(facade CheckoutFacade) *CheckoutHandler {
	return &CheckoutHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *CheckoutHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	buyer := model.Buyer{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Document: req.Document,
	}
	tracking := model.Tracking{
		FBC:       req.FBC,
		FBP:       req.FBP,
		UserAgent: c.Request.UserAgent(),
		ClientIP:  c.ClientIP(),
	}

	order, charge, err := h.facade.CreateOrder(c.Request.Context(), buyer, tracking, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidQuantity), errors.Is(err, domainErrors.ErrInvalidAmount):
			c.Status(http.StatusUnprocessableEntity)
		default:
			c.Status(http.StatusBadGateway)
		}
		return
	}

	c.JSON(http.StatusCreated, dto.CreateOrderResponse{
		OrderResponse: toOrderResponse(*order),
		PixCode:       charge.EMV,
	})
}

// Status handles GET /api/orders/:id.
func (h *CheckoutHandler) Status(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.OrderStatus(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(*order))
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:        order.ID,
		Code:      order.Code,
		Status:    string(order.Status),
		Amount:    order.Amount,
		Quantity:  order.Quantity,
		CreatedAt: order.CreatedAt,
	}
}

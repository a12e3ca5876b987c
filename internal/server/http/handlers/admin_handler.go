package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/pixlabs/rifamart/internal/domain/errors"
	"github.com/pixlabs/rifamart/internal/server/http/dto"
	"github.com/pixlabs/rifamart/internal/server/http/middleware"
)

// AdminHandler manages the operator endpoints.
type AdminHandler struct {
	facade AdminFacade
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade) *AdminHandler {
	return &AdminHandler{facade: facade}
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	token, err := h.facade.Authenticate(req.Password)
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidCredentials) {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	middleware.SetAuthCookie(c, token)
	c.JSON(http.StatusOK, dto.AdminLoginResponse{Token: token})
}

// RetryConversion handles POST /api/admin/orders/:id/conversion. It only ever
// re-runs the downstream conversion report, never payment state.
func (h *AdminHandler) RetryConversion(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	outcome, meta, err := h.facade.RetryConversion(c.Request.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
			return
		case errors.Is(err, domainErrors.ErrOrderNotPaid):
			c.Status(http.StatusConflict)
			return
		}
		if outcome == "" {
			c.Status(http.StatusInternalServerError)
			return
		}
		// Dispatch failures are reported, not hidden: the retry exists so an
		// operator can see them.
	}

	c.JSON(http.StatusOK, dto.ConversionRetryResponse{
		Result:    string(outcome),
		Attempts:  meta.Attempts,
		LastError: meta.LastError,
	})
}

package handlers

import (
	"errors"
	"net/http"

	"golang-food-storefront/internal/middleware"
	"golang-food-storefront/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// respondError maps service errors to a status and the shopper-facing
// message. None of them are fatal; the cart and form stay as they were.
func respondError(c *gin.Context, log *zap.Logger, title string, err error) {
	var (
		validationErr  *services.ValidationError
		networkErr     *services.NetworkError
		integrationErr *services.IntegrationError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   title,
			Message: validationErr.Error(),
			Field:   validationErr.Field,
		})
	case errors.Is(err, services.ErrVendorNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   title,
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrCheckoutInFlight):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   title,
			Message: err.Error(),
		})
	case errors.As(err, &networkErr), errors.As(err, &integrationErr):
		middleware.Logger(c, log).Warn(title, zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   title,
			Message: err.Error(),
		})
	default:
		middleware.Logger(c, log).Error(title, zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   title,
			Message: "Something went wrong, please try again",
		})
	}
}

func requireSession(c *gin.Context) (string, bool) {
	session, ok := middleware.GetSession(c)
	if !ok || session.ID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "Unauthorized",
			Message: "Session not found",
		})
		return "", false
	}
	return session.ID, true
}

package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/service/checkout"
)

func (h *handlers) listShippingMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"shippingMethods": h.deps.Checkout.ShippingMethods()})
}

type quoteRequest struct {
	Items          []domain.LineItem `json:"items" binding:"required"`
	ShippingMethod string            `json:"shippingMethod" binding:"required"`
}

func (h *handlers) quoteOrder(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote, err := h.deps.Checkout.QuoteOrder(c.Request.Context(), req.Items, req.ShippingMethod)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrUnknownShippingMethod):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown shipping method"})
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "product or variant not found"})
		default:
			h.logger.Printf("quote order: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusOK, quote)
}

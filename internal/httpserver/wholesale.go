package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

type wholesaleRequest struct {
	CompanyName string   `json:"companyName" binding:"required"`
	ContactName string   `json:"contactName" binding:"required"`
	Email       string   `json:"email" binding:"required,email"`
	Phone       string   `json:"phone"`
	Message     string   `json:"message"`
	ProductKeys []string `json:"productKeys"`
}

func (h *handlers) createWholesaleRequest(c *gin.Context) {
	var req wholesaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.deps.Wholesale.Create(c.Request.Context(), domain.WholesaleRequest{
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Message:     req.Message,
		ProductKeys: req.ProductKeys,
	})
	if err != nil {
		h.logger.Printf("create wholesale request: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *handlers) listWholesaleRequests(c *gin.Context) {
	requests, err := h.deps.Wholesale.List(c.Request.Context())
	if err != nil {
		h.logger.Printf("list wholesale requests: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

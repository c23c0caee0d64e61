package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

func (h *handlers) listProducts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": h.deps.Catalog.Products(c.Request.Context())})
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.Catalog.ProductByKey(c.Request.Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.logger.Printf("get product %s: %v", c.Param("key"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) listProductOffers(c *gin.Context) {
	p, err := h.deps.Catalog.ProductByKey(c.Request.Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.logger.Printf("get product %s: %v", c.Param("key"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	offers := h.deps.Catalog.OffersForProduct(c.Request.Context(), p.ID, c.Query("sku"))
	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

func (h *handlers) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.deps.Catalog.Categories(c.Request.Context())})
}

func (h *handlers) listFeaturedOffers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"offers": h.deps.Catalog.FeaturedOffers(c.Request.Context())})
}

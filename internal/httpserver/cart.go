package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/domain"
)

type cartResponse struct {
	Items    []domain.LineItem `json:"items"`
	Subtotal decimal.Decimal   `json:"subtotal"`
	Count    int               `json:"count"`
	UserID   string            `json:"userId,omitempty"`
}

func toCartResponse(s *cart.Store) cartResponse {
	return cartResponse{
		Items:    s.Items(),
		Subtotal: s.Subtotal(),
		Count:    s.Count(),
		UserID:   s.UserID(),
	}
}

func (h *handlers) engine(c *gin.Context) *cart.Session {
	return h.deps.Carts.Session(c.GetString(ctxSessionID))
}

func (h *handlers) startSession(c *gin.Context) {
	s := h.deps.Sessions.Start()
	engine := h.deps.Carts.Session(s.ID)
	if err := engine.Sync.Resolve(c.Request.Context(), ""); err != nil {
		h.logger.Printf("resolve session %s: %v", s.ID, err)
	}
	c.JSON(http.StatusCreated, gin.H{
		"sessionId": s.ID,
		"expiresAt": s.ExpiresAt,
	})
}

func (h *handlers) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, toCartResponse(h.engine(c).Store))
}

type addItemRequest struct {
	ProductID       string            `json:"productId" binding:"required"`
	VariantSKU      string            `json:"variantSku"`
	Quantity        int               `json:"quantity" binding:"required"`
	SelectedOptions map[string]string `json:"selectedOptions"`
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be at least 1"})
		return
	}

	priced, err := h.deps.Checkout.Price(c.Request.Context(), []domain.LineItem{{
		ProductID:       req.ProductID,
		VariantSKU:      req.VariantSKU,
		Quantity:        req.Quantity,
		SelectedOptions: req.SelectedOptions,
	}})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product or variant not found"})
			return
		}
		h.logger.Printf("price cart line: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	engine := h.engine(c)
	engine.Store.AddItem(priced[0])
	c.JSON(http.StatusOK, toCartResponse(engine.Store))
}

type updateItemRequest struct {
	ProductID  string `json:"productId" binding:"required"`
	VariantSKU string `json:"variantSku"`
	Quantity   int    `json:"quantity"`
}

func (h *handlers) updateCartItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	engine := h.engine(c)
	key := domain.LineKey{ProductID: req.ProductID, VariantSKU: req.VariantSKU}
	if req.Quantity < 1 {
		engine.Store.RemoveItem(key)
		c.JSON(http.StatusOK, toCartResponse(engine.Store))
		return
	}

	// A quantity change can cross a tier boundary, so the line is repriced
	// and rewritten rather than patched in place.
	priced, err := h.deps.Checkout.Price(c.Request.Context(), []domain.LineItem{{
		ProductID:  req.ProductID,
		VariantSKU: req.VariantSKU,
		Quantity:   req.Quantity,
	}})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product or variant not found"})
			return
		}
		h.logger.Printf("price cart line: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	engine.Store.RemoveItem(key)
	engine.Store.AddItem(priced[0])
	c.JSON(http.StatusOK, toCartResponse(engine.Store))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	productID := c.Query("productId")
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing productId"})
		return
	}
	engine := h.engine(c)
	engine.Store.RemoveItem(domain.LineKey{ProductID: productID, VariantSKU: c.Query("variantSku")})
	c.JSON(http.StatusOK, toCartResponse(engine.Store))
}

func (h *handlers) clearCart(c *gin.Context) {
	engine := h.engine(c)
	engine.Store.Clear()
	c.JSON(http.StatusOK, toCartResponse(engine.Store))
}

func (h *handlers) loginCart(c *gin.Context) {
	userID, ok := h.bearerUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing bearer token"})
		return
	}

	engine := h.engine(c)
	// Pending guest-storage writes must land before migration reads them.
	engine.Store.Flush()
	if err := engine.Sync.SignIn(c.Request.Context(), userID); err != nil {
		if errors.Is(err, domain.ErrIdentityMismatch) {
			c.JSON(http.StatusForbidden, gin.H{"error": "cart belongs to a different user"})
			return
		}
		h.logger.Printf("sign in cart for %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, toCartResponse(engine.Store))
}

func (h *handlers) logoutCart(c *gin.Context) {
	engine := h.engine(c)
	engine.Store.Flush()
	if err := engine.Sync.SignOut(c.Request.Context()); err != nil {
		h.logger.Printf("sign out cart: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, toCartResponse(engine.Store))
}

func (h *handlers) getRemoteCart(c *gin.Context) {
	userID := c.GetString(ctxUserID)
	items, err := h.deps.RemoteCarts.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityMismatch) {
			c.JSON(http.StatusForbidden, gin.H{"error": "cart belongs to a different user"})
			return
		}
		h.logger.Printf("get cart for %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": userID, "items": items})
}

type putCartRequest struct {
	Items []domain.LineItem `json:"items"`
}

func (h *handlers) putRemoteCart(c *gin.Context) {
	var req putCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString(ctxUserID)
	if err := h.deps.RemoteCarts.Put(c.Request.Context(), userID, req.Items); err != nil {
		if errors.Is(err, domain.ErrIdentityMismatch) {
			c.JSON(http.StatusForbidden, gin.H{"error": "cart belongs to a different user"})
			return
		}
		h.logger.Printf("put cart for %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	h.publishCartChange(c, userID)
	c.JSON(http.StatusOK, gin.H{"userId": userID, "items": req.Items})
}

func (h *handlers) deleteRemoteCart(c *gin.Context) {
	userID := c.GetString(ctxUserID)
	if err := h.deps.RemoteCarts.Delete(c.Request.Context(), userID); err != nil {
		h.logger.Printf("delete cart for %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	h.publishCartChange(c, userID)
	c.Status(http.StatusNoContent)
}

// publishCartChange notifies other sessions of the user about the write.
// Publish failures are logged, not surfaced; the write already happened.
func (h *handlers) publishCartChange(c *gin.Context, userID string) {
	if err := h.deps.Feed.Publish(c.Request.Context(), userID); err != nil {
		h.logger.Printf("publish cart change for %s: %v", userID, err)
	}
}

package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"storefront/internal/middleware" // Caller identity
	"storefront/internal/service"    // Cart service
)

// GetCartHandler returns the caller's cart and its total
func GetCartHandler(cart *service.Cart) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := cart.Items(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": rows, "total": service.CartTotal(rows)})
	}
}

// AddToCartHandler adds one unit of the item in the path
func AddToCartHandler(cart *service.Cart) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, ok := pathID(c, "itemID")
		if !ok {
			return
		}
		ci, err := cart.AddToCart(c.Request.Context(), middleware.UserID(c), itemID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, ci)
	}
}

// RemoveFromCartHandler deletes a whole cart row
func RemoveFromCartHandler(cart *service.Cart) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartItemID, ok := pathID(c, "cartItemID")
		if !ok {
			return
		}
		ci, err := cart.RemoveFromCart(c.Request.Context(), middleware.UserID(c), cartItemID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, ci)
	}
}

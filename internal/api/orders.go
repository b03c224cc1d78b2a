package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"storefront/internal/middleware" // Caller identity
	"storefront/internal/service"    // Checkout and order queries
)

// IdempotencyHeader lets clients pin the gateway idempotency key of a checkout
const IdempotencyHeader = "Idempotency-Key"

// CheckoutRequest carries the payment source token; the amount is always computed server-side
type CheckoutRequest struct {
	Token string `json:"token" binding:"required"` // Tokenized payment source
}

// CheckoutHandler charges the caller's cart and returns the order
func CheckoutHandler(checkout *service.Checkout) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckoutRequest
		if !bind(c, &req) {
			return
		}
		order, err := checkout.Checkout(c.Request.Context(), middleware.UserID(c), req.Token, c.GetHeader(IdempotencyHeader))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

// ListOrdersHandler returns the caller's orders
func ListOrdersHandler(orders *service.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.List(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": list})
	}
}

// GetOrderHandler returns one order
func GetOrderHandler(orders *service.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		order, err := orders.Order(c.Request.Context(), middleware.UserID(c), id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

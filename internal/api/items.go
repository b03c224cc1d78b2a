package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Query parsing

	"github.com/gin-gonic/gin" // Gin web framework

	"storefront/internal/domain"     // Item updates
	"storefront/internal/middleware" // Caller identity
	"storefront/internal/service"    // Catalog
)

// ListItemsHandler returns one page of items
func ListItemsHandler(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))          // Page number
		pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0")) // 0 selects the default size
		out, err := catalog.Items(c.Request.Context(), page, pageSize)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// GetItemHandler returns one item
func GetItemHandler(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		item, err := catalog.Item(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// CreateItemHandler adds an item owned by the caller
func CreateItemHandler(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.ItemInput
		if !bind(c, &req) {
			return
		}
		item, err := catalog.CreateItem(c.Request.Context(), middleware.UserID(c), req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

// UpdateItemHandler applies a partial update; fields outside the allow-list are rejected
func UpdateItemHandler(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req domain.ItemUpdate
		if !bind(c, &req) {
			return
		}
		item, err := catalog.UpdateItem(c.Request.Context(), middleware.UserID(c), id, req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DeleteItemHandler removes an item and returns it
func DeleteItemHandler(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		item, err := catalog.DeleteItem(c.Request.Context(), middleware.UserID(c), id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

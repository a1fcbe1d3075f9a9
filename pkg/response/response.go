// Package response renders the API's JSON envelopes. Collections carry
// totals and pagination cursors; single resources sit under a per-resource
// payload key for compatibility with existing clients.
package response

import (
	"github.com/gin-gonic/gin"

	"github.com/devtrail/bootcamp-api/pkg/query"
)

// Data writes a single resource under the conventional "data" key.
func Data(c *gin.Context, status int, payload any) {
	c.JSON(status, gin.H{"success": true, "data": payload})
}

// Keyed writes a single resource under a caller-chosen payload key, for the
// endpoints whose clients expect "course" or "user" instead of "data".
func Keyed(c *gin.Context, status int, key string, payload any) {
	c.JSON(status, gin.H{"success": true, key: payload})
}

// List writes a collection with totals and pagination cursors. Total counts
// the whole collection, count the returned page.
func List(c *gin.Context, status int, res query.ListResult) {
	c.JSON(status, gin.H{
		"success":    true,
		"total":      res.Total,
		"count":      len(res.Items),
		"pagination": res.Pagination,
		"data":       res.Items,
	})
}

// Slice writes a plain collection without pagination, for nested listings.
func Slice(c *gin.Context, status int, payload any, count int) {
	c.JSON(status, gin.H{"success": true, "count": count, "data": payload})
}

// Error writes the error envelope.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

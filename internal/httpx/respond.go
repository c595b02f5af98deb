package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
)

// Every response is a JSON object with a boolean "success" field; clients
// branch on it rather than on the transport status alone.

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

// Fail writes the error envelope. Unclassified errors come from the store
// layer and surface as unavailable rather than leaking internals.
func Fail(c *gin.Context, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		c.JSON(ae.Kind.HTTPStatus(), gin.H{"success": false, "error": ae.Message})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "service unavailable"})
}

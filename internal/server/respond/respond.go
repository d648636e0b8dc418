// Package respond writes the JSON envelopes used by every handler.
// Success bodies carry {"status":"success"} plus the payload fields,
// error bodies carry {"status":"error","code":...,"message":...} and an
// optional details object.
package respond

import "github.com/gin-gonic/gin"

// Success writes status code httpStatus with the payload fields merged
// into a success envelope.
func Success(c *gin.Context, httpStatus int, payload gin.H) {
	body := gin.H{"status": "success"}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(httpStatus, body)
}

// Error writes an error envelope and aborts the request.
func Error(c *gin.Context, httpStatus int, code, message string) {
	c.AbortWithStatusJSON(httpStatus, gin.H{
		"status":  "error",
		"code":    code,
		"message": message,
	})
}

// ErrorDetails writes an error envelope with a details object and aborts.
func ErrorDetails(c *gin.Context, httpStatus int, code, message string, details gin.H) {
	c.AbortWithStatusJSON(httpStatus, gin.H{
		"status":  "error",
		"code":    code,
		"message": message,
		"details": details,
	})
}

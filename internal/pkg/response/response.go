package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventadmin/internal/pkg/notice"
)

// NoticeDetails is the error detail shape for failures the operator should
// see as notices. Field names the form field involved, if any.
type NoticeDetails struct {
	Field   string          `json:"field,omitempty"`
	Notices []notice.Notice `json:"notices,omitempty"`
}

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// ErrorWithNotices is ErrorWithDetails carrying NoticeDetails.
func ErrorWithNotices(c *gin.Context, statusCode int, code, message, field string, notices []notice.Notice) {
	ErrorWithDetails(c, statusCode, code, message, NoticeDetails{Field: field, Notices: notices})
}

// NoContent writes an empty 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
	c.Writer.WriteHeaderNow()
}

package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"mining-dispatch/internal/api/models"
	"mining-dispatch/internal/logger"
)

// ErrorHandler recovers from panics in handlers, logs them and answers with
// a 500 error body.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.ErrorContext(c.Request.Context(), "panic recovered",
			logger.StringField("path", c.Request.URL.Path),
			logger.StringField("panic", fmt.Sprint(recovered)))

		message := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			message = s
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: message,
			},
		})
	})
}

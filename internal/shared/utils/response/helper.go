package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"memoir/internal/shared/apperrors"
)

// OK writes a success envelope.
func OK(c *gin.Context, code int, data interface{}) {
	c.JSON(code, Envelope{
		Status: StatusOK,
		Data:   data,
	})
}

// Fail writes an error envelope.
func Fail(c *gin.Context, code int, messages []string, data interface{}) {
	c.JSON(code, Envelope{
		Status:   StatusError,
		Messages: messages,
		Data:     data,
	})
}

// FailFromError maps a service error onto the envelope. For 422
// responses echo carries the trimmed request body back to the client;
// other failure categories return no data.
func FailFromError(c *gin.Context, err error, echo interface{}) {
	code := apperrors.StatusOf(err)

	var data interface{}
	if code == http.StatusUnprocessableEntity {
		data = echo
	}

	Fail(c, code, apperrors.MessagesOf(err), data)
}

package response

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response is the envelope of every HTTP API response.
type Response struct {
	Data     interface{} `json:"data"`
	Error    *ErrorBody  `json:"error,omitempty"`
	Metadata Metadata    `json:"metadata"`
}

// ErrorBody is a typed error with optional per-field details.
type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Metadata carries the request ID and the server time of the response.
type Metadata struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// Success writes data with statusCode.
func Success(c *gin.Context, statusCode int, data interface{}) {
	write(c, statusCode, Response{Data: data}, false)
}

// Fail writes an error code with its standard message.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	write(c, statusCode, Response{Error: errorBody(code, nil)}, false)
}

// FailWithFields writes a validation error with per-field messages.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	write(c, statusCode, Response{Error: errorBody(code, fields)}, false)
}

// AbortFail writes an error and stops the middleware chain.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	write(c, statusCode, Response{Error: errorBody(code, nil)}, true)
}

func errorBody(code ErrCode, fields map[string]string) *ErrorBody {
	return &ErrorBody{Code: code, Message: GetMessage(code), Fields: fields}
}

// write stamps metadata and sends body. Responses are per student (scores,
// profiles), so shared caches must not keep them.
func write(c *gin.Context, statusCode int, body Response, abort bool) {
	id := RequestID(c)
	if id == "" {
		id = uuid.NewString()
	}
	body.Metadata = Metadata{
		RequestID: id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	c.Header("Cache-Control", "no-store")
	if abort {
		c.AbortWithStatusJSON(statusCode, body)
		return
	}
	c.JSON(statusCode, body)
}

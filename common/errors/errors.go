package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error carrying the HTTP status it maps to.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
	Details any    `json:"details,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors with the same code and message so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// WithDetails returns a copy of e with details attached to the response body.
func (e *Error) WithDetails(details any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// Wrap returns a copy of e wrapping err.
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error types
var (
	ErrUnauthorized         = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrUnsupportedMediaType = New(http.StatusUnsupportedMediaType, "Unsupported media type", nil)
	ErrInternalServer       = New(http.StatusInternalServerError, "Internal server error", nil)
	ErrGatewayTimeout       = New(http.StatusGatewayTimeout, "Gateway timeout", nil)
	ErrTooManyRequests      = New(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
)

// Order error types
var (
	ErrMalformedBody    = New(http.StatusBadRequest, "Malformed JSON body", nil)
	ErrInvalidOrder     = New(http.StatusBadRequest, "Invalid order", nil)
	ErrInvalidStatus    = New(http.StatusBadRequest, "Invalid order status", nil)
	ErrOrderNotFound    = New(http.StatusNotFound, "Order not found", nil)
	ErrDuplicateOrder   = New(http.StatusConflict, "Order already exists", nil)
	ErrStatusRegression = New(http.StatusConflict, "Enriched orders cannot change status", nil)
	ErrUnknownProducts  = New(http.StatusUnprocessableEntity, "Unknown products in order", nil)
)

// Respond writes err to the gin context. Errors that are not *Error become 500s.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !stderrors.As(err, &appErr) {
		appErr = ErrInternalServer.Wrap(err)
	}
	c.AbortWithStatusJSON(appErr.Code, appErr)
}

// ErrorMiddleware renders the last error attached with c.Error.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			Respond(c, c.Errors.Last().Err)
		}
	}
}

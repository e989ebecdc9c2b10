package response

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"unievent/pkg/apperror"
	"unievent/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const internalMessage = "An unexpected error occurred"

// ErrorBody is the single shape every failure is rendered as.
type ErrorBody struct {
	Status    int               `json:"status"`
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Path      string            `json:"path,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}

func newBody(c *gin.Context, status int, message string, details map[string]string) ErrorBody {
	return ErrorBody{
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      c.Request.URL.Path,
		Timestamp: time.Now().UTC(),
		Details:   details,
	}
}

// Abort writes the error body with an explicit status and stops the chain.
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, newBody(c, status, message, nil))
}

// Error renders err. Classified errors keep their message; anything else is
// logged and replaced with a generic message.
func Error(c *gin.Context, log *logger.Logger, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		if log != nil {
			log.Error("Unhandled error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}
		Abort(c, http.StatusInternalServerError, internalMessage)
		return
	}

	status := appErr.Kind.HTTPStatus()
	message := appErr.Message
	details := appErr.Details
	if appErr.Kind == apperror.KindInternal || appErr.Kind == apperror.KindUnavailable {
		if log != nil {
			log.Error("Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		}
		if appErr.Kind == apperror.KindInternal {
			message = internalMessage
			details = nil
		}
	}
	c.AbortWithStatusJSON(status, newBody(c, status, message, details))
}

// BindError renders a request binding failure as a validation error with
// per-field details when the validator produced them.
func BindError(c *gin.Context, err error) {
	Error(c, nil, apperror.Validation("Validation failed", ValidationDetails(err)))
}

// ValidationDetails turns validator errors into a field->message map keyed
// by the JSON field name.
func ValidationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": "malformed request body"}
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fieldName(fe)] = fieldMessage(fe)
	}
	return details
}

var jsonNamesOnce sync.Once

// UseJSONFieldNames makes gin's validator report fields by their JSON name.
func UseJSONFieldNames() {
	jsonNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

func fieldName(fe validator.FieldError) string {
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "url":
		return "must be a valid URL"
	case "alphanum":
		return "must contain only letters and digits"
	default:
		return "is invalid"
	}
}

// Recovery converts panics into the standard 500 body.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Panic recovered on %s %s: %v", c.Request.Method, c.Request.URL.Path, r)
				Abort(c, http.StatusInternalServerError, internalMessage)
			}
		}()
		c.Next()
	}
}

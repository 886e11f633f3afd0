package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

// Response represents a standard JSON response
type Response struct {
	Success bool                `json:"success"`
	Data    interface{}         `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
	Fields  []entity.FieldError `json:"fields,omitempty"`
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Error: message})
}

// writeError maps a service error onto a status code. Storage details are
// logged and never sent to the client.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "validation failed",
			Fields:  verr.Fields,
		})
	case errors.Is(err, entity.ErrUnauthenticated):
		fail(c, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, entity.ErrForbidden):
		fail(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, entity.ErrNotFound):
		fail(c, http.StatusNotFound, "not found")
	case errors.Is(err, entity.ErrInvalidTransition):
		fail(c, http.StatusConflict, "claim is not in a state that allows this decision")
	default:
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		fail(c, http.StatusInternalServerError, "internal server error")
	}
}

// bindError converts a gin binding failure to a field-level ValidationError
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := &entity.ValidationError{}
		for _, fe := range verrs {
			out.Add(fe.Field(), fieldMessage(fe))
		}
		return out
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		return entity.NewValidationError(typeErr.Field, "has the wrong type")
	case errors.As(err, &syntaxErr):
		return entity.NewValidationError("body", "malformed JSON")
	}
	return entity.NewValidationError("body", "invalid request: "+err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	case "eqfield":
		return "must match " + strings.ToLower(fe.Param())
	}
	return "failed " + fe.Tag() + " validation"
}

var registerTagNames sync.Once

// useJSONFieldNames makes validator report fields by their json or form name
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, isValidator := binding.Validator.Engine().(*validator.Validate)
		if !isValidator {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
}

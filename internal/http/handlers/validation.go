package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/tbourn/foodgram-backend/internal/services"
)

var registerOnce sync.Once

// registerValidators installs the custom "slug" rule and makes validation
// errors report JSON field names. Safe to call repeatedly.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return services.ValidSlug(fl.Field().String())
		})
	})
}

// bindJSON decodes and validates the body into dst. On failure it writes a
// 400 and returns false.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[fe.Field()] = fieldMessage(fe)
		}
		failFields(c, http.StatusBadRequest, ErrCodeBadRequest, "validation failed", fields)
		return false
	}
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) && te.Field != "" {
		failFields(c, http.StatusBadRequest, ErrCodeBadRequest, "validation failed",
			map[string]string{te.Field: "expected " + te.Type.String()})
		return false
	}
	fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("ensure this field has at least %s characters", fe.Param())
	case "slug":
		return "enter a valid slug of letters, numbers, underscores or hyphens"
	default:
		return "invalid value"
	}
}

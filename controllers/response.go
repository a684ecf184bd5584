package controllers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sierra-health/medequip-api/logger"
	"github.com/sierra-health/medequip-api/services"
	"github.com/sierra-health/medequip-api/utils"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

func respondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondValidationError reports a request body that failed binding
func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": validationDetails(err),
		},
	})
}

// respondServiceError maps domain errors to their status and code. Anything else is
// logged and reported with the given code and message, never with the error text.
func respondServiceError(c *gin.Context, err error, code, message string) {
	if se, ok := services.AsServiceError(err); ok {
		respondError(c, se.Status, se.Code, se.Message)
		return
	}
	var uploadErr *utils.FileUploadError
	if errors.As(err, &uploadErr) {
		respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
		return
	}
	logger.Error(c, message, err)
	respondError(c, http.StatusInternalServerError, code, message)
}

func validationDetails(err error) []gin.H {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []gin.H{{"message": "Malformed request body"}}
	}
	details := make([]gin.H, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, gin.H{
			"field":   fieldPath(fe),
			"message": fieldMessage(fe),
		})
	}
	return details
}

// fieldPath drops the request struct name from the validator namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min", "gte":
		return fe.Field() + " must be at least " + fe.Param()
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fe.Field() + " must be at most " + fe.Param() + " characters"
		}
		return fe.Field() + " must be at most " + fe.Param()
	case "oneof":
		return fe.Field() + " must be one of " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

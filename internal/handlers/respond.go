// Package handlers contains HTTP request handlers for the identity service.
package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stackmesa/identity-service/internal/apperrors"
)

// FieldError describes a single failed validation rule on a request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RespondError writes a JSON error body with the given status.
func RespondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// RespondDomainError maps a domain error to its HTTP status. Errors outside
// the taxonomy are logged and masked as a generic 500.
func RespondDomainError(c *gin.Context, err error) {
	status := apperrors.Status(err)
	if status == http.StatusInternalServerError {
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		RespondError(c, status, "internal server error")
		return
	}
	RespondError(c, status, err.Error())
}

// RespondBindingError converts a binding failure into a typed field-error
// list. Non-validator errors (malformed JSON and the like) become a single
// generic entry.
func RespondBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: validationMessage(fe)})
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "eqfield":
		return "must match " + fe.Param()
	default:
		return "is invalid"
	}
}

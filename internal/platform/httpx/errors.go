package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// Validation failures are surfaced verbatim so forms can show them to the user;
// anything else is mapped to a problem response with the detail withheld.
func RespondError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(verrs))
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// fieldNames rewrites struct field names to the names users see on forms.
var fieldNames = map[string]string{
	"LPONumber":  "LPO number",
	"PartyID":    "customer/supplier",
	"UnitPrice":  "unit price",
	"Quantity":   "quantity",
	"Currency":   "currency",
	"TaxPercent": "tax rate",
}

func validationDetail(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if friendly, ok := fieldNames[name]; ok {
			name = friendly
		}
		switch fe.Tag() {
		case "required":
			parts = append(parts, name+" is required")
		case "gt", "gte":
			parts = append(parts, name+" must be positive")
		case "lte", "lt":
			parts = append(parts, name+" is out of range")
		default:
			parts = append(parts, name+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}

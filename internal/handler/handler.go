package handler

import (
	"net/http"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	fundErrors "github.com/funters/fund-engine/pkg/errors"
	"github.com/funters/fund-engine/pkg/response"
)

// newValidator builds a validator that understands decimal.Decimal fields,
// so DTO tags like gt=0 apply to monetary amounts.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// writeError maps business error codes onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	code := fundErrors.CodeOf(err)
	switch code {
	case fundErrors.ErrCodeInvalidAmount,
		fundErrors.ErrCodeInvalidTerm,
		fundErrors.ErrCodeInvalidDate,
		fundErrors.ErrCodeInvalidMember,
		fundErrors.ErrCodeInvalidDepositAmount:
		response.BadRequest(w, err.Error(), code)
	case fundErrors.ErrCodeMemberNotApproved:
		response.UnprocessableEntity(w, err.Error(), code)
	case fundErrors.ErrCodeLoanNotFound, fundErrors.ErrCodeInstallmentNotFound:
		response.NotFound(w, err.Error(), code)
	case fundErrors.ErrCodeAlreadyPaid:
		response.Conflict(w, err.Error(), code)
	default:
		response.InternalServerError(w, "internal server error")
	}
}

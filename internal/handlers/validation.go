package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/SscSPs/gl_engine/internal/core/domain"
)

// RegisterValidators adds the ledger's enum checks to gin's validator so
// request DTOs can use `binding:"account_nature"` and `binding:"voucher_type"`.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("account_nature", validateAccountNature); err != nil {
		return err
	}
	return v.RegisterValidation("voucher_type", validateVoucherType)
}

func validateAccountNature(fl validator.FieldLevel) bool {
	_, err := domain.ParseNature(fl.Field().String())
	return err == nil
}

func validateVoucherType(fl validator.FieldLevel) bool {
	_, err := domain.ParseVoucherType(fl.Field().String())
	return err == nil
}

package handlers

import (
	"log/slog"
	"sync"

	"github.com/SscSPs/cashbook_backend/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// registerValidators adds the ledger's enum validators to gin's binding engine.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			slog.Warn("Gin binding engine is not go-playground/validator; custom validators not registered")
			return
		}
		mustRegister(v, "entrytype", validateEntryType)
		mustRegister(v, "reviewdecision", validateReviewDecision)
		mustRegister(v, "deleterequeststatus", validateDeleteRequestStatus)
	})
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("failed to register validator " + tag + ": " + err.Error())
	}
}

func validateEntryType(fl validator.FieldLevel) bool {
	return domain.EntryType(fl.Field().String()).IsValid()
}

// validateReviewDecision accepts only terminal statuses.
func validateReviewDecision(fl validator.FieldLevel) bool {
	return domain.DeleteRequestStatus(fl.Field().String()).IsTerminal()
}

func validateDeleteRequestStatus(fl validator.FieldLevel) bool {
	return domain.DeleteRequestStatus(fl.Field().String()).IsValid()
}

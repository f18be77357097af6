package api

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var setupOnce sync.Once

// validateTxEncoding accepts non-empty hex or standard base64 text.
func validateTxEncoding(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return false
	}
	if _, err := hex.DecodeString(s); err == nil {
		return true
	}
	_, err := base64.StdEncoding.DecodeString(s)
	return err == nil
}

// SetupCustomValidators registers the "txenc" binding tag with gin's validator.
func SetupCustomValidators() error {
	var err error
	setupOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			err = v.RegisterValidation("txenc", validateTxEncoding)
		}
	})
	return err
}

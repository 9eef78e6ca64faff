// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// fieldErrors maps struct fields to the sentinel returned when they fail.
var fieldErrors = map[string]error{
	"DataDir":       ErrEmptyDataDir,
	"LogLevel":      ErrInvalidLogLevel,
	"LogFormat":     ErrInvalidLogFormat,
	"BumpWindow":    ErrInvalidTTL,
	"InstanceTTL":   ErrInvalidTTL,
	"PersistentTTL": ErrInvalidTTL,
	"ChallengeTTL":  ErrInvalidTTL,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		return validLogLevels[strings.ToLower(fl.Field().String())]
	})
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("config: validate: %w", err)
	}
	fe := fieldErrs[0]
	if sentinel, ok := fieldErrors[fe.Field()]; ok {
		return fmt.Errorf("%w: %s failed %q", sentinel, strings.ToLower(fe.Field()), fe.Tag())
	}
	return fmt.Errorf("config: %s failed %q", fe.Field(), fe.Tag())
}

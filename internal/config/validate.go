package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"go.trai.ch/zerr"
)

func newValidator() *validator.Validate {
	validate := validator.New()

	_ = validate.RegisterValidation("glob", func(fl validator.FieldLevel) bool {
		_, err := filepath.Match(fl.Field().String(), "")
		return err == nil
	})

	_ = validate.RegisterValidation("cronspec", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	})

	return validate
}

// Validate checks field rules and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	var msgs []string

	if err := newValidator().Struct(c); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
		}
		for _, e := range errs {
			msg := fmt.Sprintf("%s: rule '%s'", e.Namespace(), e.Tag())
			if e.Param() != "" {
				msg += fmt.Sprintf(" (expected: %s)", e.Param())
			}
			msgs = append(msgs, msg)
		}
	}

	if c.Handler.Kind == "archive" && c.Handler.Archive.Root == "" {
		msgs = append(msgs, "Config.Handler.Archive.Root: required for the archive handler")
	}
	if c.Logging.File != "" && c.Logging.MaxSizeMB == 0 {
		msgs = append(msgs, "Config.Logging.MaxSizeMB: must be positive when logging to a file")
	}

	if len(msgs) > 0 {
		return zerr.With(
			fmt.Errorf("%w:\n  %s", ErrConfigInvalid, strings.Join(msgs, "\n  ")),
			"violations", len(msgs),
		)
	}
	return nil
}

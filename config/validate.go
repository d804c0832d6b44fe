package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate checks every config section and returns all problems found.
func Validate() error {
	sections := []struct {
		name string
		v    any
	}{
		{"window", C},
		{"tracking", &Tracking},
		{"motion", &Motion},
		{"eyes", &Eyes},
		{"blink", &Blink},
		{"capture", &Capture},
		{"log", &Log},
	}

	var errs []error
	for _, s := range sections {
		if err := validatorInstance().Struct(s.v); err != nil {
			errs = append(errs, describe(s.name, err))
		}
	}

	// cross-field rules the tags cannot express
	if err := MotionController().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("motion: %w", err))
	}
	if Blink.Enabled && Blink.Close+Blink.Open >= Blink.MinInterval {
		errs = append(errs, fmt.Errorf("blink: close+open %v must be shorter than the minimum interval %v", Blink.Close+Blink.Open, Blink.MinInterval))
	}
	if Eyes.Count > 1 && Eyes.Spacing < 2*Eyes.Radius {
		errs = append(errs, fmt.Errorf("eyes: spacing %.0f overlaps eyes of radius %.0f", Eyes.Spacing, Eyes.Radius))
	}

	return errors.Join(errs...)
}

func describe(section string, err error) error {
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return fmt.Errorf("%s: %w", section, err)
	}
	errs := make([]error, 0, len(invalid))
	for _, fe := range invalid {
		if fe.Param() != "" {
			errs = append(errs, fmt.Errorf("%s.%s: failed %s=%s (got %v)", section, fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
			continue
		}
		errs = append(errs, fmt.Errorf("%s.%s: failed %s (got %v)", section, fe.Field(), fe.Tag(), fe.Value()))
	}
	return errors.Join(errs...)
}

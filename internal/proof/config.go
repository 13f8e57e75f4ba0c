// Package proof defines the proof configuration handed to a prover orchestration
// layer and the interface that layer implements.
package proof

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config is the proof configuration passed by value to a Prover.
// It is built fresh for each invocation and never shared.
type Config struct {
	// Provers lists the solver backends in the order they should be tried.
	Provers []string `validate:"required,min=1,dive,required" yaml:"provers"`
	// Level is the proof-effort tier.
	Level int `validate:"min=0" yaml:"level"`
	// Procs is the parallelism hint forwarded to the orchestration layer.
	Procs int `validate:"min=1" yaml:"procs"`
	// Replay re-checks recorded proof results instead of regenerating them.
	Replay bool `yaml:"replay"`
}

var validate = validator.New()

// Validate checks the configuration invariants: at least one prover,
// a non-negative level and a parallelism of at least one.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fieldErr := validationErrors[0]
			return fmt.Errorf("invalid proof config: %s %s", strings.ToLower(fieldErr.Field()), describe(fieldErr))
		}
		return fmt.Errorf("invalid proof config: %w", err)
	}
	return nil
}

func describe(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fieldErr.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fieldErr.Tag())
	}
}

// Clone returns a copy of c whose Provers slice does not alias the original.
func (c Config) Clone() Config {
	out := c
	out.Provers = append([]string(nil), c.Provers...)
	return out
}

// Mode returns "replay" or "prove" depending on the Replay flag.
func (c Config) Mode() string {
	if c.Replay {
		return ModeReplay
	}
	return ModeProve
}

// String renders the configuration for logs.
func (c Config) String() string {
	return fmt.Sprintf("provers=[%s] level=%d procs=%d replay=%t",
		strings.Join(c.Provers, ","), c.Level, c.Procs, c.Replay)
}

// Mode names used in logs and run history.
const (
	ModeProve  = "prove"
	ModeReplay = "replay"
)

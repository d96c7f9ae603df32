package models

import (
	"errors"
	"fmt"
)

// ErrEncoderNotFitted is returned by FeatureEncoder.Transform before any fit.
// It is distinct from an unknown-region degradation, which is not an error.
var ErrEncoderNotFitted = errors.New("feature encoder not fitted")

// ErrTrainingInProgress is returned when a fit is requested while another
// fit holds the training lock.
var ErrTrainingInProgress = errors.New("model training already in progress")

// ConfigurationError reports missing or invalid configuration. It is fatal
// to the triggering call only.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// TrainingError wraps a failure during model fitting. The previous trained
// state is always preserved when one is returned.
type TrainingError struct {
	Stage string
	Err   error
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("training failed at %s stage: %v", e.Stage, e.Err)
}

func (e *TrainingError) Unwrap() error {
	return e.Err
}

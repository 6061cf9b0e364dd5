package metadata

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransient marks failures worth retrying: network faults, rate
	// limiting, temporary source unavailability.
	ErrTransient = errors.New("transient failure")
	// ErrPermanent marks failures that will not succeed on retry, such as
	// malformed requests or missing entities.
	ErrPermanent = errors.New("permanent failure")
	// ErrValidation marks locally rejected input.
	ErrValidation = errors.New("validation error")
	// ErrStorage marks catalog persistence failures.
	ErrStorage = errors.New("storage error")
)

// Wrap builds an error message that includes source context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, source, operation, message string, err error) error {
	detail := buildDetail(source, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsTransient reports whether the error should be retried.
func IsTransient(err error) bool { return errors.Is(err, ErrTransient) }

// IsPermanent reports whether the error is not retryable.
func IsPermanent(err error) bool { return errors.Is(err, ErrPermanent) }

// IsValidation reports whether the error stems from rejected input.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsStorage reports whether the error stems from catalog persistence.
func IsStorage(err error) bool { return errors.Is(err, ErrStorage) }

func buildDetail(source, operation, message string) string {
	parts := make([]string, 0, 3)
	if source = strings.TrimSpace(source); source != "" {
		parts = append(parts, source)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "source failure"
	}
	return strings.Join(parts, ": ")
}

package jobs

import (
	"errors"
	"fmt"

	"uniqvid/internal/delivery"
	"uniqvid/internal/media"
	"uniqvid/internal/render"
)

// Failure markers. Every job failure is classified onto exactly one of these
// so callers (and notifications) can tell which stage gave out.
var (
	ErrIntake   = errors.New("intake rejected")
	ErrDecode   = errors.New("source unreadable")
	ErrEncode   = errors.New("encode failed")
	ErrDelivery = errors.New("delivery failed")
)

// Classify wraps err with the failure marker for the stage it came from.
// Errors already carrying a marker pass through unchanged.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrIntake), errors.Is(err, ErrDecode),
		errors.Is(err, ErrEncode), errors.Is(err, ErrDelivery):
		return err
	case errors.Is(err, media.ErrUnreadableMedia):
		return fmt.Errorf("%w: %w", ErrDecode, err)
	case errors.Is(err, render.ErrEncodeFailed):
		return fmt.Errorf("%w: %w", ErrEncode, err)
	case errors.Is(err, delivery.ErrNothingDelivered):
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	default:
		return err
	}
}

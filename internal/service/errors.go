package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindPolicy
	KindRender
	KindDelivery
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPolicy:
		return "policy_violation"
	case KindRender:
		return "render_failure"
	case KindDelivery:
		return "notification_delivery_failure"
	default:
		return "internal"
	}
}

// Error is the structured failure returned by every service operation.
// Message is safe to show to users for validation, not-found and policy
// failures; the other kinds carry their cause in Err.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// ValidationError reports input that fails shape or length constraints.
func ValidationError(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NotFoundError reports a referenced entity that does not exist.
func NotFoundError(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// PolicyViolation reports an action the caller is not allowed to take.
func PolicyViolation(msg string) error {
	return &Error{Kind: KindPolicy, Message: msg}
}

// RenderFailure wraps an unexpected markdown pipeline failure.
func RenderFailure(err error) error {
	return &Error{Kind: KindRender, Message: "failed to render content", Err: err}
}

// NotificationDeliveryFailure wraps a failed notification write.
func NotificationDeliveryFailure(err error) error {
	return &Error{Kind: KindDelivery, Message: "failed to deliver notification", Err: err}
}

// InternalError wraps any other failure.
func InternalError(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage returns the message that may be shown to the end user.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindValidation, KindNotFound, KindPolicy:
			return e.Message
		}
	}
	return "Something went wrong. Please try again."
}

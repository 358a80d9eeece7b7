package domain

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindDuplicate
	KindNotFound
	KindUnauthenticated
	KindForbidden
	KindBusinessRule
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindDuplicate:
		return "DUPLICATE_RESOURCE"
	case KindNotFound:
		return "NOT_FOUND"
	case KindUnauthenticated:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindBusinessRule:
		return "BUSINESS_RULE_VIOLATION"
	case KindUpstream:
		return "UPSTREAM_FAILURE"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error is the typed error every layer returns. Handlers translate Kind into
// an HTTP status; Err keeps the underlying cause for logs.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Code so wrapped sentinels compare equal with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

func newSentinel(kind ErrorKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

var (
	ErrInvalidToken        = newSentinel(KindUnauthenticated, "INVALID_TOKEN", "invalid token")
	ErrExpiredToken        = newSentinel(KindUnauthenticated, "EXPIRED_TOKEN", "token expired")
	ErrRevokedToken        = newSentinel(KindUnauthenticated, "REVOKED_TOKEN", "token has been revoked")
	ErrInvalidCredentials  = newSentinel(KindUnauthenticated, "INVALID_CREDENTIALS", "invalid email or password")
	ErrInvalidOTP          = newSentinel(KindValidation, "INVALID_OTP", "invalid OTP")
	ErrExpiredOTP          = newSentinel(KindValidation, "EXPIRED_OTP", "OTP has expired")
	ErrAccountSuspended    = newSentinel(KindForbidden, "ACCOUNT_SUSPENDED", "account is suspended")
	ErrDuplicateSKU        = newSentinel(KindDuplicate, "DUPLICATE_SKU", "product with this SKU already exists")
	ErrInsufficientStock   = newSentinel(KindBusinessRule, "INSUFFICIENT_STOCK", "insufficient stock")
	ErrProductUnavailable  = newSentinel(KindBusinessRule, "PRODUCT_UNAVAILABLE", "product is not available")
	ErrEmptyCart           = newSentinel(KindBusinessRule, "EMPTY_CART", "cart is empty")
	ErrInvalidAddress      = newSentinel(KindValidation, "INVALID_ADDRESS", "invalid address")
	ErrOrderNotCancellable = newSentinel(KindBusinessRule, "ORDER_NOT_CANCELLABLE", "order cannot be cancelled in its current status")
	ErrInvalidTransition   = newSentinel(KindBusinessRule, "INVALID_STATUS_TRANSITION", "invalid order status transition")
)

// WithMessage returns a copy of a sentinel carrying a more specific message.
// errors.Is still matches the sentinel.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NewDuplicateError(msg string) *Error {
	return &Error{Kind: KindDuplicate, Message: msg}
}

func NewNotFoundError(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func NewUnauthenticatedError(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func NewForbiddenError(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func NewBusinessError(msg string) *Error {
	return &Error{Kind: KindBusinessRule, Message: msg}
}

func NewUpstreamError(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

func NewInternalError(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf reports the kind of err, KindInternal when err is not a *Error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

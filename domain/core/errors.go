package core

import (
	"errors"
	"fmt"
	"strings"
)

// Calculation error categories. Every failure raised while parsing or
// solving wraps exactly one of these.
var (
	ErrParse                  = errors.New("parse error")
	ErrInsufficientParameters = errors.New("insufficient parameters")
	ErrAmbiguousInput         = errors.New("ambiguous input")
	ErrDomain                 = errors.New("domain error")
	ErrNonConvergence         = errors.New("no convergence")
)

// ParamError names the parameter that caused a failure.
type ParamError struct {
	Kind   error
	Param  string
	Reason string
}

func (e *ParamError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", e.Kind, e.Param, e.Reason)
}

func (e *ParamError) Unwrap() error {
	return e.Kind
}

// Error constructors with context
func NewParseError(param, token string) error {
	return &ParamError{Kind: ErrParse, Param: param, Reason: fmt.Sprintf("cannot read %q as a number", token)}
}

func NewInsufficientParametersError(reason string, params ...string) error {
	return &ParamError{Kind: ErrInsufficientParameters, Param: joinParams(params), Reason: reason}
}

func NewAmbiguousInputError(reason string, params ...string) error {
	return &ParamError{Kind: ErrAmbiguousInput, Param: joinParams(params), Reason: reason}
}

func NewDomainError(param, reason string) error {
	return &ParamError{Kind: ErrDomain, Param: param, Reason: reason}
}

func NewNonConvergenceError(param string, iterations int) error {
	return &ParamError{
		Kind:   ErrNonConvergence,
		Param:  param,
		Reason: fmt.Sprintf("search did not converge after %d iterations", iterations),
	}
}

func joinParams(params []string) string {
	return strings.Join(params, ", ")
}

// Error checking helpers
func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}

func IsInsufficientParametersError(err error) bool {
	return errors.Is(err, ErrInsufficientParameters)
}

func IsAmbiguousInputError(err error) bool {
	return errors.Is(err, ErrAmbiguousInput)
}

func IsDomainError(err error) bool {
	return errors.Is(err, ErrDomain)
}

func IsNonConvergenceError(err error) bool {
	return errors.Is(err, ErrNonConvergence)
}

// ParamOf returns the offending parameter carried by err, if any.
func ParamOf(err error) string {
	var pe *ParamError
	if errors.As(err, &pe) {
		return pe.Param
	}
	return ""
}

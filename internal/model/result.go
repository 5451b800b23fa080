package model

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// FailureKind classifies why a remote or storage operation failed.
type FailureKind string

const (
	KindUnavailable FailureKind = "unavailable"
	KindTimeout     FailureKind = "timeout"
	KindNotFound    FailureKind = "not_found"
	KindDecode      FailureKind = "decode"
	KindStorage     FailureKind = "storage"
)

// Failure is a typed error carried to the rendering layer.
type Failure struct {
	Kind   FailureKind
	Source string
	Err    error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s: %s", f.Source, f.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", f.Source, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// NewFailure builds a Failure, classifying timeouts from the cause.
func NewFailure(source string, kind FailureKind, err error) *Failure {
	if kind == KindUnavailable && isTimeout(err) {
		kind = KindTimeout
	}
	return &Failure{Kind: kind, Source: source, Err: err}
}

// KindOf reports the FailureKind of err, or "" when err is not a Failure.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Result carries either a value or the failure that prevented it.
type Result[T any] struct {
	Value T
	Err   error
}

// Ok reports whether the result holds data.
func (r Result[T]) Ok() bool { return r.Err == nil }

// ResultOf pairs a value with its error.
func ResultOf[T any](v T, err error) Result[T] {
	return Result[T]{Value: v, Err: err}
}

/*
Copyright © 2024 the InMAP authors.
This file is part of tpoint.

tpoint is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

tpoint is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with tpoint.  If not, see <http://www.gnu.org/licenses/>.
*/

package tpoint

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the errors returned by this package.
type ErrorKind int

const (
	// InvalidArgument is a malformed or mismatched input, such as an empty
	// geometry or a spatial reference that differs from the trajectory's.
	InvalidArgument ErrorKind = iota + 1

	// UnsupportedGeometry is an intersection result that is not made of
	// points and lines.
	UnsupportedGeometry

	// InternalInvariantViolation means a computed point could not be
	// located on the segment it was derived from.
	InternalInvariantViolation
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case UnsupportedGeometry:
		return "unsupported geometry"
	case InternalInvariantViolation:
		return "internal invariant violation"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// These sentinels match any *Error of the corresponding kind
// when used with errors.Is.
var (
	ErrInvalidArgument     = &Error{Kind: InvalidArgument}
	ErrUnsupportedGeometry = &Error{Kind: UnsupportedGeometry}
	ErrInternal            = &Error{Kind: InternalInvariantViolation}
)

// Error is the error type returned by the restriction and simplification
// operations.
type Error struct {
	Kind ErrorKind
	// Op is the operation that failed.
	Op  string
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return "tpoint: " + e.Kind.String()
	case e.Err == nil:
		return fmt.Sprintf("tpoint: %s: %s", e.Op, e.Kind)
	case e.Op == "":
		return fmt.Sprintf("tpoint: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("tpoint: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind with no
// operation or cause, which is how the sentinel values are defined.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

func invalidArgf(op, format string, args ...interface{}) error {
	return &Error{Kind: InvalidArgument, Op: op, Err: fmt.Errorf(format, args...)}
}

func internalf(op, format string, args ...interface{}) error {
	return &Error{Kind: InternalInvariantViolation, Op: op, Err: fmt.Errorf(format, args...)}
}

// kindOf returns the kind of err, or 0 if err is not an *Error.
func kindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

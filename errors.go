/*
 * errors.go, part of gopmhc.
 *
 *
 * Copyright 2024 The gopmhc authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package pmhc

import (
	"fmt"
	"strings"
)

//Kind classifies the errors that can happen while cleaning structures or
//selecting templates. None of them is fatal, all are reported per item.
type Kind int

const (
	//KindUnknown is the zero value, used only for errors that are not one of the below.
	KindUnknown Kind = iota
	//MalformedInput: missing, empty or unparsable source files or records.
	MalformedInput
	//AmbiguousStructure: peptide/receptor chains or alleles can't be resolved.
	AmbiguousStructure
	//ValidationFailure: a structural sanity rule is violated.
	ValidationFailure
	//NoCandidate: the template pool for a target is empty.
	NoCandidate
)

func (K Kind) String() string {
	switch K {
	case MalformedInput:
		return "malformed input"
	case AmbiguousStructure:
		return "ambiguous structure"
	case ValidationFailure:
		return "validation failure"
	case NoCandidate:
		return "no candidate"
	}
	return "unknown"
}

//Sentinels to be used with errors.Is. They match any *Error of the same Kind.
var (
	ErrMalformedInput     = &Error{kind: MalformedInput}
	ErrAmbiguousStructure = &Error{kind: AmbiguousStructure}
	ErrValidationFailure  = &Error{kind: ValidationFailure}
	ErrNoCandidate        = &Error{kind: NoCandidate}
)

//Error is the error type returned by this library. Like the goChem errors, it can be
//"decorated" with the names of the functions it went through, without wrapping it.
type Error struct {
	kind    Kind
	message string
	id      string //the structure or target the error refers to, if any.
	deco    []string
	err     error //the underlying error, if any
}

//NewError returns a new *Error of the given kind, refering to the structure or target
//id (which can be empty) with the given message.
func NewError(kind Kind, id, message string) *Error {
	return &Error{kind: kind, id: id, message: message}
}

//Errorf is NewError with a format string. If one of the arguments is an error and the %w
//directive is used, the error is kept as the underlying one.
func Errorf(kind Kind, id, format string, a ...interface{}) *Error {
	wrapped := fmt.Errorf(format, a...)
	E := &Error{kind: kind, id: id, message: wrapped.Error()}
	if u, ok := wrapped.(interface{ Unwrap() error }); ok {
		E.err = u.Unwrap()
	}
	return E
}

//Error returns a string with an error message.
func (E *Error) Error() string {
	if E.id == "" {
		return E.message
	}
	return fmt.Sprintf("%s: %s", E.id, E.message)
}

//Reason returns only the message, without the id. The cleaner logs this.
func (E *Error) Reason() string { return E.message }

//Kind returns the kind of the error.
func (E *Error) Kind() Kind { return E.kind }

//ID returns the id of the structure or target the error refers to.
func (E *Error) ID() string { return E.id }

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice. An empty dec only returns the current slice.
func (E *Error) Decorate(dec string) []string {
	if dec != "" {
		E.deco = append(E.deco, dec)
	}
	return E.deco
}

//Trace returns the decoration as a single string, innermost call first.
func (E *Error) Trace() string {
	return strings.Join(E.deco, " <- ")
}

//Is reports whether target is an *Error of the same Kind. That is what makes
//errors.Is(err, ErrNoCandidate) work.
func (E *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.kind == E.kind
}

//Unwrap returns the underlying error, if any.
func (E *Error) Unwrap() error { return E.err }

//errDecorate decorates err with the caller's name if it is an *Error, and returns it.
//Other errors are returned unchanged.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		e.Decorate(caller)
	}
	return err
}

//Decorate is errDecorate for the other packages of this library.
func Decorate(err error, caller string) error {
	return errDecorate(err, caller)
}

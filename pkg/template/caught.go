// Copyright 2026 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"
	"strings"
)

// Cause labels classify what a caught exception meant for the run.
const (
	CauseBranchIgnored    = "BranchIgnored"
	CausePropertyIgnored  = "PropertyIgnored"
	CauseReferenceIgnored = "ReferenceIgnored"
)

// CaughtException is one recoverable failure met while building or
// applying a template. It records the underlying error, where it
// happened (origin) and a short classification (cause). Values are
// immutable: the With methods return copies, and neither origin nor
// cause is ever overwritten once set.
type CaughtException struct {
	err    error
	origin string
	cause  string
}

func NewCaughtException(err error) CaughtException {
	return CaughtException{err: err}
}

// WithOrigin returns a copy carrying the origin, unless one is already
// set, in which case the receiver is returned unchanged.
func (e CaughtException) WithOrigin(origin string) CaughtException {
	if e.origin != "" {
		return e
	}
	return CaughtException{err: e.err, origin: origin, cause: e.cause}
}

// WithCause returns a copy carrying the cause label, unless one is
// already set, in which case the receiver is returned unchanged.
func (e CaughtException) WithCause(cause string) CaughtException {
	if e.cause != "" {
		return e
	}
	return CaughtException{err: e.err, origin: e.origin, cause: cause}
}

func (e CaughtException) Underlying() error { return e.err }
func (e CaughtException) Origin() string    { return e.origin }
func (e CaughtException) Cause() string     { return e.cause }

// Error renders one human-readable line: the message, then the origin
// and cause for the parts that are present.
func (e CaughtException) Error() string {
	msg := ""
	if e.err != nil {
		msg = e.err.Error()
	}
	if e.origin != "" {
		msg += fmt.Sprintf(" (origin: %s)", e.origin)
	}
	if e.cause != "" {
		msg += fmt.Sprintf(" (cause: %s)", e.cause)
	}
	return msg
}

// CaughtExceptions accumulates caught exceptions in the order they were
// recorded. One collection is shared, by reference, across a whole
// build/apply run; adding never fails.
type CaughtExceptions struct {
	items []CaughtException
}

func NewCaughtExceptions() *CaughtExceptions {
	return &CaughtExceptions{}
}

func (es *CaughtExceptions) Add(e CaughtException) {
	es.items = append(es.items, e)
}

func (es *CaughtExceptions) IsEmpty() bool { return len(es.items) == 0 }

func (es *CaughtExceptions) Len() int { return len(es.items) }

// Items returns the recorded exceptions in order; callers must not
// modify the result.
func (es *CaughtExceptions) Items() []CaughtException { return es.items }

// Error renders all recorded exceptions, one line each.
func (es *CaughtExceptions) Error() string {
	lines := make([]string, 0, len(es.items))
	for _, e := range es.items {
		lines = append(lines, "- "+e.Error())
	}
	return strings.Join(lines, "\n")
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the menu management operations.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid input")
)

// ValidationError reports an invalid field value. It matches ErrInvalid.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports ErrInvalid as the error's kind.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

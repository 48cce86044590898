// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "errors"

// Error taxonomy shared by the tracker, identity and store packages.
// Callers wrap these with fmt.Errorf("%w: ...") and match with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrAuth         = errors.New("authentication failed")
	ErrStore        = errors.New("state store unavailable")
	ErrNoSession    = errors.New("no active session")
)

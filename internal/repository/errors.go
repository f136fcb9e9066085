// Package repository provides data access layer for the QC Ordinance Tracker.
// This file defines the error taxonomy shared by all repositories.
package repository

import "errors"

// ErrStoreUnavailable wraps connection or query failures on read paths.
// Handlers treat it as a non-recoverable page error; nothing is retried.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrTransactionFailed wraps any failure inside a multi-statement write
// sequence. The sequence is rolled back as a whole before this is returned,
// so callers never observe a partial write.
var ErrTransactionFailed = errors.New("transaction failed")

package models

import (
	"context"
	"errors"
	"fmt"
)

// Error codes carried by ScrapeError and surfaced in failure bodies.
const (
	ErrCodeTimeout      = "SCRAPE_TIMEOUT"
	ErrCodeNavigation   = "NAVIGATION_FAILED"
	ErrCodeBrowserCrash = "BROWSER_CRASH"
	ErrCodeSiteFailed   = "SITE_FAILED"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeAlertStore   = "ALERT_STORE_FAILED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ScrapeError is an error with a stable code. Err, when set, is the
// underlying cause and is reachable through errors.Is / errors.As.
type ScrapeError struct {
	Code    string
	Message string
	Err     error
}

func (e *ScrapeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// NewSiteError wraps the reason a whole site produced nothing.
func NewSiteError(site string, err error) *ScrapeError {
	return NewScrapeError(ErrCodeSiteFailed, site+" produced no results", err)
}

// Categorize returns err as a ScrapeError. Existing ScrapeErrors in the
// chain win; a bare deadline becomes ErrCodeTimeout and anything else
// ErrCodeInternal.
func Categorize(err error) *ScrapeError {
	if err == nil {
		return nil
	}
	var se *ScrapeError
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewScrapeError(ErrCodeTimeout, "request deadline exceeded", err)
	}
	return NewScrapeError(ErrCodeInternal, "unexpected error", err)
}

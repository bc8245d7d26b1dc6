package domain

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration    = errors.New("configuration error")
	ErrTemplateMissing  = errors.New("template file not found")
	ErrRunInProgress    = errors.New("run already in progress")
	ErrInvalidSchedule  = errors.New("invalid schedule")
	ErrScheduleNotFound = errors.New("schedule config not found")
)

// FetchError is returned when neither the contact list nor the contact
// search request succeeded. Raw holds the provider's last response body.
type FetchError struct {
	ListErr   error
	SearchErr error
	Raw       string
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch error: list contacts: %v; search contacts: %v", e.ListErr, e.SearchErr)
	if e.Raw != "" {
		msg += "; provider response: " + e.Raw
	}
	return msg
}

func (e *FetchError) Unwrap() []error {
	return []error{e.ListErr, e.SearchErr}
}

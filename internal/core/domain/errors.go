package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates no matching entity exists at any layer.
	ErrNotFound = errors.New("domain: not found")
	// ErrAmbiguousMatch indicates a low-confidence provider identification.
	ErrAmbiguousMatch = errors.New("domain: ambiguous match")
	// ErrIncompleteRecord indicates a durable row is missing fields required to proceed.
	ErrIncompleteRecord = errors.New("domain: incomplete record")
	// ErrProviderUnavailable indicates an upstream provider answered with a non-success response.
	ErrProviderUnavailable = errors.New("domain: provider unavailable")
	// ErrDetailScraperBlocked indicates the detail scraper refused the request.
	ErrDetailScraperBlocked = errors.New("domain: detail scraper blocked")
)

// ProviderError carries the upstream status of a failed provider call.
type ProviderError struct {
	Provider string
	Status   int
}

func (e *ProviderError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Provider, ErrProviderUnavailable.Error())
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.Status)
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrProviderUnavailable
}

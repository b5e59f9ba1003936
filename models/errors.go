package models

import (
	"fmt"
)

// ConfigurationError reports a missing or invalid setting, such as the API credential
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Setting, e.Reason)
}

// NotFoundError reports a geocoding lookup with no match or a failed lookup.
// Err holds the provider failure, if any.
type NotFoundError struct {
	Query string
	Err   error
}

func (e *NotFoundError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("could not find location data for %q", e.Query)
	}
	return fmt.Sprintf("could not find location data for %q: %v", e.Query, e.Err)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// UpstreamError reports a non-success status from a provider endpoint
type UpstreamError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s failed with status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s failed with status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// DataFormatError reports provider data that does not match the expected shape
type DataFormatError struct {
	Source string
	Index  int // entry index, -1 when not applicable
	Reason string
}

func (e *DataFormatError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed %s data: %s", e.Source, e.Reason)
	}
	return fmt.Sprintf("malformed %s data at entry %d: %s", e.Source, e.Index, e.Reason)
}

// LookupMissError reports a static table without an entry for a received code
type LookupMissError struct {
	Table string
	Key   string
}

func (e *LookupMissError) Error() string {
	return fmt.Sprintf("no %s entry for %q", e.Table, e.Key)
}

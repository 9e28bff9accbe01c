package client

import (
	"errors"
	"fmt"
)

// FetchErrorKind classifies why a document could not be fetched
type FetchErrorKind string

const (
	// KindNetwork covers transport failures and cancelled requests
	KindNetwork FetchErrorKind = "network"
	// KindTimeout is a request that exceeded its deadline
	KindTimeout FetchErrorKind = "timeout"
	// KindStatus is a non-success or otherwise malformed response
	KindStatus FetchErrorKind = "status"
	// KindParse is a body that could not be decoded or parsed as HTML
	KindParse FetchErrorKind = "parse"
)

// FetchError is the failure half of a fetch: always tagged with the URL and cause
type FetchError struct {
	Kind FetchErrorKind
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Kind, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func newFetchError(kind FetchErrorKind, url string, err error) *FetchError {
	return &FetchError{Kind: kind, URL: url, Err: err}
}

// IsFetchKind reports whether err is a FetchError of the given kind
func IsFetchKind(err error, kind FetchErrorKind) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr) && fetchErr.Kind == kind
}

// Structural failures of the landing and listing pages
var (
	ErrNoRoot               = errors.New("category root container not found")
	ErrEmptyTaxonomy        = errors.New("no primary categories found")
	ErrMalformedPrimary     = errors.New("primary category heading has no link")
	ErrDuplicatePrimary     = errors.New("duplicate primary category name")
	ErrUnrecognizedSection  = errors.New("high section is not in a recognized shape")
	ErrSectionCountMismatch = errors.New("high section count does not match primary category count")
	ErrNoPagination         = errors.New("pagination summary not found")
	ErrCorruptSection       = errors.New("product section has no item block")
)

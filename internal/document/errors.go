package document

import "errors"

// Sentinel errors for document operations.
var (
	// ErrUnknownUnits indicates an unsupported measurement unit name.
	ErrUnknownUnits = errors.New("unknown measurement units")
	// ErrPageNotFound indicates a page number outside the document.
	ErrPageNotFound = errors.New("page does not exist")
	// ErrLastPage indicates an attempt to remove the only page.
	ErrLastPage = errors.New("cannot remove the last page")
	// ErrInvalidLocation indicates an unknown page insertion location.
	ErrInvalidLocation = errors.New("invalid page location")
	// ErrInvalidItem indicates use of a nil or removed item.
	ErrInvalidItem = errors.New("item is not a valid page item")
	// ErrInvalidSettings indicates unusable document settings.
	ErrInvalidSettings = errors.New("invalid document settings")
	// ErrNotImage indicates an image operation on a non-image item.
	ErrNotImage = errors.New("item is not an image frame")
	// ErrNotFrame indicates placing content into an item that cannot hold it.
	ErrNotFrame = errors.New("item is not a rectangle or oval")
)

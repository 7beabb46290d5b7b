package field

import "errors"

// Domain errors for field construction.
var (
	// ErrSourceCount indicates a simulation built with other than SourceCount sources.
	ErrSourceCount = errors.New("field: simulation requires exactly 4 sources")

	// ErrSourceSize indicates a source weight outside the valid size range.
	ErrSourceSize = errors.New("field: source size out of range")
)

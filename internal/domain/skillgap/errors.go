package skillgap

import "errors"

var (
	ErrEmptyDictionary       = errors.New("skill dictionary is empty")
	ErrNoRequirements        = errors.New("role has no requirements")
	ErrMalformedRequirement  = errors.New("malformed requirement")
	ErrMarketDataUnavailable = errors.New("market data unavailable")
	ErrInsufficientText      = errors.New("insufficient text")
)

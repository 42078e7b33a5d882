package layout

import "errors"

// Sentinel error kinds for the engine. Both indicate programmer errors.
var (
	ErrInvalidConfig    = errors.New("invalid engine config")
	ErrInvalidTransform = errors.New("invalid zoom transform")
)

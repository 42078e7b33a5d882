package frames

import "errors"

// ErrNoFrame is returned when no frame has been published yet.
var ErrNoFrame = errors.New("no frame published yet")

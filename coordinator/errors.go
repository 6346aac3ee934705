package coordinator

import "errors"

var (
	// ErrStateRequired is returned when NowPlaying is requested without a
	// playback state to show.
	ErrStateRequired = errors.New("mode requires playback state")
	ErrUnknownMode   = errors.New("unknown mode")
	ErrNoController  = errors.New("no view controller registered for mode")
)

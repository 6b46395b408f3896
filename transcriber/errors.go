package transcriber

import (
	"errors"
	"fmt"
)

// ErrNoSpeech means the service answered but found nothing it could
// transcribe in the audio.
var ErrNoSpeech = errors.New("no speech recognized")

// ServiceError is a failed round trip to a recognition service: a transport
// failure (StatusCode 0), a non-success status, or an unreadable response.
type ServiceError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *ServiceError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s API error %d: %v", e.Provider, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, truncate(e.Body, 200))
	default:
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	}
}

func (e *ServiceError) Unwrap() error { return e.Err }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

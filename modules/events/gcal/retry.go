package gcal

import (
	"errors"
	"net/url"

	"google.golang.org/api/googleapi"

	"go-event-cms/core/logger"
)

// One automatic retry on a transient failure; a second consecutive failure
// is reported to the caller.
const maxAttempts = 2

func withRetry(op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil || !isTransient(err) {
			return err
		}
		if attempt < maxAttempts {
			logger.Warn("GCalClient:"+op+":TransientRetry", "error", err)
		}
	}
	return err
}

// isTransient reports whether the failure is the kind worth one retry:
// a broken connection / malformed response, or a 5xx from the service.
func isTransient(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 500
	}
	return false
}

// isNotFound reports whether the remote resource no longer exists. Google
// answers 404 for unknown ids and 410 for previously deleted events.
func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 404 || apiErr.Code == 410
	}
	return false
}

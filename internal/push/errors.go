package push

import "errors"

// The error kinds below are distinct because the caller's remediation
// differs: an unsupported browser, a missing home-screen install, a denied
// permission and a timed-out prompt each call for a different message.
var (
	ErrUnsupported       = errors.New("push is not supported in this browser")
	ErrNeedsInstall      = errors.New("install the app to the home screen to enable notifications")
	ErrPermissionDenied  = errors.New("notification permission was denied; enable it in the browser settings")
	ErrPermissionTimeout = errors.New("the permission prompt did not respond in time")
)

package push

import "context"

// PermissionState mirrors the platform notification-permission states.
type PermissionState int

const (
	PermissionDefault PermissionState = iota
	PermissionGranted
	PermissionDenied
)

// Registration is the platform-issued endpoint descriptor: the opaque push
// service URL plus the client key material.
type Registration struct {
	Endpoint string
	P256DH   string
	Auth     string
}

// Platform abstracts the runtime's push and notification APIs. The rest of
// the package never touches platform specifics directly.
type Platform interface {
	// SupportsPush reports whether the permission and registration APIs
	// exist at all.
	SupportsPush() bool
	// Restricted reports an iOS-family platform where background push is
	// disallowed outside installed mode.
	Restricted() bool
	// Standalone reports installed/standalone display mode.
	Standalone() bool

	// Permission returns the current state without prompting.
	Permission() PermissionState
	// RequestPermission shows the prompt. The underlying call has no
	// guaranteed-return contract; callers must wrap it with a timeout.
	RequestPermission(ctx context.Context) (PermissionState, error)

	// Registration returns the existing live registration, or nil when
	// there is none.
	Registration(ctx context.Context) (*Registration, error)
	// Register creates a new registration using the binary application key.
	Register(ctx context.Context, applicationKey []byte) (*Registration, error)
	// Unregister tears down the current registration, if any.
	Unregister(ctx context.Context) error
}

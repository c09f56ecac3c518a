package store

import "errors"

var (
	// ErrNotAuthenticated is returned when an operation needs a signed-in user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionLoading is returned while the persisted session is still being restored.
	ErrSessionLoading = errors.New("session is loading")
	// ErrUserNotFound is returned by authenticators for unknown user ids.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned by authenticators for rejected logins or registrations.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrPostNotFound is returned by backends when the target post does not exist.
	// The content store treats it as a no-op, not a failure.
	ErrPostNotFound = errors.New("post not found")
	// ErrMarkerNotFound is returned by marker stores when no marker is saved.
	ErrMarkerNotFound = errors.New("session marker not found")
	// ErrSimulatedFailure is produced by failure policies of the mock backends.
	ErrSimulatedFailure = errors.New("simulated backend failure")
)

// User-visible error messages kept in ContentState.Error.
const (
	MsgFetchFailed   = "Failed to fetch posts. Please try again."
	MsgCreateFailed  = "Failed to create post. Please try again."
	MsgCommentFailed = "Failed to add comment. Please try again."
	MsgDeleteFailed  = "Failed to delete post. Please try again."
	MsgShareFailed   = "Failed to share post. Please try again."
)

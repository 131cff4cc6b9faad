package services

import "errors"

// Validation errors surfaced directly to the caller. None are retried.
var (
	ErrSelfFollow           = errors.New("cannot follow yourself")
	ErrSelfBlock            = errors.New("cannot block yourself")
	ErrUserNotFound         = errors.New("user not found")
	ErrEdgeNotFound         = errors.New("follow request not found")
	ErrPostNotFound         = errors.New("post not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrAlreadyFollowing     = errors.New("already following this user")
	ErrDuplicateRequest     = errors.New("a pending follow request already exists")
	ErrAlreadyBlocked       = errors.New("user is already blocked")
	ErrNotBlocked           = errors.New("user is not blocked")
	ErrInvalidState         = errors.New("follow request is not pending")
	ErrNotAuthorized        = errors.New("not authorized to perform this action")
)

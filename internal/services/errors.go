package services

import "errors"

// Conflict family: invariant violations surfaced to handlers as 409.
var (
	ErrActiveTimeTrack   = errors.New("active time tracking already exists for this task")
	ErrNoActiveTimeTrack = errors.New("no active time tracking found for this task")
	ErrRecurringExists   = errors.New("recurring rule already exists for this task")
	ErrTelegramLinked    = errors.New("user already has a connected telegram account")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already exists")
)

// ErrForbidden marks entities that exist but belong to another user.
// Missing entities surface as gorm.ErrRecordNotFound.
var ErrForbidden = errors.New("not enough permissions")

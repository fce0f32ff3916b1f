package domain

import "errors"

// Pre-defined errors for domain-specific validation.
var (
	ErrTitleRequired           = errors.New("title is required")
	ErrTitleTooLong            = errors.New("title exceeds maximum length")
	ErrDescriptionTooLong      = errors.New("description exceeds maximum length")
	ErrInvalidStatus           = errors.New("invalid task status")
	ErrInvalidPriority         = errors.New("invalid task priority")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrTaskAlreadyCompleted    = errors.New("task is already completed")
	ErrTooManyTags             = errors.New("too many tags")

	ErrNameRequired         = errors.New("name is required")
	ErrNameTooLong          = errors.New("name exceeds maximum length")
	ErrInvalidProjectStatus = errors.New("invalid project status")
	ErrInvalidColor         = errors.New("color must be a hex value like #4F46E5")
)

package usecase

import "errors"

// Sentinel errors for caller input rejected at the use case boundary
var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrInvalidLimit   = errors.New("limit is out of range")
	ErrTaskNotFound   = errors.New("task not found")
	ErrInvalidAnswers = errors.New("at least one answer is required")
	ErrInvalidUserID  = errors.New("user id is required")
)

// Context keys for error values
const (
	UserIDKey = "user_id"
	DateKey   = "date"
	TaskIDKey = "task_id"
)

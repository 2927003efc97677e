package service

import "errors"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskExists         = errors.New("task id already exists")
	ErrInvalidTaskID      = errors.New("task id must not contain '/'")
	ErrCategoryNotFound   = errors.New("category not found")
)

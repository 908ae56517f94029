package resumes

import "errors"

var (
	ErrNotFound      = errors.New("resume not found")
	ErrAlreadyExists = errors.New("resume already exists for owner")
	ErrOwnerNotFound = errors.New("resume owner not found")
)

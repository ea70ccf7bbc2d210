package controllers

import "errors"

var (
	ErrNoUserSelected     = errors.New("no user selected")
	ErrNoCategorySelected = errors.New("no category selected")
	ErrUnknownUser        = errors.New("user is not in the loaded list")
	ErrUnknownCategory    = errors.New("category is not available for the selected user")
	ErrUnknownDocument    = errors.New("document is not in the selected category")
	ErrSuperseded         = errors.New("superseded by a newer navigation")
	ErrRecordNotLoaded    = errors.New("record is not in the loaded list")
)

// UploadError reports one file of a batch that the collaborator did not accept.
type UploadError struct {
	File string
	Err  error
}

func (e *UploadError) Error() string {
	return "upload " + e.File + ": " + e.Err.Error()
}

func (e *UploadError) Unwrap() error { return e.Err }

package service

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDocumentsExpired = errors.New("subcontractor documents expired")
	ErrNothingToCertify = errors.New("no progress to certify for the period")
)

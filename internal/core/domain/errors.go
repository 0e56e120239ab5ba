package domain

import "errors"

var (
	ErrCameraNotFound   = errors.New("camera not found")
	ErrDirectorNotFound = errors.New("director not found")
	ErrViewerNotFound   = errors.New("viewer not found")
)

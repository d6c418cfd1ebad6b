package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEditorNotFound     = errors.New("editor not found")
	ErrEditorExists       = errors.New("editor exists")

	ErrInvalidToken = errors.New("invalid token")

	ErrSessionNotFound = errors.New("session not found")
	ErrVersionNotFound = errors.New("version not found")
	ErrSourceNotFound  = errors.New("source not found")
	// ErrSourceAmbiguous is returned when "original" is requested
	// for a session holding more than one registered source.
	ErrSourceAmbiguous = errors.New("several sources registered, explicit source id required")

	ErrTranscriptUnavailable = errors.New("transcript unavailable")
	ErrSegmentConfig         = errors.New("invalid segment configuration")
	ErrExecutorFailed        = errors.New("media executor failed")
)

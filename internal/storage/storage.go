package storage

import "errors"

var (
	ErrEditorExists   = errors.New("editor exists")
	ErrEditorNotFound = errors.New("editor not found")

	ErrSessionExists   = errors.New("session exists")
	ErrSessionNotFound = errors.New("session not found")
	ErrSourceNotFound  = errors.New("source not found")
	ErrVersionNotFound = errors.New("version not found")
)

package database

import "errors"

var (
	// ErrNoSnapshot is returned by LoadSnapshot before the first save
	ErrNoSnapshot = errors.New("no saved board state")

	// ErrSnapshotConflict is returned by SaveSnapshot when the stored state
	// was saved by someone else since it was loaded
	ErrSnapshotConflict = errors.New("board state changed since it was loaded")

	// ErrCardNotFound is returned when a mirrored card does not exist
	ErrCardNotFound = errors.New("card not found")

	// ErrJobNotFound is returned when an automation job does not exist
	ErrJobNotFound = errors.New("automation job not found")
)

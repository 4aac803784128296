package ingest

import (
	"errors"
	"net/http"
)

var (
	// ErrEmptyArchive indicates an uploaded archive with no entries.
	ErrEmptyArchive = errors.New("archive contains no files")
	// ErrInvalidArchive indicates the upload could not be read as a ZIP archive.
	ErrInvalidArchive = errors.New("invalid zip archive")
	// ErrUnsafePath indicates an archive entry that would escape the session folder.
	ErrUnsafePath = errors.New("archive entry path escapes extraction folder")
	// ErrNoDocuments indicates a session folder with no PDF documents.
	ErrNoDocuments = errors.New("no pdf documents found")
)

// MapHTTPStatus maps ingest errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrEmptyArchive),
		errors.Is(err, ErrInvalidArchive),
		errors.Is(err, ErrUnsafePath):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoDocuments):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

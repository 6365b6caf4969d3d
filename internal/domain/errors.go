package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrImportNotFound      = errors.New("import not found")
	ErrImportFinalized     = errors.New("import already finalized")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrMalformedDocument   = errors.New("malformed estimate document")
	ErrTenantScopeMissing  = errors.New("tenant scope required")
	ErrInvalidTenantID     = errors.New("invalid tenant id")
	ErrEmptyContent        = errors.New("document content is empty")
	ErrStorageUnavailable  = errors.New("object storage not configured")
)

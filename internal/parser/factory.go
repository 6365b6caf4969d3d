package parser

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"collisionos/internal/domain"
	"collisionos/internal/port"
)

// Factory creates a DocumentParser for one file type.
type Factory func() port.DocumentParser

// registry of format parsers, populated by init() in each format package
// or explicitly via Register.
var (
	mu       sync.RWMutex
	registry = map[domain.FileType]Factory{}
)

// Register registers a parser factory for a file type.
func Register(fileType domain.FileType, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[fileType] = factory
}

// New creates the DocumentParser registered for fileType.
func New(fileType domain.FileType) (port.DocumentParser, error) {
	mu.RLock()
	factory, ok := registry[fileType]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, fileType)
	}
	return factory(), nil
}

// DetectFileType resolves the format of a document. The file extension
// decides when it is known; otherwise a leading '<' selects BMS and any
// other non-empty content selects EMS.
func DetectFileType(fileName string, content []byte) (domain.FileType, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if ft, ok := domain.AllowedExtensions[ext]; ok {
		return ft, nil
	}

	trimmed := bytes.TrimSpace(bytes.TrimPrefix(content, utf8BOM))
	if len(trimmed) == 0 {
		return "", fmt.Errorf("%w: cannot detect format of %q", domain.ErrUnsupportedFileType, fileName)
	}
	if trimmed[0] == '<' {
		return domain.FileTypeBMS, nil
	}
	return domain.FileTypeEMS, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// StripBOM removes a leading UTF-8 byte order mark.
func StripBOM(content []byte) []byte {
	return bytes.TrimPrefix(content, utf8BOM)
}

package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collisionos/internal/domain"
	"collisionos/internal/estimate"
	"collisionos/internal/parser"
	"collisionos/internal/port"
)

// stubParser is a minimal DocumentParser for testing the registry.
type stubParser struct{}

func (s *stubParser) Parse(_ []byte) (*estimate.ParsedDocument, error) {
	return &estimate.ParsedDocument{}, nil
}

func TestRegistry_RegisterAndCreate(t *testing.T) {
	ft := domain.FileType("test-format")
	parser.Register(ft, func() port.DocumentParser { return &stubParser{} })

	p, err := parser.New(ft)
	require.NoError(t, err)
	assert.IsType(t, &stubParser{}, p)
}

func TestRegistry_UnknownFileType(t *testing.T) {
	p, err := parser.New(domain.FileType("nonexistent-format"))

	assert.Nil(t, p)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		content  string
		want     domain.FileType
		wantErr  bool
	}{
		{"xml extension", "estimate.XML", "", domain.FileTypeBMS, false},
		{"bms extension", "a.bms", "CUST|x=1", domain.FileTypeBMS, false},
		{"ems extension", "a.ems", "<x/>", domain.FileTypeEMS, false},
		{"txt extension", "a.txt", "", domain.FileTypeEMS, false},
		{"csv extension", "a.csv", "", domain.FileTypeEMS, false},
		{"sniff xml", "upload.dat", "  <?xml version=\"1.0\"?><E/>", domain.FileTypeBMS, false},
		{"sniff xml with bom", "upload", "\xEF\xBB\xBF<E/>", domain.FileTypeBMS, false},
		{"sniff text", "upload", "CUST|fname=A", domain.FileTypeEMS, false},
		{"nothing to sniff", "upload", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.DetectFileType(tt.fileName, []byte(tt.content))
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

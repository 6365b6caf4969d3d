package parser

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// CharsetReader converts content declared in a non-UTF-8 charset to UTF-8.
// It matches the signature of xml.Decoder.CharsetReader.
func CharsetReader(label string, input io.Reader) (io.Reader, error) {
	name := strings.ToLower(strings.TrimSpace(label))
	if name == "" || name == "utf-8" || name == "utf8" {
		return input, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}

// ToUTF8 returns content unchanged when it is valid UTF-8 and otherwise
// decodes it as Windows-1252, the usual encoding of shop-system exports.
func ToUTF8(content []byte) []byte {
	if utf8.Valid(content) {
		return content
	}
	out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), content)
	if err != nil {
		return content
	}
	return out
}

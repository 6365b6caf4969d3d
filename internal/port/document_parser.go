package port

import "collisionos/internal/estimate"

// DocumentParser turns raw estimate content of one format into the
// intermediate parse tree. Implementations are pure.
type DocumentParser interface {
	Parse(content []byte) (*estimate.ParsedDocument, error)
}

package extract

import "github.com/ppiankov/decisync/internal/model"

// Extractor reads the decision fields out of a page body.
// Callers depend on this interface so the pattern-based implementation can
// be replaced by a full parser without touching them.
type Extractor interface {
	Status(body string) string
	Classification(body string) model.Classification
	SummaryBullets(body string) []string
}

// StorageExtractor implements Extractor for Confluence storage-format bodies
type StorageExtractor struct {
	*FieldExtractor
	*SectionExtractor
}

// NewStorageExtractor creates an extractor for storage-format bodies
func NewStorageExtractor() *StorageExtractor {
	return &StorageExtractor{
		FieldExtractor:   NewFieldExtractor(),
		SectionExtractor: NewSectionExtractor(),
	}
}

var _ Extractor = (*StorageExtractor)(nil)

package db

import "fmt"

// IndexFieldType enumerates FT schema field types.
type IndexFieldType string

// FT schema field types.
const (
	IndexFieldTag     IndexFieldType = "TAG"
	IndexFieldNumeric IndexFieldType = "NUMERIC"
	IndexFieldVector  IndexFieldType = "VECTOR"
)

// IndexField is one FT schema field.
type IndexField struct {
	Name         string
	Type         IndexFieldType
	TagSeparator string
	// VECTOR (HNSW) parameters.
	VectorDim         int
	VectorM           int
	VectorEFConstruct int
}

// IndexDefinition describes an FT index over hash keys.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Validate checks the definition for obvious mistakes.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return fmt.Errorf("index name is required")
	}
	if len(idx.Fields) == 0 {
		return fmt.Errorf("at least one field is required")
	}
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("field %d: name is required", i)
		}
		if f.Type == IndexFieldVector && f.VectorDim <= 0 {
			return fmt.Errorf("field %q: vector dimension must be positive", f.Name)
		}
	}
	return nil
}

package domain

// TextField is the single analysed field every index entry carries.
const TextField = "text"

// FieldType describes how the search engine treats a field.
type FieldType string

const (
	// FieldTypeText is a full-text analysed field.
	FieldTypeText FieldType = "text"
)

// IndexSchema describes the fields of the target index.
type IndexSchema struct {
	Fields map[string]FieldType
}

// DefaultIndexSchema returns the fixed single-field schema.
// The index is created with this schema once and never altered afterwards.
func DefaultIndexSchema() IndexSchema {
	return IndexSchema{
		Fields: map[string]FieldType{
			TextField: FieldTypeText,
		},
	}
}

// EngineInfo describes the search engine a run is connected to.
type EngineInfo struct {
	// Name is the product name (e.g. "elasticsearch", "bleve").
	Name string

	// Version is the engine version string.
	Version string

	// Cluster is the cluster name, when the engine reports one.
	Cluster string
}

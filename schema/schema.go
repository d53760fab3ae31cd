package schema

import "strings"

type (
	// TableKind determines how the servers store and interpret rows. Document
	// tables carry a caller-built schema; key/value and transaction status
	// tables get a trivial schema synthesized by the client.
	TableKind string

	ColumnType string

	Column struct {
		Name    string     `json:"name"`
		Type    ColumnType `json:"type"`
		NotNull bool       `json:"not_null,omitempty"`
		// HashKey marks the column as part of the hash partition key
		HashKey bool `json:"hash_key,omitempty"`
		// RangeKey marks the column as part of the range (sort) key
		RangeKey bool `json:"range_key,omitempty"`
	}

	// TableProperties are schema-scoped knobs that travel with the schema
	// rather than the create request
	TableProperties struct {
		// NumTablets is a hint for the initial tablet count, 0 means unset
		NumTablets int32 `json:"num_tablets,omitempty"`
	}

	Schema struct {
		Columns    []Column        `json:"columns"`
		Properties TableProperties `json:"properties,omitempty"`
	}
)

const (
	KindDocument          TableKind = "DOCUMENT"
	KindKeyValue          TableKind = "KEY_VALUE"
	KindTransactionStatus TableKind = "TRANSACTION_STATUS"
)

const (
	TypeBinary ColumnType = "BINARY"
	TypeString ColumnType = "STRING"
	TypeInt64  ColumnType = "INT64"
	TypeBool   ColumnType = "BOOL"
)

// KeyValueKeyColumnName is the single column of a synthesized key/value schema
const KeyValueKeyColumnName = "key"

// SystemNamespace holds the cluster's own bookkeeping tables, which are always
// created with a single tablet
const SystemNamespace = "system"

// SchemaLess reports whether the kind takes a client-synthesized schema
// instead of a caller-supplied one
func SchemaLess(kind TableKind) bool {
	return kind == KindKeyValue || kind == KindTransactionStatus
}

// NewKeyValueSchema synthesizes the minimal schema used for key/value and
// transaction status tables: one not-null binary column that is the entire
// hash partition key.
func NewKeyValueSchema() *Schema {
	return &Schema{
		Columns: []Column{
			{
				Name:    KeyValueKeyColumnName,
				Type:    TypeBinary,
				NotNull: true,
				HashKey: true,
			},
		},
	}
}

type TableName struct {
	Namespace string
	Name      string
}

func NewTableName(namespace, name string) TableName {
	return TableName{Namespace: namespace, Name: name}
}

func (tn TableName) FullName() string {
	if tn.Namespace == "" {
		return tn.Name
	}
	return tn.Namespace + "." + tn.Name
}

// IsSystem reports whether the table lives in the system namespace
func (tn TableName) IsSystem() bool {
	return tn.Namespace == SystemNamespace || strings.HasPrefix(tn.Namespace, SystemNamespace+"_")
}

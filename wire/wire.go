// Package wire holds the JSON messages exchanged with the catalog master.
// Optional fields are pointers or omitempty so that "unset" survives the trip:
// the master treats a missing field differently from an explicit zero/false.
package wire

import "github.com/loondb/loon-go/schema"

type HashSchema string

const (
	// MultiColumnHash hashes the concatenation of all hash key columns
	MultiColumnHash HashSchema = "MULTI_COLUMN_HASH"
	// KeyValueHash hashes the single key column of a key/value table
	KeyValueHash HashSchema = "KEY_VALUE_HASH"
	// SQLHash is the hash used by the SQL layer's own tables
	SQLHash HashSchema = "SQL_HASH"
)

type (
	// HashBucketSchema is one layer of hash partitioning. Column order is
	// significant, it is the hash input order.
	HashBucketSchema struct {
		Columns    []string `json:"columns" validate:"required,min=1"`
		NumBuckets int32    `json:"num_buckets" validate:"gt=0"`
		Seed       int32    `json:"seed"`
	}

	RangeSchema struct {
		Columns []string `json:"columns"`
	}

	PartitionSchema struct {
		HashSchema        HashSchema         `json:"hash_schema,omitempty"`
		HashBucketSchemas []HashBucketSchema `json:"hash_bucket_schemas,omitempty" validate:"dive"`
		RangeSchema       *RangeSchema       `json:"range_schema,omitempty"`
	}

	// IndexInfo links an index to the table it indexes. A non-empty
	// IndexedTableID is what makes a create request an index creation.
	IndexInfo struct {
		IndexedTableID       string `json:"indexed_table_id"`
		IsLocal              bool   `json:"is_local"`
		IsUnique             bool   `json:"is_unique"`
		UseMangledColumnName bool   `json:"use_mangled_column_name"`
	}

	// ReplicationInfo is passed through to the master untouched, placement
	// validation happens server side
	ReplicationInfo struct {
		NumReplicas     int32            `json:"num_replicas,omitempty"`
		PlacementBlocks []PlacementBlock `json:"placement_blocks,omitempty"`
	}

	PlacementBlock struct {
		Cloud          string `json:"cloud"`
		Region         string `json:"region"`
		Zone           string `json:"zone,omitempty"`
		MinNumReplicas int32  `json:"min_num_replicas"`
	}

	CreateTableRequest struct {
		Name            string           `json:"name" validate:"required"`
		Namespace       string           `json:"namespace,omitempty"`
		TableKind       schema.TableKind `json:"table_kind" validate:"required"`
		TableID         string           `json:"table_id,omitempty"`
		CreatorRoleName string           `json:"creator_role_name,omitempty"`

		// Tri-state: nil means unset, distinct from an explicit false
		IsSysCatalogTable *bool `json:"is_sys_catalog_table,omitempty"`
		IsSharedTable     *bool `json:"is_shared_table,omitempty"`

		Schema          *schema.Schema   `json:"schema" validate:"required"`
		NumTablets      int32            `json:"num_tablets" validate:"gt=0"`
		PartitionSchema PartitionSchema  `json:"partition_schema"`
		ReplicationInfo *ReplicationInfo `json:"replication_info,omitempty"`

		IndexInfo *IndexInfo `json:"index_info,omitempty"`

		// Legacy scalar index fields, written alongside IndexInfo so masters
		// on the previous protocol version can still read the linkage
		IndexedTableID string `json:"indexed_table_id,omitempty"`
		IsLocalIndex   *bool  `json:"is_local_index,omitempty"`
		IsUniqueIndex  *bool  `json:"is_unique_index,omitempty"`
	}

	CreateTableResponse struct {
		TableID string `json:"table_id"`
	}

	TabletCountResponse struct {
		NumTablets int32 `json:"num_tablets"`
	}

	TableReadyResponse struct {
		Ready bool `json:"ready"`
	}

	ErrorResponse struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		// TableID carries the existing table's id on an ALREADY_PRESENT error
		TableID string `json:"table_id,omitempty"`
	}
)

const (
	ErrCodeAlreadyPresent  = "ALREADY_PRESENT"
	ErrCodeInvalidArgument = "INVALID_ARGUMENT"
)

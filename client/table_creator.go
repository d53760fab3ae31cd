package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/loondb/loon-go/schema"
	"github.com/loondb/loon-go/utils"
	"github.com/loondb/loon-go/wire"
)

type (
	// TableCreator accumulates the configuration for one table or secondary
	// index creation and submits it with Create. It is not safe for concurrent
	// use and must not be reused after Create returns.
	TableCreator struct {
		c *Client

		name            schema.TableName
		kind            schema.TableKind
		tableID         string
		creatorRoleName string
		callerSchema    *schema.Schema

		partitionSchema wire.PartitionSchema
		replicationInfo *wire.ReplicationInfo
		index           wire.IndexInfo

		isSysCatalogTable *bool
		isSharedTable     *bool

		numTablets int32
		timeout    time.Duration
		wait       bool

		alreadyExisted bool
	}
)

func (c *Client) NewTableCreator() *TableCreator {
	return &TableCreator{
		c:    c,
		kind: schema.KindDocument,
		partitionSchema: wire.PartitionSchema{
			HashSchema: wire.MultiColumnHash,
		},
		wait: true,
	}
}

func (tc *TableCreator) TableName(name schema.TableName) *TableCreator {
	tc.name = name
	return tc
}

func (tc *TableCreator) TableKind(kind schema.TableKind) *TableCreator {
	tc.kind = kind
	return tc
}

// TableID pre-assigns the table's id instead of letting the master pick one
func (tc *TableCreator) TableID(id string) *TableCreator {
	tc.tableID = id
	return tc
}

func (tc *TableCreator) CreatorRoleName(role string) *TableCreator {
	tc.creatorRoleName = role
	return tc
}

// Schema sets the caller-supplied schema. Must not be called for key/value or
// transaction status tables, those schemas are synthesized by the client.
func (tc *TableCreator) Schema(s *schema.Schema) *TableCreator {
	tc.callerSchema = s
	return tc
}

func (tc *TableCreator) HashSchema(hs wire.HashSchema) *TableCreator {
	tc.partitionSchema.HashSchema = hs
	return tc
}

// AddHashPartitions appends one hash bucket group with seed 0. Call it again
// to stack another independent hash layer on top.
func (tc *TableCreator) AddHashPartitions(columns []string, numBuckets int32) *TableCreator {
	return tc.AddHashPartitionsWithSeed(columns, numBuckets, 0)
}

func (tc *TableCreator) AddHashPartitionsWithSeed(columns []string, numBuckets, seed int32) *TableCreator {
	tc.partitionSchema.HashBucketSchemas = append(tc.partitionSchema.HashBucketSchemas, wire.HashBucketSchema{
		Columns:    columns,
		NumBuckets: numBuckets,
		Seed:       seed,
	})
	return tc
}

// SetRangePartitionColumns replaces any previously set range column list
func (tc *TableCreator) SetRangePartitionColumns(columns []string) *TableCreator {
	tc.partitionSchema.RangeSchema = &wire.RangeSchema{Columns: columns}
	return tc
}

// ReplicationInfo is passed to the master untouched, placement validation is
// the master's job
func (tc *TableCreator) ReplicationInfo(ri *wire.ReplicationInfo) *TableCreator {
	tc.replicationInfo = ri
	return tc
}

// IndexedTableID marks this creation as a secondary index on the given base
// table
func (tc *TableCreator) IndexedTableID(id string) *TableCreator {
	tc.index.IndexedTableID = id
	return tc
}

func (tc *TableCreator) IsLocalIndex(isLocal bool) *TableCreator {
	tc.index.IsLocal = isLocal
	return tc
}

func (tc *TableCreator) IsUniqueIndex(isUnique bool) *TableCreator {
	tc.index.IsUnique = isUnique
	return tc
}

func (tc *TableCreator) UseMangledColumnName(use bool) *TableCreator {
	tc.index.UseMangledColumnName = use
	return tc
}

func (tc *TableCreator) IsSysCatalogTable() *TableCreator {
	tc.isSysCatalogTable = utils.Ptr(true)
	return tc
}

func (tc *TableCreator) IsSharedTable() *TableCreator {
	tc.isSharedTable = utils.Ptr(true)
	return tc
}

// NumTablets sets the initial tablet count explicitly, 0 means "resolve"
func (tc *TableCreator) NumTablets(count int32) *TableCreator {
	tc.numTablets = count
	return tc
}

func (tc *TableCreator) Timeout(timeout time.Duration) *TableCreator {
	tc.timeout = timeout
	return tc
}

// Wait controls whether Create blocks until the table is serving, on by
// default
func (tc *TableCreator) Wait(wait bool) *TableCreator {
	tc.wait = wait
	return tc
}

// GetTableID returns the table's id, written back by Create when the master
// assigns one
func (tc *TableCreator) GetTableID() string {
	return tc.tableID
}

// AlreadyExisted reports whether Create found the table already present
// instead of creating it
func (tc *TableCreator) AlreadyExisted() bool {
	return tc.alreadyExisted
}

// Create validates the configuration, assembles the request, submits it to
// the master and, unless Wait(false) was called, blocks until the table is
// ready to serve. A table that already exists is success, not an error. One
// deadline (explicit timeout or the client default) bounds every blocking
// step.
func (tc *TableCreator) Create(ctx context.Context) error {
	objectType := "table"
	if tc.index.IndexedTableID != "" {
		objectType = "index"
	}
	if tc.name.Name == "" {
		return fmt.Errorf("%w: missing %s name", ErrInvalidArgument, objectType)
	}

	// Key/value and transaction status tables own their schema client-side, a
	// caller-supplied one is a bug in the caller, not a recoverable error
	tableSchema := tc.callerSchema
	if schema.SchemaLess(tc.kind) {
		if tc.callerSchema != nil {
			panic(fmt.Sprintf("schema must not be set for %s table creation", tc.kind))
		}
		tableSchema = schema.NewKeyValueSchema()
	}
	if tableSchema == nil {
		return fmt.Errorf("%w: missing schema", ErrInvalidArgument)
	}

	timeout := tc.c.DefaultAdminOperationTimeout
	if tc.timeout > 0 {
		timeout = tc.timeout
	}
	ctx, cancel := context.WithDeadline(ctx, time.Now().Add(timeout))
	defer cancel()

	numTablets, err := tc.resolveNumTablets(ctx, tableSchema)
	if err != nil {
		return fmt.Errorf("error resolving tablet count for %s %s: %w", objectType, tc.name.FullName(), timeoutOr(err))
	}

	req := tc.buildRequest(tableSchema, numTablets)
	if err := tc.c.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}

	if err := deadlineGuard(ctx); err != nil {
		return fmt.Errorf("error creating %s %s on the master: %w", objectType, tc.name.FullName(), err)
	}
	assignedID, createErr := tc.c.Master.CreateTable(ctx, req)
	switch {
	case createErr == nil:
		tc.tableID = assignedID
	case errors.Is(createErr, ErrAlreadyPresent):
		// Keep a pre-assigned id, only adopt the reported one when we have
		// nothing for the wait step to poll
		if tc.tableID == "" {
			tc.tableID = assignedID
		}
		tc.alreadyExisted = true
	default:
		return fmt.Errorf("error creating %s %s on the master: %w", objectType, tc.name.FullName(), timeoutOr(createErr))
	}

	// The master accepted the request but the table may not be able to serve
	// yet, spin until the tablets are ready so the caller can use it
	// immediately after we return
	if tc.wait {
		if err := deadlineGuard(ctx); err != nil {
			return fmt.Errorf("error waiting for %s %s to be ready: %w", objectType, tc.name.FullName(), err)
		}
		if err := tc.c.Master.WaitTableReady(ctx, tc.tableID); err != nil {
			return fmt.Errorf("error waiting for %s %s to be ready: %w", objectType, tc.name.FullName(), timeoutOr(err))
		}
	}

	if createErr == nil && !utils.SUPPRESS_CREATED_LOGS {
		logger.Info().Msgf("created %s %s of type %s", objectType, tc.name.FullName(), tc.kind)
	}

	return nil
}

// resolveNumTablets picks the initial tablet count: explicit count, then the
// schema's hint, then 1 for system tables, then the cluster default from the
// master. First match wins.
func (tc *TableCreator) resolveNumTablets(ctx context.Context, tableSchema *schema.Schema) (int32, error) {
	if tc.numTablets > 0 {
		logger.Debug().Msgf("tablet count explicitly specified: %d", tc.numTablets)
		return tc.numTablets, nil
	}
	if tableSchema.Properties.NumTablets > 0 {
		return tableSchema.Properties.NumTablets, nil
	}
	if tc.name.IsSystem() {
		logger.Debug().Msg("using one tablet for a system table")
		return 1, nil
	}
	if err := deadlineGuard(ctx); err != nil {
		return 0, err
	}
	count, err := tc.c.Master.DefaultTabletCount(ctx, tc.kind)
	if err != nil {
		return 0, fmt.Errorf("error in Master.DefaultTabletCount: %w", err)
	}
	return count, nil
}

// buildRequest assembles the wire request. Optional fields are copied only
// when set so the master can tell unset from explicitly empty.
func (tc *TableCreator) buildRequest(tableSchema *schema.Schema, numTablets int32) *wire.CreateTableRequest {
	req := &wire.CreateTableRequest{
		Name:            tc.name.Name,
		Namespace:       tc.name.Namespace,
		TableKind:       tc.kind,
		PartitionSchema: tc.partitionSchema,
	}

	if tc.creatorRoleName != "" {
		req.CreatorRoleName = tc.creatorRoleName
	}
	if tc.tableID != "" {
		req.TableID = tc.tableID
	}
	if tc.isSysCatalogTable != nil {
		req.IsSysCatalogTable = tc.isSysCatalogTable
	}
	if tc.isSharedTable != nil {
		req.IsSharedTable = tc.isSharedTable
	}
	if tc.replicationInfo != nil {
		req.ReplicationInfo = tc.replicationInfo
	}

	// The request gets its own schema copy, the synthesized schema is
	// discarded after assembly. The count lives in both the schema properties
	// and the top-level field, older masters only read the latter.
	schemaCopy := *tableSchema
	schemaCopy.Properties.NumTablets = numTablets
	req.Schema = &schemaCopy
	req.NumTablets = numTablets

	if tc.index.IndexedTableID != "" {
		writeIndexInfo(req, tc.index)
	}

	return req
}

// writeIndexInfo maps the index linkage onto the request, both the structured
// IndexInfo and the legacy scalar fields. Masters one protocol version back
// only read the scalars, so the dual write stays until those fields are
// retired.
func writeIndexInfo(req *wire.CreateTableRequest, idx wire.IndexInfo) {
	req.IndexInfo = &idx
	req.IndexedTableID = idx.IndexedTableID
	req.IsLocalIndex = utils.Ptr(idx.IsLocal)
	req.IsUniqueIndex = utils.Ptr(idx.IsUnique)
}

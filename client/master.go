package client

import (
	"context"

	"github.com/loondb/loon-go/schema"
	"github.com/loondb/loon-go/wire"
)

type (
	// MasterService is the catalog master surface the client depends on.
	// HTTPMaster is the production implementation, tests swap in fakes.
	MasterService interface {
		// DefaultTabletCount asks the master for the cluster-wide default
		// initial tablet count for a table of the given kind
		DefaultTabletCount(ctx context.Context, kind schema.TableKind) (int32, error)

		// CreateTable submits a fully assembled create request and returns the
		// id the master assigned. When the name is already taken it returns an
		// error wrapping ErrAlreadyPresent together with the existing table's
		// id when the master reports one ("" otherwise).
		CreateTable(ctx context.Context, req *wire.CreateTableRequest) (string, error)

		// WaitTableReady blocks until the table's tablets are assigned and
		// serving, or ctx expires
		WaitTableReady(ctx context.Context, tableID string) error
	}
)

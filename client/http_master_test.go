package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/loondb/loon-go/fakemaster"
	"github.com/loondb/loon-go/schema"
)

func startFakeMaster(t *testing.T) *fakemaster.FakeMaster {
	t.Helper()
	fm, err := fakemaster.Start()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		_ = fm.Shutdown(ctx)
	})
	return fm
}

func newFakeMasterClient(fm *fakemaster.FakeMaster) *Client {
	master := NewHTTPMaster(fm.Addr)
	master.PollInterval = time.Millisecond * 10
	return NewClient(master)
}

func TestHTTPCreateAndWait(t *testing.T) {
	fm := startFakeMaster(t)
	fm.ReadyAfterPolls = 2
	c := newFakeMasterClient(fm)

	tc := c.NewTableCreator().
		TableName(schema.NewTableName("app", "orders")).
		Schema(testSchema()).
		AddHashPartitions([]string{"k"}, 4).
		NumTablets(4)

	if err := tc.Create(context.Background()); err != nil {
		t.Fatal(err)
	}
	if tc.GetTableID() == "" {
		t.Fatal("expected an assigned table id")
	}
	if tc.AlreadyExisted() {
		t.Fatal("table should be new")
	}

	stored, ok := fm.Table("app.orders")
	if !ok {
		t.Fatal("table not stored on the master")
	}
	if stored.NumTablets != 4 || stored.Schema.Properties.NumTablets != 4 {
		t.Fatalf("expected tablet count 4 in both places, got %d/%d", stored.NumTablets, stored.Schema.Properties.NumTablets)
	}
	if len(stored.PartitionSchema.HashBucketSchemas) != 1 {
		t.Fatal("hash bucket group lost on the wire")
	}
}

func TestHTTPCreateIdempotent(t *testing.T) {
	fm := startFakeMaster(t)
	c := newFakeMasterClient(fm)

	first := c.NewTableCreator().
		TableName(schema.NewTableName("app", "dup")).
		Schema(testSchema()).
		NumTablets(2)
	if err := first.Create(context.Background()); err != nil {
		t.Fatal(err)
	}

	second := c.NewTableCreator().
		TableName(schema.NewTableName("app", "dup")).
		Schema(testSchema()).
		NumTablets(2)
	if err := second.Create(context.Background()); err != nil {
		t.Fatalf("duplicate create must succeed, got %v", err)
	}
	if !second.AlreadyExisted() {
		t.Fatal("expected AlreadyExisted on the second create")
	}
	if second.GetTableID() != first.GetTableID() {
		t.Fatalf("second create should adopt the existing id, got %s vs %s", second.GetTableID(), first.GetTableID())
	}

	creates, _ := fm.Counts()
	if creates != 2 {
		t.Fatalf("expected 2 create calls, got %d", creates)
	}
}

func TestHTTPDefaultTabletCount(t *testing.T) {
	fm := startFakeMaster(t)
	fm.DefaultTabletCounts = map[schema.TableKind]int32{schema.KindDocument: 3}
	c := newFakeMasterClient(fm)

	tc := c.NewTableCreator().
		TableName(schema.NewTableName("app", "t")).
		Schema(testSchema())
	if err := tc.Create(context.Background()); err != nil {
		t.Fatal(err)
	}

	stored, _ := fm.Table("app.t")
	if stored.NumTablets != 3 {
		t.Fatalf("expected cluster default 3, got %d", stored.NumTablets)
	}
	_, defaults := fm.Counts()
	if defaults != 1 {
		t.Fatalf("expected 1 default resolution call, got %d", defaults)
	}
}

func TestHTTPWaitTimeout(t *testing.T) {
	fm := startFakeMaster(t)
	fm.ReadyAfterPolls = 1 << 30 // never ready
	c := newFakeMasterClient(fm)

	tc := c.NewTableCreator().
		TableName(schema.NewTableName("app", "slow")).
		Schema(testSchema()).
		NumTablets(2).
		Timeout(time.Millisecond * 150)

	err := tc.Create(context.Background())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

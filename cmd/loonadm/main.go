package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/loondb/loon-go/client"
	"github.com/loondb/loon-go/gologger"
	"github.com/loondb/loon-go/schema"
	"github.com/loondb/loon-go/utils"
)

var logger = gologger.NewLogger()

func main() {
	var (
		namespace  = flag.String("namespace", "default", "table namespace")
		name       = flag.String("name", "", "table name")
		kind       = flag.String("kind", string(schema.KindKeyValue), "table kind (DOCUMENT, KEY_VALUE, TRANSACTION_STATUS)")
		hashCols   = flag.String("hash-columns", "", "comma separated hash key columns (DOCUMENT tables)")
		numBuckets = flag.Int("hash-buckets", 0, "hash bucket count for the hash columns")
		tablets    = flag.Int("tablets", 0, "explicit tablet count, 0 resolves a default")
		noWait     = flag.Bool("no-wait", false, "do not wait for the table to become ready")
	)
	flag.Parse()

	if *name == "" {
		logger.Error().Msg("missing -name")
		os.Exit(1)
	}

	c := client.NewHTTPClient(utils.MASTER_ADDR)
	tc := c.NewTableCreator().
		TableName(schema.NewTableName(*namespace, *name)).
		TableKind(schema.TableKind(*kind)).
		Wait(!*noWait)

	if *tablets > 0 {
		tc.NumTablets(int32(*tablets))
	}

	if !schema.SchemaLess(schema.TableKind(*kind)) {
		if *hashCols == "" {
			logger.Error().Msg("document tables need -hash-columns")
			os.Exit(1)
		}
		cols := strings.Split(*hashCols, ",")
		s := &schema.Schema{}
		for _, col := range cols {
			s.Columns = append(s.Columns, schema.Column{
				Name:    col,
				Type:    schema.TypeString,
				NotNull: true,
				HashKey: true,
			})
		}
		tc.Schema(s)
		if *numBuckets > 0 {
			tc.AddHashPartitions(cols, int32(*numBuckets))
		}
	}

	if err := tc.Create(context.Background()); err != nil {
		logger.Error().Err(err).Msg("error creating table")
		os.Exit(1)
	}

	if tc.AlreadyExisted() {
		logger.Info().Msgf("table already existed with id %s", tc.GetTableID())
	} else {
		logger.Info().Msgf("table created with id %s", tc.GetTableID())
	}
}

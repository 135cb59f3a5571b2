package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager runs fn inside one database transaction and hands the
// transaction handle to fn as tx. fn's error rolls the transaction back;
// a nil return commits it.
//
// Repositories accept the handle through their `tx Tx` argument and MUST
// accept nil (NoTX), which means "run on the pool, outside a transaction".
// The ingest worker opens one transaction per line so a failing line rolls
// back alone.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}

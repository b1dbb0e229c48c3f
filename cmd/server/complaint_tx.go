package main

import (
	"context"
	"database/sql"
	"fmt"

	"bisaathi/pkg/platform/tx"
)

// sqlTxRunner wraps complaint transitions in a database transaction. The
// transaction rides the context, so the complaint store and the gamify
// snapshot store inside the callback write through the same tx and the status
// change, the bonus claim, and the ledger credit commit or roll back together.
type sqlTxRunner struct {
	db *sql.DB
}

func (r sqlTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx.WithTx(ctx, txn)); err != nil {
		if rbErr := txn.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

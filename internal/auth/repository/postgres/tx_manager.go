package postgres

import (
	"context"
	"fmt"
)

// TxManager runs a function inside a single database transaction. The
// transaction is injected into the context so repository methods join it
// transparently. Commit happens only when fn returns nil; every other exit
// path, panics included, rolls back.
type TxManager struct {
	db Querier
}

func NewTxManager(db Querier) *TxManager {
	return &TxManager{db: db}
}

func (tm *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := tm.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	err = fn(context.WithValue(ctx, txKey{}, tx))
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

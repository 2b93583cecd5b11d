package database

import "context"

type txKey struct{}

// txScope records the transaction bound to a context and whether the unit
// of work that bound it is responsible for finishing it.
type txScope struct {
	tx    Transaction
	owner bool
}

// WithTx binds tx to ctx.
func WithTx(ctx context.Context, tx Transaction, owner bool) context.Context {
	return context.WithValue(ctx, txKey{}, txScope{tx: tx, owner: owner})
}

func scopeFrom(ctx context.Context) (txScope, bool) {
	s, ok := ctx.Value(txKey{}).(txScope)
	return s, ok && s.tx != nil
}

// TxFromContext returns the bound transaction or nil.
func TxFromContext(ctx context.Context) Transaction {
	s, _ := scopeFrom(ctx)
	return s.tx
}

// ExecutorFromContext prefers the bound transaction over the connection.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return conn
}

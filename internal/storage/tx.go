// Package storage holds the contracts shared by the storage backends.
package storage

import (
	"context"
	"fmt"

	"github.com/avstrong/discovertours/internal/logger"
)

type Transactor interface {
	BeginTransaction(ctx context.Context) (context.Context, error)
	CommitTransaction(ctx context.Context) error
	RollbackTransaction(ctx context.Context) error
}

// WithinTransaction runs fn inside a transaction carried by ctx. The
// transaction is rolled back when fn returns an error or panics.
func WithinTransaction(
	ctx context.Context,
	t Transactor,
	l *logger.Logger,
	name string,
	fn func(ctx context.Context) error,
) (err error) {
	ctx, err = t.BeginTransaction(ctx)
	if err != nil {
		return fmt.Errorf("begin %s transaction: %w", name, err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := t.RollbackTransaction(ctx); rbErr != nil {
				l.LogErrorf("Could not rollback %s transaction after panic %v: %v", name, p, rbErr)
			}

			l.LogInfo("Transaction %s has been roll backed after panic", name)

			panic(p)
		}

		if err != nil {
			if rbErr := t.RollbackTransaction(ctx); rbErr != nil {
				l.LogErrorf("Could not rollback %s transaction after error %v: %v", name, err, rbErr)
			}

			l.LogDebugf("Transaction %s has been roll backed after error", name)

			return
		}

		if err = t.CommitTransaction(ctx); err != nil {
			err = fmt.Errorf("commit %s transaction: %w", name, err)

			return
		}

		l.LogDebugf("Transaction %s has been committed", name)
	}()

	return fn(ctx)
}

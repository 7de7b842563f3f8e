package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/avstrong/discovertours/internal/auth"
	"github.com/avstrong/discovertours/internal/booking"
	"github.com/avstrong/discovertours/internal/catalog"
	"github.com/avstrong/discovertours/internal/logger"
)

type Config struct {
	L *logger.Logger
}

// transaction buffers writes until commit. Reads inside a transaction see
// committed state only.
type transaction struct {
	id  string
	ops []func()
}

type DB struct {
	mu sync.Mutex
	l  *logger.Logger

	seq          int64
	tours        map[string]*tourRow
	destinations map[string]*catalog.Destination
	bookings     map[string]*booking.Booking
	idempotency  map[string]string
	events       []*booking.Event
	settings     map[string]string
	users        map[string]*auth.User

	transactions map[string]*transaction
	nextTrxID    int64
}

type tourRow struct {
	seq  int64
	tour *catalog.Tour
}

func New(conf Config) *DB {
	//nolint:exhaustruct
	return &DB{
		l:            conf.L,
		tours:        make(map[string]*tourRow),
		destinations: make(map[string]*catalog.Destination),
		bookings:     make(map[string]*booking.Booking),
		idempotency:  make(map[string]string),
		settings:     make(map[string]string),
		users:        make(map[string]*auth.User),
		transactions: make(map[string]*transaction),
	}
}

func (db *DB) BeginTransaction(ctx context.Context) (context.Context, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	trxID := fmt.Sprintf("trx-%d", db.nextTrxID)
	db.nextTrxID++

	db.transactions[trxID] = &transaction{
		id:  trxID,
		ops: []func(){},
	}

	return withTransactionID(ctx, trxID), nil
}

func (db *DB) takeTransaction(ctx context.Context) (*transaction, error) {
	trxID, ok := transactionIDFromContext(ctx)
	if !ok {
		return nil, ErrTransactionIDNotFoundInCtx
	}

	trx, exists := db.transactions[trxID]
	if !exists {
		return nil, fmt.Errorf("transaction %s not found: %w", trxID, ErrTransactionNotFound)
	}

	delete(db.transactions, trxID)

	return trx, nil
}

func (db *DB) CommitTransaction(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.takeTransaction(ctx)
	if err != nil {
		return err
	}

	for _, op := range trx.ops {
		op()
	}

	return nil
}

func (db *DB) RollbackTransaction(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.takeTransaction(ctx)

	return err
}

// apply runs op now, or queues it when ctx carries a transaction. Callers hold db.mu.
func (db *DB) apply(ctx context.Context, op func()) error {
	trxID, ok := transactionIDFromContext(ctx)
	if !ok {
		op()

		return nil
	}

	trx, exists := db.transactions[trxID]
	if !exists {
		return fmt.Errorf("transaction %s not found: %w", trxID, ErrTransactionNotFound)
	}

	trx.ops = append(trx.ops, op)

	return nil
}

func (db *DB) nextSeq() int64 {
	db.seq++

	return db.seq
}

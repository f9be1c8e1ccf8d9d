package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the querier shared by *pgxpool.Pool and pgx.Tx. Repositories run
// against whichever the Store currently holds, so the same code serves both
// pooled reads and transactional writes.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Datastore bundles every repository plus transactional scoping. Services
// depend on this interface; tests substitute an in-memory fake.
type Datastore interface {
	// WithTx runs fn against a datastore bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Nested calls reuse the enclosing transaction.
	WithTx(ctx context.Context, fn func(ds Datastore) error) error

	Tickets() TicketRepository
	Events() TicketEventRepository
	SLA() SLARepository
	Staff() StaffRepository
	Stays() StayRepository
	Imports() ImportRepository
	Catalog() CatalogRepository
	Audit() AuditRepository
}

// Store is the pgx-backed Datastore.
type Store struct {
	pool *pgxpool.Pool
	db   DB
	inTx bool
}

// NewStore builds a Store over the pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

// WithTx implements Datastore.
func (s *Store) WithTx(ctx context.Context, fn func(ds Datastore) error) error {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	txStore := &Store{pool: s.pool, db: tx, inTx: true}
	if err := fn(txStore); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) Tickets() TicketRepository       { return &ticketRepository{db: s.db} }
func (s *Store) Events() TicketEventRepository   { return &ticketEventRepository{db: s.db} }
func (s *Store) SLA() SLARepository              { return &slaRepository{db: s.db} }
func (s *Store) Staff() StaffRepository          { return &staffRepository{db: s.db} }
func (s *Store) Stays() StayRepository           { return &stayRepository{db: s.db} }
func (s *Store) Imports() ImportRepository       { return &importRepository{db: s.db} }
func (s *Store) Catalog() CatalogRepository      { return &catalogRepository{db: s.db} }
func (s *Store) Audit() AuditRepository          { return &auditRepository{db: s.db} }

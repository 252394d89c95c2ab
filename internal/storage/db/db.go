package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DB interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row

	// WithTx executes a function in a new transaction. Inside a transaction it
	// opens a savepoint instead.
	WithTx(ctx context.Context, txFunc func(DB) error) error
	// WithReadOnlyTx executes a function in a new read-only transaction. Inside a
	// transaction it opens a savepoint that keeps the outer access mode.
	WithReadOnlyTx(ctx context.Context, txFunc func(DB) error) error
}

type HealthChecker interface {
	IsHealthy(ctx context.Context) (bool, error)
}

var (
	_ DB            = (*Client)(nil)
	_ HealthChecker = (*Client)(nil)
)

type Client struct {
	*pgxpool.Pool
}

// NewClient creates a new db client.
func NewClient(pool *pgxpool.Pool) *Client {
	return &Client{pool}
}

func (p *Client) WithTx(ctx context.Context, txFunc func(DB) error) error {
	return p.withTx(ctx, pgx.TxOptions{}, txFunc)
}

func (p *Client) WithReadOnlyTx(ctx context.Context, txFunc func(DB) error) error {
	return p.withTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, txFunc)
}

func (p *Client) withTx(ctx context.Context, opts pgx.TxOptions, txFunc func(DB) error) error {
	tx, err := p.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	return runTx(ctx, tx, txFunc)
}

// runTx commits tx when txFunc succeeds and rolls it back otherwise.
func runTx(ctx context.Context, tx pgx.Tx, txFunc func(DB) error) (err error) {
	defer func() {
		if err != nil {
			rbErr := tx.Rollback(ctx)
			if !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, rbErr)
			}
		}
	}()

	if err = txFunc(&txWrapper{Tx: tx}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		err = fmt.Errorf("commit transaction: %w", err)
	}

	return err
}

func (p *Client) IsHealthy(ctx context.Context) (bool, error) {
	err := p.Ping(ctx)
	if err != nil {
		return false, fmt.Errorf("ping database: %w", err)
	}
	return true, nil
}

type txWrapper struct {
	pgx.Tx
}

func (t *txWrapper) WithTx(ctx context.Context, txFunc func(DB) error) error {
	return t.savepoint(ctx, txFunc)
}

func (t *txWrapper) WithReadOnlyTx(ctx context.Context, txFunc func(DB) error) error {
	return t.savepoint(ctx, txFunc)
}

func (t *txWrapper) savepoint(ctx context.Context, txFunc func(DB) error) error {
	sp, err := t.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin savepoint: %w", err)
	}
	return runTx(ctx, sp, txFunc)
}

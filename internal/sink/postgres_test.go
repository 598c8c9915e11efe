package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artis-laminates/ledgerimport/internal/model"
)

type fakeBatchResults struct {
	pgx.BatchResults
	failAt int // 1-based; 0 never fails
	execs  int
	err    error
}

func (b *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	b.execs++
	if b.failAt != 0 && b.execs == b.failAt {
		return pgconn.CommandTag{}, b.err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (b *fakeBatchResults) Close() error { return nil }

type fakeTx struct {
	pgx.Tx
	batches    []*pgx.Batch
	failAt     int
	execErr    error
	committed  bool
	rolledBack bool
}

func (f *fakeTx) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	f.batches = append(f.batches, b)
	return &fakeBatchResults{failAt: f.failAt, err: f.execErr}
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx     *fakeTx
	begins int
	err    error
}

func (f *fakeBeginner) Begin(context.Context) (pgx.Tx, error) {
	f.begins++
	if f.err != nil {
		return nil, f.err
	}
	return f.tx, nil
}

func TestPostgresSink_CommitsOnClose(t *testing.T) {
	ctx := context.Background()
	db := &fakeBeginner{tx: &fakeTx{}}
	s := NewPostgresSink(db, "op-1")
	s.newID = fixedIDs()

	n, err := s.Write(ctx, []model.Transaction{txn("prod-1", 500, model.DirectionIn), txn("prod-2", 42, model.DirectionOut)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = s.Write(ctx, []model.Transaction{txn("prod-3", 7, model.DirectionOut)})
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))

	assert.Equal(t, 1, db.begins, "one database transaction per run")
	assert.True(t, db.tx.committed)
	assert.False(t, db.tx.rolledBack)
	require.Len(t, db.tx.batches, 2)

	q := db.tx.batches[0].QueuedQueries[0]
	assert.Contains(t, q.SQL, `"enum_Transactions_type"`)
	require.Len(t, q.Arguments, 8)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", q.Arguments[0])
	assert.Equal(t, "prod-1", q.Arguments[1])
	assert.Equal(t, "IN", q.Arguments[2])
	assert.Equal(t, "Stock import - Jan 2024", q.Arguments[5])
	assert.Equal(t, true, q.Arguments[6])
	assert.Equal(t, "op-1", q.Arguments[7])
}

func TestPostgresSink_EmptyRunNeverBegins(t *testing.T) {
	db := &fakeBeginner{tx: &fakeTx{}}
	s := NewPostgresSink(db, "")
	n, err := s.Write(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, s.Close(context.Background()))
	assert.Zero(t, db.begins)
}

func TestPostgresSink_NullOperation(t *testing.T) {
	db := &fakeBeginner{tx: &fakeTx{}}
	s := NewPostgresSink(db, "")
	_, err := s.Write(context.Background(), []model.Transaction{txn("p", 1, model.DirectionOut)})
	require.NoError(t, err)
	assert.Nil(t, db.tx.batches[0].QueuedQueries[0].Arguments[7])
}

func TestPostgresSink_ExecFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("fk violation")
	db := &fakeBeginner{tx: &fakeTx{failAt: 2, execErr: boom}}
	s := NewPostgresSink(db, "op")

	n, err := s.Write(ctx, []model.Transaction{txn("a", 1, model.DirectionOut), txn("b", 2, model.DirectionOut)})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, n)
	assert.True(t, db.tx.rolledBack)
	assert.False(t, db.tx.committed)

	_, err = s.Write(ctx, []model.Transaction{txn("c", 1, model.DirectionOut)})
	assert.ErrorIs(t, err, ErrSinkClosed)
}

func TestPostgresSink_BeginFailure(t *testing.T) {
	db := &fakeBeginner{err: errors.New("no connection")}
	s := NewPostgresSink(db, "")
	_, err := s.Write(context.Background(), []model.Transaction{txn("a", 1, model.DirectionOut)})
	assert.ErrorContains(t, err, "beginning transaction")
}

func TestPostgresSink_Abort(t *testing.T) {
	ctx := context.Background()
	db := &fakeBeginner{tx: &fakeTx{}}
	s := NewPostgresSink(db, "")
	_, err := s.Write(ctx, []model.Transaction{txn("a", 1, model.DirectionOut)})
	require.NoError(t, err)

	var a Aborter = s
	require.NoError(t, a.Abort(ctx))
	assert.True(t, db.tx.rolledBack)
	assert.False(t, db.tx.committed)
	assert.ErrorIs(t, s.Close(ctx), ErrSinkClosed)
}

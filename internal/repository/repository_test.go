package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/recibos-extractor/constants"
	"github.com/joseph-ayodele/recibos-extractor/internal/common"
	"github.com/joseph-ayodele/recibos-extractor/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{Driver: constants.DriverSQLite, DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db, nil) })
	return db
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)
	assert.NoError(t, HealthCheck(context.Background(), db, 0, nil))
}

func TestRebind(t *testing.T) {
	sqlite := &DB{driver: constants.DriverSQLite}
	pg := &DB{driver: constants.DriverPgx}
	q := "UPDATE t SET a = ?, b = ? WHERE id = ?"
	assert.Equal(t, q, sqlite.rebind(q))
	assert.Equal(t, "UPDATE t SET a = $1, b = $2 WHERE id = $3", pg.rebind(q))
}

func TestExtractRunLifecycle(t *testing.T) {
	ctx := context.Background()
	runs := NewExtractRunRepository(openTestDB(t), nil)

	run, err := runs.Start(ctx, "/in/recibos.pdf", constants.PDF)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusRunning), run.Status)

	got, err := runs.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "/in/recibos.pdf", got.SourcePath)
	assert.Nil(t, got.FinishedAt)

	require.NoError(t, runs.FinishSuccess(ctx, run.ID, 3, 2))
	got, err = runs.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusOK), got.Status)
	assert.Equal(t, 3, got.Pages)
	assert.Equal(t, 2, got.Receipts)
	require.NotNil(t, got.FinishedAt)
	assert.False(t, got.FinishedAt.Before(got.StartedAt))
}

func TestExtractRunFailure(t *testing.T) {
	ctx := context.Background()
	runs := NewExtractRunRepository(openTestDB(t), nil)

	run, err := runs.Start(ctx, "/in/broken.pdf", constants.PDF)
	require.NoError(t, err)
	require.NoError(t, runs.FinishFailure(ctx, run.ID, "EXTRACTION_FAILURE: bad xref"))

	got, err := runs.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusFailed), got.Status)
	assert.Equal(t, "EXTRACTION_FAILURE: bad xref", got.Error)
}

func TestExtractRunNotFound(t *testing.T) {
	ctx := context.Background()
	runs := NewExtractRunRepository(openTestDB(t), nil)

	_, err := runs.Get(ctx, uuid.New())
	assert.True(t, common.IsNotFound(err))
	assert.True(t, common.IsNotFound(runs.FinishSuccess(ctx, uuid.New(), 1, 1)))
}

func TestReceiptsRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	runs := NewExtractRunRepository(db, nil)
	receipts := NewReceiptRepository(db, nil)

	run, err := runs.Start(ctx, "/in/recibos.pdf", constants.PDF)
	require.NoError(t, err)

	records := []entity.ReceiptRecord{
		{
			ID: "123", Seller: "ANA", Customer: "MARIA",
			Products: []entity.ProductLine{
				{Description: "TIRZEPATIDA 5 MG", Quantity: "2,00", UnitPrice: "540,00", Unit: "UN"},
				{Description: "CANETA", Quantity: "1,00", UnitPrice: "10,00", Unit: "CX"},
			},
		},
		{ID: "PAGINA_2", Products: nil},
	}
	require.NoError(t, receipts.SaveAll(ctx, run.ID, records))

	got, err := receipts.ListByRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, records[0], got[0])
	assert.Equal(t, "PAGINA_2", got[1].ID)
	assert.Empty(t, got[1].Products)

	other, err := receipts.ListByRun(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSaveAllRequiresRun(t *testing.T) {
	receipts := NewReceiptRepository(openTestDB(t), nil)
	err := receipts.SaveAll(context.Background(), uuid.New(), []entity.ReceiptRecord{{ID: "1"}})
	assert.ErrorIs(t, err, common.ErrDatabase)
}

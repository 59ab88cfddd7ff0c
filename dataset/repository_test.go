package dataset

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cvdb "github.com/teranos/crossview/db"
	"github.com/teranos/crossview/errors"
	qtesting "github.com/teranos/crossview/internal/testing"
)

func TestRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(qtesting.CreateTestDB(t), nil)

	rec := Record{City: "Reno", State: "NV", Merchant: "Casino", Amount: 42, Date: day("2023-11-16")}
	require.NoError(t, repo.Insert(ctx, &rec))
	assert.NotZero(t, rec.ID)

	require.NoError(t, repo.InsertMany(ctx, sampleRecords()[:2]))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ds, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())

	// Ordered by time: the two 14th records first
	records := ds.Records()
	assert.Equal(t, "Springfield", records[0].CityName())
	assert.Equal(t, "Columbus", records[1].CityName())
	assert.Equal(t, "Reno", records[2].CityName())
	assert.True(t, records[2].Date.Equal(rec.Date))
	assert.Equal(t, []string{"Columbus", "Springfield"}, ds.Index().CitiesOn(DayOf(day("2023-11-14"))))
}

func TestRepository_InsertRequiresDate(t *testing.T) {
	repo := NewRepository(qtesting.CreateTestDB(t), nil)

	err := repo.Insert(context.Background(), &Record{City: "Reno"})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestRepository_LocalTimestampsUseLocation(t *testing.T) {
	db := qtesting.CreateTestDB(t)
	_, err := db.Exec(`INSERT INTO transactions (city, occurred_at) VALUES ('Reno', '2023-11-14 20:00:00')`)
	require.NoError(t, err)

	pacific, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	records, err := NewRepository(db, pacific).All(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	// 20:00 PST is 04:00 UTC the next day
	assert.Equal(t, "2023-11-15", records[0].Day().ISO())
}

func TestRepository_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, city, location`).
		WillReturnError(errors.New("disk I/O error"))

	_, err = NewRepository(db, nil).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query transactions")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_BadTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "city", "location", "state", "state_name", "occupation", "merchant", "amount", "occurred_at"}).
		AddRow(7, "Reno", "", "NV", "", "", "", 1.0, "yesterday-ish")
	mock.ExpectQuery(`SELECT id, city, location`).WillReturnRows(rows)

	_, err = NewRepository(db, nil).All(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction 7")
}

func TestRepository_InsertManyRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectPrepare(`INSERT INTO transactions`).
		ExpectExec().
		WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	err = NewRepository(db, nil).InsertMany(context.Background(), sampleRecords()[:1])
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CountError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM transactions`).WillReturnError(errors.New("locked"))

	_, err = NewRepository(db, nil).Count(context.Background())
	assert.Error(t, err)
}

func TestRepository_ClosedDatabase(t *testing.T) {
	conn := qtesting.CreateTestDB(t)
	repo := NewRepository(conn, nil)
	require.NoError(t, conn.Close())

	_, err := repo.Count(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, cvdb.ErrDatabaseClosed))

	_, err = repo.Load(context.Background())
	assert.True(t, errors.Is(err, cvdb.ErrDatabaseClosed))

	err = repo.Insert(context.Background(), &Record{City: "Reno", Date: day("2023-11-16")})
	assert.True(t, errors.Is(err, cvdb.ErrDatabaseClosed))
}

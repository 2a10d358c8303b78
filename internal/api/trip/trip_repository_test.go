package trip

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdeck/tripdeck/internal/types"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *PostgresTripRepo) {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool, NewPostgresTripRepo(pool, testLogger())
}

func tripRow(id, userID uuid.UUID, name string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{"id", "user_id", "name", "created_at", "updated_at"}).
		AddRow(id, userID, name, now, now)
}

func TestPostgresTripRepo_CreateTrip(t *testing.T) {
	pool, repo := newMockRepo(t)
	userID := uuid.New()
	tripID := uuid.New()

	pool.ExpectQuery("INSERT INTO trips").
		WithArgs(userID, "Summer").
		WillReturnRows(tripRow(tripID, userID, "Summer"))

	trip, err := repo.CreateTrip(context.Background(), userID, "Summer")
	require.NoError(t, err)
	assert.Equal(t, tripID, trip.ID)
	assert.Equal(t, "Summer", trip.Name)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgresTripRepo_GetTrip_NotFound(t *testing.T) {
	pool, repo := newMockRepo(t)
	tripID := uuid.New()

	pool.ExpectQuery("SELECT (.+) FROM trips WHERE id").
		WithArgs(tripID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetTrip(context.Background(), tripID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestPostgresTripRepo_ListTripsByUser(t *testing.T) {
	pool, repo := newMockRepo(t)
	userID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "user_id", "name", "created_at", "updated_at"}).
		AddRow(uuid.New(), userID, "A", now, now).
		AddRow(uuid.New(), userID, "B", now, now)

	pool.ExpectQuery("SELECT (.+) FROM trips WHERE user_id").
		WithArgs(userID).
		WillReturnRows(rows)

	trips, err := repo.ListTripsByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, "A", trips[0].Name)
}

func TestPostgresTripRepo_DeleteTrip(t *testing.T) {
	pool, repo := newMockRepo(t)
	tripID := uuid.New()

	pool.ExpectExec("DELETE FROM trips").
		WithArgs(tripID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(t, repo.DeleteTrip(context.Background(), tripID))
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgresTripRepo_DeleteTrip_Missing(t *testing.T) {
	pool, repo := newMockRepo(t)
	tripID := uuid.New()

	pool.ExpectExec("DELETE FROM trips").
		WithArgs(tripID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.DeleteTrip(context.Background(), tripID), types.ErrNotFound)
}

func placeRow(id, tripID uuid.UUID, name, coordinates string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "trip_id", "kind", "name", "coordinates", "address",
		"day", "price", "status", "comments", "external_url",
		"created_at", "updated_at",
	}).AddRow(id, tripID, types.PlaceKindExplore, name, coordinates, "", 1, "", "", "", "", now, now)
}

func TestPostgresTripRepo_AddPlace_DefaultsDay(t *testing.T) {
	pool, repo := newMockRepo(t)
	tripID := uuid.New()
	placeID := uuid.New()

	req := types.CreatePlaceRequest{Kind: types.PlaceKindExplore, Name: "Viewpoint", Coordinates: "52.41, 12.55"}

	pool.ExpectQuery("INSERT INTO trip_places").
		WithArgs(tripID, req.Kind, req.Name, req.Coordinates, "", 1, "", "", "", "").
		WillReturnRows(placeRow(placeID, tripID, "Viewpoint", "52.41, 12.55"))

	place, err := repo.AddPlace(context.Background(), tripID, req)
	require.NoError(t, err)
	assert.Equal(t, placeID, place.ID)
	assert.Equal(t, 1, place.Day)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgresTripRepo_UpdatePlace_PartialSet(t *testing.T) {
	pool, repo := newMockRepo(t)
	tripID := uuid.New()
	placeID := uuid.New()

	name := "Renamed"
	day := 3

	// Only the provided fields appear in the SET clause, in declaration order,
	// and the statement is scoped to both the place and its trip.
	pool.ExpectQuery(`UPDATE trip_places SET updated_at = now\(\), name = \$3, day = \$4 WHERE id = \$1 AND trip_id = \$2`).
		WithArgs(placeID, tripID, name, day).
		WillReturnRows(placeRow(placeID, tripID, "Renamed", ""))

	place, err := repo.UpdatePlace(context.Background(), tripID, placeID, types.UpdatePlaceParams{Name: &name, Day: &day})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", place.Name)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgresTripRepo_UpdatePlace_WrongTripNotFound(t *testing.T) {
	pool, repo := newMockRepo(t)
	otherTrip := uuid.New()
	placeID := uuid.New()
	name := "Hijacked"

	// A place that exists but belongs to a different trip matches no row.
	pool.ExpectQuery(`UPDATE trip_places SET (.+) WHERE id = \$1 AND trip_id = \$2`).
		WithArgs(placeID, otherTrip, name).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.UpdatePlace(context.Background(), otherTrip, placeID, types.UpdatePlaceParams{Name: &name})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestPostgresTripRepo_DeletePlace_WrongTripNotFound(t *testing.T) {
	pool, repo := newMockRepo(t)
	otherTrip := uuid.New()
	placeID := uuid.New()

	pool.ExpectExec(`DELETE FROM trip_places WHERE id = \$1 AND trip_id = \$2`).
		WithArgs(placeID, otherTrip).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.DeletePlace(context.Background(), otherTrip, placeID), types.ErrNotFound)
}

func TestPostgresTripRepo_DeletePlace(t *testing.T) {
	pool, repo := newMockRepo(t)
	tripID := uuid.New()
	placeID := uuid.New()

	pool.ExpectExec(`DELETE FROM trip_places WHERE id = \$1 AND trip_id = \$2`).
		WithArgs(placeID, tripID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(t, repo.DeletePlace(context.Background(), tripID, placeID))
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgresTripRepo_ListPlacesByTrip_QueryError(t *testing.T) {
	pool, repo := newMockRepo(t)
	tripID := uuid.New()

	pool.ExpectQuery("SELECT (.+) FROM trip_places").
		WithArgs(tripID).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.ListPlacesByTrip(context.Background(), tripID)
	assert.Error(t, err)
}

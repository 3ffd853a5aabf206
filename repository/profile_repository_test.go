package repository

import (
	"context"
	"testing"
	"time"

	"fitpro-backend/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRepository_GetDocument_NotFound(t *testing.T) {
	db := newFakeDB()
	repo := NewProfileRepository(db)

	_, err := repo.GetDocument(context.Background(), "profiles", testAccountID)

	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

func TestProfileRepository_GetDocument_AbsentFields(t *testing.T) {
	db := newFakeDB()
	now := time.Now()
	height := 180.5
	db.rows["FROM \"profiles\""] = fakeRow{values: []any{
		testAccountID, "Ann", "ann@example.com",
		&height, (*float64)(nil), (*int)(nil), (*string)(nil), (*string)(nil),
		now, now,
	}}
	repo := NewProfileRepository(db)

	rec, err := repo.GetDocument(context.Background(), "profiles", testAccountID)

	require.NoError(t, err)
	assert.Equal(t, testAccountID, rec.UserID)
	require.NotNil(t, rec.Height)
	assert.Equal(t, 180.5, *rec.Height)
	assert.Nil(t, rec.Weight)
	assert.Nil(t, rec.Age)
	assert.Nil(t, rec.FitnessGoal)
	assert.Nil(t, rec.ProfilePictureURL)
}

func TestProfileRepository_CreateDocument_PassesNullsAndKey(t *testing.T) {
	db := newFakeDB()
	now := time.Now()
	db.rows["INSERT INTO"] = fakeRow{values: []any{now, now}}
	repo := NewProfileRepository(db)

	goal := models.GoalStrength
	rec := &models.ProfileRecord{Name: "Ann", FitnessGoal: &goal}
	require.NoError(t, repo.CreateDocument(context.Background(), "profiles", testAccountID, rec))

	require.Len(t, db.calls, 1)
	args := db.calls[0].args
	assert.Equal(t, testAccountID, args[0])
	assert.Nil(t, args[3].(*float64))
	assert.Nil(t, args[5].(*int))
	assert.Equal(t, "strength", *args[6].(*string))
	assert.Equal(t, testAccountID, rec.UserID)
	assert.Equal(t, now, rec.CreatedAt)
}

func TestProfileRepository_CreateDocument_Conflict(t *testing.T) {
	db := newFakeDB()
	db.rows["INSERT INTO"] = fakeRow{err: &pgconn.PgError{Code: pgUniqueViolation}}
	repo := NewProfileRepository(db)

	err := repo.CreateDocument(context.Background(), "profiles", testAccountID, &models.ProfileRecord{})

	assert.Equal(t, models.KindConflict, models.KindOf(err))
}

func TestProfileRepository_UpdateDocument_MissingCollection(t *testing.T) {
	db := newFakeDB()
	db.rows["UPDATE"] = fakeRow{err: &pgconn.PgError{Code: pgUndefinedTable}}
	repo := NewProfileRepository(db)

	err := repo.UpdateDocument(context.Background(), "user_profiles", testAccountID, &models.ProfileRecord{})

	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

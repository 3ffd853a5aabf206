package repository

import (
	"context"
	"fmt"

	"fitpro-backend/models"

	"github.com/google/uuid"
)

var errProfileNotFound = models.NewRemoteError(models.CodeNotFound, models.TypeDocumentNotFound, "Document with the requested ID could not be found.", nil)

// ProfileRepository stores profile documents keyed by user id.
// The collection names the table documents live in.
type ProfileRepository struct {
	db DBTX
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetDocument retrieves the profile document with the given key
func (r *ProfileRepository) GetDocument(ctx context.Context, collection string, key uuid.UUID) (*models.ProfileRecord, error) {
	table, err := collectionTable(collection)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT user_id, name, email, height, weight, age, fitness_goal,
			profile_picture_url, created_at, updated_at
		FROM %s
		WHERE user_id = $1`, table)

	record := &models.ProfileRecord{}
	var goal *string
	err = r.db.QueryRow(ctx, query, key).Scan(
		&record.UserID,
		&record.Name,
		&record.Email,
		&record.Height,
		&record.Weight,
		&record.Age,
		&goal,
		&record.ProfilePictureURL,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, mapPgError(err, errProfileNotFound)
	}

	if goal != nil {
		g := models.FitnessGoal(*goal)
		record.FitnessGoal = &g
	}

	return record, nil
}

// CreateDocument creates the profile document with the given key.
// A second create for the same key fails with a conflict.
func (r *ProfileRepository) CreateDocument(ctx context.Context, collection string, key uuid.UUID, record *models.ProfileRecord) error {
	table, err := collectionTable(collection)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (
			user_id, name, email, height, weight, age, fitness_goal, profile_picture_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`, table)

	err = r.db.QueryRow(
		ctx, query,
		key,
		record.Name,
		record.Email,
		record.Height,
		record.Weight,
		record.Age,
		goalParam(record.FitnessGoal),
		record.ProfilePictureURL,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return mapPgError(err, nil)
	}

	record.UserID = key
	return nil
}

// UpdateDocument replaces the fields of an existing profile document
func (r *ProfileRepository) UpdateDocument(ctx context.Context, collection string, key uuid.UUID, record *models.ProfileRecord) error {
	table, err := collectionTable(collection)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s SET
			name = $2,
			email = $3,
			height = $4,
			weight = $5,
			age = $6,
			fitness_goal = $7,
			profile_picture_url = $8,
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING created_at, updated_at`, table)

	err = r.db.QueryRow(
		ctx, query,
		key,
		record.Name,
		record.Email,
		record.Height,
		record.Weight,
		record.Age,
		goalParam(record.FitnessGoal),
		record.ProfilePictureURL,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return mapPgError(err, errProfileNotFound)
	}

	record.UserID = key
	return nil
}

func goalParam(goal *models.FitnessGoal) *string {
	if goal == nil {
		return nil
	}
	s := string(*goal)
	return &s
}

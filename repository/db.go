package repository

import (
	"context"
	"errors"
	"regexp"

	"fitpro-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool the repositories use
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// UnavailableDB returns a DBTX for a database that could not be configured.
// Every call fails with a 503 remote error wrapping cause.
func UnavailableDB(cause error) DBTX {
	return unavailableDB{err: models.NewRemoteError(models.CodeUnavailable, "general_service_unavailable", "database unavailable", cause)}
}

type unavailableDB struct {
	err error
}

func (u unavailableDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return errRow{err: u.err}
}

func (u unavailableDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, u.err
}

type errRow struct {
	err error
}

func (r errRow) Scan(dest ...any) error {
	return r.err
}

// PostgreSQL error codes the repositories branch on
const (
	pgUniqueViolation       = "23505"
	pgUndefinedTable        = "42P01"
	pgUndefinedColumn       = "42703"
	pgInsufficientPrivilege = "42501"
)

var collectionNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// collectionTable validates a collection id and quotes it as a table name
func collectionTable(collection string) (string, error) {
	if !collectionNamePattern.MatchString(collection) {
		return "", models.NewRemoteError(models.CodeNotFound, models.TypeCollectionNotFound, "Collection with the requested ID could not be found.", nil)
	}
	return pgx.Identifier{collection}.Sanitize(), nil
}

// mapPgError converts a pgx failure into a classified remote error.
// notFound is used for pgx.ErrNoRows.
func mapPgError(err error, notFound *models.RemoteError) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var remoteErr *models.RemoteError
	if errors.As(err, &remoteErr) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if notFound == nil {
			return models.NewRemoteError(models.CodeNotFound, models.TypeDocumentNotFound, "Document with the requested ID could not be found.", err)
		}
		return models.NewRemoteError(notFound.Code, notFound.Type, notFound.Message, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return models.NewRemoteError(models.CodeConflict, "document_already_exists", "Document with the requested ID already exists.", err)
		case pgUndefinedTable:
			return models.NewRemoteError(models.CodeNotFound, models.TypeCollectionNotFound, "Collection with the requested ID could not be found.", err)
		case pgUndefinedColumn:
			return models.NewRemoteError(models.CodeBadRequest, "document_invalid_structure", pgErr.Message, err)
		case pgInsufficientPrivilege:
			return models.NewRemoteError(models.CodePermissionDenied, "user_unauthorized", "The current user is not authorized to perform the requested action.", err)
		}
		return models.NewRemoteError(models.CodeInternal, "general_server_error", pgErr.Message, err)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || pgconn.SafeToRetry(err) {
		return models.NewRemoteError(models.CodeUnavailable, "general_service_unavailable", "database unavailable", err)
	}

	return models.NewRemoteError(models.CodeInternal, "general_server_error", err.Error(), err)
}

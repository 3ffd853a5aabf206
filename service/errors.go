package service

import (
	"errors"

	"fitpro-backend/models"
)

var (
	ErrOperationInFlight = models.WithKind(models.KindBusy, errors.New("another operation is already in progress"))
	ErrNotAuthenticated  = models.WithKind(models.KindUnauthenticated, errors.New("not authenticated"))
)

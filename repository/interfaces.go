package repository

import (
	"context"
	"errors"
	"fmt"

	"lostluggage/models"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("duplicate")
	ErrNotPending = errors.New("lost report is no longer pending")
)

// NotFoundError names the missing record. It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s #%d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}

// LostReportRepositoryI defines operations on LostReport entities.
type LostReportRepositoryI interface {
	Create(ctx context.Context, r *models.LostReport) (*models.LostReport, error)
	GetByID(ctx context.Context, id int64) (*models.LostReport, error)
	ListByPassenger(ctx context.Context, passengerID int64) ([]models.LostReport, error)
	ListByStatus(ctx context.Context, status string) ([]models.LostReport, error)
	ListAll(ctx context.Context) ([]models.LostReport, error)
	ListWithReporter(ctx context.Context) ([]models.LostReportView, error)
	UpdateStatus(ctx context.Context, id int64, status, remarks string) (*models.LostReport, error)
	Match(ctx context.Context, foundID, lostID int64) (*models.LostReport, error)
}

// FoundReportRepositoryI defines operations on FoundReport entities.
type FoundReportRepositoryI interface {
	Create(ctx context.Context, r *models.FoundReport) (*models.FoundReport, error)
	GetByID(ctx context.Context, id int64) (*models.FoundReport, error)
	List(ctx context.Context) ([]models.FoundReport, error)
}

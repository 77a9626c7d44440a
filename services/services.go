// Package services implements the lost-and-found workflows on top of the
// repositories: accounts, lost reports, found reports and matching.
package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"lostluggage/models"
	"lostluggage/repository"
	"lostluggage/utils"
)

var (
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrReportNotFound      = errors.New("lost report not found")
	ErrFoundReportNotFound = errors.New("found report not found")
	ErrReportNotPending    = errors.New("lost report is no longer pending")
)

// ValidationError reports a rejected form field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

type Service struct {
	Users    repository.UserRepositoryI
	Lost     repository.LostReportRepositoryI
	Found    repository.FoundReportRepositoryI
	Notifier utils.Notifier
	Logger   *zap.Logger
}

func New(db *utils.DB, notifier utils.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = utils.LogNotifier{Logger: logger}
	}
	return &Service{
		Users:    repository.NewUserRepository(db),
		Lost:     repository.NewLostReportRepository(db),
		Found:    repository.NewFoundReportRepository(db),
		Notifier: notifier,
		Logger:   logger,
	}
}

// translate maps repository not-found errors onto the service sentinels.
func translate(err error) error {
	var nf *repository.NotFoundError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &nf) && nf.Entity == "found report":
		return fmt.Errorf("%w: #%d", ErrFoundReportNotFound, nf.ID)
	case errors.As(err, &nf):
		return fmt.Errorf("%w: #%d", ErrReportNotFound, nf.ID)
	case errors.Is(err, repository.ErrNotPending):
		return ErrReportNotPending
	}
	return err
}

// notifyOwner mails the passenger who filed the report. Failures are logged
// and never returned; the admin action has already been committed.
func (s *Service) notifyOwner(ctx context.Context, report *models.LostReport) {
	owner, err := s.Users.GetByID(ctx, report.PassengerID)
	if err != nil {
		s.Logger.Warn("notify: owner lookup failed",
			zap.Int64("report_id", report.ID), zap.Int64("passenger_id", report.PassengerID), zap.Error(err))
		return
	}
	if err := s.Notifier.ReportChanged(ctx, *owner, *report); err != nil {
		s.Logger.Warn("notify: delivery failed",
			zap.Int64("report_id", report.ID), zap.String("to", owner.Email), zap.Error(err))
	}
}

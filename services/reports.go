package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"lostluggage/models"
	"lostluggage/utils"
)

type LostReportInput struct {
	FlightNo    string
	Description string
	LastSeen    string
	DateLost    string
}

type FoundReportInput struct {
	FinderName  string
	Contact     string
	Description string
	PlaceFound  string
	DateFound   string
}

type field struct {
	name  string
	value *string
	max   int
}

func validateFields(fields ...field) error {
	for _, f := range fields {
		*f.value = strings.TrimSpace(*f.value)
		if err := utils.ValidateField(f.name, *f.value, f.max); err != nil {
			return invalid(f.name, err)
		}
	}
	return nil
}

// FileLostReport records a passenger's lost luggage with status Pending.
func (s *Service) FileLostReport(ctx context.Context, userID int64, in LostReportInput) (*models.LostReport, error) {
	in.FlightNo = strings.ToUpper(strings.TrimSpace(in.FlightNo))
	if utf8.RuneCountInString(in.FlightNo) > utils.MaxFieldLength {
		return nil, invalid("flight number", fmt.Errorf("flight number must be at most %d characters", utils.MaxFieldLength))
	}
	err := validateFields(
		field{"description", &in.Description, utils.MaxDescriptionLength},
		field{"last seen location", &in.LastSeen, utils.MaxFieldLength},
		field{"date lost", &in.DateLost, utils.MaxFieldLength},
	)
	if err != nil {
		return nil, err
	}

	lr, err := s.Lost.Create(ctx, &models.LostReport{
		PassengerID: userID,
		FlightNo:    in.FlightNo,
		Description: in.Description,
		LastSeen:    in.LastSeen,
		DateLost:    in.DateLost,
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info("lost report filed", zap.Int64("report_id", lr.ID), zap.Int64("user_id", userID))
	return lr, nil
}

func (s *Service) ListMyReports(ctx context.Context, userID int64) ([]models.LostReport, error) {
	return s.Lost.ListByPassenger(ctx, userID)
}

// TrackReport looks a report up by id. Anyone holding the id may see it.
func (s *Service) TrackReport(ctx context.Context, id int64) (*models.LostReport, error) {
	lr, err := s.Lost.GetByID(ctx, id)
	return lr, translate(err)
}

// GetLostReport is TrackReport for the admin edit form.
func (s *Service) GetLostReport(ctx context.Context, id int64) (*models.LostReport, error) {
	return s.TrackReport(ctx, id)
}

func (s *Service) ListLostReports(ctx context.Context) ([]models.LostReport, error) {
	return s.Lost.ListAll(ctx)
}

func (s *Service) ListLostReportsWithReporter(ctx context.Context) ([]models.LostReportView, error) {
	return s.Lost.ListWithReporter(ctx)
}

func (s *Service) PendingLostReports(ctx context.Context) ([]models.LostReport, error) {
	return s.Lost.ListByStatus(ctx, models.StatusPending)
}

// UpdateReportStatus overwrites status and remarks. Applying the same update
// twice leaves the same state.
func (s *Service) UpdateReportStatus(ctx context.Context, id int64, status, remarks string) (*models.LostReport, error) {
	err := validateFields(field{"status", &status, utils.MaxFieldLength})
	if err != nil {
		return nil, err
	}
	remarks = strings.TrimSpace(remarks)
	if utf8.RuneCountInString(remarks) > utils.MaxDescriptionLength {
		return nil, invalid("remarks", fmt.Errorf("remarks must be at most %d characters", utils.MaxDescriptionLength))
	}

	lr, err := s.Lost.UpdateStatus(ctx, id, status, remarks)
	if err != nil {
		return nil, translate(err)
	}
	s.Logger.Info("lost report updated", zap.Int64("report_id", id), zap.String("status", status))
	s.notifyOwner(ctx, lr)
	return lr, nil
}

// FileFoundReport records a found item. No account is needed.
func (s *Service) FileFoundReport(ctx context.Context, in FoundReportInput) (*models.FoundReport, error) {
	err := validateFields(
		field{"finder name", &in.FinderName, utils.MaxFieldLength},
		field{"contact", &in.Contact, utils.MaxFieldLength},
		field{"description", &in.Description, utils.MaxDescriptionLength},
		field{"place found", &in.PlaceFound, utils.MaxFieldLength},
		field{"date found", &in.DateFound, utils.MaxFieldLength},
	)
	if err != nil {
		return nil, err
	}
	fr, err := s.Found.Create(ctx, &models.FoundReport{
		FinderName:  in.FinderName,
		Contact:     in.Contact,
		Description: in.Description,
		PlaceFound:  in.PlaceFound,
		DateFound:   in.DateFound,
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info("found report filed", zap.Int64("found_id", fr.ID))
	return fr, nil
}

func (s *Service) ListFoundReports(ctx context.Context) ([]models.FoundReport, error) {
	return s.Found.List(ctx)
}

func (s *Service) GetFoundReport(ctx context.Context, id int64) (*models.FoundReport, error) {
	fr, err := s.Found.GetByID(ctx, id)
	return fr, translate(err)
}

// MatchFoundToLost marks the lost report Found and records the found report id
// in its remarks. The found report itself is left untouched.
func (s *Service) MatchFoundToLost(ctx context.Context, foundID, lostID int64) (*models.LostReport, error) {
	lr, err := s.Lost.Match(ctx, foundID, lostID)
	if err != nil {
		return nil, translate(err)
	}
	s.Logger.Info("reports matched", zap.Int64("found_id", foundID), zap.Int64("lost_id", lostID))
	s.notifyOwner(ctx, lr)
	return lr, nil
}

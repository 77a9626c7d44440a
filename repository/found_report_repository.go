package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lostluggage/models"
	"lostluggage/utils"
)

type FoundReportRepository struct {
	db *utils.DB
}

func NewFoundReportRepository(db *utils.DB) *FoundReportRepository {
	return &FoundReportRepository{db: db}
}

func (r *FoundReportRepository) Create(ctx context.Context, fr *models.FoundReport) (*models.FoundReport, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	stmt := r.db.Rebind(`INSERT INTO found_reports
		(finder_name, contact, description, place_found, date_found)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)
	out := *fr
	err := r.db.QueryRowContext(ctx, stmt, fr.FinderName, fr.Contact, fr.Description, fr.PlaceFound, fr.DateFound).Scan(&out.ID)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *FoundReportRepository) GetByID(ctx context.Context, id int64) (*models.FoundReport, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var fr models.FoundReport
	err := r.db.QueryRowContext(ctx,
		r.db.Rebind(`SELECT id, finder_name, contact, description, place_found, date_found FROM found_reports WHERE id = ?`), id).
		Scan(&fr.ID, &fr.FinderName, &fr.Contact, &fr.Description, &fr.PlaceFound, &fr.DateFound)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Entity: "found report", ID: id}
		}
		return nil, err
	}
	return &fr, nil
}

// List returns every found report. There is no pagination.
func (r *FoundReportRepository) List(ctx context.Context) ([]models.FoundReport, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, finder_name, contact, description, place_found, date_found FROM found_reports ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.FoundReport{}
	for rows.Next() {
		var fr models.FoundReport
		if err := rows.Scan(&fr.ID, &fr.FinderName, &fr.Contact, &fr.Description, &fr.PlaceFound, &fr.DateFound); err != nil {
			return nil, err
		}
		out = append(out, fr)
	}
	return out, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lostluggage/models"
	"lostluggage/utils"
)

const lostColumns = `id, passenger_id, flight_no, description, last_seen, date_lost, status, remarks`

type LostReportRepository struct {
	db *utils.DB
}

func NewLostReportRepository(db *utils.DB) *LostReportRepository {
	return &LostReportRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLost(s rowScanner, extra ...any) (models.LostReport, error) {
	var lr models.LostReport
	dest := append([]any{&lr.ID, &lr.PassengerID, &lr.FlightNo, &lr.Description,
		&lr.LastSeen, &lr.DateLost, &lr.Status, &lr.Remarks}, extra...)
	err := s.Scan(dest...)
	return lr, err
}

// Create files a new report. Status starts as Pending with empty remarks
// regardless of what the caller set.
func (r *LostReportRepository) Create(ctx context.Context, lr *models.LostReport) (*models.LostReport, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	stmt := r.db.Rebind(`INSERT INTO lost_reports
		(passenger_id, flight_no, description, last_seen, date_lost, status, remarks)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	out := *lr
	out.Status = models.StatusPending
	out.Remarks = ""
	err := r.db.QueryRowContext(ctx, stmt, out.PassengerID, out.FlightNo, out.Description,
		out.LastSeen, out.DateLost, out.Status, out.Remarks).Scan(&out.ID)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LostReportRepository) GetByID(ctx context.Context, id int64) (*models.LostReport, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	lr, err := scanLost(r.db.QueryRowContext(ctx, r.db.Rebind(`SELECT `+lostColumns+` FROM lost_reports WHERE id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Entity: "lost report", ID: id}
		}
		return nil, err
	}
	return &lr, nil
}

func (r *LostReportRepository) ListByPassenger(ctx context.Context, passengerID int64) ([]models.LostReport, error) {
	return r.list(ctx, `SELECT `+lostColumns+` FROM lost_reports WHERE passenger_id = ? ORDER BY id`, passengerID)
}

func (r *LostReportRepository) ListByStatus(ctx context.Context, status string) ([]models.LostReport, error) {
	return r.list(ctx, `SELECT `+lostColumns+` FROM lost_reports WHERE status = ? ORDER BY id`, status)
}

func (r *LostReportRepository) ListAll(ctx context.Context) ([]models.LostReport, error) {
	return r.list(ctx, `SELECT `+lostColumns+` FROM lost_reports ORDER BY id`)
}

func (r *LostReportRepository) list(ctx context.Context, query string, args ...any) ([]models.LostReport, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.LostReport{}
	for rows.Next() {
		lr, err := scanLost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}

// ListWithReporter returns every lost report joined with its reporter's name.
func (r *LostReportRepository) ListWithReporter(ctx context.Context) ([]models.LostReportView, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT l.id, l.passenger_id, l.flight_no, l.description,
		l.last_seen, l.date_lost, l.status, l.remarks, u.name
		FROM lost_reports l JOIN users u ON l.passenger_id = u.id
		ORDER BY l.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.LostReportView{}
	for rows.Next() {
		var v models.LostReportView
		if v.LostReport, err = scanLost(rows, &v.ReporterName); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// UpdateStatus overwrites status and remarks and returns the stored report.
func (r *LostReportRepository) UpdateStatus(ctx context.Context, id int64, status, remarks string) (*models.LostReport, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, r.db.Rebind(`UPDATE lost_reports SET status = ?, remarks = ? WHERE id = ?`), status, remarks, id)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, &NotFoundError{Entity: "lost report", ID: id}
	}

	lr, err := scanLost(tx.QueryRowContext(ctx, r.db.Rebind(`SELECT `+lostColumns+` FROM lost_reports WHERE id = ?`), id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &lr, nil
}

// Match marks a pending lost report as Found and annotates it with the found
// report id. Both the existence check and the update run in one transaction,
// and the update only applies while the report is still Pending, so two admins
// racing on the same report cannot both succeed.
func (r *LostReportRepository) Match(ctx context.Context, foundID, lostID int64) (*models.LostReport, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// write first so SQLite takes the write lock up front
	res, err := tx.ExecContext(ctx,
		r.db.Rebind(`UPDATE lost_reports SET status = ?, remarks = ? WHERE id = ? AND status = ?`),
		models.StatusFound, models.MatchRemarks(foundID, lostID), lostID, models.StatusPending)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	var one int
	err = tx.QueryRowContext(ctx, r.db.Rebind(`SELECT 1 FROM found_reports WHERE id = ?`), foundID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Entity: "found report", ID: foundID}
		}
		return nil, err
	}

	lr, err := scanLost(tx.QueryRowContext(ctx, r.db.Rebind(`SELECT `+lostColumns+` FROM lost_reports WHERE id = ?`), lostID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Entity: "lost report", ID: lostID}
		}
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("lost report #%d has status %q: %w", lostID, lr.Status, ErrNotPending)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &lr, nil
}

package models

import "fmt"

// Lost report statuses offered to admins. Status is free text, so any other
// value an admin enters is stored as-is.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusFound      = "Found"
	StatusClosed     = "Closed"
)

var KnownStatuses = []string{StatusPending, StatusInProgress, StatusFound, StatusClosed}

type LostReport struct {
	ID          int64  `db:"id"`
	PassengerID int64  `db:"passenger_id"`
	FlightNo    string `db:"flight_no"`
	Description string `db:"description"`
	LastSeen    string `db:"last_seen"`
	DateLost    string `db:"date_lost"`
	Status      string `db:"status"`
	Remarks     string `db:"remarks"`
}

// LostReportView is a lost report joined with the name of the passenger who filed it.
type LostReportView struct {
	LostReport
	ReporterName string `db:"reporter_name"`
}

type FoundReport struct {
	ID          int64  `db:"id"`
	FinderName  string `db:"finder_name"`
	Contact     string `db:"contact"`
	Description string `db:"description"`
	PlaceFound  string `db:"place_found"`
	DateFound   string `db:"date_found"`
}

// MatchRemarks is the annotation written into a lost report when an admin
// matches it to a found report.
func MatchRemarks(foundID, lostID int64) string {
	return fmt.Sprintf("Matched with found report #%d (lost report #%d)", foundID, lostID)
}

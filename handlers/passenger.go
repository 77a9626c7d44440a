package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"lostluggage/models"
	"lostluggage/services"
	"lostluggage/utils"
)

type passengerDashboard struct {
	Name    string
	Reports []models.LostReport
}

func (a *App) PassengerDashboard(w http.ResponseWriter, r *http.Request) {
	s := currentSession(r)
	reports, err := a.svc.ListMyReports(r.Context(), s.UserID)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, "passenger_dashboard.html", "My reports",
		passengerDashboard{Name: s.Name, Reports: reports})
}

func (a *App) ReportLuggageForm(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusOK, "report_luggage.html", "Report lost luggage", services.LostReportInput{})
}

func (a *App) ReportLuggage(w http.ResponseWriter, r *http.Request) {
	in := services.LostReportInput{
		FlightNo:    r.PostFormValue("flight_no"),
		Description: r.PostFormValue("description"),
		LastSeen:    r.PostFormValue("last_seen"),
		DateLost:    r.PostFormValue("date_lost"),
	}
	report, err := a.svc.FileLostReport(r.Context(), currentSession(r).UserID, in)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			a.flash(r, "danger", verr.Error())
			a.render(w, r, http.StatusOK, "report_luggage.html", "Report lost luggage", in)
			return
		}
		a.serverError(w, r, err)
		return
	}
	a.flash(r, "success", fmt.Sprintf("Report submitted successfully! Your Report ID is %d", report.ID))
	a.redirect(w, r, "/passenger/dashboard")
}

// TrackLuggageForm shows the lookup form. A report_id query parameter runs the
// lookup straight away, which is how the dashboard links here.
func (a *App) TrackLuggageForm(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("report_id"); raw != "" {
		a.track(w, r, raw)
		return
	}
	a.render(w, r, http.StatusOK, "track_luggage.html", "Track luggage", (*models.LostReport)(nil))
}

func (a *App) TrackLuggage(w http.ResponseWriter, r *http.Request) {
	a.track(w, r, r.PostFormValue("report_id"))
}

func (a *App) track(w http.ResponseWriter, r *http.Request, raw string) {
	var report *models.LostReport
	id, err := utils.ParseReportID(raw)
	if err == nil {
		report, err = a.svc.TrackReport(r.Context(), id)
		if err != nil && !errors.Is(err, services.ErrReportNotFound) {
			a.serverError(w, r, err)
			return
		}
	}
	if err != nil {
		a.flash(r, "danger", "Invalid Report ID!")
	}
	a.render(w, r, http.StatusOK, "track_luggage.html", "Track luggage", report)
}

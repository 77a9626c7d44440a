package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"lostluggage/models"
	"lostluggage/services"
	"lostluggage/utils"
)

func (a *App) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	reports, err := a.svc.ListLostReportsWithReporter(r.Context())
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, "admin_dashboard.html", "Admin dashboard", reports)
}

func (a *App) AdminLostReports(w http.ResponseWriter, r *http.Request) {
	reports, err := a.svc.ListLostReports(r.Context())
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, "admin_lost_reports.html", "Lost luggage", reports)
}

func (a *App) AdminFoundReports(w http.ResponseWriter, r *http.Request) {
	reports, err := a.svc.ListFoundReports(r.Context())
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, "admin_found_reports.html", "Found luggage", reports)
}

type updateStatusPage struct {
	Report   models.LostReport
	Statuses []string
}

func (a *App) UpdateStatusForm(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseReportID(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	report, err := a.svc.GetLostReport(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			a.flash(r, "danger", fmt.Sprintf("Report %d not found!", id))
			a.redirect(w, r, "/admin/dashboard")
			return
		}
		a.serverError(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, "update_status.html", "Update status",
		updateStatusPage{Report: *report, Statuses: models.KnownStatuses})
}

func (a *App) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseReportID(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	status, remarks := r.PostFormValue("status"), r.PostFormValue("remarks")

	_, err = a.svc.UpdateReportStatus(r.Context(), id, status, remarks)
	var verr *services.ValidationError
	switch {
	case err == nil:
		a.logger.Info("status updated", zap.Int64("report_id", id), zap.Int64("admin_id", currentSession(r).UserID))
		a.flash(r, "success", "Status updated successfully!")
		a.redirect(w, r, "/admin/dashboard")
	case errors.Is(err, services.ErrReportNotFound):
		a.flash(r, "danger", fmt.Sprintf("Report %d not found!", id))
		a.redirect(w, r, "/admin/dashboard")
	case errors.As(err, &verr):
		a.flash(r, "danger", verr.Error())
		a.redirect(w, r, fmt.Sprintf("/admin/update/%d", id))
	default:
		a.serverError(w, r, err)
	}
}

type matchPage struct {
	Found   models.FoundReport
	Pending []models.LostReport
}

func (a *App) MatchLuggageForm(w http.ResponseWriter, r *http.Request) {
	foundID, err := utils.ParseReportID(r.PathValue("foundID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	found, err := a.svc.GetFoundReport(r.Context(), foundID)
	if err != nil {
		if errors.Is(err, services.ErrFoundReportNotFound) {
			a.flash(r, "danger", fmt.Sprintf("Found report %d not found!", foundID))
			a.redirect(w, r, "/admin/found_reports")
			return
		}
		a.serverError(w, r, err)
		return
	}
	pending, err := a.svc.PendingLostReports(r.Context())
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, "match_luggage.html", "Match luggage",
		matchPage{Found: *found, Pending: pending})
}

func (a *App) MatchLuggage(w http.ResponseWriter, r *http.Request) {
	foundID, err := utils.ParseReportID(r.PathValue("foundID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	back := fmt.Sprintf("/admin/match/%d", foundID)

	lostID, err := utils.ParseReportID(r.PostFormValue("lost_id"))
	if err != nil {
		a.flash(r, "danger", "Please choose a lost report to match.")
		a.redirect(w, r, back)
		return
	}

	_, err = a.svc.MatchFoundToLost(r.Context(), foundID, lostID)
	switch {
	case err == nil:
		a.flash(r, "success", fmt.Sprintf("Lost report %d matched with found item %d", lostID, foundID))
		a.redirect(w, r, "/admin/found_reports")
	case errors.Is(err, services.ErrFoundReportNotFound):
		a.flash(r, "danger", fmt.Sprintf("Found report %d not found!", foundID))
		a.redirect(w, r, "/admin/found_reports")
	case errors.Is(err, services.ErrReportNotFound):
		a.flash(r, "danger", fmt.Sprintf("Lost report %d not found!", lostID))
		a.redirect(w, r, back)
	case errors.Is(err, services.ErrReportNotPending):
		a.flash(r, "danger", fmt.Sprintf("Lost report %d is no longer pending.", lostID))
		a.redirect(w, r, back)
	default:
		a.serverError(w, r, err)
	}
}

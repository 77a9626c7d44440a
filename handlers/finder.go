package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"lostluggage/services"
)

func (a *App) FinderReportForm(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusOK, "finder_report.html", "Report found luggage", services.FoundReportInput{})
}

// FinderReport accepts a found item from anyone, logged in or not.
func (a *App) FinderReport(w http.ResponseWriter, r *http.Request) {
	in := services.FoundReportInput{
		FinderName:  r.PostFormValue("finder_name"),
		Contact:     r.PostFormValue("contact"),
		Description: r.PostFormValue("description"),
		PlaceFound:  r.PostFormValue("place_found"),
		DateFound:   r.PostFormValue("date_found"),
	}
	fr, err := a.svc.FileFoundReport(r.Context(), in)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			a.flash(r, "danger", verr.Error())
			a.render(w, r, http.StatusOK, "finder_report.html", "Report found luggage", in)
			return
		}
		a.serverError(w, r, err)
		return
	}
	a.flash(r, "success", fmt.Sprintf("Thank you! Your found luggage report has been submitted (reference #%d).", fr.ID))
	a.redirect(w, r, "/finder/report")
}

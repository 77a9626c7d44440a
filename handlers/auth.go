package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"lostluggage/models"
	"lostluggage/services"
	"lostluggage/utils"
)

type registerForm struct {
	Name  string
	Email string
}

type loginForm struct {
	Email string
}

func (a *App) RegisterForm(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusOK, "register.html", "Register", registerForm{})
}

func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	form := registerForm{Name: r.PostFormValue("name"), Email: r.PostFormValue("email")}

	_, err := a.svc.Register(r.Context(), form.Name, form.Email, r.PostFormValue("password"))
	var verr *services.ValidationError
	switch {
	case err == nil:
		a.flash(r, "success", "Registration successful! Please login.")
		a.redirect(w, r, "/login")
	case errors.Is(err, services.ErrDuplicateEmail):
		a.flash(r, "danger", "Email already registered!")
		a.render(w, r, http.StatusOK, "register.html", "Register", form)
	case errors.As(err, &verr):
		a.flash(r, "danger", verr.Error())
		a.render(w, r, http.StatusOK, "register.html", "Register", form)
	default:
		a.serverError(w, r, err)
	}
}

func (a *App) LoginForm(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusOK, "login.html", "Log in", loginForm{})
}

func dashboardFor(role models.Role) string {
	if role == models.RoleAdmin {
		return "/admin/dashboard"
	}
	return "/passenger/dashboard"
}

func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	user, err := a.svc.Login(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			a.logger.Info("login failed", zap.String("ip", utils.GetIP(r)))
			a.flash(r, "danger", "Invalid credentials!")
			a.render(w, r, http.StatusOK, "login.html", "Log in", loginForm{Email: email})
			return
		}
		a.serverError(w, r, err)
		return
	}

	// issue a fresh token on login so a pre-login session id cannot be reused
	old := currentSession(r)
	s := utils.NewSession(r, a.sessionTTL)
	s.UserID = user.ID
	s.Name = user.Name
	s.Role = user.Role
	s.AddFlash("success", "Login successful!")
	if err := a.sessions.Save(r.Context(), s); err != nil {
		a.serverError(w, r, err)
		return
	}
	if old.SessionToken != "" {
		if err := a.sessions.Delete(r.Context(), old.SessionToken); err != nil {
			a.logger.Warn("delete pre-login session", zap.Error(err))
		}
	}
	utils.SetSessionCookie(w, s, a.secureCookies)

	a.logger.Info("login", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	a.redirect(w, r, dashboardFor(user.Role))
}

// Logout drops the session entirely and starts a blank one to carry the notice.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	old := currentSession(r)
	if old.SessionToken != "" {
		if err := a.sessions.Delete(r.Context(), old.SessionToken); err != nil {
			a.logger.Warn("failed to delete session", zap.Error(err))
		}
	}
	if old.IsAuthenticated() {
		a.logger.Info("logout", zap.Int64("user_id", old.UserID))
	}

	s := utils.NewSession(r, a.sessionTTL)
	s.AddFlash("info", "You have been logged out.")
	if err := a.sessions.Save(r.Context(), s); err != nil {
		a.serverError(w, r, err)
		return
	}
	utils.SetSessionCookie(w, s, a.secureCookies)
	a.redirect(w, r, "/")
}

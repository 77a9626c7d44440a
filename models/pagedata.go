package models

// PageData is handed to every template. Data carries the page specific payload.
type PageData struct {
	Title      string
	CSRFtoken  string
	IsLoggedIn bool
	UserName   string
	Role       Role
	Flashes    []Flash
	Data       any
}

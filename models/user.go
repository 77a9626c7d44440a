package models

type Role string

const (
	RolePassenger Role = "passenger"
	RoleAdmin     Role = "admin"
)

type User struct {
	ID           int64  `db:"id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Role         Role   `db:"role"`
}

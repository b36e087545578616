package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PrimaryEmail string    `json:"primary_email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateUser inserts a user. A duplicate username yields ErrUsernameTaken.
func CreateUser(ctx context.Context, db *sql.DB, username, primaryEmail, passwordHash string) (*User, error) {
	res, err := db.ExecContext(ctx,
		`INSERT INTO users(username, primary_email, password_hash) VALUES (?, ?, ?)`,
		username, primaryEmail, passwordHash,
	)
	if err != nil {
		if IsUniqueConstraint(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return GetUserByID(ctx, db, id)
}

func GetUserByID(ctx context.Context, db *sql.DB, id int64) (*User, error) {
	return scanUser(db.QueryRowContext(ctx,
		`SELECT id, username, primary_email, password_hash, created_at FROM users WHERE id = ?`,
		id,
	))
}

func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*User, error) {
	return scanUser(db.QueryRowContext(ctx,
		`SELECT id, username, primary_email, password_hash, created_at FROM users WHERE username = ?`,
		username,
	))
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PrimaryEmail, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

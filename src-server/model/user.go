package model

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID       int64  `bun:"id,pk,autoincrement"`
	Username string `bun:"username,notnull,unique"` // required
	Password string `bun:"password,notnull"`        // encoded hash, never the raw password

	CreatedAt time.Time `bun:"created_at,notnull"`
}

var _ bun.BeforeAppendModelHook = (*User)(nil)

func (u *User) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		u.CreatedAt = time.Now().UTC()
	}
	return nil
}

func UsernameExists(ctx context.Context, db bun.IDB, username string) (bool, error) {
	exists, err := db.NewSelect().
		Model((*User)(nil)).
		Where("username = ?", username).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("UsernameExists: %w", err)
	}
	return exists, nil
}

// Creates a user with a hashed password. The username must already be cleaned up.
func CreateUser(ctx context.Context, db bun.IDB, username, password string) (*User, error) {
	switch {
	case username == "":
		return nil, fmt.Errorf("CreateUser: username is required")
	case password == "":
		return nil, fmt.Errorf("CreateUser: password is required")
	}

	exists, err := UsernameExists(ctx, db, username)
	if err != nil {
		return nil, fmt.Errorf("CreateUser: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("CreateUser: %w", ErrUsernameTaken)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("CreateUser: %w", err)
	}
	userModel := &User{
		Username: username,
		Password: hash,
	}
	if _, err := db.NewInsert().
		Model(userModel).
		Exec(ctx); err != nil {
		// lost a race against another registration of the same name
		if exists, existsErr := UsernameExists(ctx, db, username); existsErr == nil && exists {
			return nil, fmt.Errorf("CreateUser: %w", ErrUsernameTaken)
		}
		return nil, fmt.Errorf("CreateUser: %w", err)
	}
	return userModel, nil
}

// Looks a user up by its cleaned-up username, for credential checks.
func GetUserByUsername(ctx context.Context, db bun.IDB, username string) (*User, error) {
	userModel := new(User)
	if err := db.NewSelect().
		Model(userModel).
		Where("username = ?", username).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("GetUserByUsername: %w", notFound(err))
	}
	return userModel, nil
}

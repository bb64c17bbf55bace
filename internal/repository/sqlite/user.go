package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/commentdesk/internal/apperror"
	"github.com/sakif/commentdesk/internal/model"
	"github.com/sakif/commentdesk/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, external_id, username, access_token, profile_picture, full_name, bio, created_at, updated_at`

// Create inserts a new user. The existence check gives a clean conflict
// error in the common case; the UNIQUE constraint covers concurrent inserts.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	if err := repository.ValidateNew(user); err != nil {
		return err
	}

	var existing int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE external_id = ?`, user.ExternalID,
	).Scan(&existing)
	if err != nil {
		return fmt.Errorf("sqlite: checking external_id %s: %w", user.ExternalID, err)
	}
	if existing > 0 {
		return apperror.Conflict("user", "externalId", user.ExternalID)
	}

	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.ExternalID,
		user.Username,
		user.AccessToken,
		user.ProfilePicture,
		user.FullName,
		user.Bio,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "externalId", user.ExternalID)
		}
		return fmt.Errorf("sqlite: inserting user (externalID=%s): %w", user.ExternalID, err)
	}

	return nil
}

// GetByExternalID returns apperror.ErrNotFound if no user has that id.
func (db *DB) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE external_id = ?`,
		externalID,
	).Scan(
		&u.ID,
		&u.ExternalID,
		&u.Username,
		&u.AccessToken,
		&u.ProfilePicture,
		&u.FullName,
		&u.Bio,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", "externalId", externalID)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", externalID, err)
	}

	return &u, nil
}

// Update writes the mutable fields and bumps updated_at. Last write wins.
func (db *DB) Update(ctx context.Context, user *model.User) error {
	updatedAt := time.Now().UTC()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE users
		 SET username = ?, access_token = ?, profile_picture = ?, full_name = ?, bio = ?, updated_at = ?
		 WHERE external_id = ?`,
		user.Username,
		user.AccessToken,
		user.ProfilePicture,
		user.FullName,
		user.Bio,
		updatedAt,
		user.ExternalID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", user.ExternalID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: reading rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("user", "externalId", user.ExternalID)
	}

	user.UpdatedAt = updatedAt
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

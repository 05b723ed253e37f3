package library

import (
	"database/sql"
	"errors"
)

const adminColumns = `id, username, password_hash, full_name, email, role, created_at, last_login`

func scanAdmin(row rowScanner) (*AdminUser, error) {
	var (
		a         AdminUser
		createdAt string
		lastLogin sql.NullString
	)
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.FullName, &a.Email, &a.Role, &createdAt, &lastLogin); err != nil {
		return nil, err
	}
	var err error
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if a.LastLogin, err = parseNullableTime(lastLogin); err != nil {
		return nil, err
	}
	return &a, nil
}

// AddAdminUser creates a librarian account. A duplicate username fails with
// ErrUniqueViolation.
func (s *Store) AddAdminUser(in AdminUserInput) (*AdminUser, error) {
	const op = "add admin user"
	if err := required(op, "username", in.Username); err != nil {
		return nil, err
	}
	if err := required(op, "password", in.Password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, opErr(op, ErrInvalidInput, "hash password: %w", err)
	}

	err = s.withTx(op, func(tx *sql.Tx) error {
		id, err := nextID(tx)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`INSERT INTO admin_users(id, username, password_hash, full_name, email, role, created_at)
			VALUES(?,?,?,?,?,?,?)`,
			id, in.Username, hash, in.FullName, in.Email, orDefault(in.Role, RoleAdmin), fmtTime(s.nowUTC()))
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetAdminByUsername(in.Username)
}

// UpdateAdminUser applies the supplied fields. A new password is re-hashed.
// A new username is carried over to the linked library user.
func (s *Store) UpdateAdminUser(id int64, in AdminUserUpdate) (*AdminUser, error) {
	const op = "update admin user"
	var set setList
	if err := set.requiredText(op, "username", "username", in.Username); err != nil {
		return nil, err
	}
	if in.Password != nil {
		if err := required(op, "password", *in.Password); err != nil {
			return nil, err
		}
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, opErr(op, ErrInvalidInput, "hash password: %w", err)
		}
		set.add("password_hash", hash)
	}
	set.text("full_name", in.FullName)
	set.text("email", in.Email)
	set.text("role", in.Role)

	err := s.withTx(op, func(tx *sql.Tx) error {
		var old string
		if err := tx.QueryRow(`SELECT username FROM admin_users WHERE id = ?`, id).Scan(&old); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &OpError{Op: op, Kind: ErrNotFound}
			}
			return err
		}
		if _, err := set.exec(tx, "admin_users", id); err != nil {
			return err
		}
		if in.Username == nil || *in.Username == old {
			return nil
		}
		_, err := tx.Exec(`UPDATE library_users SET username = ?, updated_at = ?
			WHERE username = ? AND password_hash = ?`, *in.Username, fmtTime(s.nowUTC()), old, linkedHash)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetAdminByID(id)
}

// DeleteAdminUser removes the account and deactivates its linked library
// user, which keeps its history but can no longer sign in.
func (s *Store) DeleteAdminUser(id int64) (Result, error) {
	const op = "delete admin user"
	var res Result
	err := s.withTx(op, func(tx *sql.Tx) error {
		var username string
		if err := tx.QueryRow(`SELECT username FROM admin_users WHERE id = ?`, id).Scan(&username); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}
		r, err := tx.Exec(`DELETE FROM admin_users WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if res.Changes, err = r.RowsAffected(); err != nil {
			return err
		}
		_, err = tx.Exec(`UPDATE library_users SET status = ?, updated_at = ? WHERE username = ? AND password_hash = ?`,
			StatusInactive, fmtTime(s.nowUTC()), username, linkedHash)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`UPDATE user_sessions SET is_active = 0, logout_time = ?
			WHERE is_active = 1 AND user_id IN (SELECT id FROM library_users WHERE username = ? AND password_hash = ?)`,
			fmtTime(s.nowUTC()), username, linkedHash)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// linkAdminUser creates the library user that stands in for an admin
// account in sessions. Its password is never checked; see linkedHash.
func (s *Store) linkAdminUser(admin *AdminUser) (*LibraryUser, error) {
	const op = "link admin user"
	email := admin.Email
	if email == "" {
		email = admin.Username + "@localhost"
	}
	err := s.withTx(op, func(tx *sql.Tx) error {
		id, err := nextID(tx)
		if err != nil {
			return err
		}
		now := fmtTime(s.nowUTC())
		_, err = tx.Exec(`INSERT INTO library_users(id, username, password_hash, email, first_name,
				user_type, role, status, is_verified, created_at, updated_at)
			VALUES(?,?,?,?,?,?,?,?,1,?,?)`,
			id, admin.Username, linkedHash, email, admin.FullName,
			UserTypeAdmin, orDefault(admin.Role, RoleAdmin), StatusActive, now, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetLibraryUserByUsername(admin.Username)
}

func (s *Store) GetAdminByID(id int64) (*AdminUser, error) {
	return get(s, "get admin user", scanAdmin, `SELECT `+adminColumns+` FROM admin_users WHERE id = ?`, id)
}

func (s *Store) GetAdminByUsername(username string) (*AdminUser, error) {
	return get(s, "get admin user", scanAdmin, `SELECT `+adminColumns+` FROM admin_users WHERE username = ?`, username)
}

// GetAllAdmins lists accounts, newest first.
func (s *Store) GetAllAdmins() ([]*AdminUser, error) {
	return list(s, "list admin users", scanAdmin, `SELECT `+adminColumns+` FROM admin_users ORDER BY created_at DESC, id DESC`)
}

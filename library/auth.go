package library

import (
	"database/sql"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// linkedHash marks a library user whose credential lives in admin_users.
// It is not a bcrypt hash, so AuthenticateUser never accepts it.
const linkedHash = "!admin"

var hashPassword = func(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// AuthenticateAdmin reports whether username and password match an admin
// account. A successful check stamps last_login.
func (s *Store) AuthenticateAdmin(username, password string) (bool, error) {
	return s.authenticate("authenticate admin", "admin_users",
		`SELECT id, password_hash FROM admin_users WHERE username = ?`, username, password)
}

// AuthenticateUser is AuthenticateAdmin for the unified user table. Only
// accounts with status Active may sign in.
func (s *Store) AuthenticateUser(username, password string) (bool, error) {
	return s.authenticate("authenticate user", "library_users",
		`SELECT id, password_hash FROM library_users WHERE username = ? AND status = '`+StatusActive+`'`, username, password)
}

func (s *Store) authenticate(op, table, query, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	ok := false
	err := s.withTx(op, func(tx *sql.Tx) error {
		var (
			id   int64
			hash string
		)
		if err := tx.QueryRow(query, username).Scan(&id, &hash); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}
		if !checkPassword(hash, password) {
			return nil
		}
		ok = true
		_, err := tx.Exec(`UPDATE `+table+` SET last_login = ? WHERE id = ?`, fmtTime(s.nowUTC()), id)
		return err
	})
	if err != nil {
		return false, err
	}
	if !ok {
		s.logger.Info("authentication rejected", zap.String("op", op), zap.String("username", username))
	}
	return ok, nil
}

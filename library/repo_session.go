package library

import "database/sql"

const sessionColumns = `id, user_id, session_token, ip_address, user_agent, login_time, logout_time, is_active`

func scanSession(row rowScanner) (*UserSession, error) {
	var (
		us         UserSession
		loginTime  string
		logoutTime sql.NullString
	)
	if err := row.Scan(&us.ID, &us.UserID, &us.SessionToken, &us.IPAddress, &us.UserAgent, &loginTime, &logoutTime, &us.IsActive); err != nil {
		return nil, err
	}
	var err error
	if us.LoginTime, err = parseTime(loginTime); err != nil {
		return nil, err
	}
	if us.LogoutTime, err = parseNullableTime(logoutTime); err != nil {
		return nil, err
	}
	return &us, nil
}

// CreateSession records an active login for userID under token.
func (s *Store) CreateSession(userID int64, token, ip, userAgent string) (*UserSession, error) {
	const op = "create session"
	if err := required(op, "session token", token); err != nil {
		return nil, err
	}
	err := s.withTx(op, func(tx *sql.Tx) error {
		id, err := nextID(tx)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`INSERT INTO user_sessions(id, user_id, session_token, ip_address, user_agent, login_time, is_active)
			VALUES(?,?,?,?,?,?,1)`,
			id, userID, token, ip, userAgent, fmtTime(s.nowUTC()))
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.sessionByToken(token)
}

// ValidateSession returns the session for token only while it is active.
// Unknown or logged-out tokens yield (nil, nil).
func (s *Store) ValidateSession(token string) (*UserSession, error) {
	us, err := get(s, "validate session", scanSession,
		`SELECT `+sessionColumns+` FROM user_sessions WHERE session_token = ? AND is_active = 1`, token)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return us, nil
}

// LogoutSession deactivates the session. Logging out twice keeps the
// first logout time; an unknown token is a zero Result.
func (s *Store) LogoutSession(token string) (Result, error) {
	var res Result
	err := s.withTx("logout session", func(tx *sql.Tx) error {
		r, err := tx.Exec(`UPDATE user_sessions SET is_active = 0, logout_time = ?
			WHERE session_token = ? AND is_active = 1`, fmtTime(s.nowUTC()), token)
		if err != nil {
			return err
		}
		res.Changes, err = r.RowsAffected()
		return err
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// GetUserSessions lists every session of a user, most recent login first.
func (s *Store) GetUserSessions(userID int64) ([]*UserSession, error) {
	return list(s, "list sessions", scanSession,
		`SELECT `+sessionColumns+` FROM user_sessions WHERE user_id = ? ORDER BY login_time DESC, id DESC`, userID)
}

func (s *Store) sessionByToken(token string) (*UserSession, error) {
	return get(s, "get session", scanSession, `SELECT `+sessionColumns+` FROM user_sessions WHERE session_token = ?`, token)
}

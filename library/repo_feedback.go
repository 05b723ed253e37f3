package library

import "database/sql"

const feedbackColumns = `id, member_id, subject, message, rating, status, created_at`

func scanFeedback(row rowScanner) (*Feedback, error) {
	var (
		f         Feedback
		memberID  sql.NullInt64
		createdAt string
	)
	if err := row.Scan(&f.ID, &memberID, &f.Subject, &f.Message, &f.Rating, &f.Status, &createdAt); err != nil {
		return nil, err
	}
	f.MemberID = memberID.Int64
	var err error
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) AddFeedback(in FeedbackInput) (*Feedback, error) {
	const op = "add feedback"
	if err := required(op, "message", in.Message); err != nil {
		return nil, err
	}
	if in.Rating < 0 || in.Rating > 5 {
		return nil, opErr(op, ErrInvalidInput, "rating must be between 0 and 5")
	}
	var id int64
	err := s.withTx(op, func(tx *sql.Tx) error {
		var err error
		if id, err = nextID(tx); err != nil {
			return err
		}
		_, err = tx.Exec(`INSERT INTO feedback(id, member_id, subject, message, rating, status, created_at)
			VALUES(?,?,?,?,?,?,?)`,
			id, nullID(in.MemberID), in.Subject, in.Message, in.Rating, FeedbackPending, fmtTime(s.nowUTC()))
		return err
	})
	if err != nil {
		return nil, err
	}
	return get(s, op, scanFeedback, `SELECT `+feedbackColumns+` FROM feedback WHERE id = ?`, id)
}

// UpdateFeedbackStatus moves feedback through its review workflow, e.g.
// Pending to Reviewed.
func (s *Store) UpdateFeedbackStatus(id int64, status string) (*Feedback, error) {
	const op = "update feedback"
	if err := required(op, "status", status); err != nil {
		return nil, err
	}
	err := s.withTx(op, func(tx *sql.Tx) error {
		var set setList
		set.add("status", status)
		found, err := set.exec(tx, "feedback", id)
		if err != nil {
			return err
		}
		if !found {
			return &OpError{Op: op, Kind: ErrNotFound}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return get(s, op, scanFeedback, `SELECT `+feedbackColumns+` FROM feedback WHERE id = ?`, id)
}

func (s *Store) DeleteFeedback(id int64) (Result, error) {
	return s.deleteByID("delete feedback", "feedback", id)
}

func (s *Store) GetAllFeedback() ([]*Feedback, error) {
	return list(s, "list feedback", scanFeedback, `SELECT `+feedbackColumns+` FROM feedback ORDER BY created_at DESC, id DESC`)
}

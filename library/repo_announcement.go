package library

import "database/sql"

const announcementColumns = `id, title, content, author_id, priority, is_active, created_at`

func scanAnnouncement(row rowScanner) (*Announcement, error) {
	var (
		a         Announcement
		authorID  sql.NullInt64
		createdAt string
	)
	if err := row.Scan(&a.ID, &a.Title, &a.Content, &authorID, &a.Priority, &a.IsActive, &createdAt); err != nil {
		return nil, err
	}
	a.AuthorID = authorID.Int64
	var err error
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// AddAnnouncement posts an active announcement. A non-zero AuthorID must
// name an existing admin user.
func (s *Store) AddAnnouncement(in AnnouncementInput) (*Announcement, error) {
	const op = "add announcement"
	if err := required(op, "title", in.Title); err != nil {
		return nil, err
	}
	var id int64
	err := s.withTx(op, func(tx *sql.Tx) error {
		var err error
		if id, err = nextID(tx); err != nil {
			return err
		}
		_, err = tx.Exec(`INSERT INTO announcements(id, title, content, author_id, priority, is_active, created_at)
			VALUES(?,?,?,?,?,1,?)`,
			id, in.Title, in.Content, nullID(in.AuthorID), orDefault(in.Priority, PriorityNormal), fmtTime(s.nowUTC()))
		return err
	})
	if err != nil {
		return nil, err
	}
	return get(s, op, scanAnnouncement, `SELECT `+announcementColumns+` FROM announcements WHERE id = ?`, id)
}

func (s *Store) UpdateAnnouncement(id int64, in AnnouncementUpdate) (*Announcement, error) {
	const op = "update announcement"
	var set setList
	if err := set.requiredText(op, "title", "title", in.Title); err != nil {
		return nil, err
	}
	set.text("content", in.Content)
	set.text("priority", in.Priority)
	set.flag("is_active", in.IsActive)

	err := s.withTx(op, func(tx *sql.Tx) error {
		found, err := set.exec(tx, "announcements", id)
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
	return get(s, op, scanAnnouncement, `SELECT `+announcementColumns+` FROM announcements WHERE id = ?`, id)
}

func (s *Store) DeleteAnnouncement(id int64) (Result, error) {
	return s.deleteByID("delete announcement", "announcements", id)
}

// GetActiveAnnouncements lists announcements still flagged active, newest
// first.
func (s *Store) GetActiveAnnouncements() ([]*Announcement, error) {
	return list(s, "list announcements", scanAnnouncement, `SELECT `+announcementColumns+` FROM announcements
		WHERE is_active = 1 ORDER BY created_at DESC, id DESC`)
}

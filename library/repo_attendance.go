package library

import "database/sql"

const attendanceColumns = `id, date, name, library_number, purpose, time, created_at`

func scanAttendance(row rowScanner) (*Attendance, error) {
	var (
		a         Attendance
		createdAt string
	)
	if err := row.Scan(&a.ID, &a.Date, &a.Name, &a.LibraryNumber, &a.Purpose, &a.Time, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// AddAttendance appends a visitor log entry. Entries are never updated or
// deleted.
func (s *Store) AddAttendance(in AttendanceInput) (*Attendance, error) {
	const op = "add attendance"
	if err := required(op, "name", in.Name); err != nil {
		return nil, err
	}
	var id int64
	err := s.withTx(op, func(tx *sql.Tx) error {
		var err error
		if id, err = nextID(tx); err != nil {
			return err
		}
		_, err = tx.Exec(`INSERT INTO attendance(id, date, name, library_number, purpose, time, created_at)
			VALUES(?,?,?,?,?,?,?)`,
			id, orDefault(in.Date, s.today()), in.Name, in.LibraryNumber, in.Purpose,
			orDefault(in.Time, s.now().Format(clockLayout)), fmtTime(s.nowUTC()))
		return err
	})
	if err != nil {
		return nil, err
	}
	return get(s, op, scanAttendance, `SELECT `+attendanceColumns+` FROM attendance WHERE id = ?`, id)
}

// GetAttendance lists the log, most recent entry first.
func (s *Store) GetAttendance() ([]*Attendance, error) {
	return list(s, "list attendance", scanAttendance, `SELECT `+attendanceColumns+` FROM attendance ORDER BY created_at DESC, id DESC`)
}

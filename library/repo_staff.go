package library

import "database/sql"

const staffColumns = `id, name, email, role, phone, department, hire_date, status, created_at`

func scanStaff(row rowScanner) (*Staff, error) {
	var (
		st        Staff
		createdAt string
	)
	if err := row.Scan(&st.ID, &st.Name, &st.Email, &st.Role, &st.Phone, &st.Department, &st.HireDate, &st.Status, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if st.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) AddStaff(in StaffInput) (*Staff, error) {
	const op = "add staff"
	if err := required(op, "name", in.Name); err != nil {
		return nil, err
	}
	if err := required(op, "email", in.Email); err != nil {
		return nil, err
	}
	err := s.withTx(op, func(tx *sql.Tx) error {
		id, err := nextID(tx)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`INSERT INTO staff(id, name, email, role, phone, department, hire_date, status, created_at)
			VALUES(?,?,?,?,?,?,?,?,?)`,
			id, in.Name, in.Email, orDefault(in.Role, "Librarian"), in.Phone, in.Department,
			orDefault(in.HireDate, s.today()), orDefault(in.Status, StatusActive), fmtTime(s.nowUTC()))
		return err
	})
	if err != nil {
		return nil, err
	}
	return get(s, op, scanStaff, `SELECT `+staffColumns+` FROM staff WHERE email = ?`, in.Email)
}

func (s *Store) UpdateStaff(id int64, in StaffUpdate) (*Staff, error) {
	const op = "update staff"
	var set setList
	if err := set.requiredText(op, "name", "name", in.Name); err != nil {
		return nil, err
	}
	if err := set.requiredText(op, "email", "email", in.Email); err != nil {
		return nil, err
	}
	set.text("role", in.Role)
	set.text("phone", in.Phone)
	set.text("department", in.Department)
	set.text("hire_date", in.HireDate)
	set.text("status", in.Status)

	err := s.withTx(op, func(tx *sql.Tx) error {
		found, err := set.exec(tx, "staff", id)
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
	return s.GetStaffByID(id)
}

func (s *Store) DeleteStaff(id int64) (Result, error) {
	return s.deleteByID("delete staff", "staff", id)
}

func (s *Store) GetStaffByID(id int64) (*Staff, error) {
	return get(s, "get staff", scanStaff, `SELECT `+staffColumns+` FROM staff WHERE id = ?`, id)
}

func (s *Store) GetAllStaff() ([]*Staff, error) {
	return list(s, "list staff", scanStaff, `SELECT `+staffColumns+` FROM staff ORDER BY created_at DESC, id DESC`)
}

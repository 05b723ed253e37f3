package library

import (
	"database/sql"
	"strings"
)

const userColumns = `id, username, password_hash, email, first_name, middle_name, last_name, user_type, role, status,
	is_verified, phone, address, membership_id, student_id, department, last_login, created_at, updated_at`

const userOrder = ` ORDER BY last_name, first_name, id`

var userTypes = map[string]struct{}{
	UserTypeAdmin:   {},
	UserTypeStaff:   {},
	UserTypeMember:  {},
	UserTypeStudent: {},
}

func scanUser(row rowScanner) (*LibraryUser, error) {
	var (
		u         LibraryUser
		lastLogin sql.NullString
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.FirstName, &u.MiddleName, &u.LastName,
		&u.UserType, &u.Role, &u.Status, &u.IsVerified, &u.Phone, &u.Address, &u.MembershipID, &u.StudentID,
		&u.Department, &lastLogin, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if u.LastLogin, err = parseNullableTime(lastLogin); err != nil {
		return nil, err
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func checkUserType(op, userType string) error {
	if _, ok := userTypes[userType]; !ok {
		return opErr(op, ErrInvalidInput, "user type must be one of admin, staff, member, student")
	}
	return nil
}

// AddLibraryUser creates a unified identity. Username and email must both
// be unique.
func (s *Store) AddLibraryUser(in LibraryUserInput) (*LibraryUser, error) {
	const op = "add library user"
	if err := required(op, "username", in.Username); err != nil {
		return nil, err
	}
	if err := required(op, "password", in.Password); err != nil {
		return nil, err
	}
	if err := required(op, "email", in.Email); err != nil {
		return nil, err
	}
	userType := orDefault(in.UserType, UserTypeMember)
	if err := checkUserType(op, userType); err != nil {
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
		now := fmtTime(s.nowUTC())
		_, err = tx.Exec(`INSERT INTO library_users(id, username, password_hash, email, first_name, middle_name, last_name,
				user_type, role, status, is_verified, phone, address, membership_id, student_id, department, created_at, updated_at)
			VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			id, in.Username, hash, in.Email, in.FirstName, in.MiddleName, in.LastName,
			userType, orDefault(in.Role, userType), orDefault(in.Status, StatusActive), in.IsVerified,
			in.Phone, in.Address, in.MembershipID, in.StudentID, in.Department, now, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetLibraryUserByUsername(in.Username)
}

// UpdateLibraryUser applies the supplied fields and stamps updated_at.
func (s *Store) UpdateLibraryUser(id int64, in LibraryUserUpdate) (*LibraryUser, error) {
	const op = "update library user"
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
	if err := set.requiredText(op, "email", "email", in.Email); err != nil {
		return nil, err
	}
	set.text("first_name", in.FirstName)
	set.text("middle_name", in.MiddleName)
	set.text("last_name", in.LastName)
	if in.UserType != nil {
		if err := checkUserType(op, *in.UserType); err != nil {
			return nil, err
		}
		set.add("user_type", *in.UserType)
	}
	set.text("role", in.Role)
	set.text("status", in.Status)
	set.flag("is_verified", in.IsVerified)
	set.text("phone", in.Phone)
	set.text("address", in.Address)
	set.text("membership_id", in.MembershipID)
	set.text("student_id", in.StudentID)
	set.text("department", in.Department)
	set.add("updated_at", fmtTime(s.nowUTC()))

	err := s.withTx(op, func(tx *sql.Tx) error {
		found, err := set.exec(tx, "library_users", id)
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
	return s.GetLibraryUserByID(id)
}

// DeleteLibraryUser removes the user along with their sessions and
// permissions.
func (s *Store) DeleteLibraryUser(id int64) (Result, error) {
	return s.deleteByID("delete library user", "library_users", id)
}

func (s *Store) GetLibraryUserByID(id int64) (*LibraryUser, error) {
	return get(s, "get library user", scanUser, `SELECT `+userColumns+` FROM library_users WHERE id = ?`, id)
}

func (s *Store) GetLibraryUserByUsername(username string) (*LibraryUser, error) {
	return get(s, "get library user", scanUser, `SELECT `+userColumns+` FROM library_users WHERE username = ?`, username)
}

// GetAllLibraryUsers lists users sorted by last name, then first name.
func (s *Store) GetAllLibraryUsers() ([]*LibraryUser, error) {
	return list(s, "list library users", scanUser, `SELECT `+userColumns+` FROM library_users`+userOrder)
}

func (s *Store) GetLibraryUsersByType(userType string) ([]*LibraryUser, error) {
	const op = "list library users"
	if err := checkUserType(op, userType); err != nil {
		return nil, err
	}
	return list(s, op, scanUser, `SELECT `+userColumns+` FROM library_users WHERE user_type = ?`+userOrder, userType)
}

// SearchLibraryUsers matches query case-insensitively (ASCII) as a
// substring of username, first or last name, email, membership id or
// student id. An empty query returns no users.
func (s *Store) SearchLibraryUsers(query string) ([]*LibraryUser, error) {
	if strings.TrimSpace(query) == "" {
		return []*LibraryUser{}, nil
	}
	p := likePattern(query)
	return list(s, "search library users", scanUser, `SELECT `+userColumns+` FROM library_users
		WHERE username LIKE ? ESCAPE '\'
			OR first_name LIKE ? ESCAPE '\'
			OR last_name LIKE ? ESCAPE '\'
			OR email LIKE ? ESCAPE '\'
			OR membership_id LIKE ? ESCAPE '\'
			OR student_id LIKE ? ESCAPE '\'`+userOrder, p, p, p, p, p, p)
}

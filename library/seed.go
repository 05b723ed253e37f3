package library

import (
	"database/sql"
	"errors"

	"go.uber.org/zap"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "password"
)

// seedDefaults makes sure the built-in admin account exists.
func (s *Store) seedDefaults() error {
	const op = "seed defaults"
	created := false
	err := s.withTx(op, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRow(`SELECT id FROM admin_users WHERE username = ?`, defaultAdminUsername).Scan(&id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		hash, err := hashPassword(defaultAdminPassword)
		if err != nil {
			return err
		}
		if id, err = nextID(tx); err != nil {
			return err
		}
		_, err = tx.Exec(`INSERT INTO admin_users(id, username, password_hash, full_name, email, role, created_at)
			VALUES(?,?,?,?,?,?,?)`,
			id, defaultAdminUsername, hash, "System Administrator", "admin@library.com", RoleAdmin, fmtTime(s.nowUTC()))
		created = err == nil
		return err
	})
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("seeded default admin", zap.String("username", defaultAdminUsername))
	}
	return nil
}

var sampleStaff = []StaffInput{
	{Name: "Maria Santos", Email: "maria.santos@library.com", Role: "Head Librarian", Department: "Circulation"},
	{Name: "John Reyes", Email: "john.reyes@library.com", Department: "Reference"},
}

var sampleMembers = []MemberInput{
	{MemberID: "M-0001", Name: "Ana Cruz", Email: "ana.cruz@example.com"},
	{MemberID: "M-0002", Name: "Ben Garcia", Email: "ben.garcia@example.com"},
}

var sampleBooks = []BookInput{
	{ISBN: "9780132350884", Title: "Clean Code", Author: "Robert C. Martin", Publisher: "Prentice Hall", Year: 2008, Category: "Programming", TotalCopies: 3, Location: "A1"},
	{ISBN: "9780262033848", Title: "Introduction to Algorithms", Author: "Cormen et al.", Publisher: "MIT Press", Year: 2009, Category: "Computer Science", TotalCopies: 2, Location: "A2"},
	{ISBN: "9780061120084", Title: "To Kill a Mockingbird", Author: "Harper Lee", Publisher: "Harper", Year: 1960, Category: "Fiction", TotalCopies: 4, Location: "F3"},
}

var sampleUsers = []LibraryUserInput{
	{Username: "librarian", Password: "password", Email: "librarian@library.com", FirstName: "Liza", LastName: "Mendoza", UserType: UserTypeStaff, Department: "Circulation"},
	{Username: "student1", Password: "password", Email: "student1@school.edu", FirstName: "Carlo", LastName: "Diaz", UserType: UserTypeStudent, StudentID: "S-2024-001"},
}

// seedSampleData fills empty tables with a small illustrative dataset.
// Rows that fail to insert are logged and skipped.
func (s *Store) seedSampleData() {
	if s.tableEmpty("staff") {
		for _, in := range sampleStaff {
			if _, err := s.AddStaff(in); err != nil {
				s.logger.Warn("skipping sample staff", zap.String("email", in.Email), zap.Error(err))
			}
		}
	}
	if s.tableEmpty("members") {
		for _, in := range sampleMembers {
			if _, err := s.AddMember(in); err != nil {
				s.logger.Warn("skipping sample member", zap.String("member_id", in.MemberID), zap.Error(err))
			}
		}
	}
	if s.tableEmpty("books") {
		for _, in := range sampleBooks {
			if _, err := s.AddBook(in); err != nil {
				s.logger.Warn("skipping sample book", zap.String("isbn", in.ISBN), zap.Error(err))
			}
		}
	}
	if s.tableEmpty("library_users") {
		for _, in := range sampleUsers {
			if _, err := s.AddLibraryUser(in); err != nil {
				s.logger.Warn("skipping sample user", zap.String("username", in.Username), zap.Error(err))
			}
		}
	}
	s.logger.Debug("sample data seeded")
}

func (s *Store) tableEmpty(table string) bool {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		s.logger.Warn("count rows", zap.String("table", table), zap.Error(err))
		return false
	}
	return n == 0
}

package library

import (
	"database/sql"
	"time"
)

// DefaultLoanPeriod is used when a loan is created without a due date.
const DefaultLoanPeriod = 14 * 24 * time.Hour

const loanSelect = `SELECT bb.id, bb.book_id, bb.member_id, bb.borrowed_date, bb.due_date, bb.returned_date, bb.status, bb.created_at,
		b.title, m.name
	FROM borrowed_books bb
	LEFT JOIN books b ON b.id = bb.book_id
	LEFT JOIN members m ON m.id = bb.member_id`

func scanLoan(row rowScanner) (*BorrowedBook, error) {
	var (
		l          BorrowedBook
		bookID     sql.NullInt64
		memberID   sql.NullInt64
		returned   sql.NullString
		createdAt  string
		bookTitle  sql.NullString
		memberName sql.NullString
	)
	if err := row.Scan(&l.ID, &bookID, &memberID, &l.BorrowedDate, &l.DueDate, &returned, &l.Status, &createdAt,
		&bookTitle, &memberName); err != nil {
		return nil, err
	}
	l.BookID = bookID.Int64
	l.MemberID = memberID.Int64
	l.ReturnedDate = returned.String
	if bookTitle.Valid {
		l.BookTitle = &bookTitle.String
	}
	if memberName.Valid {
		l.MemberName = &memberName.String
	}
	var err error
	if l.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func checkDate(op, field, v string) error {
	if _, err := time.Parse(dateLayout, v); err != nil {
		return opErr(op, ErrInvalidInput, "%s must be a YYYY-MM-DD date", field)
	}
	return nil
}

// AddBorrowedBook lends one copy of bookID to memberID and decrements the
// book's available copies in the same transaction. Empty dates default to
// today and today plus DefaultLoanPeriod.
//
// A book with no available copies fails with ErrInsufficientCopies and
// nothing is written.
func (s *Store) AddBorrowedBook(bookID, memberID int64, borrowedDate, dueDate string) (*BorrowedBook, error) {
	const op = "borrow book"
	if borrowedDate == "" {
		borrowedDate = s.today()
	}
	if dueDate == "" {
		dueDate = s.now().Add(DefaultLoanPeriod).Format(dateLayout)
	}
	if err := checkDate(op, "borrowed date", borrowedDate); err != nil {
		return nil, err
	}
	if err := checkDate(op, "due date", dueDate); err != nil {
		return nil, err
	}

	var id int64
	err := s.withTx(op, func(tx *sql.Tx) error {
		var available int
		err := tx.QueryRow(`SELECT copies_available FROM books WHERE id = ?`, bookID).Scan(&available)
		if err == sql.ErrNoRows {
			return opErr(op, ErrNotFound, "book %d does not exist", bookID)
		}
		if err != nil {
			return err
		}

		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM members WHERE id = ?)`, memberID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return opErr(op, ErrNotFound, "member %d does not exist", memberID)
		}

		if available <= 0 {
			return opErr(op, ErrInsufficientCopies, "book %d has no copies available", bookID)
		}

		if id, err = nextID(tx); err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO borrowed_books(id, book_id, member_id, borrowed_date, due_date, status, created_at)
			VALUES(?,?,?,?,?,?,?)`,
			id, bookID, memberID, borrowedDate, dueDate, LoanBorrowed, fmtTime(s.nowUTC())); err != nil {
			return err
		}
		_, err = tx.Exec(`UPDATE books SET copies_available = copies_available - 1 WHERE id = ? AND copies_available > 0`, bookID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetBorrowedBookByID(id)
}

// ReturnBook closes a loan, stamps today's date and gives the copy back,
// never raising copies_available above total_copies.
//
// Returning a loan that is already returned fails with ErrAlreadyReturned
// and leaves the copy count unchanged.
func (s *Store) ReturnBook(borrowedBookID int64) (*BorrowedBook, error) {
	const op = "return book"
	err := s.withTx(op, func(tx *sql.Tx) error {
		var (
			status string
			bookID sql.NullInt64
		)
		err := tx.QueryRow(`SELECT status, book_id FROM borrowed_books WHERE id = ?`, borrowedBookID).Scan(&status, &bookID)
		if err == sql.ErrNoRows {
			return opErr(op, ErrNotFound, "loan %d does not exist", borrowedBookID)
		}
		if err != nil {
			return err
		}
		if status == LoanReturned {
			return opErr(op, ErrAlreadyReturned, "loan %d was already returned", borrowedBookID)
		}

		if _, err := tx.Exec(`UPDATE borrowed_books SET status = ?, returned_date = ? WHERE id = ?`,
			LoanReturned, s.today(), borrowedBookID); err != nil {
			return err
		}
		return releaseCopy(tx, bookID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetBorrowedBookByID(borrowedBookID)
}

func releaseCopy(tx *sql.Tx, bookID sql.NullInt64) error {
	if !bookID.Valid {
		return nil
	}
	_, err := tx.Exec(`UPDATE books SET copies_available = MIN(copies_available + 1, total_copies) WHERE id = ?`, bookID.Int64)
	return err
}

// DeleteBorrowedBook removes a loan record. Deleting a loan that is still
// out gives its copy back to the book.
func (s *Store) DeleteBorrowedBook(id int64) (Result, error) {
	const op = "delete loan"
	var res Result
	err := s.withTx(op, func(tx *sql.Tx) error {
		var (
			status string
			bookID sql.NullInt64
		)
		err := tx.QueryRow(`SELECT status, book_id FROM borrowed_books WHERE id = ?`, id).Scan(&status, &bookID)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		if status == LoanBorrowed {
			if err := releaseCopy(tx, bookID); err != nil {
				return err
			}
		}
		r, err := tx.Exec(`DELETE FROM borrowed_books WHERE id = ?`, id)
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

func (s *Store) GetBorrowedBookByID(id int64) (*BorrowedBook, error) {
	return get(s, "get loan", scanLoan, loanSelect+` WHERE bb.id = ?`, id)
}

// GetAllBorrowedBooks lists every loan with its book title and member name.
// A deleted book or member leaves the matching field nil.
func (s *Store) GetAllBorrowedBooks() ([]*BorrowedBook, error) {
	return list(s, "list loans", scanLoan, loanSelect+` ORDER BY bb.created_at DESC, bb.id DESC`)
}

// GetOverdueBooks lists open loans whose due date is before today.
func (s *Store) GetOverdueBooks() ([]*BorrowedBook, error) {
	return list(s, "list overdue loans", scanLoan, loanSelect+` WHERE bb.status = ? AND bb.due_date < ?
		ORDER BY bb.due_date, bb.id`, LoanBorrowed, s.today())
}

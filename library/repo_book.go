package library

import (
	"database/sql"
	"strings"
)

const bookColumns = `id, isbn, title, author, publisher, year, category, copies_available, total_copies, location, created_at`

func scanBook(row rowScanner) (*Book, error) {
	var (
		b         Book
		createdAt string
	)
	if err := row.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Publisher, &b.Year, &b.Category,
		&b.CopiesAvailable, &b.TotalCopies, &b.Location, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func checkCopies(op string, available, total int) error {
	if total < 0 {
		return opErr(op, ErrInvalidInput, "total copies must not be negative")
	}
	if available < 0 || available > total {
		return opErr(op, ErrInvalidInput, "available copies must be between 0 and %d", total)
	}
	return nil
}

// AddBook catalogs a title. TotalCopies defaults to 1 and CopiesAvailable
// defaults to TotalCopies.
func (s *Store) AddBook(in BookInput) (*Book, error) {
	const op = "add book"
	if err := required(op, "isbn", in.ISBN); err != nil {
		return nil, err
	}
	if err := required(op, "title", in.Title); err != nil {
		return nil, err
	}
	total := in.TotalCopies
	if total == 0 {
		total = 1
	}
	available := total
	if in.CopiesAvailable != nil {
		available = *in.CopiesAvailable
	}
	if err := checkCopies(op, available, total); err != nil {
		return nil, err
	}

	err := s.withTx(op, func(tx *sql.Tx) error {
		id, err := nextID(tx)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`INSERT INTO books(id, isbn, title, author, publisher, year, category, copies_available, total_copies, location, created_at)
			VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
			id, in.ISBN, in.Title, in.Author, in.Publisher, in.Year, in.Category, available, total, in.Location, fmtTime(s.nowUTC()))
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetBookByISBN(in.ISBN)
}

// UpdateBook applies the supplied fields. The resulting copy counts must
// still satisfy 0 <= available <= total.
func (s *Store) UpdateBook(id int64, in BookUpdate) (*Book, error) {
	const op = "update book"
	var set setList
	if err := set.requiredText(op, "isbn", "isbn", in.ISBN); err != nil {
		return nil, err
	}
	if err := set.requiredText(op, "title", "title", in.Title); err != nil {
		return nil, err
	}
	set.text("author", in.Author)
	set.text("publisher", in.Publisher)
	set.number("year", in.Year)
	set.text("category", in.Category)
	set.number("copies_available", in.CopiesAvailable)
	set.number("total_copies", in.TotalCopies)
	set.text("location", in.Location)

	err := s.withTx(op, func(tx *sql.Tx) error {
		var available, total int
		err := tx.QueryRow(`SELECT copies_available, total_copies FROM books WHERE id = ?`, id).Scan(&available, &total)
		if err == sql.ErrNoRows {
			return &OpError{Op: op, Kind: ErrNotFound}
		}
		if err != nil {
			return err
		}
		if in.CopiesAvailable != nil {
			available = *in.CopiesAvailable
		}
		if in.TotalCopies != nil {
			total = *in.TotalCopies
		}
		if err := checkCopies(op, available, total); err != nil {
			return err
		}
		_, err = set.exec(tx, "books", id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetBookByID(id)
}

// DeleteBook removes the title. Existing loans keep their history with a
// cleared book reference.
func (s *Store) DeleteBook(id int64) (Result, error) {
	return s.deleteByID("delete book", "books", id)
}

func (s *Store) GetBookByID(id int64) (*Book, error) {
	return get(s, "get book", scanBook, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
}

func (s *Store) GetBookByISBN(isbn string) (*Book, error) {
	return get(s, "get book", scanBook, `SELECT `+bookColumns+` FROM books WHERE isbn = ?`, isbn)
}

func (s *Store) GetAllBooks() ([]*Book, error) {
	return list(s, "list books", scanBook, `SELECT `+bookColumns+` FROM books ORDER BY created_at DESC, id DESC`)
}

// SearchBooks matches q as a case-insensitive substring of title, author or
// isbn.
func (s *Store) SearchBooks(q string) ([]*Book, error) {
	if strings.TrimSpace(q) == "" {
		return []*Book{}, nil
	}
	p := likePattern(q)
	return list(s, "search books", scanBook, `SELECT `+bookColumns+` FROM books
		WHERE title LIKE ? ESCAPE '\' OR author LIKE ? ESCAPE '\' OR isbn LIKE ? ESCAPE '\'
		ORDER BY title, id`, p, p, p)
}

package library

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	clockLayout     = "15:04"
	// Fixed width so stored timestamps sort lexically.
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

func (s *Store) nowUTC() time.Time {
	return s.now().UTC()
}

func (s *Store) today() string {
	return s.now().Format(dateLayout)
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t, nil
}

func parseNullableTime(raw sql.NullString) (*time.Time, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	t, err := parseTime(raw.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// setList accumulates "col = ?" fragments for a partial UPDATE. Only the
// fields the caller supplied end up in the statement; an explicit empty
// value is still written.
type setList struct {
	cols []string
	args []any
}

func (l *setList) add(col string, v any) {
	l.cols = append(l.cols, col+" = ?")
	l.args = append(l.args, v)
}

func (l *setList) text(col string, v *string) {
	if v != nil {
		l.add(col, *v)
	}
}

// requiredText is text for a column that may be left out but never blanked.
func (l *setList) requiredText(op, field, col string, v *string) error {
	if v == nil {
		return nil
	}
	if err := required(op, field, *v); err != nil {
		return err
	}
	l.add(col, *v)
	return nil
}

func (l *setList) number(col string, v *int) {
	if v != nil {
		l.add(col, *v)
	}
}

func (l *setList) flag(col string, v *bool) {
	if v != nil {
		l.add(col, *v)
	}
}

func (l *setList) empty() bool { return len(l.cols) == 0 }

// exec runs the UPDATE against table for id and reports whether the row
// existed. An empty setList still checks existence.
func (l *setList) exec(tx *sql.Tx, table string, id int64) (bool, error) {
	if l.empty() {
		var exists bool
		err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM `+table+` WHERE id = ?)`, id).Scan(&exists)
		return exists, err
	}
	query := `UPDATE ` + table + ` SET ` + strings.Join(l.cols, ", ") + ` WHERE id = ?`
	res, err := tx.Exec(query, append(l.args, id)...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// likePattern builds a substring pattern for LIKE ... ESCAPE '\'.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

func required(op, field, v string) error {
	if strings.TrimSpace(v) == "" {
		return opErr(op, ErrInvalidInput, "%s is required", field)
	}
	return nil
}

package library

import (
	"database/sql"
	"time"
)

// recentLoanWindow bounds the "recent loans" figure on the dashboard.
const recentLoanWindow = 7 * 24 * time.Hour

// DashboardStats computes the librarian dashboard counters in a single
// read transaction so every figure reflects the same snapshot.
// TotalBooks and AvailableBooks count copies, not titles.
func (s *Store) DashboardStats() (*DashboardStats, error) {
	const op = "dashboard stats"
	now := s.nowUTC()
	stats := &DashboardStats{
		ActiveUsersByType: map[string]int{},
		GeneratedAt:       now,
	}
	err := s.withTx(op, func(tx *sql.Tx) error {
		err := tx.QueryRow(`SELECT
				(SELECT COUNT(*) FROM members WHERE status = ?),
				(SELECT COALESCE(SUM(total_copies), 0) FROM books),
				(SELECT COALESCE(SUM(copies_available), 0) FROM books),
				(SELECT COUNT(*) FROM borrowed_books WHERE status = ?),
				(SELECT COUNT(*) FROM staff WHERE status = ?),
				(SELECT COUNT(*) FROM borrowed_books WHERE created_at >= ?)`,
			StatusActive, LoanBorrowed, StatusActive, fmtTime(now.Add(-recentLoanWindow)),
		).Scan(&stats.ActiveMembers, &stats.TotalBooks, &stats.AvailableBooks,
			&stats.BorrowedBooks, &stats.ActiveStaff, &stats.RecentLoans)
		if err != nil {
			return err
		}

		rows, err := tx.Query(`SELECT user_type, COUNT(*) FROM library_users WHERE status = ? GROUP BY user_type`, StatusActive)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				userType string
				n        int
			)
			if err := rows.Scan(&userType, &n); err != nil {
				return err
			}
			stats.ActiveUsersByType[userType] = n
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

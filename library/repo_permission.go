package library

import "database/sql"

const permissionColumns = `id, user_id, permission_name, permission_value, created_at`

func scanPermission(row rowScanner) (*UserPermission, error) {
	var (
		p         UserPermission
		createdAt string
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.PermissionName, &p.PermissionValue, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetPermission inserts or replaces the (userID, name) permission. There is
// never more than one row per pair.
func (s *Store) SetPermission(userID int64, name string, value bool) (*UserPermission, error) {
	const op = "set permission"
	if err := required(op, "permission name", name); err != nil {
		return nil, err
	}
	err := s.withTx(op, func(tx *sql.Tx) error {
		id, err := nextID(tx)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`INSERT INTO user_permissions(id, user_id, permission_name, permission_value, created_at)
			VALUES(?,?,?,?,?)
			ON CONFLICT(user_id, permission_name) DO UPDATE SET permission_value = excluded.permission_value`,
			id, userID, name, value, fmtTime(s.nowUTC()))
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetPermission(userID, name)
}

func (s *Store) GetPermission(userID int64, name string) (*UserPermission, error) {
	return get(s, "get permission", scanPermission,
		`SELECT `+permissionColumns+` FROM user_permissions WHERE user_id = ? AND permission_name = ?`, userID, name)
}

func (s *Store) GetPermissions(userID int64) ([]*UserPermission, error) {
	return list(s, "list permissions", scanPermission,
		`SELECT `+permissionColumns+` FROM user_permissions WHERE user_id = ? ORDER BY permission_name`, userID)
}

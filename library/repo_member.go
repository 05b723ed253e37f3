package library

import "database/sql"

const memberColumns = `id, member_id, name, email, phone, address, membership_date, status, created_at`

func scanMember(row rowScanner) (*Member, error) {
	var (
		m         Member
		createdAt string
	)
	if err := row.Scan(&m.ID, &m.MemberID, &m.Name, &m.Email, &m.Phone, &m.Address, &m.MembershipDate, &m.Status, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// AddMember registers a patron. MemberID is the card number and must be
// unique.
func (s *Store) AddMember(in MemberInput) (*Member, error) {
	const op = "add member"
	if err := required(op, "member id", in.MemberID); err != nil {
		return nil, err
	}
	if err := required(op, "name", in.Name); err != nil {
		return nil, err
	}
	err := s.withTx(op, func(tx *sql.Tx) error {
		id, err := nextID(tx)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`INSERT INTO members(id, member_id, name, email, phone, address, membership_date, status, created_at)
			VALUES(?,?,?,?,?,?,?,?,?)`,
			id, in.MemberID, in.Name, in.Email, in.Phone, in.Address,
			orDefault(in.MembershipDate, s.today()), orDefault(in.Status, StatusActive), fmtTime(s.nowUTC()))
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetMemberByMemberID(in.MemberID)
}

func (s *Store) UpdateMember(id int64, in MemberUpdate) (*Member, error) {
	const op = "update member"
	var set setList
	if err := set.requiredText(op, "member id", "member_id", in.MemberID); err != nil {
		return nil, err
	}
	if err := set.requiredText(op, "name", "name", in.Name); err != nil {
		return nil, err
	}
	set.text("email", in.Email)
	set.text("phone", in.Phone)
	set.text("address", in.Address)
	set.text("membership_date", in.MembershipDate)
	set.text("status", in.Status)

	err := s.withTx(op, func(tx *sql.Tx) error {
		found, err := set.exec(tx, "members", id)
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
	return s.GetMemberByID(id)
}

// DeleteMember removes the member. Their loans and feedback stay on record
// with a cleared member reference.
func (s *Store) DeleteMember(id int64) (Result, error) {
	return s.deleteByID("delete member", "members", id)
}

func (s *Store) GetMemberByID(id int64) (*Member, error) {
	return get(s, "get member", scanMember, `SELECT `+memberColumns+` FROM members WHERE id = ?`, id)
}

func (s *Store) GetMemberByMemberID(memberID string) (*Member, error) {
	return get(s, "get member", scanMember, `SELECT `+memberColumns+` FROM members WHERE member_id = ?`, memberID)
}

func (s *Store) GetAllMembers() ([]*Member, error) {
	return list(s, "list members", scanMember, `SELECT `+memberColumns+` FROM members ORDER BY created_at DESC, id DESC`)
}

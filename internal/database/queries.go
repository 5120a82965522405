package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

func (db *PgChatRepository) CreateAccount(params CreateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO accounts (full_name, email, password_hash, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $4) RETURNING id, full_name, email, created_at, updated_at",
		params.FullName,
		params.EmailAddress,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.FullName,
		&u.EmailAddress,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgChatRepository) UpdateAccount(params UpdateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"UPDATE accounts SET full_name = $2, password_hash = $3, profile_pic = $4, updated_at = $5 "+
			"WHERE id = $1 RETURNING id, full_name, email, profile_pic, created_at, updated_at",
		params.UserId,
		params.FullName,
		params.PasswordHash,
		params.ProfilePic,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.FullName,
		&u.EmailAddress,
		&u.ProfilePic,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgChatRepository) GetAccountById(accountId int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, full_name, email, profile_pic, created_at, updated_at FROM accounts "+
			"WHERE id = $1 LIMIT 1",
		accountId,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.FullName,
		&user.EmailAddress,
		&user.ProfilePic,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgChatRepository) GetAccountByEmail(email string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, full_name, email, password_hash, profile_pic, created_at, updated_at FROM accounts "+
			"WHERE email = $1 LIMIT 1",
		email,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.FullName,
		&user.EmailAddress,
		&user.PasswordHash,
		&user.ProfilePic,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgChatRepository) ListAccountsExcept(accountId int) ([]User, error) {
	rows, err := db.conn.Query(
		"SELECT id, full_name, email, profile_pic, created_at, updated_at FROM accounts "+
			"WHERE id != $1 ORDER BY full_name",
		accountId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Id, &u.FullName, &u.EmailAddress, &u.ProfilePic, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func (db *PgChatRepository) CreateFollow(accountId, targetId int) error {
	_, err := db.conn.Exec(
		"INSERT INTO follows (account_id, target_id, created_at) VALUES ($1, $2, $3) "+
			"ON CONFLICT (account_id, target_id) DO NOTHING",
		accountId,
		targetId,
		time.Now().UTC(),
	)

	return err
}

func (db *PgChatRepository) DeleteFollow(accountId, targetId int) error {
	_, err := db.conn.Exec(
		"DELETE FROM follows WHERE account_id = $1 AND target_id = $2",
		accountId,
		targetId,
	)

	return err
}

func (db *PgChatRepository) ListFollowing(accountId int) ([]User, error) {
	rows, err := db.conn.Query(
		"SELECT a.id, a.full_name, a.profile_pic FROM accounts a "+
			"JOIN follows f ON f.target_id = a.id WHERE f.account_id = $1 ORDER BY a.full_name",
		accountId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Id, &u.FullName, &u.ProfilePic); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func (db *PgChatRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	res := db.conn.QueryRow(
		"INSERT INTO messages (sender_id, receiver_id, text, media_url, media_type, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, sender_id, receiver_id, text, media_url, media_type, created_at",
		params.SenderId,
		params.ReceiverId,
		params.Text,
		params.MediaUrl,
		params.MediaType,
		time.Now().UTC(),
	)

	var m Message
	err := res.Scan(
		&m.Id,
		&m.SenderId,
		&m.ReceiverId,
		&m.Text,
		&m.MediaUrl,
		&m.MediaType,
		&m.CreatedAt,
	)

	return m, err
}

// ListMessagesBetween returns the full conversation between two accounts in
// creation order, regardless of direction.
func (db *PgChatRepository) ListMessagesBetween(accountA, accountB int) ([]Message, error) {
	rows, err := db.conn.Query(
		"SELECT id, sender_id, receiver_id, text, media_url, media_type, created_at FROM messages "+
			"WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1) "+
			"ORDER BY id",
		accountA,
		accountB,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Id, &m.SenderId, &m.ReceiverId, &m.Text, &m.MediaUrl, &m.MediaType, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

func (db *PgChatRepository) CreateStatus(params CreateStatusParams) (Status, error) {
	res := db.conn.QueryRow(
		"INSERT INTO statuses (external_id, account_id, media_url, media_type, caption, created_at, expires_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7) "+
			"RETURNING id, external_id, account_id, media_url, media_type, caption, created_at, expires_at",
		params.ExternalId,
		params.AccountId,
		params.MediaUrl,
		params.MediaType,
		params.Caption,
		time.Now().UTC(),
		params.ExpiresAt,
	)

	var s Status
	err := res.Scan(
		&s.Id,
		&s.ExternalId,
		&s.AccountId,
		&s.MediaUrl,
		&s.MediaType,
		&s.Caption,
		&s.CreatedAt,
		&s.ExpiresAt,
	)

	return s, err
}

func (db *PgChatRepository) GetStatusByExternalId(externalId string) (Status, error) {
	row := db.conn.QueryRow(
		"SELECT id, external_id, account_id, media_url, media_type, caption, created_at, expires_at FROM statuses "+
			"WHERE external_id = $1 LIMIT 1",
		externalId,
	)

	var s Status
	err := row.Scan(
		&s.Id,
		&s.ExternalId,
		&s.AccountId,
		&s.MediaUrl,
		&s.MediaType,
		&s.Caption,
		&s.CreatedAt,
		&s.ExpiresAt,
	)

	return s, err
}

// ListActiveStatuses returns unexpired statuses posted by the account or
// anyone it follows, newest first, with seen-by entries attached.
func (db *PgChatRepository) ListActiveStatuses(accountId int) ([]Status, error) {
	rows, err := db.conn.Query(
		"SELECT s.id, s.external_id, s.account_id, a.full_name, s.media_url, s.media_type, s.caption, s.created_at, s.expires_at "+
			"FROM statuses s JOIN accounts a ON a.id = s.account_id "+
			"WHERE s.expires_at > $2 AND (s.account_id = $1 OR s.account_id IN "+
			"(SELECT target_id FROM follows WHERE account_id = $1)) "+
			"ORDER BY s.created_at DESC",
		accountId,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses, err := scanStatuses(rows)
	if err != nil {
		return nil, err
	}

	return db.attachStatusViews(statuses)
}

func (db *PgChatRepository) ListOwnStatuses(accountId int) ([]Status, error) {
	rows, err := db.conn.Query(
		"SELECT s.id, s.external_id, s.account_id, a.full_name, s.media_url, s.media_type, s.caption, s.created_at, s.expires_at "+
			"FROM statuses s JOIN accounts a ON a.id = s.account_id "+
			"WHERE s.account_id = $1 AND s.expires_at > $2 ORDER BY s.created_at DESC",
		accountId,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses, err := scanStatuses(rows)
	if err != nil {
		return nil, err
	}

	return db.attachStatusViews(statuses)
}

func scanStatuses(rows *sql.Rows) ([]Status, error) {
	var statuses []Status
	for rows.Next() {
		var s Status
		if err := rows.Scan(&s.Id, &s.ExternalId, &s.AccountId, &s.FullName, &s.MediaUrl, &s.MediaType, &s.Caption, &s.CreatedAt, &s.ExpiresAt); err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}

	return statuses, rows.Err()
}

func (db *PgChatRepository) attachStatusViews(statuses []Status) ([]Status, error) {
	if len(statuses) == 0 {
		return statuses, nil
	}

	ids := make([]int64, len(statuses))
	idx := make(map[int]int, len(statuses))
	for i, s := range statuses {
		ids[i] = int64(s.Id)
		idx[s.Id] = i
	}

	rows, err := db.conn.Query(
		"SELECT status_id, account_id, full_name, seen_at FROM status_views "+
			"WHERE status_id = ANY($1) ORDER BY seen_at",
		pq.Array(ids),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var statusId int
		var v StatusView
		if err := rows.Scan(&statusId, &v.AccountId, &v.FullName, &v.SeenAt); err != nil {
			return nil, err
		}
		i, ok := idx[statusId]
		if !ok {
			return nil, fmt.Errorf("unexpected status id %d in views", statusId)
		}
		statuses[i].Views = append(statuses[i].Views, v)
	}

	return statuses, rows.Err()
}

// MarkStatusSeen is idempotent: a repeat view by the same account is ignored.
func (db *PgChatRepository) MarkStatusSeen(statusId, accountId int, fullName string) error {
	_, err := db.conn.Exec(
		"INSERT INTO status_views (status_id, account_id, full_name, seen_at) VALUES ($1, $2, $3, $4) "+
			"ON CONFLICT (status_id, account_id) DO NOTHING",
		statusId,
		accountId,
		fullName,
		time.Now().UTC(),
	)

	return err
}

func (db *PgChatRepository) DeleteStatus(statusId, ownerId int) error {
	res, err := db.conn.Exec(
		"DELETE FROM statuses WHERE id = $1 AND account_id = $2",
		statusId,
		ownerId,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (db *PgChatRepository) DeleteExpiredStatuses() (int64, error) {
	res, err := db.conn.Exec(
		"DELETE FROM statuses WHERE expires_at <= $1",
		time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (db *PgChatRepository) CreateGroup(params CreateGroupParams) (Group, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return Group{}, err
	}
	defer tx.Rollback()

	res := tx.QueryRow(
		"INSERT INTO groups (external_id, name, owner_id, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $4) RETURNING id, external_id, name, owner_id, created_at, updated_at",
		params.ExternalId,
		params.Name,
		params.OwnerId,
		time.Now().UTC(),
	)

	var g Group
	if err := res.Scan(&g.Id, &g.ExternalId, &g.Name, &g.OwnerId, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return Group{}, err
	}

	for _, memberId := range params.MemberIds {
		if _, err := tx.Exec(
			"INSERT INTO group_members (group_id, account_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			g.Id,
			memberId,
		); err != nil {
			return Group{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Group{}, err
	}

	return g, nil
}

func (db *PgChatRepository) ListGroupsForAccount(accountId int) ([]Group, error) {
	rows, err := db.conn.Query(
		"SELECT g.id, g.external_id, g.name, g.owner_id, g.created_at, g.updated_at, "+
			"a.id, a.full_name, a.email "+
			"FROM groups g "+
			"JOIN group_members gm ON gm.group_id = g.id "+
			"JOIN group_members m ON m.group_id = g.id "+
			"JOIN accounts a ON a.id = m.account_id "+
			"WHERE gm.account_id = $1 ORDER BY g.id, a.id",
		accountId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var g Group
		var member User
		if err := rows.Scan(&g.Id, &g.ExternalId, &g.Name, &g.OwnerId, &g.CreatedAt, &g.UpdatedAt,
			&member.Id, &member.FullName, &member.EmailAddress); err != nil {
			return nil, err
		}

		if len(groups) == 0 || groups[len(groups)-1].Id != g.Id {
			groups = append(groups, g)
		}
		last := &groups[len(groups)-1]
		last.Members = append(last.Members, member)
	}

	return groups, rows.Err()
}

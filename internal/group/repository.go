package group

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles group and member data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new group repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateGroup inserts a new group
func (r *Repository) CreateGroup(ctx context.Context, g *Group) error {
	query := `
		INSERT INTO groups (id, name, type, start_date, end_date, primary_location)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		g.ID,
		g.Name,
		g.Type,
		g.StartDate,
		g.EndDate,
		g.PrimaryLocation,
	).Scan(&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	return nil
}

// GetGroupByID retrieves a group by its ID, or nil when it does not exist
func (r *Repository) GetGroupByID(ctx context.Context, id string) (*Group, error) {
	query := `
		SELECT id, name, type, start_date, end_date, primary_location, created_at, updated_at
		FROM groups
		WHERE id = $1
	`

	g := &Group{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&g.ID,
		&g.Name,
		&g.Type,
		&g.StartDate,
		&g.EndDate,
		&g.PrimaryLocation,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return g, nil
}

// ListGroups retrieves all groups ordered by most recently updated
func (r *Repository) ListGroups(ctx context.Context) ([]*Group, error) {
	query := `
		SELECT id, name, type, start_date, end_date, primary_location, created_at, updated_at
		FROM groups
		ORDER BY updated_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		g := &Group{}
		if err := rows.Scan(
			&g.ID,
			&g.Name,
			&g.Type,
			&g.StartDate,
			&g.EndDate,
			&g.PrimaryLocation,
			&g.CreatedAt,
			&g.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}

	return groups, rows.Err()
}

// UpdateGroup updates a group's mutable fields
func (r *Repository) UpdateGroup(ctx context.Context, g *Group) error {
	query := `
		UPDATE groups
		SET name = $2, start_date = $3, end_date = $4, primary_location = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		g.ID,
		g.Name,
		g.StartDate,
		g.EndDate,
		g.PrimaryLocation,
	).Scan(&g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}

	return nil
}

// DeleteGroup deletes a group and everything it owns (cascaded in schema)
func (r *Repository) DeleteGroup(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

// CreateMember inserts a new group member
func (r *Repository) CreateMember(ctx context.Context, m *Member) error {
	query := `
		INSERT INTO group_members (id, group_id, user_id, display_name, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		m.ID,
		m.GroupID,
		m.UserID,
		m.DisplayName,
		m.Email,
	).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}

	return nil
}

// GetMemberByID retrieves a member by its ID, or nil when it does not exist
func (r *Repository) GetMemberByID(ctx context.Context, id string) (*Member, error) {
	query := `
		SELECT id, group_id, user_id, display_name, email, created_at
		FROM group_members
		WHERE id = $1
	`

	m := &Member{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID,
		&m.GroupID,
		&m.UserID,
		&m.DisplayName,
		&m.Email,
		&m.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return m, nil
}

// ListMembersByGroupID retrieves the members of a group in insertion order
func (r *Repository) ListMembersByGroupID(ctx context.Context, groupID string) ([]*Member, error) {
	query := `
		SELECT id, group_id, user_id, display_name, email, created_at
		FROM group_members
		WHERE group_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		m := &Member{}
		if err := rows.Scan(
			&m.ID,
			&m.GroupID,
			&m.UserID,
			&m.DisplayName,
			&m.Email,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

// DeleteMember deletes a group member
func (r *Repository) DeleteMember(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM group_members WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return nil
}

// CountMemberReferences counts expense participants and payments that point
// at the member. Members with references cannot be removed without breaking
// referential integrity of the group snapshot.
func (r *Repository) CountMemberReferences(ctx context.Context, memberID string) (int, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM expense_participants WHERE member_id = $1) +
			(SELECT COUNT(*) FROM expense_payments WHERE payer_id = $1)
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, memberID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count member references: %w", err)
	}

	return count, nil
}

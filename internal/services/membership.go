package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/esusuconfam/esusu-api/internal/database"
	"github.com/esusuconfam/esusu-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrAlreadyInGroup = errors.New("user already belongs to a group")
	ErrGroupFull      = errors.New("group is at maximum capacity")
	ErrNotAMember     = errors.New("user is not a member of this group")
)

// MembershipService enforces the two membership invariants: a user belongs to
// at most one group, and a group never exceeds its capacity. Every join path
// funnels through ClaimTx so the validation and the seat insert commit as one
// unit.
type MembershipService struct {
	db *database.DB
}

func NewMembershipService(db *database.DB) *MembershipService {
	return &MembershipService{db: db}
}

// Claim admits userID into groupID in its own transaction.
func (s *MembershipService) Claim(ctx context.Context, userID, groupID uuid.UUID) (*models.GroupMember, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	member, err := s.ClaimTx(ctx, tx, userID, groupID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return member, nil
}

// ClaimTx admits userID into groupID inside the caller's transaction. The
// group row is locked for the duration, so concurrent claims for the last
// open seat serialize and exactly one wins. The UNIQUE(user_id) constraint on
// group_members is the final arbiter when two claims for the same user slip
// past the pre-check. Membership is checked before capacity, so a user
// double-submitting a join sees "already belongs to a group" rather than
// "group is at maximum capacity".
func (s *MembershipService) ClaimTx(ctx context.Context, tx pgx.Tx, userID, groupID uuid.UUID) (*models.GroupMember, error) {
	var maxCapacity int
	err := tx.QueryRow(ctx, `
		SELECT max_capacity FROM groups WHERE id = $1 FOR UPDATE
	`, groupID).Scan(&maxCapacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to load group: %w", err)
	}

	var inGroup bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM group_members WHERE user_id = $1)
	`, userID).Scan(&inGroup)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if inGroup {
		return nil, ErrAlreadyInGroup
	}

	var count int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM group_members WHERE group_id = $1
	`, groupID).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}
	if count >= maxCapacity {
		return nil, ErrGroupFull
	}

	var member models.GroupMember
	err = tx.QueryRow(ctx, `
		INSERT INTO group_members (user_id, group_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING id, user_id, group_id, joined_at
	`, userID, groupID).Scan(&member.ID, &member.UserID, &member.GroupID, &member.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the uniqueness race after the pre-check.
			return nil, ErrAlreadyInGroup
		}
		return nil, fmt.Errorf("failed to insert membership: %w", err)
	}
	return &member, nil
}

// Release drops userID's seat in groupID. Request and invite history is left
// untouched; terminal rows are historical records.
func (s *MembershipService) Release(ctx context.Context, groupID, userID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM group_members WHERE group_id = $1 AND user_id = $2
	`, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to release membership: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotAMember
	}
	return nil
}

// HasMembership reports whether the user currently holds a seat in any group.
// Callers use it for early validation; ClaimTx re-checks inside the
// transaction.
func (s *MembershipService) HasMembership(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM group_members WHERE user_id = $1)
	`, userID).Scan(&exists)
	return exists, err
}

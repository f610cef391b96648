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
	ErrNotGroupOwner        = errors.New("only the group owner can perform this action")
	ErrNotPublicGroup       = errors.New("cannot request to join a private group")
	ErrPrivateOnlyInvites   = errors.New("invites are only for private groups")
	ErrDuplicateJoinRequest = errors.New("a join request for this group already exists")
	ErrDuplicateInvite      = errors.New("user already has an invite for this group")
	ErrRequestNotFound      = errors.New("join request not found")
	ErrRequestProcessed     = errors.New("this join request has already been processed")
	ErrCannotRemoveSelf     = errors.New("group owner cannot remove themselves")
)

// Join request actions accepted by HandleJoinRequest.
const (
	ActionApprove = "APPROVE"
	ActionReject  = "REJECT"
)

type CreateGroupInput struct {
	Name        string
	Description string
	MaxCapacity int
	Visibility  string
}

type GroupService struct {
	db         *database.DB
	membership *MembershipService
}

func NewGroupService(db *database.DB, membership *MembershipService) *GroupService {
	return &GroupService{db: db, membership: membership}
}

// Create inserts the group and seats the creator as its founding member in
// one transaction; a group is never observable without a member. Private
// groups get a generated invite code, public ones none.
func (s *GroupService) Create(ctx context.Context, ownerID uuid.UUID, input CreateGroupInput) (*models.Group, error) {
	inGroup, err := s.membership.HasMembership(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if inGroup {
		return nil, ErrAlreadyInGroup
	}

	var inviteCode *string
	if input.Visibility == models.VisibilityPrivate {
		code := uuid.New().String()
		inviteCode = &code
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var group models.Group
	err = tx.QueryRow(ctx, `
		INSERT INTO groups (name, description, max_capacity, visibility, invite_code, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, description, max_capacity, visibility, invite_code, owner_id, created_at, updated_at
	`, input.Name, input.Description, input.MaxCapacity, input.Visibility, inviteCode, ownerID).Scan(
		&group.ID, &group.Name, &group.Description, &group.MaxCapacity,
		&group.Visibility, &group.InviteCode, &group.OwnerID, &group.CreatedAt, &group.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	if _, err := s.membership.ClaimTx(ctx, tx, ownerID, group.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	group.MemberCount = 1
	return &group, nil
}

func (s *GroupService) GetByID(ctx context.Context, groupID uuid.UUID) (*models.Group, error) {
	var group models.Group
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, name, description, max_capacity, visibility, invite_code, owner_id, created_at, updated_at,
		       (SELECT COUNT(*) FROM group_members gm WHERE gm.group_id = groups.id) AS member_count
		FROM groups WHERE id = $1
	`, groupID).Scan(
		&group.ID, &group.Name, &group.Description, &group.MaxCapacity,
		&group.Visibility, &group.InviteCode, &group.OwnerID, &group.CreatedAt, &group.UpdatedAt,
		&group.MemberCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	return &group, nil
}

// SearchPublic lists public groups, optionally filtered by a case-insensitive
// name fragment, newest first. Invite codes never appear in search results.
func (s *GroupService) SearchPublic(ctx context.Context, name string) ([]models.Group, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT g.id, g.name, g.description, g.max_capacity, g.visibility, g.owner_id, g.created_at, g.updated_at,
		       (SELECT COUNT(*) FROM group_members gm WHERE gm.group_id = g.id) AS member_count,
		       u.id, u.name, u.email
		FROM groups g
		JOIN users u ON g.owner_id = u.id
		WHERE g.visibility = 'PUBLIC' AND ($1 = '' OR g.name ILIKE '%' || $1 || '%')
		ORDER BY g.created_at DESC
	`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var group models.Group
		var owner models.User
		if err := rows.Scan(
			&group.ID, &group.Name, &group.Description, &group.MaxCapacity,
			&group.Visibility, &group.OwnerID, &group.CreatedAt, &group.UpdatedAt,
			&group.MemberCount,
			&owner.ID, &owner.Name, &owner.Email,
		); err != nil {
			return nil, err
		}
		group.Owner = &owner
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

// RequestToJoin files a pending join request for a public group. The
// capacity, membership and duplicate checks here are advisory; approval
// re-validates everything inside the admitting transaction.
func (s *GroupService) RequestToJoin(ctx context.Context, userID, groupID uuid.UUID) (*models.JoinRequest, error) {
	group, err := s.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.Visibility != models.VisibilityPublic {
		return nil, ErrNotPublicGroup
	}
	if group.MemberCount >= group.MaxCapacity {
		return nil, ErrGroupFull
	}

	inGroup, err := s.membership.HasMembership(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if inGroup {
		return nil, ErrAlreadyInGroup
	}

	var request models.JoinRequest
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO join_requests (user_id, group_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, group_id) DO NOTHING
		RETURNING id, user_id, group_id, status, created_at, updated_at
	`, userID, groupID).Scan(
		&request.ID, &request.UserID, &request.GroupID,
		&request.Status, &request.CreatedAt, &request.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDuplicateJoinRequest
		}
		return nil, fmt.Errorf("failed to create join request: %w", err)
	}
	return &request, nil
}

// HandleJoinRequest approves or rejects a pending request. Approval marks the
// request APPROVED and claims the seat in a single transaction; if the claim
// loses a capacity or membership race the transaction rolls back and the
// request stays PENDING for the admin to retry or reject explicitly.
func (s *GroupService) HandleJoinRequest(ctx context.Context, adminID, requestID uuid.UUID, action string) error {
	var request models.JoinRequest
	var ownerID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		SELECT jr.id, jr.user_id, jr.group_id, jr.status, g.owner_id
		FROM join_requests jr
		JOIN groups g ON jr.group_id = g.id
		WHERE jr.id = $1
	`, requestID).Scan(&request.ID, &request.UserID, &request.GroupID, &request.Status, &ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to load join request: %w", err)
	}

	if ownerID != adminID {
		return ErrNotGroupOwner
	}
	if request.Status != models.JoinRequestPending {
		return ErrRequestProcessed
	}

	if action == ActionReject {
		result, err := s.db.Pool.Exec(ctx, `
			UPDATE join_requests SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3
		`, models.JoinRequestRejected, requestID, models.JoinRequestPending)
		if err != nil {
			return fmt.Errorf("failed to reject join request: %w", err)
		}
		if result.RowsAffected() == 0 {
			return ErrRequestProcessed
		}
		return nil
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result, err := tx.Exec(ctx, `
		UPDATE join_requests SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, models.JoinRequestApproved, requestID, models.JoinRequestPending)
	if err != nil {
		return fmt.Errorf("failed to approve join request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrRequestProcessed
	}

	if _, err := s.membership.ClaimTx(ctx, tx, request.UserID, request.GroupID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// InviteUser sends an invite for a private group to the user behind email.
func (s *GroupService) InviteUser(ctx context.Context, adminID, groupID uuid.UUID, email string) (*models.Invite, error) {
	group, err := s.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != adminID {
		return nil, ErrNotGroupOwner
	}
	if group.Visibility != models.VisibilityPrivate {
		return nil, ErrPrivateOnlyInvites
	}
	if group.MemberCount >= group.MaxCapacity {
		return nil, ErrGroupFull
	}

	var receiverID uuid.UUID
	err = s.db.Pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&receiverID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	inGroup, err := s.membership.HasMembership(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if inGroup {
		return nil, ErrAlreadyInGroup
	}

	var invite models.Invite
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO invites (sender_id, receiver_id, group_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (receiver_id, group_id) DO NOTHING
		RETURNING id, sender_id, receiver_id, group_id, status, created_at, updated_at
	`, adminID, receiverID, groupID).Scan(
		&invite.ID, &invite.SenderID, &invite.ReceiverID, &invite.GroupID,
		&invite.Status, &invite.CreatedAt, &invite.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDuplicateInvite
		}
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}
	return &invite, nil
}

// JoinWithCode admits the user directly into the private group behind the
// invite code. An unknown code is indistinguishable from a wrong one.
func (s *GroupService) JoinWithCode(ctx context.Context, userID uuid.UUID, inviteCode string) (*models.GroupMember, error) {
	var groupID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id FROM groups WHERE invite_code = $1
	`, inviteCode).Scan(&groupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to look up invite code: %w", err)
	}

	return s.membership.Claim(ctx, userID, groupID)
}

// GetMembers lists the group's members in join order. Owner only.
func (s *GroupService) GetMembers(ctx context.Context, callerID, groupID uuid.UUID) ([]models.GroupMember, error) {
	if err := s.requireOwner(ctx, groupID, callerID); err != nil {
		return nil, err
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT gm.id, gm.user_id, gm.group_id, gm.joined_at,
		       u.id, u.name, u.email, u.phone_number
		FROM group_members gm
		JOIN users u ON gm.user_id = u.id
		WHERE gm.group_id = $1
		ORDER BY gm.joined_at
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.GroupMember
	for rows.Next() {
		var member models.GroupMember
		var user models.User
		if err := rows.Scan(
			&member.ID, &member.UserID, &member.GroupID, &member.JoinedAt,
			&user.ID, &user.Name, &user.Email, &user.PhoneNumber,
		); err != nil {
			return nil, err
		}
		member.User = &user
		members = append(members, member)
	}
	return members, rows.Err()
}

// GetJoinRequests lists the group's pending requests, oldest first. Owner only.
func (s *GroupService) GetJoinRequests(ctx context.Context, callerID, groupID uuid.UUID) ([]models.JoinRequest, error) {
	if err := s.requireOwner(ctx, groupID, callerID); err != nil {
		return nil, err
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT jr.id, jr.user_id, jr.group_id, jr.status, jr.created_at, jr.updated_at,
		       u.id, u.name, u.email, u.phone_number
		FROM join_requests jr
		JOIN users u ON jr.user_id = u.id
		WHERE jr.group_id = $1 AND jr.status = $2
		ORDER BY jr.created_at
	`, groupID, models.JoinRequestPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.JoinRequest
	for rows.Next() {
		var request models.JoinRequest
		var user models.User
		if err := rows.Scan(
			&request.ID, &request.UserID, &request.GroupID,
			&request.Status, &request.CreatedAt, &request.UpdatedAt,
			&user.ID, &user.Name, &user.Email, &user.PhoneNumber,
		); err != nil {
			return nil, err
		}
		request.User = &user
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

// RemoveMember evicts a member from the group. Owners cannot remove
// themselves; the founding seat stays until the group is gone.
func (s *GroupService) RemoveMember(ctx context.Context, adminID, groupID, targetID uuid.UUID) error {
	if err := s.requireOwner(ctx, groupID, adminID); err != nil {
		return err
	}
	if adminID == targetID {
		return ErrCannotRemoveSelf
	}
	return s.membership.Release(ctx, groupID, targetID)
}

func (s *GroupService) requireOwner(ctx context.Context, groupID, userID uuid.UUID) error {
	var ownerID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `SELECT owner_id FROM groups WHERE id = $1`, groupID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to load group: %w", err)
	}
	if ownerID != userID {
		return ErrNotGroupOwner
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/esusuconfam/esusu-api/internal/database"
	"github.com/esusuconfam/esusu-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInviteNotFound     = errors.New("invite not found")
	ErrInviteProcessed    = errors.New("this invite has already been processed")
)

type RegisterInput struct {
	Email       string
	Name        string
	PhoneNumber string
	Password    string
}

// Profile is the aggregate view a user sees of themselves: the account, the
// group they currently sit in (if any), and the groups they own.
type Profile struct {
	User         *models.User   `json:"user"`
	CurrentGroup *models.Group  `json:"current_group,omitempty"`
	OwnedGroups  []models.Group `json:"owned_groups"`
}

type UserService struct {
	db         *database.DB
	membership *MembershipService
}

func NewUserService(db *database.DB, membership *MembershipService) *UserService {
	return &UserService{db: db, membership: membership}
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user models.User
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, phone_number, password_hash)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, email, name, phone_number, password_hash, created_at, updated_at
	`, input.Email, input.Name, input.PhoneNumber, string(hash)).Scan(
		&user.ID, &user.Email, &user.Name, &user.PhoneNumber,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, email, name, phone_number, password_hash, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.PhoneNumber,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, email, name, phone_number, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`, email).Scan(
		&user.ID, &user.Email, &user.Name, &user.PhoneNumber,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// GetProfile assembles the user's account, current group and owned groups.
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{User: user, OwnedGroups: []models.Group{}}

	var current models.Group
	err = s.db.Pool.QueryRow(ctx, `
		SELECT g.id, g.name, g.description, g.max_capacity, g.visibility, g.invite_code, g.owner_id, g.created_at, g.updated_at,
		       (SELECT COUNT(*) FROM group_members gm2 WHERE gm2.group_id = g.id) AS member_count
		FROM group_members gm
		JOIN groups g ON gm.group_id = g.id
		WHERE gm.user_id = $1
	`, userID).Scan(
		&current.ID, &current.Name, &current.Description, &current.MaxCapacity,
		&current.Visibility, &current.InviteCode, &current.OwnerID, &current.CreatedAt, &current.UpdatedAt,
		&current.MemberCount,
	)
	if err == nil {
		profile.CurrentGroup = &current
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to load current group: %w", err)
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, name, description, max_capacity, visibility, invite_code, owner_id, created_at, updated_at,
		       (SELECT COUNT(*) FROM group_members gm WHERE gm.group_id = groups.id) AS member_count
		FROM groups WHERE owner_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var group models.Group
		if err := rows.Scan(
			&group.ID, &group.Name, &group.Description, &group.MaxCapacity,
			&group.Visibility, &group.InviteCode, &group.OwnerID, &group.CreatedAt, &group.UpdatedAt,
			&group.MemberCount,
		); err != nil {
			return nil, err
		}
		profile.OwnedGroups = append(profile.OwnedGroups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetMyInvites lists the pending invites addressed to the user, newest first.
func (s *UserService) GetMyInvites(ctx context.Context, userID uuid.UUID) ([]models.Invite, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT i.id, i.sender_id, i.receiver_id, i.group_id, i.status, i.created_at, i.updated_at,
		       u.id, u.name, u.email,
		       g.id, g.name, g.description, g.max_capacity, g.visibility, g.owner_id, g.created_at, g.updated_at,
		       (SELECT COUNT(*) FROM group_members gm WHERE gm.group_id = g.id) AS member_count
		FROM invites i
		JOIN users u ON i.sender_id = u.id
		JOIN groups g ON i.group_id = g.id
		WHERE i.receiver_id = $1 AND i.status = $2
		ORDER BY i.created_at DESC
	`, userID, models.InviteSent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []models.Invite
	for rows.Next() {
		var invite models.Invite
		var sender models.User
		var group models.Group
		if err := rows.Scan(
			&invite.ID, &invite.SenderID, &invite.ReceiverID, &invite.GroupID,
			&invite.Status, &invite.CreatedAt, &invite.UpdatedAt,
			&sender.ID, &sender.Name, &sender.Email,
			&group.ID, &group.Name, &group.Description, &group.MaxCapacity,
			&group.Visibility, &group.OwnerID, &group.CreatedAt, &group.UpdatedAt,
			&group.MemberCount,
		); err != nil {
			return nil, err
		}
		invite.Sender = &sender
		invite.Group = &group
		invites = append(invites, invite)
	}
	return invites, rows.Err()
}

// RespondToInvite accepts or declines an invite addressed to the user. An
// invite addressed to someone else reads as not found. Accepting marks the
// invite ACCEPTED and claims the seat in one transaction; if the claim fails
// the invite stays SENT. Declining is terminal.
func (s *UserService) RespondToInvite(ctx context.Context, userID, inviteID uuid.UUID, accept bool) error {
	var invite models.Invite
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, sender_id, receiver_id, group_id, status
		FROM invites WHERE id = $1
	`, inviteID).Scan(&invite.ID, &invite.SenderID, &invite.ReceiverID, &invite.GroupID, &invite.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInviteNotFound
		}
		return fmt.Errorf("failed to load invite: %w", err)
	}

	if invite.ReceiverID != userID {
		return ErrInviteNotFound
	}
	if invite.Status != models.InviteSent {
		return ErrInviteProcessed
	}

	if !accept {
		result, err := s.db.Pool.Exec(ctx, `
			UPDATE invites SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3
		`, models.InviteDeclined, inviteID, models.InviteSent)
		if err != nil {
			return fmt.Errorf("failed to decline invite: %w", err)
		}
		if result.RowsAffected() == 0 {
			return ErrInviteProcessed
		}
		return nil
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result, err := tx.Exec(ctx, `
		UPDATE invites SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, models.InviteAccepted, inviteID, models.InviteSent)
	if err != nil {
		return fmt.Errorf("failed to accept invite: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrInviteProcessed
	}

	if _, err := s.membership.ClaimTx(ctx, tx, userID, invite.GroupID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

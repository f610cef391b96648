package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/esusuconfam/esusu-api/internal/database"
	"github.com/esusuconfam/esusu-api/internal/models"
	"github.com/google/uuid"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:        fmt.Sprintf("user%d@example.com", f.counter),
		Name:         fmt.Sprintf("Test User %d", f.counter),
		PhoneNumber:  fmt.Sprintf("+23480000000%02d", f.counter),
		PasswordHash: "not-a-real-hash",
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, phone_number, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, name, phone_number, password_hash, created_at, updated_at
	`, user.Email, user.Name, user.PhoneNumber, user.PasswordHash).Scan(
		&user.ID, &user.Email, &user.Name, &user.PhoneNumber,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

// CreateGroup creates a test group owned by ownerID. The owner is NOT seated
// automatically; use AddGroupMember when the test needs the founder inside.
func (f *Fixtures) CreateGroup(t *testing.T, ownerID uuid.UUID, opts ...GroupOption) *models.Group {
	t.Helper()
	f.counter++

	group := &models.Group{
		Name:        fmt.Sprintf("Test Group %d", f.counter),
		Description: "a test savings group",
		MaxCapacity: 10,
		Visibility:  models.VisibilityPublic,
		OwnerID:     ownerID,
	}

	for _, opt := range opts {
		opt(group)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO groups (name, description, max_capacity, visibility, invite_code, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, description, max_capacity, visibility, invite_code, owner_id, created_at, updated_at
	`, group.Name, group.Description, group.MaxCapacity, group.Visibility, group.InviteCode, group.OwnerID).Scan(
		&group.ID, &group.Name, &group.Description, &group.MaxCapacity,
		&group.Visibility, &group.InviteCode, &group.OwnerID, &group.CreatedAt, &group.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}

	return group
}

// GroupOption configures a test group
type GroupOption func(*models.Group)

// WithMaxCapacity sets the group's capacity
func WithMaxCapacity(capacity int) GroupOption {
	return func(g *models.Group) {
		g.MaxCapacity = capacity
	}
}

// WithVisibility sets the group's visibility
func WithVisibility(visibility string) GroupOption {
	return func(g *models.Group) {
		g.Visibility = visibility
	}
}

// WithInviteCode sets the group's invite code
func WithInviteCode(code string) GroupOption {
	return func(g *models.Group) {
		g.InviteCode = &code
	}
}

// AddGroupMember seats a user in a group directly, bypassing the join flows
func (f *Fixtures) AddGroupMember(t *testing.T, userID, groupID uuid.UUID) *models.GroupMember {
	t.Helper()

	member := &models.GroupMember{}
	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO group_members (user_id, group_id)
		VALUES ($1, $2)
		RETURNING id, user_id, group_id, joined_at
	`, userID, groupID).Scan(&member.ID, &member.UserID, &member.GroupID, &member.JoinedAt)
	if err != nil {
		t.Fatalf("failed to add group member: %v", err)
	}

	return member
}

// CreateJoinRequest files a join request row directly
func (f *Fixtures) CreateJoinRequest(t *testing.T, userID, groupID uuid.UUID, status string) *models.JoinRequest {
	t.Helper()

	request := &models.JoinRequest{}
	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO join_requests (user_id, group_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, group_id, status, created_at, updated_at
	`, userID, groupID, status).Scan(
		&request.ID, &request.UserID, &request.GroupID,
		&request.Status, &request.CreatedAt, &request.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create join request: %v", err)
	}

	return request
}

// CreateInvite writes an invite row directly
func (f *Fixtures) CreateInvite(t *testing.T, senderID, receiverID, groupID uuid.UUID, status string) *models.Invite {
	t.Helper()

	invite := &models.Invite{}
	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO invites (sender_id, receiver_id, group_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, sender_id, receiver_id, group_id, status, created_at, updated_at
	`, senderID, receiverID, groupID, status).Scan(
		&invite.ID, &invite.SenderID, &invite.ReceiverID, &invite.GroupID,
		&invite.Status, &invite.CreatedAt, &invite.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create invite: %v", err)
	}

	return invite
}

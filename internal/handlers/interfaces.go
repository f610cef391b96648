package handlers

import (
	"context"

	"github.com/esusuconfam/esusu-api/internal/models"
	"github.com/esusuconfam/esusu-api/internal/services"
	"github.com/google/uuid"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	Register(ctx context.Context, input services.RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*services.Profile, error)
	GetMyInvites(ctx context.Context, userID uuid.UUID) ([]models.Invite, error)
	RespondToInvite(ctx context.Context, userID, inviteID uuid.UUID, accept bool) error
}

// GroupServiceInterface defines the methods used by handlers from GroupService
type GroupServiceInterface interface {
	Create(ctx context.Context, ownerID uuid.UUID, input services.CreateGroupInput) (*models.Group, error)
	SearchPublic(ctx context.Context, name string) ([]models.Group, error)
	GetByID(ctx context.Context, groupID uuid.UUID) (*models.Group, error)
	RequestToJoin(ctx context.Context, userID, groupID uuid.UUID) (*models.JoinRequest, error)
	HandleJoinRequest(ctx context.Context, adminID, requestID uuid.UUID, action string) error
	InviteUser(ctx context.Context, adminID, groupID uuid.UUID, email string) (*models.Invite, error)
	JoinWithCode(ctx context.Context, userID uuid.UUID, inviteCode string) (*models.GroupMember, error)
	GetMembers(ctx context.Context, callerID, groupID uuid.UUID) ([]models.GroupMember, error)
	GetJoinRequests(ctx context.Context, callerID, groupID uuid.UUID) ([]models.JoinRequest, error)
	RemoveMember(ctx context.Context, adminID, groupID, targetID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateToken(userID uuid.UUID, email string) (string, error)
}

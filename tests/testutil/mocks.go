package testutil

import (
	"context"

	"github.com/esusuconfam/esusu-api/internal/models"
	"github.com/esusuconfam/esusu-api/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, input services.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetProfile(ctx context.Context, userID uuid.UUID) (*services.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Profile), args.Error(1)
}

func (m *MockUserService) GetMyInvites(ctx context.Context, userID uuid.UUID) ([]models.Invite, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invite), args.Error(1)
}

func (m *MockUserService) RespondToInvite(ctx context.Context, userID, inviteID uuid.UUID, accept bool) error {
	args := m.Called(ctx, userID, inviteID, accept)
	return args.Error(0)
}

// MockGroupService mocks the GroupService
type MockGroupService struct {
	mock.Mock
}

func (m *MockGroupService) Create(ctx context.Context, ownerID uuid.UUID, input services.CreateGroupInput) (*models.Group, error) {
	args := m.Called(ctx, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *MockGroupService) SearchPublic(ctx context.Context, name string) ([]models.Group, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Group), args.Error(1)
}

func (m *MockGroupService) GetByID(ctx context.Context, groupID uuid.UUID) (*models.Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *MockGroupService) RequestToJoin(ctx context.Context, userID, groupID uuid.UUID) (*models.JoinRequest, error) {
	args := m.Called(ctx, userID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JoinRequest), args.Error(1)
}

func (m *MockGroupService) HandleJoinRequest(ctx context.Context, adminID, requestID uuid.UUID, action string) error {
	args := m.Called(ctx, adminID, requestID, action)
	return args.Error(0)
}

func (m *MockGroupService) InviteUser(ctx context.Context, adminID, groupID uuid.UUID, email string) (*models.Invite, error) {
	args := m.Called(ctx, adminID, groupID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invite), args.Error(1)
}

func (m *MockGroupService) JoinWithCode(ctx context.Context, userID uuid.UUID, inviteCode string) (*models.GroupMember, error) {
	args := m.Called(ctx, userID, inviteCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GroupMember), args.Error(1)
}

func (m *MockGroupService) GetMembers(ctx context.Context, callerID, groupID uuid.UUID) ([]models.GroupMember, error) {
	args := m.Called(ctx, callerID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GroupMember), args.Error(1)
}

func (m *MockGroupService) GetJoinRequests(ctx context.Context, callerID, groupID uuid.UUID) ([]models.JoinRequest, error) {
	args := m.Called(ctx, callerID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.JoinRequest), args.Error(1)
}

func (m *MockGroupService) RemoveMember(ctx context.Context, adminID, groupID, targetID uuid.UUID) error {
	args := m.Called(ctx, adminID, groupID, targetID)
	return args.Error(0)
}

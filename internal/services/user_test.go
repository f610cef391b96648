package services

import (
	"context"
	"testing"
	"time"

	"github.com/esusuconfam/esusu-api/internal/database"
	"github.com/esusuconfam/esusu-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupUserService(t *testing.T) (*UserService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewUserService(db, NewMembershipService(db)), mock
}

func userRow(userID uuid.UUID, email, passwordHash string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{"id", "email", "name", "phone_number", "password_hash", "created_at", "updated_at"}).
		AddRow(userID, email, "Ada", "+2348000000000", passwordHash, now, now)
}

func TestUserService_Register(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("ada@example.com", "Ada", "+2348000000000", pgxmock.AnyArg()).
		WillReturnRows(userRow(userID, "ada@example.com", "hashed"))

	user, err := svc.Register(ctx, RegisterInput{
		Email:       "ada@example.com",
		Name:        "Ada",
		PhoneNumber: "+2348000000000",
		Password:    "s3cretpass",
	})

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Register_EmailTaken(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("ada@example.com", "Ada", "", pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "ada@example.com",
		Name:     "Ada",
		Password: "s3cretpass",
	})

	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Authenticate(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email`).
		WithArgs("ada@example.com").
		WillReturnRows(userRow(userID, "ada@example.com", string(hash)))

	user, err := svc.Authenticate(ctx, "ada@example.com", "s3cretpass")

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Authenticate_WrongPassword(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email`).
		WithArgs("ada@example.com").
		WillReturnRows(userRow(uuid.New(), "ada@example.com", string(hash)))

	_, err = svc.Authenticate(ctx, "ada@example.com", "wrongpass")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Unknown emails and wrong passwords are indistinguishable to the caller.
func TestUserService_Authenticate_UnknownEmail(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.Authenticate(ctx, "nobody@example.com", "whatever")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetProfile(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()
	groupID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(userID).
		WillReturnRows(userRow(userID, "ada@example.com", "hashed"))

	mock.ExpectQuery(`SELECT .+ FROM group_members gm`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "description", "max_capacity", "visibility",
			"invite_code", "owner_id", "created_at", "updated_at", "member_count",
		}).AddRow(groupID, "Savings Circle", "", 10, models.VisibilityPublic,
			nil, uuid.New(), now, now, 4))

	mock.ExpectQuery(`SELECT .+ FROM groups WHERE owner_id`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "description", "max_capacity", "visibility",
			"invite_code", "owner_id", "created_at", "updated_at", "member_count",
		}))

	profile, err := svc.GetProfile(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, userID, profile.User.ID)
	require.NotNil(t, profile.CurrentGroup)
	assert.Equal(t, groupID, profile.CurrentGroup.ID)
	assert.Empty(t, profile.OwnedGroups)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetProfile_NoGroup(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(userID).
		WillReturnRows(userRow(userID, "ada@example.com", "hashed"))

	mock.ExpectQuery(`SELECT .+ FROM group_members gm`).
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	mock.ExpectQuery(`SELECT .+ FROM groups WHERE owner_id`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "description", "max_capacity", "visibility",
			"invite_code", "owner_id", "created_at", "updated_at", "member_count",
		}))

	profile, err := svc.GetProfile(ctx, userID)

	require.NoError(t, err)
	assert.Nil(t, profile.CurrentGroup)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetMyInvites(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()
	inviteID := uuid.New()
	senderID := uuid.New()
	groupID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "sender_id", "receiver_id", "group_id", "status", "created_at", "updated_at",
		"id", "name", "email",
		"id", "name", "description", "max_capacity", "visibility", "owner_id", "created_at", "updated_at", "member_count",
	}).AddRow(
		inviteID, senderID, userID, groupID, models.InviteSent, now, now,
		senderID, "Bisi", "bisi@example.com",
		groupID, "Family Ajo", "", 5, models.VisibilityPrivate, senderID, now, now, 2,
	)

	mock.ExpectQuery(`SELECT .+ FROM invites i`).
		WithArgs(userID, models.InviteSent).
		WillReturnRows(rows)

	invites, err := svc.GetMyInvites(ctx, userID)

	require.NoError(t, err)
	require.Len(t, invites, 1)
	assert.Equal(t, inviteID, invites[0].ID)
	require.NotNil(t, invites[0].Sender)
	assert.Equal(t, "bisi@example.com", invites[0].Sender.Email)
	require.NotNil(t, invites[0].Group)
	assert.Equal(t, "Family Ajo", invites[0].Group.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func inviteRow(inviteID, senderID, receiverID, groupID uuid.UUID, status string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "sender_id", "receiver_id", "group_id", "status"}).
		AddRow(inviteID, senderID, receiverID, groupID, status)
}

func TestUserService_RespondToInvite_Accept(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()
	inviteID := uuid.New()
	groupID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM invites WHERE id`).
		WithArgs(inviteID).
		WillReturnRows(inviteRow(inviteID, uuid.New(), userID, groupID, models.InviteSent))

	mock.ExpectBegin()

	mock.ExpectExec(`UPDATE invites`).
		WithArgs(models.InviteAccepted, inviteID, models.InviteSent).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	expectClaimTx(mock, userID, groupID, 5, 2)

	mock.ExpectCommit()

	err := svc.RespondToInvite(ctx, userID, inviteID, true)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Accepting into a group that filled up in the meantime rolls the whole
// transaction back; the invite stays SENT.
func TestUserService_RespondToInvite_AcceptGroupFull(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()
	inviteID := uuid.New()
	groupID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM invites WHERE id`).
		WithArgs(inviteID).
		WillReturnRows(inviteRow(inviteID, uuid.New(), userID, groupID, models.InviteSent))

	mock.ExpectBegin()

	mock.ExpectExec(`UPDATE invites`).
		WithArgs(models.InviteAccepted, inviteID, models.InviteSent).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	mock.ExpectQuery(`SELECT max_capacity FROM groups`).
		WithArgs(groupID).
		WillReturnRows(pgxmock.NewRows([]string{"max_capacity"}).AddRow(2))

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs(groupID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	mock.ExpectRollback()

	err := svc.RespondToInvite(ctx, userID, inviteID, true)

	assert.ErrorIs(t, err, ErrGroupFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_RespondToInvite_Decline(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()
	inviteID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM invites WHERE id`).
		WithArgs(inviteID).
		WillReturnRows(inviteRow(inviteID, uuid.New(), userID, uuid.New(), models.InviteSent))

	mock.ExpectExec(`UPDATE invites`).
		WithArgs(models.InviteDeclined, inviteID, models.InviteSent).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.RespondToInvite(ctx, userID, inviteID, false)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// An invite addressed to someone else reads as not found rather than
// forbidden; its existence is not disclosed.
func TestUserService_RespondToInvite_NotAddressedToCaller(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	inviteID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM invites WHERE id`).
		WithArgs(inviteID).
		WillReturnRows(inviteRow(inviteID, uuid.New(), uuid.New(), uuid.New(), models.InviteSent))

	err := svc.RespondToInvite(ctx, uuid.New(), inviteID, true)

	assert.ErrorIs(t, err, ErrInviteNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_RespondToInvite_AlreadyProcessed(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()
	inviteID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM invites WHERE id`).
		WithArgs(inviteID).
		WillReturnRows(inviteRow(inviteID, uuid.New(), userID, uuid.New(), models.InviteDeclined))

	err := svc.RespondToInvite(ctx, userID, inviteID, true)

	assert.ErrorIs(t, err, ErrInviteProcessed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

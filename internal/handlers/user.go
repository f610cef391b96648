package handlers

import (
	"context"

	"github.com/esusuconfam/esusu-api/internal/middleware"
	"github.com/esusuconfam/esusu-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type UserHandler struct {
	userService UserServiceInterface
}

func NewUserHandler(userService UserServiceInterface) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetProfile(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	profile, err := h.userService.GetProfile(context.Background(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := dto.ProfileResponse{
		User:        toUserResponse(profile.User),
		OwnedGroups: make([]dto.GroupResponse, len(profile.OwnedGroups)),
	}
	if profile.CurrentGroup != nil {
		// Owners see their group's invite code in the profile view.
		group := toGroupResponse(profile.CurrentGroup, profile.CurrentGroup.OwnerID == userID)
		response.CurrentGroup = &group
	}
	for i := range profile.OwnedGroups {
		response.OwnedGroups[i] = toGroupResponse(&profile.OwnedGroups[i], true)
	}

	_ = c.JSON(200, response)
}

func (h *UserHandler) ListInvites(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	invites, err := h.userService.GetMyInvites(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to get invites")
		return
	}

	response := make([]dto.InviteResponse, len(invites))
	for i := range invites {
		response[i] = toInviteResponse(&invites[i])
	}
	_ = c.JSON(200, response)
}

func (h *UserHandler) RespondToInvite(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	inviteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid invite id")
		return
	}

	var req dto.RespondInviteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Accept == nil {
		c.BadRequest("accept is required")
		return
	}

	if err := h.userService.RespondToInvite(context.Background(), userID, inviteID, *req.Accept); err != nil {
		respondServiceError(c, err)
		return
	}

	status := "declined"
	if *req.Accept {
		status = "accepted"
	}
	_ = c.JSON(200, map[string]string{"status": status})
}

package handlers

import (
	"context"

	"github.com/esusuconfam/esusu-api/internal/middleware"
	"github.com/esusuconfam/esusu-api/internal/models"
	"github.com/esusuconfam/esusu-api/internal/services"
	"github.com/esusuconfam/esusu-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type GroupHandler struct {
	groupService GroupServiceInterface
}

func NewGroupHandler(groupService GroupServiceInterface) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

func (h *GroupHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateGroupRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}
	if req.MaxCapacity < 2 || req.MaxCapacity > 1000 {
		c.BadRequest("max_capacity must be between 2 and 1000")
		return
	}
	if req.Visibility != models.VisibilityPublic && req.Visibility != models.VisibilityPrivate {
		c.BadRequest("visibility must be PUBLIC or PRIVATE")
		return
	}

	group, err := h.groupService.Create(context.Background(), userID, services.CreateGroupInput{
		Name:        req.Name,
		Description: req.Description,
		MaxCapacity: req.MaxCapacity,
		Visibility:  req.Visibility,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// The creator is the owner, so the invite code comes back with the group.
	_ = c.JSON(201, toGroupResponse(group, true))
}

func (h *GroupHandler) Search(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	groups, err := h.groupService.SearchPublic(context.Background(), c.QueryParam("name"))
	if err != nil {
		c.InternalServerError("failed to search groups")
		return
	}

	response := make([]dto.GroupResponse, len(groups))
	for i := range groups {
		response[i] = toGroupResponse(&groups[i], false)
	}
	_ = c.JSON(200, response)
}

func (h *GroupHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid group id")
		return
	}

	group, err := h.groupService.GetByID(context.Background(), groupID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, toGroupResponse(group, group.OwnerID == userID))
}

func (h *GroupHandler) RequestToJoin(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid group id")
		return
	}

	request, err := h.groupService.RequestToJoin(context.Background(), userID, groupID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(201, toJoinRequestResponse(request))
}

func (h *GroupHandler) ListJoinRequests(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid group id")
		return
	}

	requests, err := h.groupService.GetJoinRequests(context.Background(), userID, groupID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]dto.JoinRequestResponse, len(requests))
	for i := range requests {
		response[i] = toJoinRequestResponse(&requests[i])
	}
	_ = c.JSON(200, response)
}

func (h *GroupHandler) HandleJoinRequest(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid join request id")
		return
	}

	var req dto.HandleJoinRequestRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Action != services.ActionApprove && req.Action != services.ActionReject {
		c.BadRequest("action must be APPROVE or REJECT")
		return
	}

	if err := h.groupService.HandleJoinRequest(context.Background(), userID, requestID, req.Action); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"status": "ok"})
}

func (h *GroupHandler) Invite(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid group id")
		return
	}

	var req dto.InviteUserRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Email == "" {
		c.BadRequest("email is required")
		return
	}

	invite, err := h.groupService.InviteUser(context.Background(), userID, groupID, req.Email)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(201, toInviteResponse(invite))
}

func (h *GroupHandler) JoinWithCode(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.JoinWithCodeRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.InviteCode == "" {
		c.BadRequest("invite_code is required")
		return
	}

	member, err := h.groupService.JoinWithCode(context.Background(), userID, req.InviteCode)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(201, toGroupMemberResponse(member))
}

func (h *GroupHandler) ListMembers(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid group id")
		return
	}

	members, err := h.groupService.GetMembers(context.Background(), userID, groupID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]dto.GroupMemberResponse, len(members))
	for i := range members {
		response[i] = toGroupMemberResponse(&members[i])
	}
	_ = c.JSON(200, response)
}

func (h *GroupHandler) RemoveMember(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid group id")
		return
	}

	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	if err := h.groupService.RemoveMember(context.Background(), userID, groupID, targetID); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"status": "removed"})
}

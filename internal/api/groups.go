package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/jtorres/go-chatline/internal/database"
	"github.com/jtorres/go-chatline/internal/types"
)

type createGroupRequest struct {
	Name    string `json:"name"`
	Members []int  `json:"members"`
}

func groupResponse(g database.Group) types.Group {
	group := types.Group{
		Id:         g.Id,
		ExternalId: g.ExternalId,
		Name:       g.Name,
		OwnerId:    g.OwnerId,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}

	for _, m := range g.Members {
		group.Members = append(group.Members, types.User{
			Id:           m.Id,
			FullName:     m.FullName,
			EmailAddress: m.EmailAddress,
			ProfilePic:   m.ProfilePic,
		})
	}

	return group
}

func (s *ChatApp) createGroup(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Name == "" || len(req.Members) < 2 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	memberIds := make([]int, 0, len(req.Members)+1)
	for _, id := range req.Members {
		if id == userId || slices.Contains(memberIds, id) {
			continue
		}

		if _, err := s.db.GetAccountById(id); err != nil {
			var errResp *ApiError
			if errors.Is(err, sql.ErrNoRows) {
				errResp = NewBadRequestError()
			} else {
				errResp = NewInternalServerError(err)
			}
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		memberIds = append(memberIds, id)
	}
	memberIds = append(memberIds, userId)

	externalId, err := s.generateShortId()
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	group, err := s.db.CreateGroup(database.CreateGroupParams{
		ExternalId: externalId,
		Name:       req.Name,
		OwnerId:    userId,
		MemberIds:  memberIds,
	})
	if err != nil {
		s.log.Println("create group:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, groupResponse(group))
}

func (s *ChatApp) myGroups(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbGroups, err := s.db.ListGroupsForAccount(userId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	groups := make([]types.Group, 0, len(dbGroups))
	for _, g := range dbGroups {
		groups = append(groups, groupResponse(g))
	}

	s.writeJson(w, http.StatusOK, groups)
}

func (s *ChatApp) groupsByUser(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	requestedId, err := strconv.Atoi(r.PathValue("userId"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if requestedId != userId {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbGroups, err := s.db.ListGroupsForAccount(userId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	groups := make([]types.Group, 0, len(dbGroups))
	for _, g := range dbGroups {
		groups = append(groups, groupResponse(g))
	}

	s.writeJson(w, http.StatusOK, groups)
}

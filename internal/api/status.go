package api

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/jtorres/go-chatline/internal/database"
	"github.com/jtorres/go-chatline/internal/media"
	"github.com/jtorres/go-chatline/internal/types"
)

// statusTtl is how long a status stays visible after posting.
const statusTtl = 24 * time.Hour

func statusResponse(s database.Status) types.Status {
	status := types.Status{
		Id:         s.Id,
		ExternalId: s.ExternalId,
		UserId:     s.AccountId,
		FullName:   s.FullName,
		MediaUrl:   s.MediaUrl,
		MediaType:  types.MediaType(s.MediaType),
		Caption:    s.Caption,
		CreatedAt:  s.CreatedAt,
		ExpiresAt:  s.ExpiresAt,
	}

	for _, v := range s.Views {
		status.SeenBy = append(status.SeenBy, types.StatusView{
			UserId:   v.AccountId,
			FullName: v.FullName,
			SeenAt:   v.SeenAt,
		})
	}

	return status
}

func (s *ChatApp) uploadStatus(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	data, mimeType, err := s.readUpload(r, "file")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	mediaType := media.DetectMediaType(mimeType)
	if mediaType == types.MediaFile {
		// statuses are visual, arbitrary attachments are not accepted
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	upload, err := s.uploader.Upload(r.Context(), data, mimeType)
	if err != nil {
		s.log.Println("status upload:", err)
		errResp := NewBadGatewayError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	externalId, err := s.generateShortId()
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	status, err := s.db.CreateStatus(database.CreateStatusParams{
		ExternalId: externalId,
		AccountId:  userId,
		MediaUrl:   upload.SecureUrl,
		MediaType:  string(mediaType),
		Caption:    r.FormValue("caption"),
		ExpiresAt:  time.Now().UTC().Add(statusTtl),
	})
	if err != nil {
		s.log.Println("create status:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, statusResponse(status))
}

func (s *ChatApp) getStatuses(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbStatuses, err := s.db.ListActiveStatuses(userId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	statuses := make([]types.Status, 0, len(dbStatuses))
	for _, st := range dbStatuses {
		statuses = append(statuses, statusResponse(st))
	}

	s.writeJson(w, http.StatusOK, statuses)
}

func (s *ChatApp) getMyStatuses(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbStatuses, err := s.db.ListOwnStatuses(userId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	statuses := make([]types.Status, 0, len(dbStatuses))
	for _, st := range dbStatuses {
		statuses = append(statuses, statusResponse(st))
	}

	s.writeJson(w, http.StatusOK, statuses)
}

func (s *ChatApp) markStatusSeen(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	status, err := s.db.GetStatusByExternalId(r.PathValue("statusId"))
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// owners viewing their own status are not recorded
	if status.AccountId == userId {
		s.writeJson(w, http.StatusOK, statusResponse(status))
		return
	}

	viewer, err := s.db.GetAccountById(userId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.MarkStatusSeen(status.Id, userId, viewer.FullName); err != nil {
		s.log.Println("mark status seen:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	status, err = s.db.GetStatusByExternalId(status.ExternalId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, statusResponse(status))
}

func (s *ChatApp) deleteStatus(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	status, err := s.db.GetStatusByExternalId(r.PathValue("statusId"))
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.DeleteStatus(status.Id, userId); err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]string{"message": "status deleted"})
}

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jtorres/go-chatline/internal/database"
	"github.com/jtorres/go-chatline/internal/media"
	"github.com/jtorres/go-chatline/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestUploadStatusHandler(t *testing.T) {
	mockRepo := &database.MockChatRepository{}
	defer mockRepo.AssertExpectations(t)
	mockRepo.On("CreateStatus", mock.MatchedBy(func(p database.CreateStatusParams) bool {
		return p.AccountId == 1 &&
			p.ExternalId == "abc123" &&
			p.MediaUrl == "https://cdn.example.com/status.jpg" &&
			p.MediaType == "image" &&
			p.Caption == "sunset" &&
			time.Until(p.ExpiresAt) > 23*time.Hour
	})).Return(database.Status{
		Id:         1,
		ExternalId: "abc123",
		AccountId:  1,
		MediaUrl:   "https://cdn.example.com/status.jpg",
		MediaType:  "image",
		Caption:    "sunset",
		CreatedAt:  time.Now().UTC(),
		ExpiresAt:  time.Now().UTC().Add(24 * time.Hour),
	}, nil).Once()

	mockUploader := &media.MockUploader{}
	defer mockUploader.AssertExpectations(t)
	mockUploader.On("Upload", mock.Anything, []byte("jpg-bytes"), "image/jpeg").
		Return(media.Upload{SecureUrl: "https://cdn.example.com/status.jpg", ResourceType: "image"}, nil).Once()

	app := newTestApp(t, mockRepo, mockUploader)
	app.generateShortId = func() (string, error) { return "abc123", nil }

	body, contentType := multipartBody(t, map[string]string{"caption": "sunset"}, "file", "status.jpg", "image/jpeg", []byte("jpg-bytes"))
	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/status/upload", body), 1)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	app.uploadStatus(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var status types.Status
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&status), "failed to decode response")
	assert.Equal(t, "abc123", status.ExternalId)
	assert.Equal(t, types.MediaImage, status.MediaType)
	assert.Equal(t, "sunset", status.Caption)
}

func TestUploadStatusHandler_RejectsNonVisualMedia(t *testing.T) {
	mockRepo := &database.MockChatRepository{}
	defer mockRepo.AssertExpectations(t)
	mockUploader := &media.MockUploader{}
	defer mockUploader.AssertExpectations(t)

	app := newTestApp(t, mockRepo, mockUploader)

	body, contentType := multipartBody(t, nil, "file", "report.pdf", "application/pdf", []byte("pdf-bytes"))
	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/status/upload", body), 1)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	app.uploadStatus(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code, "only images and videos are accepted as statuses")
	mockUploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadStatusHandler_UploadFailure(t *testing.T) {
	mockRepo := &database.MockChatRepository{}
	defer mockRepo.AssertExpectations(t)

	mockUploader := &media.MockUploader{}
	defer mockUploader.AssertExpectations(t)
	mockUploader.On("Upload", mock.Anything, mock.Anything, "image/jpeg").
		Return(media.Upload{}, errors.New("provider unavailable")).Once()

	app := newTestApp(t, mockRepo, mockUploader)

	body, contentType := multipartBody(t, nil, "file", "status.jpg", "image/jpeg", []byte("jpg-bytes"))
	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/status/upload", body), 1)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	app.uploadStatus(rr, req)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	mockRepo.AssertNotCalled(t, "CreateStatus", mock.Anything)
}

func TestGetStatusesHandler(t *testing.T) {
	now := time.Now().UTC()
	mockRepo := &database.MockChatRepository{}
	defer mockRepo.AssertExpectations(t)
	mockRepo.On("ListActiveStatuses", 1).Return([]database.Status{
		{
			Id:         2,
			ExternalId: "xyz789",
			AccountId:  3,
			FullName:   "Carol",
			MediaUrl:   "https://cdn.example.com/s.jpg",
			MediaType:  "image",
			Views: []database.StatusView{
				{AccountId: 4, FullName: "Dan", SeenAt: now},
			},
			CreatedAt: now,
			ExpiresAt: now.Add(12 * time.Hour),
		},
	}, nil).Once()

	app := newTestApp(t, mockRepo, nil)

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/status/all", nil), 1)
	rr := httptest.NewRecorder()
	app.getStatuses(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var statuses []types.Status
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&statuses), "failed to decode response")
	assert.Len(t, statuses, 1)
	assert.Equal(t, "Carol", statuses[0].FullName)
	if assert.Len(t, statuses[0].SeenBy, 1, "expected viewer list") {
		assert.Equal(t, 4, statuses[0].SeenBy[0].UserId)
	}
}

func TestMarkStatusSeenHandler(t *testing.T) {
	status := database.Status{
		Id:         5,
		ExternalId: "st-1",
		AccountId:  2,
		MediaUrl:   "https://cdn.example.com/s.jpg",
		MediaType:  "image",
	}

	t.Run("records a view", func(t *testing.T) {
		mockRepo := &database.MockChatRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetStatusByExternalId", "st-1").Return(status, nil).Once()
		mockRepo.On("GetAccountById", 1).Return(database.User{Id: 1, FullName: "Alice"}, nil).Once()
		mockRepo.On("MarkStatusSeen", 5, 1, "Alice").Return(nil).Once()

		seen := status
		seen.Views = []database.StatusView{{AccountId: 1, FullName: "Alice", SeenAt: time.Now().UTC()}}
		mockRepo.On("GetStatusByExternalId", "st-1").Return(seen, nil).Once()

		app := newTestApp(t, mockRepo, nil)

		req := authedRequest(httptest.NewRequest(http.MethodPut, "/api/status/seen/st-1", nil), 1)
		req.SetPathValue("statusId", "st-1")
		rr := httptest.NewRecorder()
		app.markStatusSeen(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp types.Status
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp), "failed to decode response")
		if assert.Len(t, resp.SeenBy, 1) {
			assert.Equal(t, "Alice", resp.SeenBy[0].FullName)
		}
	})

	t.Run("owner views are not recorded", func(t *testing.T) {
		mockRepo := &database.MockChatRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetStatusByExternalId", "st-1").Return(status, nil).Once()

		app := newTestApp(t, mockRepo, nil)

		req := authedRequest(httptest.NewRequest(http.MethodPut, "/api/status/seen/st-1", nil), 2)
		req.SetPathValue("statusId", "st-1")
		rr := httptest.NewRecorder()
		app.markStatusSeen(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockRepo.AssertNotCalled(t, "MarkStatusSeen", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown status returns not found", func(t *testing.T) {
		mockRepo := &database.MockChatRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetStatusByExternalId", "missing").Return(database.Status{}, sql.ErrNoRows).Once()

		app := newTestApp(t, mockRepo, nil)

		req := authedRequest(httptest.NewRequest(http.MethodPut, "/api/status/seen/missing", nil), 1)
		req.SetPathValue("statusId", "missing")
		rr := httptest.NewRecorder()
		app.markStatusSeen(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestDeleteStatusHandler(t *testing.T) {
	status := database.Status{Id: 5, ExternalId: "st-1", AccountId: 1}

	tcases := []struct {
		name         string
		userId       int
		deleteErr    error
		expectedCode int
	}{
		{
			name:         "owner deletes their status",
			userId:       1,
			expectedCode: http.StatusOK,
		},
		{
			name:         "non-owner cannot delete",
			userId:       2,
			deleteErr:    sql.ErrNoRows,
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "db error surfaces as internal error",
			userId:       1,
			deleteErr:    errors.New("db error"),
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockChatRepository{}
			defer mockRepo.AssertExpectations(t)
			mockRepo.On("GetStatusByExternalId", "st-1").Return(status, nil).Once()
			mockRepo.On("DeleteStatus", 5, tc.userId).Return(tc.deleteErr).Once()

			app := newTestApp(t, mockRepo, nil)

			req := authedRequest(httptest.NewRequest(http.MethodDelete, "/api/status/st-1", nil), tc.userId)
			req.SetPathValue("statusId", "st-1")
			rr := httptest.NewRecorder()
			app.deleteStatus(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code, "expected status code to match")
		})
	}
}

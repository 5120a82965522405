package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/jtorres/go-chatline/internal/server"
	"github.com/jtorres/go-chatline/internal/types"
)

// maxUploadSize bounds multipart request bodies (50MB, matching the media
// provider's free-tier ceiling).
const maxUploadSize = 50 << 20

func (s *ChatApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

// readUpload extracts a single uploaded file from a parsed multipart form.
func (s *ChatApp) readUpload(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}

	return data, header.Header.Get("Content-Type"), nil
}

func (s *ChatApp) healthCheck(w http.ResponseWriter, _ *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Println("health check:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		s.log.Printf("error writing response: %v", err)
	}
}

func (s *ChatApp) otherUsers(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbUsers, err := s.db.ListAccountsExcept(userId)
	if err != nil {
		s.log.Println("list accounts:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	users := make([]types.User, 0, len(dbUsers))
	for _, u := range dbUsers {
		users = append(users, types.User{
			Id:           u.Id,
			FullName:     u.FullName,
			EmailAddress: u.EmailAddress,
			ProfilePic:   u.ProfilePic,
			CreatedAt:    u.CreatedAt,
			UpdatedAt:    u.UpdatedAt,
		})
	}

	s.writeJson(w, http.StatusOK, users)
}

func (s *ChatApp) getMessages(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	otherId, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbMessages, err := s.db.ListMessagesBetween(userId, otherId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messages := make([]types.Message, 0, len(dbMessages))
	for _, m := range dbMessages {
		msg := types.Message{
			Id:         m.Id,
			SenderId:   m.SenderId,
			ReceiverId: m.ReceiverId,
			Text:       m.Text,
			CreatedAt:  m.CreatedAt,
		}
		if m.MediaUrl != "" {
			msg.Media = &types.MediaAttachment{
				Url:  m.MediaUrl,
				Type: types.MediaType(m.MediaType),
			}
		}
		messages = append(messages, msg)
	}

	s.writeJson(w, http.StatusOK, messages)
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

func (s *ChatApp) sendMessage(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	receiverId, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	params := server.SendMessageParams{
		SenderId:   userId,
		ReceiverId: receiverId,
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		params.Text = r.FormValue("text")

		data, mimeType, err := s.readUpload(r, "media")
		if err == nil {
			params.Media = data
			params.MediaMimeType = mimeType
		} else if !errors.Is(err, http.ErrMissingFile) {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	} else {
		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		params.Text = req.Text
	}

	// an accepted message is not discarded if the sender disconnects
	// mid-upload, so ingestion runs on a context detached from the request
	msg, err := s.gw.SendMessage(context.WithoutCancel(r.Context()), params)
	if err != nil {
		var errResp *ApiError
		switch {
		case errors.Is(err, server.ErrValidation):
			errResp = NewBadRequestError()
		case errors.Is(err, server.ErrNotFound):
			errResp = NewNotFoundError()
		case errors.Is(err, server.ErrUpload):
			errResp = NewBadGatewayError(err)
		default:
			errResp = NewInternalServerError(err)
		}
		s.log.Println("send message:", err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, msg)
}

func (s *ChatApp) serveWs(w http.ResponseWriter, r *http.Request) {
	id, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// presence registration is bound to the authenticated session identity,
	// never to a handshake query parameter
	if _, err := s.db.GetAccountById(id); err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := server.NewClient(id, conn, s.gw, s.log)

	s.gw.RegisterClient(client)
	go client.Write()
	go client.Read()
}

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jtorres/go-chatline/internal/database"
	"github.com/stretchr/testify/assert"
)

func TestAuthMiddleware(t *testing.T) {
	app := newTestApp(t, &database.MockChatRepository{}, nil)

	validToken, err := app.createJwtForSession(42, time.Minute)
	assert.NoError(t, err, "failed to create token")

	tcases := []struct {
		name           string
		cookie         *http.Cookie
		expectedCode   int
		expectedUserId int
	}{
		{
			name:           "passes the verified user id to the handler",
			cookie:         &http.Cookie{Name: tokenCookieKey, Value: validToken},
			expectedCode:   http.StatusOK,
			expectedUserId: 42,
		},
		{
			name:         "rejects requests without a cookie",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "rejects a garbage token",
			cookie:       &http.Cookie{Name: tokenCookieKey, Value: "not-a-jwt"},
			expectedCode: http.StatusUnauthorized,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			var gotUserId int
			handler := app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
				gotUserId, _ = UserId(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			rr := httptest.NewRecorder()
			handler(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code, "expected status code to match")
			if tc.expectedCode == http.StatusOK {
				assert.Equal(t, tc.expectedUserId, gotUserId, "expected user id from token")
				assert.Contains(t, rr.Header().Get("Cache-Control"), "no-store",
					"authenticated responses must not be cached")
			}
		})
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	app := newTestApp(t, &database.MockChatRepository{}, nil)

	expiredToken, err := app.createJwtForSession(42, -time.Minute)
	assert.NoError(t, err, "failed to create token")

	handler := app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called with an expired token")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookieKey, Value: expiredToken})
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestErrorHandler_Panic(t *testing.T) {
	app := newTestApp(t, &database.MockChatRepository{}, nil)

	handler := app.errorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/messages/users", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code, "panics must surface as 500s")
	assert.Equal(t, "close", rr.Header().Get("Connection"))
}

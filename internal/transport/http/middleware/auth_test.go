package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"email-assistant/internal/model"
	"email-assistant/internal/pkg/jwtutil"
)

const testSecret = "middleware-test-secret"

type stubUserFinder struct {
	user *model.User
	err  error

	gotLogin string
}

func (s *stubUserFinder) FindActiveByLogin(login string) (*model.User, error) {
	s.gotLogin = login
	return s.user, s.err
}

func newProtectedRouter(finder *stubUserFinder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AuthUser(testSecret, finder), func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	})
	return router
}

func request(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthUserResolvesSubject(t *testing.T) {
	finder := &stubUserFinder{user: &model.User{ID: 1, Username: "ann"}}
	router := newProtectedRouter(finder)

	token, err := jwtutil.GenerateToken(testSecret, 30*time.Minute, "ann")
	require.NoError(t, err)

	rec := request(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ann", finder.gotLogin)
	assert.Contains(t, rec.Body.String(), `"username":"ann"`)
}

func TestAuthUserFailureModes(t *testing.T) {
	validToken, err := jwtutil.GenerateToken(testSecret, 30*time.Minute, "ann")
	require.NoError(t, err)

	expiredToken, err := jwtutil.GenerateToken(testSecret, time.Nanosecond, "ann")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	foreignToken, err := jwtutil.GenerateToken("other-secret", 30*time.Minute, "ann")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		finder *stubUserFinder
	}{
		{"missing header", "", &stubUserFinder{}},
		{"wrong scheme", "Basic abc", &stubUserFinder{}},
		{"garbage token", "Bearer garbage", &stubUserFinder{}},
		{"expired token", "Bearer " + expiredToken, &stubUserFinder{}},
		{"bad signature", "Bearer " + foreignToken, &stubUserFinder{}},
		{"unknown subject", "Bearer " + validToken, &stubUserFinder{user: nil}},
	}

	var bodies []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := request(newProtectedRouter(tc.finder), tc.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			bodies = append(bodies, rec.Body.String())
		})
	}

	// Every cause produces the same generic body.
	for _, body := range bodies {
		assert.Equal(t, bodies[0], body)
	}
}

func TestAuthUserDualModeLookup(t *testing.T) {
	finder := &stubUserFinder{user: &model.User{ID: 1, Username: "ann", Email: "ann@x.com"}}
	router := newProtectedRouter(finder)

	token, err := jwtutil.GenerateToken(testSecret, 30*time.Minute, "ann@x.com")
	require.NoError(t, err)

	rec := request(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	// The subject is handed to the finder verbatim; the repository
	// decides email vs username by the "@".
	assert.Equal(t, "ann@x.com", finder.gotLogin)
}

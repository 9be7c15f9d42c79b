package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

func callAuth(t *testing.T, userID, role string) (*httptest.ResponseRecorder, domain.Actor, bool) {
	t.Helper()

	var (
		actor domain.Actor
		ok    bool
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	if userID != "" {
		req.Header.Set(HeaderUserID, userID)
	}
	if role != "" {
		req.Header.Set(HeaderUserRole, role)
	}

	rec := httptest.NewRecorder()
	Auth(next).ServeHTTP(rec, req)
	return rec, actor, ok
}

func TestAuth_PassesActorToHandler(t *testing.T) {
	rec, actor, ok := callAuth(t, "42", "operator")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok)
	assert.Equal(t, int64(42), actor.UserID)
	assert.Equal(t, domain.RoleOperator, actor.Role)
}

func TestAuth_DefaultsRoleToCitizen(t *testing.T) {
	rec, actor, ok := callAuth(t, "42", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok)
	assert.Equal(t, domain.RoleCitizen, actor.Role)
}

func TestAuth_MissingUserID(t *testing.T) {
	rec, _, ok := callAuth(t, "", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, ok)
}

func TestAuth_InvalidUserID(t *testing.T) {
	for _, raw := range []string{"abc", "-1", "0", "1.5"} {
		rec, _, ok := callAuth(t, raw, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code, raw)
		assert.False(t, ok, raw)
	}
}

func TestAuth_InvalidRole(t *testing.T) {
	rec, _, _ := callAuth(t, "42", "SUPERUSER")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestActorFromContext_MissingActor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := ActorFromContext(req.Context())
	assert.False(t, ok)
}

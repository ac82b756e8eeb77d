package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusware/course-portal/identity"
)

func TestStore(t *testing.T) {
	t.Run("empty store has no credential or claims", func(t *testing.T) {
		store := NewStore()

		_, ok := store.Credential()
		assert.False(t, ok)
		_, ok = store.Claims()
		assert.False(t, ok)
	})

	t.Run("save then get round-trips", func(t *testing.T) {
		store := NewStore()
		claims := identity.Student{User: 1, StudentID: 7}
		store.Save("token-a", claims)

		cred, ok := store.Credential()
		require.True(t, ok)
		assert.Equal(t, "token-a", cred)

		got, ok := store.Claims()
		require.True(t, ok)
		assert.Equal(t, claims, got)
	})

	t.Run("save overwrites the previous credential", func(t *testing.T) {
		store := NewStore()
		store.Save("token-a", identity.Student{User: 1, StudentID: 7})
		store.Save("token-b", identity.Admin{User: 2})

		cred, ok := store.Credential()
		require.True(t, ok)
		assert.Equal(t, "token-b", cred)

		claims, ok := store.Claims()
		require.True(t, ok)
		assert.Equal(t, identity.Admin{User: 2}, claims)
	})

	t.Run("claims are re-derived when no hint was saved", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"role": "STUDENT", "uid": 3, "sid": 9,
		}).SignedString([]byte("store-test-key"))
		require.NoError(t, err)

		store := NewStore()
		store.Save(token, nil)

		claims, ok := store.Claims()
		require.True(t, ok)
		assert.Equal(t, identity.Student{User: 3, StudentID: 9}, claims)
	})

	t.Run("clear then get is absent", func(t *testing.T) {
		store := NewStore()
		store.Save("token-a", identity.Admin{User: 1})
		store.Clear()

		_, ok := store.Credential()
		assert.False(t, ok)
		_, ok = store.Claims()
		assert.False(t, ok)
	})
}

func TestManager(t *testing.T) {
	logger := zap.NewNop()

	requestWithCookie := func(value string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: CookieName, Value: value})
		return r
	}

	t.Run("begin sets a cookie that resolves to the same store", func(t *testing.T) {
		m := NewManager(time.Hour, false, logger)
		w := httptest.NewRecorder()

		id, store := m.Begin(w)
		store.Save("token-a", identity.Admin{User: 1})

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, CookieName, cookies[0].Name)
		assert.Equal(t, id, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)

		gotID, gotStore, ok := m.Resolve(requestWithCookie(id))
		require.True(t, ok)
		assert.Equal(t, id, gotID)
		assert.Same(t, store, gotStore)

		cred, ok := m.CredentialFor(requestWithCookie(id))
		require.True(t, ok)
		assert.Equal(t, "token-a", cred)
	})

	t.Run("unknown or missing cookie does not resolve", func(t *testing.T) {
		m := NewManager(time.Hour, false, logger)

		_, _, ok := m.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.False(t, ok)

		_, _, ok = m.Resolve(requestWithCookie("not-a-session"))
		assert.False(t, ok)
	})

	t.Run("drop clears the store and expires the cookie", func(t *testing.T) {
		m := NewManager(time.Hour, false, logger)
		w := httptest.NewRecorder()
		id, store := m.Begin(w)
		store.Save("token-a", identity.Admin{User: 1})

		dropW := httptest.NewRecorder()
		m.Drop(dropW, requestWithCookie(id))

		_, _, ok := m.Resolve(requestWithCookie(id))
		assert.False(t, ok)
		_, ok = store.Credential()
		assert.False(t, ok)

		cookies := dropW.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, -1, cookies[0].MaxAge)
	})
}

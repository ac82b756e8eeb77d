package lms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusware/course-portal/models"
	"github.com/campusware/course-portal/session"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, session.ContextCredentials{}, 5*time.Second, zap.NewNop())
}

func TestFetchPage(t *testing.T) {
	t.Run("forwards paging and query parameters", func(t *testing.T) {
		var gotQuery map[string]string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = map[string]string{
				"page": r.URL.Query().Get("page"),
				"size": r.URL.Query().Get("size"),
				"q":    r.URL.Query().Get("q"),
			}
			_ = json.NewEncoder(w).Encode(Page[models.Course]{
				Content:       []models.Course{{ID: 1, Title: "Algebra"}, {ID: 2, Title: "Biology"}},
				Number:        2,
				TotalPages:    5,
				TotalElements: 42,
			})
		})

		page, err := client.Courses(context.Background(), PageQuery{Page: 2, Size: 8, Query: "bio"})

		require.NoError(t, err)
		assert.Equal(t, map[string]string{"page": "2", "size": "8", "q": "bio"}, gotQuery)
		require.Len(t, page.Content, 2)
		// Server order is preserved as-is.
		assert.Equal(t, int64(1), page.Content[0].ID)
		assert.Equal(t, int64(2), page.Content[1].ID)
		assert.Equal(t, int64(42), page.TotalElements)
	})

	t.Run("attaches the bearer credential when present", func(t *testing.T) {
		var gotAuth string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewEncoder(w).Encode(Page[models.Course]{})
		})

		ctx := session.WithCredential(context.Background(), "token-a")
		_, err := client.Courses(ctx, PageQuery{Size: 10})

		require.NoError(t, err)
		assert.Equal(t, "Bearer token-a", gotAuth)
	})

	t.Run("omits the header without a credential", func(t *testing.T) {
		var gotAuth string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewEncoder(w).Encode(Page[models.Course]{})
		})

		_, err := client.Courses(context.Background(), PageQuery{Size: 10})

		require.NoError(t, err)
		assert.Empty(t, gotAuth)
	})

	t.Run("non-200 becomes a typed fetch error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := client.Courses(context.Background(), PageQuery{Size: 10})

		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, http.StatusInternalServerError, fetchErr.Status)
		assert.Equal(t, "/api/courses", fetchErr.Path)
	})

	t.Run("malformed body becomes a typed fetch error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		})

		_, err := client.Courses(context.Background(), PageQuery{Size: 10})

		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
	})
}

func TestLogin(t *testing.T) {
	t.Run("successful exchange returns the auth payload", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/auth/login", r.URL.Path)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "amr", body["username"])

			sid := int64(7)
			_ = json.NewEncoder(w).Encode(models.AuthResponse{
				Token:     "token-a",
				Role:      "STUDENT",
				UserID:    42,
				StudentID: &sid,
			})
		})

		auth, err := client.Login(context.Background(), "amr", "secret")

		require.NoError(t, err)
		assert.Equal(t, "token-a", auth.Token)
		require.NotNil(t, auth.StudentID)
		assert.Equal(t, int64(7), *auth.StudentID)
	})

	t.Run("rejected credentials return ErrInvalidCredentials", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := client.Login(context.Background(), "amr", "wrong")

		assert.True(t, errors.Is(err, ErrInvalidCredentials))
	})
}

func TestAssociationCalls(t *testing.T) {
	t.Run("enroll posts the subject and resource pair", func(t *testing.T) {
		var gotPath string
		var gotBody map[string]int64
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusCreated)
		})

		err := client.Enroll(context.Background(), 7, 3)

		require.NoError(t, err)
		assert.Equal(t, "/api/enrollments", gotPath)
		assert.Equal(t, map[string]int64{"studentId": 7, "courseId": 3}, gotBody)
	})

	t.Run("assign targets the instructor-course path", func(t *testing.T) {
		var gotPath string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.WriteHeader(http.StatusOK)
		})

		err := client.AssignCourse(context.Background(), 11, 3)

		require.NoError(t, err)
		assert.Equal(t, "/api/instructors/11/courses/3", gotPath)
	})

	t.Run("failure status surfaces as an error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
		})

		err := client.Enroll(context.Background(), 7, 3)

		assert.Error(t, err)
	})
}

func TestEnrollmentCount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/enrollments/courses/3", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("size"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content":       []any{map[string]any{"id": 1}},
			"totalElements": 57,
		})
	})

	count, err := client.EnrollmentCount(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, int64(57), count)
}

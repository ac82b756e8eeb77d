package lms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campusware/course-portal/models"
)

// CredentialSource supplies the bearer credential for outbound calls.
// When no credential is available the call goes out unauthenticated;
// the LMS service is the authority on whether that is acceptable.
type CredentialSource interface {
	Credential(ctx context.Context) (string, bool)
}

// Client talks to the external LMS HTTP+JSON API. It is a thin
// forwarding layer: no caching, no local filtering, no retries.
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource
	logger  *zap.Logger
}

// NewClient creates an LMS API client for the given base URL.
func NewClient(baseURL string, creds CredentialSource, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		creds:   creds,
		logger:  logger,
	}
}

// FetchPage retrieves one page of a paginated, query-filterable
// collection. It is used identically for universe collections and
// associated-set collections; failures wrap into *FetchError.
func FetchPage[T any](ctx context.Context, c *Client, path string, q PageQuery) (Page[T], error) {
	var page Page[T]

	req, err := c.newRequest(ctx, http.MethodGet, path, q.values(), nil)
	if err != nil {
		return page, &FetchError{Path: path, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return page, &FetchError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("page fetch failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return page, &FetchError{Path: path, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return page, &FetchError{Path: path, Err: fmt.Errorf("decode page: %w", err)}
	}
	return page, nil
}

// Login exchanges a username/password pair for a credential and the
// role facts the LMS associates with it.
func (c *Client) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	body := map[string]string{"username": username, "password": password}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/auth/login", nil, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var auth models.AuthResponse
		if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
			return nil, fmt.Errorf("login: decode response: %w", err)
		}
		return &auth, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrInvalidCredentials
	default:
		return nil, fmt.Errorf("login: unexpected status %d", resp.StatusCode)
	}
}

// Courses fetches one page of the full course catalog.
func (c *Client) Courses(ctx context.Context, q PageQuery) (Page[models.Course], error) {
	return FetchPage[models.Course](ctx, c, "/api/courses", q)
}

// EnrolledCourses fetches a page of the courses a student is enrolled
// in.
func (c *Client) EnrolledCourses(ctx context.Context, studentID int64, q PageQuery) (Page[models.Course], error) {
	return FetchPage[models.Course](ctx, c, fmt.Sprintf("/api/students/%d/courses", studentID), q)
}

// Enroll associates a student with a course.
func (c *Client) Enroll(ctx context.Context, studentID, courseID int64) error {
	body := map[string]int64{"studentId": studentID, "courseId": courseID}
	return c.post(ctx, "/api/enrollments", body)
}

// AssignedCourses fetches a page of the courses assigned to an
// instructor.
func (c *Client) AssignedCourses(ctx context.Context, instructorID int64, q PageQuery) (Page[models.Course], error) {
	return FetchPage[models.Course](ctx, c, fmt.Sprintf("/api/instructors/%d/courses", instructorID), q)
}

// AssignCourse associates an instructor with a course.
func (c *Client) AssignCourse(ctx context.Context, instructorID, courseID int64) error {
	return c.post(ctx, fmt.Sprintf("/api/instructors/%d/courses/%d", instructorID, courseID), nil)
}

// Instructors fetches one page of the instructor collection.
func (c *Client) Instructors(ctx context.Context, q PageQuery) (Page[models.Instructor], error) {
	return FetchPage[models.Instructor](ctx, c, "/api/instructors", q)
}

// Students fetches one page of the student collection.
func (c *Client) Students(ctx context.Context, q PageQuery) (Page[models.Student], error) {
	return FetchPage[models.Student](ctx, c, "/api/students", q)
}

// AdminStats fetches the aggregate counts endpoint. Deployments
// without it answer 404 and the caller falls back to computing counts.
func (c *Client) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/admin/stats", nil, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("admin stats: unexpected status %d", resp.StatusCode)
	}
	var stats models.AdminStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("admin stats: decode response: %w", err)
	}
	return &stats, nil
}

// EnrollmentCount returns the number of enrollments for one course,
// read from the page envelope of a minimal fetch.
func (c *Client) EnrollmentCount(ctx context.Context, courseID int64) (int64, error) {
	path := fmt.Sprintf("/api/enrollments/courses/%d", courseID)
	page, err := FetchPage[json.RawMessage](ctx, c, path, PageQuery{Page: 0, Size: 1})
	if err != nil {
		return 0, err
	}
	return page.TotalElements, nil
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("post %s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cred, ok := c.creds.Credential(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+cred)
	}
	return req, nil
}

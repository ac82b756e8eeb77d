package stats

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/campusware/course-portal/lms"
	"github.com/campusware/course-portal/models"
)

// countConcurrency bounds the per-course fan-out so the fallback never
// opens an unbounded number of simultaneous connections.
const countConcurrency = 8

// coursePageSize is the page length used when walking the catalog for
// course ids.
const coursePageSize = 100

// API is the slice of the LMS client the dashboard needs.
type API interface {
	AdminStats(ctx context.Context) (*models.AdminStats, error)
	Instructors(ctx context.Context, q lms.PageQuery) (lms.Page[models.Instructor], error)
	Students(ctx context.Context, q lms.PageQuery) (lms.Page[models.Student], error)
	Courses(ctx context.Context, q lms.PageQuery) (lms.Page[models.Course], error)
	EnrollmentCount(ctx context.Context, courseID int64) (int64, error)
}

// Overview is the admin dashboard's aggregate counts. Source records
// which strategy produced them.
type Overview struct {
	Instructors int64  `json:"instructors"`
	Students    int64  `json:"students"`
	Courses     int64  `json:"courses"`
	Enrollments int64  `json:"enrollments"`
	Source      string `json:"source"`
}

// Service computes dashboard aggregates. Counts are best effort by
// contract: any failed sub-fetch degrades to a zero count instead of
// failing the whole view. This is the one place in the portal where a
// network failure is deliberately swallowed.
type Service struct {
	api    API
	logger *zap.Logger
}

// NewService creates a dashboard stats service.
func NewService(api API, logger *zap.Logger) *Service {
	return &Service{api: api, logger: logger}
}

// Overview returns the aggregate counts, preferring the LMS stats
// endpoint and falling back to computing counts from page envelopes.
func (s *Service) Overview(ctx context.Context) Overview {
	if stats, err := s.api.AdminStats(ctx); err == nil {
		return Overview{
			Instructors: stats.Instructors,
			Students:    stats.Students,
			Courses:     stats.Courses,
			Enrollments: stats.Enrollments,
			Source:      "stats-endpoint",
		}
	}

	one := lms.PageQuery{Page: 0, Size: 1}
	var o Overview
	o.Source = "computed-per-course"

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		page, err := s.api.Instructors(ctx, one)
		o.Instructors = s.countOrZero("instructors", page.TotalElements, err)
	}()
	go func() {
		defer wg.Done()
		page, err := s.api.Students(ctx, one)
		o.Students = s.countOrZero("students", page.TotalElements, err)
	}()
	go func() {
		defer wg.Done()
		page, err := s.api.Courses(ctx, one)
		o.Courses = s.countOrZero("courses", page.TotalElements, err)
	}()
	wg.Wait()

	o.Enrollments = s.totalEnrollments(ctx)
	return o
}

func (s *Service) countOrZero(what string, count int64, err error) int64 {
	if err != nil {
		s.logger.Warn("count fetch degraded to zero",
			zap.String("collection", what),
			zap.Error(err))
		return 0
	}
	return count
}

// totalEnrollments sums per-course enrollment counts, fanning requests
// out in windows of countConcurrency. A failed course count degrades
// to zero.
func (s *Service) totalEnrollments(ctx context.Context) int64 {
	ids, err := s.allCourseIDs(ctx)
	if err != nil {
		s.logger.Warn("enrollment total degraded to zero", zap.Error(err))
		return 0
	}

	var total int64
	for start := 0; start < len(ids); start += countConcurrency {
		end := start + countConcurrency
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		counts := make([]int64, len(batch))
		var wg sync.WaitGroup
		for i, id := range batch {
			wg.Add(1)
			go func(i int, id int64) {
				defer wg.Done()
				count, err := s.api.EnrollmentCount(ctx, id)
				if err != nil {
					s.logger.Warn("course enrollment count degraded to zero",
						zap.Int64("course_id", id),
						zap.Error(err))
					return
				}
				counts[i] = count
			}(i, id)
		}
		wg.Wait()

		for _, c := range counts {
			total += c
		}
	}
	return total
}

func (s *Service) allCourseIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	for page := 0; ; page++ {
		result, err := s.api.Courses(ctx, lms.PageQuery{Page: page, Size: coursePageSize})
		if err != nil {
			return nil, err
		}
		for _, c := range result.Content {
			ids = append(ids, c.ID)
		}
		if result.Last || page >= result.TotalPages-1 {
			return ids, nil
		}
	}
}

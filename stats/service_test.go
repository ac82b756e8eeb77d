package stats

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/campusware/course-portal/lms"
	"github.com/campusware/course-portal/models"
)

type fakeAPI struct {
	adminStats      func() (*models.AdminStats, error)
	instructors     func() (lms.Page[models.Instructor], error)
	students        func() (lms.Page[models.Student], error)
	courses         func(q lms.PageQuery) (lms.Page[models.Course], error)
	enrollmentCount func(courseID int64) (int64, error)
}

func (f *fakeAPI) AdminStats(context.Context) (*models.AdminStats, error) {
	return f.adminStats()
}

func (f *fakeAPI) Instructors(context.Context, lms.PageQuery) (lms.Page[models.Instructor], error) {
	return f.instructors()
}

func (f *fakeAPI) Students(context.Context, lms.PageQuery) (lms.Page[models.Student], error) {
	return f.students()
}

func (f *fakeAPI) Courses(_ context.Context, q lms.PageQuery) (lms.Page[models.Course], error) {
	return f.courses(q)
}

func (f *fakeAPI) EnrollmentCount(_ context.Context, courseID int64) (int64, error) {
	return f.enrollmentCount(courseID)
}

func courseIDs(from, to int64) []models.Course {
	var out []models.Course
	for id := from; id <= to; id++ {
		out = append(out, models.Course{ID: id})
	}
	return out
}

func TestOverview(t *testing.T) {
	ctx := context.Background()

	t.Run("prefers the stats endpoint", func(t *testing.T) {
		api := &fakeAPI{
			adminStats: func() (*models.AdminStats, error) {
				return &models.AdminStats{Instructors: 3, Students: 40, Courses: 12, Enrollments: 200}, nil
			},
		}
		svc := NewService(api, zap.NewNop())

		o := svc.Overview(ctx)

		assert.Equal(t, Overview{
			Instructors: 3, Students: 40, Courses: 12, Enrollments: 200,
			Source: "stats-endpoint",
		}, o)
	})

	t.Run("computes counts when the endpoint is missing", func(t *testing.T) {
		api := &fakeAPI{
			adminStats: func() (*models.AdminStats, error) {
				return nil, errors.New("404")
			},
			instructors: func() (lms.Page[models.Instructor], error) {
				return lms.Page[models.Instructor]{TotalElements: 3}, nil
			},
			students: func() (lms.Page[models.Student], error) {
				return lms.Page[models.Student]{TotalElements: 40}, nil
			},
			courses: func(q lms.PageQuery) (lms.Page[models.Course], error) {
				if q.Size == 1 {
					return lms.Page[models.Course]{TotalElements: 2}, nil
				}
				return lms.Page[models.Course]{Content: courseIDs(1, 2), TotalPages: 1, Last: true}, nil
			},
			enrollmentCount: func(courseID int64) (int64, error) {
				return courseID * 10, nil
			},
		}
		svc := NewService(api, zap.NewNop())

		o := svc.Overview(ctx)

		assert.Equal(t, int64(3), o.Instructors)
		assert.Equal(t, int64(40), o.Students)
		assert.Equal(t, int64(2), o.Courses)
		assert.Equal(t, int64(30), o.Enrollments)
		assert.Equal(t, "computed-per-course", o.Source)
	})

	t.Run("failed sub-fetches degrade to zero, not an error", func(t *testing.T) {
		api := &fakeAPI{
			adminStats: func() (*models.AdminStats, error) {
				return nil, errors.New("404")
			},
			instructors: func() (lms.Page[models.Instructor], error) {
				return lms.Page[models.Instructor]{}, errors.New("boom")
			},
			students: func() (lms.Page[models.Student], error) {
				return lms.Page[models.Student]{TotalElements: 40}, nil
			},
			courses: func(q lms.PageQuery) (lms.Page[models.Course], error) {
				if q.Size == 1 {
					return lms.Page[models.Course]{TotalElements: 3}, nil
				}
				return lms.Page[models.Course]{Content: courseIDs(1, 3), TotalPages: 1, Last: true}, nil
			},
			enrollmentCount: func(courseID int64) (int64, error) {
				if courseID == 2 {
					return 0, errors.New("boom")
				}
				return 5, nil
			},
		}
		svc := NewService(api, zap.NewNop())

		o := svc.Overview(ctx)

		assert.Zero(t, o.Instructors)
		assert.Equal(t, int64(40), o.Students)
		assert.Equal(t, int64(10), o.Enrollments, "failed course degrades to zero")
	})

	t.Run("per-course fan-out stays within the concurrency window", func(t *testing.T) {
		var mu sync.Mutex
		inFlight, peak := 0, 0

		api := &fakeAPI{
			adminStats: func() (*models.AdminStats, error) {
				return nil, errors.New("404")
			},
			instructors: func() (lms.Page[models.Instructor], error) {
				return lms.Page[models.Instructor]{}, nil
			},
			students: func() (lms.Page[models.Student], error) {
				return lms.Page[models.Student]{}, nil
			},
			courses: func(q lms.PageQuery) (lms.Page[models.Course], error) {
				if q.Size == 1 {
					return lms.Page[models.Course]{}, nil
				}
				return lms.Page[models.Course]{Content: courseIDs(1, 40), TotalPages: 1, Last: true}, nil
			},
			enrollmentCount: func(int64) (int64, error) {
				mu.Lock()
				inFlight++
				if inFlight > peak {
					peak = inFlight
				}
				mu.Unlock()

				mu.Lock()
				inFlight--
				mu.Unlock()
				return 1, nil
			},
		}
		svc := NewService(api, zap.NewNop())

		o := svc.Overview(ctx)

		assert.Equal(t, int64(40), o.Enrollments)
		assert.LessOrEqual(t, peak, countConcurrency)
	})

	t.Run("walks every catalog page for course ids", func(t *testing.T) {
		api := &fakeAPI{
			adminStats: func() (*models.AdminStats, error) {
				return nil, errors.New("404")
			},
			instructors: func() (lms.Page[models.Instructor], error) {
				return lms.Page[models.Instructor]{}, nil
			},
			students: func() (lms.Page[models.Student], error) {
				return lms.Page[models.Student]{}, nil
			},
			courses: func(q lms.PageQuery) (lms.Page[models.Course], error) {
				if q.Size == 1 {
					return lms.Page[models.Course]{}, nil
				}
				switch q.Page {
				case 0:
					return lms.Page[models.Course]{Content: courseIDs(1, 100), TotalPages: 2}, nil
				default:
					return lms.Page[models.Course]{Content: courseIDs(101, 150), TotalPages: 2, Last: true}, nil
				}
			},
			enrollmentCount: func(int64) (int64, error) {
				return 1, nil
			},
		}
		svc := NewService(api, zap.NewNop())

		o := svc.Overview(ctx)

		assert.Equal(t, int64(150), o.Enrollments)
	})
}

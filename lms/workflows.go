package lms

import (
	"context"

	"github.com/campusware/course-portal/models"
)

// EnrollmentWorkflow adapts the client to the student-enrollment
// reconciliation view: the universe is the full course catalog, the
// associated set is the student's enrollments. SetSize bounds the
// associated-set fetch and is chosen large enough to return the full
// membership in one round trip.
type EnrollmentWorkflow struct {
	Client  *Client
	SetSize int
}

func (w EnrollmentWorkflow) FetchUniverse(ctx context.Context, q PageQuery) (Page[models.Course], error) {
	return w.Client.Courses(ctx, q)
}

func (w EnrollmentWorkflow) FetchAssociated(ctx context.Context, subjectID int64) (Page[models.Course], error) {
	return w.Client.EnrolledCourses(ctx, subjectID, PageQuery{Page: 0, Size: w.SetSize})
}

func (w EnrollmentWorkflow) Associate(ctx context.Context, subjectID, resourceID int64) error {
	return w.Client.Enroll(ctx, subjectID, resourceID)
}

// AssignmentWorkflow adapts the client to the instructor-assignment
// reconciliation view used by administrators.
type AssignmentWorkflow struct {
	Client  *Client
	SetSize int
}

func (w AssignmentWorkflow) FetchUniverse(ctx context.Context, q PageQuery) (Page[models.Course], error) {
	return w.Client.Courses(ctx, q)
}

func (w AssignmentWorkflow) FetchAssociated(ctx context.Context, subjectID int64) (Page[models.Course], error) {
	return w.Client.AssignedCourses(ctx, subjectID, PageQuery{Page: 0, Size: w.SetSize})
}

func (w AssignmentWorkflow) Associate(ctx context.Context, subjectID, resourceID int64) error {
	return w.Client.AssignCourse(ctx, subjectID, resourceID)
}

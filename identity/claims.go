package identity

// Role is the coarse authorization level carried by a portal credential.
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleInstructor Role = "INSTRUCTOR"
	RoleAdmin      Role = "ADMIN"
)

// Claims is the identity derived from a credential. It is a closed set
// of variants keyed by role, each carrying only the fields valid for
// that role, so a "student id on an admin" state cannot be represented.
// A nil Claims means no usable credential.
type Claims interface {
	Role() Role
	UserID() int64

	claims()
}

// Student identifies a logged-in student.
type Student struct {
	User      int64
	StudentID int64
}

func (Student) Role() Role      { return RoleStudent }
func (s Student) UserID() int64 { return s.User }
func (Student) claims()         {}

// Instructor identifies a logged-in instructor.
type Instructor struct {
	User         int64
	InstructorID int64
}

func (Instructor) Role() Role      { return RoleInstructor }
func (i Instructor) UserID() int64 { return i.User }
func (Instructor) claims()         {}

// Admin identifies a logged-in administrator. Admins have no per-role
// subject id.
type Admin struct {
	User int64
}

func (Admin) Role() Role      { return RoleAdmin }
func (a Admin) UserID() int64 { return a.User }
func (Admin) claims()         {}

// SubjectID returns the per-role subject identifier for claims that
// carry one (student id or instructor id). Admins report false.
func SubjectID(c Claims) (int64, bool) {
	switch v := c.(type) {
	case Student:
		return v.StudentID, true
	case Instructor:
		return v.InstructorID, true
	default:
		return 0, false
	}
}

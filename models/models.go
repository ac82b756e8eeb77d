package models

// Course represents a catalog entry as returned by the LMS API. The
// portal treats it as opaque display data keyed by ID; no business
// rules are enforced on it here.
type Course struct {
	ID             int64  `json:"id"`
	Code           string `json:"code"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Capacity       int    `json:"capacity,omitempty"`
	EnrollmentOpen bool   `json:"enrollmentOpen"`
	LectureHall    string `json:"lectureHall,omitempty"`
	LectureTime    string `json:"lectureTime,omitempty"`
}

// Instructor represents an instructor record from the LMS API.
type Instructor struct {
	ID        int64  `json:"id"`
	StaffNo   string `json:"staffNo"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// Student represents a student record from the LMS API.
type Student struct {
	ID        int64  `json:"id"`
	StudentNo string `json:"studentNo"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// AuthResponse is the LMS login exchange payload. StudentID and
// InstructorID are populated only for the matching role.
type AuthResponse struct {
	Token        string `json:"token"`
	Role         string `json:"role"`
	UserID       int64  `json:"userId"`
	StudentID    *int64 `json:"studentId,omitempty"`
	InstructorID *int64 `json:"instructorId,omitempty"`
}

// AdminStats is the aggregate counts payload from the LMS stats
// endpoint, when the deployment provides one.
type AdminStats struct {
	Instructors int64 `json:"instructors"`
	Students    int64 `json:"students"`
	Courses     int64 `json:"courses"`
	Enrollments int64 `json:"enrollments"`
}

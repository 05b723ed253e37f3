package library

import "time"

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"

	LoanBorrowed = "Borrowed"
	LoanReturned = "Returned"

	RoleAdmin = "admin"

	UserTypeAdmin   = "admin"
	UserTypeStaff   = "staff"
	UserTypeMember  = "member"
	UserTypeStudent = "student"

	FeedbackPending = "Pending"

	PriorityNormal = "Normal"
)

// Result reports how many rows a mutation touched. Delete returns a zero
// Result when the id does not exist.
type Result struct {
	Changes int64 `json:"changes"`
}

// AdminUser is a librarian account that can sign in to the desk application.
type AdminUser struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"` // never serialized
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`
}

type AdminUserInput struct {
	Username string
	Password string
	FullName string
	Email    string
	Role     string // defaults to "admin"
}

type AdminUserUpdate struct {
	Username *string
	Password *string
	FullName *string
	Email    *string
	Role     *string
}

// Staff is an employee record. It is not a login identity.
type Staff struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Phone      string    `json:"phone"`
	Department string    `json:"department"`
	HireDate   string    `json:"hire_date"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type StaffInput struct {
	Name       string
	Email      string
	Role       string // defaults to "Librarian"
	Phone      string
	Department string
	HireDate   string // defaults to today
	Status     string // defaults to "Active"
}

type StaffUpdate struct {
	Name       *string
	Email      *string
	Role       *string
	Phone      *string
	Department *string
	HireDate   *string
	Status     *string
}

// Member is a patron who can borrow books. MemberID is the externally
// printed card number; ID is the surrogate key.
type Member struct {
	ID             int64     `json:"id"`
	MemberID       string    `json:"member_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	MembershipDate string    `json:"membership_date"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

type MemberInput struct {
	MemberID       string
	Name           string
	Email          string
	Phone          string
	Address        string
	MembershipDate string // defaults to today
	Status         string // defaults to "Active"
}

type MemberUpdate struct {
	MemberID       *string
	Name           *string
	Email          *string
	Phone          *string
	Address        *string
	MembershipDate *string
	Status         *string
}

// Book is a catalog title with copy accounting.
// 0 <= CopiesAvailable <= TotalCopies always holds.
type Book struct {
	ID              int64     `json:"id"`
	ISBN            string    `json:"isbn"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Publisher       string    `json:"publisher"`
	Year            int       `json:"year"`
	Category        string    `json:"category"`
	CopiesAvailable int       `json:"copies_available"`
	TotalCopies     int       `json:"total_copies"`
	Location        string    `json:"location"`
	CreatedAt       time.Time `json:"created_at"`
}

type BookInput struct {
	ISBN            string
	Title           string
	Author          string
	Publisher       string
	Year            int
	Category        string
	TotalCopies     int  // defaults to 1
	CopiesAvailable *int // defaults to TotalCopies
	Location        string
}

type BookUpdate struct {
	ISBN            *string
	Title           *string
	Author          *string
	Publisher       *string
	Year            *int
	Category        *string
	CopiesAvailable *int
	TotalCopies     *int
	Location        *string
}

// BorrowedBook is a loan of one copy of a book to a member. BookID and
// MemberID become zero if the referenced row is later deleted.
type BorrowedBook struct {
	ID           int64     `json:"id"`
	BookID       int64     `json:"book_id"`
	MemberID     int64     `json:"member_id"`
	BorrowedDate string    `json:"borrowed_date"`
	DueDate      string    `json:"due_date"`
	ReturnedDate string    `json:"returned_date"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`

	// Join fields, populated by GetAllBorrowedBooks and GetOverdueBooks.
	BookTitle  *string `json:"book_title,omitempty"`
	MemberName *string `json:"member_name,omitempty"`
}

type Announcement struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  int64     `json:"author_id"`
	Priority  string    `json:"priority"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type AnnouncementInput struct {
	Title    string
	Content  string
	AuthorID int64
	Priority string // defaults to "Normal"
}

type AnnouncementUpdate struct {
	Title    *string
	Content  *string
	Priority *string
	IsActive *bool
}

type Feedback struct {
	ID        int64     `json:"id"`
	MemberID  int64     `json:"member_id"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Rating    int       `json:"rating"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type FeedbackInput struct {
	MemberID int64
	Subject  string
	Message  string
	Rating   int // 0 (unrated) to 5
}

// LibraryUser is the unified identity row for admins, staff, members and
// students. UserType decides which of the optional fields are meaningful.
type LibraryUser struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	MiddleName   string     `json:"middle_name"`
	LastName     string     `json:"last_name"`
	UserType     string     `json:"user_type"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	IsVerified   bool       `json:"is_verified"`
	Phone        string     `json:"phone"`
	Address      string     `json:"address"`
	MembershipID string     `json:"membership_id"`
	StudentID    string     `json:"student_id"`
	Department   string     `json:"department"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type LibraryUserInput struct {
	Username     string
	Password     string
	Email        string
	FirstName    string
	MiddleName   string
	LastName     string
	UserType     string // defaults to "member"
	Role         string // defaults to UserType
	Status       string // defaults to "Active"
	IsVerified   bool
	Phone        string
	Address      string
	MembershipID string
	StudentID    string
	Department   string
}

type LibraryUserUpdate struct {
	Username     *string
	Password     *string
	Email        *string
	FirstName    *string
	MiddleName   *string
	LastName     *string
	UserType     *string
	Role         *string
	Status       *string
	IsVerified   *bool
	Phone        *string
	Address      *string
	MembershipID *string
	StudentID    *string
	Department   *string
}

// UserSession is never deleted; logout only deactivates it.
type UserSession struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	SessionToken string     `json:"-"`
	IPAddress    string     `json:"ip_address"`
	UserAgent    string     `json:"user_agent"`
	LoginTime    time.Time  `json:"login_time"`
	LogoutTime   *time.Time `json:"logout_time"`
	IsActive     bool       `json:"is_active"`
}

type UserPermission struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	PermissionName  string    `json:"permission_name"`
	PermissionValue bool      `json:"permission_value"`
	CreatedAt       time.Time `json:"created_at"`
}

// Attendance is an append-only visitor log entry.
type Attendance struct {
	ID            int64     `json:"id"`
	Date          string    `json:"date"`
	Name          string    `json:"name"`
	LibraryNumber string    `json:"library_number"`
	Purpose       string    `json:"purpose"`
	Time          string    `json:"time"`
	CreatedAt     time.Time `json:"created_at"`
}

type AttendanceInput struct {
	Date          string // defaults to today
	Name          string
	LibraryNumber string
	Purpose       string
	Time          string // defaults to now, HH:MM
}

// DashboardStats is the single-pass summary shown on the librarian dashboard.
type DashboardStats struct {
	ActiveMembers     int            `json:"active_members"`
	ActiveUsersByType map[string]int `json:"active_users_by_type"`
	TotalBooks        int            `json:"total_books"`
	AvailableBooks    int            `json:"available_books"`
	BorrowedBooks     int            `json:"borrowed_books"`
	ActiveStaff       int            `json:"active_staff"`
	RecentLoans       int            `json:"recent_loans"`
	GeneratedAt       time.Time      `json:"generated_at"`
}

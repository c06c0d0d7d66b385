package auth

// Role is the account-wide role carried by the bearer token.
type Role string

// Roles
const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleEditor  Role = "editor"
	RoleStudent Role = "student"
)

var AllRoles = []Role{RoleAdmin, RoleTeacher, RoleEditor, RoleStudent}

// ParseRole maps unknown role strings to "", which holds no capability.
func ParseRole(s string) Role {
	for _, r := range AllRoles {
		if string(r) == s {
			return r
		}
	}
	return ""
}

func (r Role) Valid() bool { return ParseRole(string(r)) != "" }

// Capability is something a role may be allowed to do.
type Capability int

const (
	EditContent Capability = iota + 1
	ViewStats
	ManageEnrollments
	Grade
	ManageQuestionBank
	ManageUsers
	ManageCourses
	DeleteCourses
	Preview
)

var capabilityNames = map[Capability]string{
	EditContent:        "edit_content",
	ViewStats:          "view_stats",
	ManageEnrollments:  "manage_enrollments",
	Grade:              "grade",
	ManageQuestionBank: "manage_question_bank",
	ManageUsers:        "manage_users",
	ManageCourses:      "manage_courses",
	DeleteCourses:      "delete_courses",
	Preview:            "preview",
}

func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return "unknown"
}

var grants = map[Role]map[Capability]bool{
	// admins act as teachers everywhere, plus user & course administration
	RoleAdmin: {
		EditContent: true, ViewStats: true, ManageEnrollments: true, Grade: true, ManageQuestionBank: true,
		ManageUsers: true, ManageCourses: true, DeleteCourses: true, Preview: true,
	},
	RoleTeacher: {
		EditContent: true, ViewStats: true, ManageEnrollments: true, Grade: true, ManageQuestionBank: true,
		ManageCourses: true, Preview: true,
	},
	RoleEditor: {
		EditContent: true, ManageQuestionBank: true, Preview: true,
	},
	RoleStudent: {},
}

// Can is the single authorization check of the client.
func Can(role Role, capability Capability) bool {
	return grants[role][capability]
}

var rolePriorities = map[Role]int{
	RoleAdmin:   30,
	RoleTeacher: 20,
	RoleEditor:  15,
	RoleStudent: 1,
}

func RolePriority(role Role) int {
	return rolePriorities[role]
}

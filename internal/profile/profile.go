package profile

import "time"

const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

const (
	defaultRole     = RoleUser
	defaultTimezone = "UTC"
)

// IsAdminRole reports whether a role grants access to the admin console.
func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

// Profile is the camelCase view-model handed to the UI.
type Profile struct {
	UserID              string    `json:"userId"`
	Email               string    `json:"email"`
	FirstName           string    `json:"firstName"`
	LastName            string    `json:"lastName"`
	FullName            string    `json:"fullName"`
	Role                string    `json:"role"`
	IsBlocked           bool      `json:"isBlocked"`
	Phone               string    `json:"phone"`
	Company             string    `json:"company"`
	Timezone            string    `json:"timezone"`
	EmailNotifications  bool      `json:"emailNotifications"`
	OnboardingCompleted bool      `json:"onboardingCompleted"`
	OnboardingStep      int       `json:"onboardingStep"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// Row is the profile table shape. Nullable columns are pointers so that the
// view-model mapping can substitute defaults.
type Row struct {
	UserID              string
	Email               string
	FirstName           *string
	LastName            *string
	FullName            *string
	Role                *string
	IsBlocked           bool
	Phone               *string
	Company             *string
	Timezone            *string
	EmailNotifications  bool
	OnboardingCompleted bool
	OnboardingStep      int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// FromRow maps a stored row into the view-model, substituting fixed defaults
// for absent values.
func FromRow(r Row) Profile {
	role := strOr(r.Role, "")

	if role == "" {
		role = defaultRole
	}

	tz := strOr(r.Timezone, "")

	if tz == "" {
		tz = defaultTimezone
	}

	return Profile{
		UserID:              r.UserID,
		Email:               r.Email,
		FirstName:           strOr(r.FirstName, ""),
		LastName:            strOr(r.LastName, ""),
		FullName:            strOr(r.FullName, ""),
		Role:                role,
		IsBlocked:           r.IsBlocked,
		Phone:               strOr(r.Phone, ""),
		Company:             strOr(r.Company, ""),
		Timezone:            tz,
		EmailNotifications:  r.EmailNotifications,
		OnboardingCompleted: r.OnboardingCompleted,
		OnboardingStep:      r.OnboardingStep,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func strOr(v *string, fallback string) string {
	if v != nil {
		return *v
	}

	return fallback
}

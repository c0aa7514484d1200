package domain

import "time"

// Role is the marketplace role carried by a user account
type Role string

const (
	RoleTenant   Role = "TENANT"
	RoleLandlord Role = "LANDLORD"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleTenant, RoleLandlord, RoleAdmin:
		return true
	}
	return false
}

// User mirrors the backend user record
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         Role       `json:"role"`
	ProfilePhoto *string    `json:"profilePhoto,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`

	// Only populated by GET /api/users/me
	RoleRequest  *RoleRequest  `json:"RoleRequest,omitempty"`
	LandlordDocs []LandlordDoc `json:"landlordDocs,omitempty"`
}

// RoleRequest is a pending or decided request to change role
type RoleRequest struct {
	RequestedRole Role   `json:"requestedRole"`
	Status        string `json:"status"`
	Reason        string `json:"reason,omitempty"`
}

// LandlordDoc is a verification document uploaded with a landlord application
type LandlordDoc struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	DocType string `json:"docType"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
}

func (u User) GetID() string { return u.ID }

// Clone returns a copy that shares no pointers or slices with u
func (u User) Clone() User {
	if u.ProfilePhoto != nil {
		p := *u.ProfilePhoto
		u.ProfilePhoto = &p
	}
	if u.UpdatedAt != nil {
		t := *u.UpdatedAt
		u.UpdatedAt = &t
	}
	if u.RoleRequest != nil {
		rr := *u.RoleRequest
		u.RoleRequest = &rr
	}
	if u.LandlordDocs != nil {
		u.LandlordDocs = append([]LandlordDoc(nil), u.LandlordDocs...)
	}
	return u
}

// Session is the only state persisted between runs
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

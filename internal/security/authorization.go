package security

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
)

// ErrPermissionDenied is wrapped by every failed permission check
var ErrPermissionDenied = errors.New("permission denied")

// Permission represents an action permission
type Permission string

const (
	PermManageProfile    Permission = "manage_profile"
	PermApplyLandlord    Permission = "apply_landlord"
	PermManageBookings   Permission = "manage_bookings"
	PermLandlordBookings Permission = "landlord_bookings"
	PermManageUsers      Permission = "manage_users"
	PermManageListings   Permission = "manage_listings"
	PermModerateReviews  Permission = "moderate_reviews"
	PermViewMetrics      Permission = "view_metrics"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[domain.Role][]Permission{
	domain.RoleAdmin: {
		PermManageProfile,
		PermManageUsers,
		PermManageListings,
		PermManageBookings,
		PermModerateReviews,
		PermViewMetrics,
	},
	domain.RoleLandlord: {
		PermManageProfile,
		PermLandlordBookings,
	},
	domain.RoleTenant: {
		PermManageProfile,
		PermApplyLandlord,
	},
}

// AuthorizationService guards client actions by the signed-in user's role
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{
		logger: logger,
	}
}

// HasPermission checks if a role has a specific permission
func (as *AuthorizationService) HasPermission(role domain.Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// ValidatePermission validates that a role has a specific permission
func (as *AuthorizationService) ValidatePermission(role domain.Role, permission Permission) error {
	if role == "" {
		return fmt.Errorf("%w: not signed in", ErrPermissionDenied)
	}
	if !as.HasPermission(role, permission) {
		as.logger.Warn("permission denied",
			slog.String("role", string(role)),
			slog.String("permission", string(permission)),
		)
		return fmt.Errorf("%w: %s role cannot %s", ErrPermissionDenied, role, permission)
	}
	return nil
}

// GetRolePermissions returns all permissions for a role
func (as *AuthorizationService) GetRolePermissions(role domain.Role) []Permission {
	return RolePermissions[role]
}

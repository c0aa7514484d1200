package service

import "github.com/aryan0dhankhar/rentdesk/internal/api"

// Fallback messages stored in a container when a failed response carries
// no message of its own.
const (
	msgRegister       = "Registration failed"
	msgLogin          = "Login failed"
	msgFetchProfile   = "Failed to fetch profile"
	msgSaveProfile    = "Failed to save profile"
	msgForgotPassword = "Failed to send reset email"
	msgResetPassword  = "Password reset failed"
	msgVerifyEmail    = "Email verification failed"
	msgApplyLandlord  = "Failed to apply for landlord"

	msgLoadUsers        = "Failed to load users"
	msgChangeRole       = "Failed to change role"
	msgDeleteUser       = "Failed to delete user"
	msgLoadProperties   = "Failed to load properties"
	msgDeleteProperty   = "Failed to delete property"
	msgLoadBookings     = "Failed to load bookings"
	msgUpdateBooking    = "Failed to update booking status"
	msgLoadReviews      = "Failed to load reviews"
	msgDeleteReview     = "Failed to delete review"
	msgLoadMetrics      = "Failed to load metrics"
	msgLandlordBookings = "Failed to load bookings"
	msgConfirmBooking   = "Failed to confirm booking"
	msgRejectBooking    = "Failed to reject booking"
)

// ActionError is returned by a failed action. Its message is the one stored
// in the container; Err keeps the underlying cause for errors.Is/As.
type ActionError struct {
	Action  string
	Message string
	Err     error
}

func (e *ActionError) Error() string { return e.Message }

func (e *ActionError) Unwrap() error { return e.Err }

func failure(action string, err error, fallback string) *ActionError {
	return &ActionError{Action: action, Message: api.Message(err, fallback), Err: err}
}

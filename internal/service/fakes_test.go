package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aryan0dhankhar/rentdesk/internal/api"
	"github.com/aryan0dhankhar/rentdesk/internal/domain"
	"github.com/aryan0dhankhar/rentdesk/internal/session"
)

// fakeAPI implements AuthAPI, AdminAPI and LandlordAPI over in-memory records
type fakeAPI struct {
	mu sync.Mutex

	users    map[string]*domain.User
	password map[string]string
	tokens   map[string]string
	bookings []domain.Booking

	failWith map[string]error
	calls    map[string]int
	forms    []api.Form
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		users:    map[string]*domain.User{},
		password: map[string]string{},
		tokens:   map[string]string{},
		failWith: map[string]error{},
		calls:    map[string]int{},
	}
}

func (f *fakeAPI) addUser(u domain.User, password string) {
	f.users[u.ID] = &u
	f.password[u.Email] = password
	f.tokens[u.ID] = testToken(u, time.Now().Add(time.Hour))
}

func (f *fakeAPI) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.failWith[name]
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func testToken(u domain.User, exp time.Time) string {
	claims := jwt.MapClaims{"id": u.ID, "role": string(u.Role), "exp": exp.Unix()}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	return tok
}

func apiErr(status int, msg string) error {
	return &api.Error{StatusCode: status, Message: msg}
}

func (f *fakeAPI) Register(ctx context.Context, name, email, password string) error {
	if err := f.hit("register"); err != nil {
		return err
	}
	id := "u-" + email
	f.addUser(domain.User{ID: id, Name: name, Email: email, Role: domain.RoleTenant}, password)
	return nil
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*api.AuthResult, error) {
	if err := f.hit("login"); err != nil {
		return nil, err
	}
	for _, u := range f.users {
		if u.Email == email && f.password[email] == password {
			return &api.AuthResult{User: *u, Token: f.tokens[u.ID]}, nil
		}
	}
	return nil, apiErr(401, "Invalid credentials")
}

func (f *fakeAPI) ForgotPassword(ctx context.Context, email string) error {
	return f.hit("forgot")
}

func (f *fakeAPI) ResetPassword(ctx context.Context, token, newPassword string) error {
	return f.hit("reset")
}

func (f *fakeAPI) VerifyEmail(ctx context.Context, token string) error {
	return f.hit("verify")
}

func (f *fakeAPI) ApplyForLandlord(ctx context.Context, form api.Form) error {
	f.forms = append(f.forms, form)
	return f.hit("apply")
}

func (f *fakeAPI) CurrentUser(ctx context.Context) (*domain.User, error) {
	if err := f.hit("me"); err != nil {
		return nil, err
	}
	for _, u := range f.users {
		cp := u.Clone()
		return &cp, nil
	}
	return nil, errors.New("no users")
}

func (f *fakeAPI) SaveProfile(ctx context.Context, form api.Form) (*domain.User, error) {
	if err := f.hit("save_profile"); err != nil {
		return nil, err
	}
	f.forms = append(f.forms, form)
	for _, u := range f.users {
		u.Name = form.Fields["name"]
		cp := u.Clone()
		return &cp, nil
	}
	return nil, errors.New("no users")
}

func page[T any](items []T, total int) *domain.Page[T] {
	return &domain.Page[T]{Data: items, Meta: domain.PageMeta{Page: 1, Limit: 10, TotalPages: 1, TotalUsers: total}}
}

func (f *fakeAPI) ListUsers(ctx context.Context, p, limit int) (*domain.Page[domain.User], error) {
	if err := f.hit("list_users"); err != nil {
		return nil, err
	}
	var out []domain.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return page(out, len(out)), nil
}

func (f *fakeAPI) ListProperties(ctx context.Context, p, limit int) (*domain.Page[domain.Property], error) {
	if err := f.hit("list_properties"); err != nil {
		return nil, err
	}
	return &domain.Page[domain.Property]{
		Data: []domain.Property{{ID: "p-1", Title: "Loft"}},
		Meta: domain.PageMeta{Page: 1, Limit: limit, TotalPages: 1, TotalProperties: 1},
	}, nil
}

func (f *fakeAPI) ListBookings(ctx context.Context, p, limit int) (*domain.Page[domain.Booking], error) {
	if err := f.hit("list_bookings"); err != nil {
		return nil, err
	}
	return &domain.Page[domain.Booking]{
		Data: append([]domain.Booking(nil), f.bookings...),
		Meta: domain.PageMeta{Page: 1, Limit: limit, TotalPages: 1, TotalBookings: len(f.bookings)},
	}, nil
}

func (f *fakeAPI) ListReviews(ctx context.Context, p, limit int) (*domain.Page[domain.Review], error) {
	if err := f.hit("list_reviews"); err != nil {
		return nil, err
	}
	return &domain.Page[domain.Review]{
		Data: []domain.Review{{ID: "r-1"}, {ID: "r-2"}},
		Meta: domain.PageMeta{Page: 1, Limit: limit, TotalPages: 1, TotalReviews: 2},
	}, nil
}

func (f *fakeAPI) ChangeUserRole(ctx context.Context, userID string, role domain.Role) (*api.AuthResult, error) {
	if err := f.hit("change_role"); err != nil {
		return nil, err
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, apiErr(404, "User not found")
	}
	u.Role = role
	f.tokens[userID] = testToken(*u, time.Now().Add(time.Hour))
	return &api.AuthResult{User: *u, Token: f.tokens[userID]}, nil
}

func (f *fakeAPI) DeleteUser(ctx context.Context, id string) error {
	if err := f.hit("delete_user"); err != nil {
		return err
	}
	delete(f.users, id)
	return nil
}

func (f *fakeAPI) DeleteProperty(ctx context.Context, id string) error {
	return f.hit("delete_property")
}

func (f *fakeAPI) DeleteReview(ctx context.Context, id string) error {
	return f.hit("delete_review")
}

func (f *fakeAPI) UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error) {
	if err := f.hit("update_booking"); err != nil {
		return nil, err
	}
	return f.setStatus(id, status)
}

func (f *fakeAPI) Metrics(ctx context.Context) (*domain.Metrics, error) {
	if err := f.hit("metrics"); err != nil {
		return nil, err
	}
	return &domain.Metrics{TotalUsers: len(f.users), TotalRevenue: 4200}, nil
}

func (f *fakeAPI) LandlordBookings(ctx context.Context) ([]domain.Booking, error) {
	if err := f.hit("landlord_bookings"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Booking, len(f.bookings))
	for i, b := range f.bookings {
		out[i] = b.Clone()
	}
	return out, nil
}

func (f *fakeAPI) ConfirmBooking(ctx context.Context, id string) (*domain.Booking, error) {
	if err := f.hit("confirm"); err != nil {
		return nil, err
	}
	return f.setStatus(id, domain.BookingConfirmed)
}

func (f *fakeAPI) RejectBooking(ctx context.Context, id string) (*domain.Booking, error) {
	if err := f.hit("reject"); err != nil {
		return nil, err
	}
	return f.setStatus(id, domain.BookingRejected)
}

func (f *fakeAPI) setStatus(id string, status domain.BookingStatus) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.bookings {
		if f.bookings[i].ID == id {
			f.bookings[i].Status = status
			b := f.bookings[i].Clone()
			return &b, nil
		}
	}
	return nil, apiErr(404, "Booking not found")
}

// memSessions is an in-memory domain.SessionStore
type memSessions struct {
	sess  *domain.Session
	saves int
}

func (m *memSessions) Load(ctx context.Context) (*domain.Session, error) {
	if m.sess == nil {
		return nil, session.ErrNoSession
	}
	cp := *m.sess
	return &cp, nil
}

func (m *memSessions) Save(ctx context.Context, s *domain.Session) error {
	cp := *s
	m.sess = &cp
	m.saves++
	return nil
}

func (m *memSessions) Clear(ctx context.Context) error {
	m.sess = nil
	return nil
}

// recorder collects notifications
type recorder struct {
	mu    sync.Mutex
	notes []domain.Notification
}

func (r *recorder) Notify(_ context.Context, n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.notes))
	for i, n := range r.notes {
		out[i] = n.Message
	}
	return out
}

func landlordForm() api.Form {
	return api.Form{Fields: map[string]string{"reason": "I own flats"}}
}

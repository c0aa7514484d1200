package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/aryan0dhankhar/rentdesk/internal/app"
	"github.com/aryan0dhankhar/rentdesk/internal/domain"
)

func pageFlags(name string, args []string) (page, limit int, err error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	p := fs.Int("page", 1, "page number")
	l := fs.Int("limit", 0, "page size (default: ADMIN_PAGE_LIMIT)")
	if err := fs.Parse(args); err != nil {
		return 0, 0, err
	}
	if *p < 1 {
		return 0, 0, fmt.Errorf("%s: -page must be at least 1", name)
	}
	return *p, *l, nil
}

// idArg returns the single positional id of a command
func idArg(name string, args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", fmt.Errorf("usage: rentdesk %s <id>", name)
	}
	return args[0], nil
}

func footer(page, totalPages, total int, noun string) {
	fmt.Fprintf(out, "page %d of %d, %d %s\n", page, totalPages, total, noun)
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func listUsers(ctx context.Context, a *app.App, args []string) error {
	page, limit, err := pageFlags("users", args)
	if err != nil {
		return err
	}
	if err := a.Admin.FetchUsers(ctx, page, limit); err != nil {
		return err
	}

	users := a.Store.Admin.Snapshot().Users
	table("ID\tNAME\tEMAIL\tROLE\tJOINED", func(w io.Writer) {
		for _, u := range users.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, day(u.CreatedAt))
		}
	})
	footer(users.Page, users.TotalPages, users.Total, "users")
	return nil
}

func listProperties(ctx context.Context, a *app.App, args []string) error {
	page, limit, err := pageFlags("properties", args)
	if err != nil {
		return err
	}
	if err := a.Admin.FetchProperties(ctx, page, limit); err != nil {
		return err
	}

	props := a.Store.Admin.Snapshot().Properties
	table("ID\tTITLE\tCITY\tRENT\tLANDLORD", func(w io.Writer) {
		for _, p := range props.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n", p.ID, p.Title, p.City, p.RentPerMonth, p.LandlordID)
		}
	})
	footer(props.Page, props.TotalPages, props.Total, "properties")
	return nil
}

func listAdminBookings(ctx context.Context, a *app.App, args []string) error {
	page, limit, err := pageFlags("bookings", args)
	if err != nil {
		return err
	}
	if err := a.Admin.FetchBookings(ctx, page, limit); err != nil {
		return err
	}

	bookings := a.Store.Admin.Snapshot().Bookings
	printBookings(bookings.Items)
	footer(bookings.Page, bookings.TotalPages, bookings.Total, "bookings")
	return nil
}

func listReviews(ctx context.Context, a *app.App, args []string) error {
	page, limit, err := pageFlags("reviews", args)
	if err != nil {
		return err
	}
	if err := a.Admin.FetchReviews(ctx, page, limit); err != nil {
		return err
	}

	reviews := a.Store.Admin.Snapshot().Reviews
	table("ID\tRATING\tTITLE\tPROPERTY\tTENANT", func(w io.Writer) {
		for _, r := range reviews.Items {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", r.ID, r.Rating, r.Title, r.Property.Title, r.Tenant.Name)
		}
	})
	footer(reviews.Page, reviews.TotalPages, reviews.Total, "reviews")
	return nil
}

func showMetrics(ctx context.Context, a *app.App, _ []string) error {
	if err := a.Admin.FetchMetrics(ctx); err != nil {
		return err
	}
	m := a.Store.Admin.Snapshot().Metrics
	if m == nil {
		m = &domain.Metrics{}
	}
	table("METRIC\tVALUE", func(w io.Writer) {
		fmt.Fprintf(w, "users\t%d\n", m.TotalUsers)
		fmt.Fprintf(w, "properties\t%d\n", m.TotalProperties)
		fmt.Fprintf(w, "bookings\t%d\n", m.TotalBookings)
		fmt.Fprintf(w, "reviews\t%d\n", m.TotalReviews)
		fmt.Fprintf(w, "revenue\t%.2f\n", m.TotalRevenue)
	})
	return nil
}

func changeRole(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("role", flag.ContinueOnError)
	id := fs.String("id", "", "user id")
	role := fs.String("role", "", "TENANT, LANDLORD or ADMIN")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, map[string]string{"id": *id, "role": *role}); err != nil {
		return err
	}

	if err := a.Admin.ChangeUserRole(ctx, *id, domain.Role(*role)); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ User %s is now %s\n", *id, *role)
	return nil
}

func deleteUser(ctx context.Context, a *app.App, args []string) error {
	id, err := idArg("admin delete-user", args)
	if err != nil {
		return err
	}
	if err := a.Admin.DeleteUser(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ User %s deleted\n", id)
	return nil
}

func deleteProperty(ctx context.Context, a *app.App, args []string) error {
	id, err := idArg("admin delete-property", args)
	if err != nil {
		return err
	}
	if err := a.Admin.DeleteProperty(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Property %s deleted\n", id)
	return nil
}

func deleteReview(ctx context.Context, a *app.App, args []string) error {
	id, err := idArg("admin delete-review", args)
	if err != nil {
		return err
	}
	if err := a.Admin.DeleteReview(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Review %s deleted\n", id)
	return nil
}

func bookingStatus(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("booking-status", flag.ContinueOnError)
	id := fs.String("id", "", "booking id")
	status := fs.String("status", "", "PENDING, CONFIRMED, REJECTED or CANCELLED")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, map[string]string{"id": *id, "status": *status}); err != nil {
		return err
	}
	s := domain.BookingStatus(*status)
	if !s.Valid() {
		return fmt.Errorf("booking-status: invalid status %q", *status)
	}

	if err := a.Admin.UpdateBookingStatus(ctx, *id, s); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Booking %s is now %s\n", *id, s)
	return nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/aryan0dhankhar/rentdesk/internal/app"
	"github.com/aryan0dhankhar/rentdesk/internal/domain"
	"github.com/aryan0dhankhar/rentdesk/internal/notify"
	"github.com/aryan0dhankhar/rentdesk/internal/realtime"
)

func printBookings(items []domain.Booking) {
	table("ID\tPROPERTY\tTENANT\tFROM\tTO\tSTATUS\tPAYMENT", func(w io.Writer) {
		for _, b := range items {
			payment := "-"
			if b.Payment != nil {
				payment = fmt.Sprintf("%s %.2f %s", b.Payment.Status, b.Payment.Amount, b.Payment.Currency)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				b.ID, b.Property.Title, b.Tenant.Name, day(b.StartDate), day(b.EndDate), b.Status, payment)
		}
	})
}

func listLandlordBookings(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("bookings", flag.ContinueOnError)
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.Bookings.FetchLandlordBookings(ctx); err != nil {
		return err
	}

	view := a.Bookings.Page(*page, a.Config.LandlordPageSize)
	if view.Total == 0 {
		fmt.Fprintln(out, "No booking requests yet")
		return nil
	}
	printBookings(view.Items)
	footer(view.Page, view.TotalPages, view.Total, "bookings")
	return nil
}

// decideBooking loads the list first so the optimistic update has an entry to move
func decideBooking(ctx context.Context, a *app.App, args []string, name string, decide func(context.Context, string) (*domain.Booking, error)) error {
	id, err := idArg("landlord "+name, args)
	if err != nil {
		return err
	}
	if err := a.Bookings.FetchLandlordBookings(ctx); err != nil {
		return err
	}
	b, err := decide(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s is now %s\n", b.ID, b.Status)
	return nil
}

func confirmBooking(ctx context.Context, a *app.App, args []string) error {
	return decideBooking(ctx, a, args, "confirm", a.Bookings.ConfirmBooking)
}

func rejectBooking(ctx context.Context, a *app.App, args []string) error {
	return decideBooking(ctx, a, args, "reject", a.Bookings.RejectBooking)
}

// watchBookings streams booking pushes for the signed-in landlord until interrupted
func watchBookings(ctx context.Context, a *app.App, _ []string) error {
	st := a.Store.Auth.Snapshot()
	if st.User == nil {
		return errors.New("not signed in, run `rentdesk auth login` first")
	}
	if st.User.Role != domain.RoleLandlord {
		return errors.New("watch requires a landlord account")
	}

	if err := a.Bookings.FetchLandlordBookings(ctx); err != nil {
		return err
	}

	events := realtime.NewBookingEvents(a.Store, notify.NewWriterNotifier(out), nil, a.Logger)
	socket, err := a.Socket(events)
	if err != nil {
		return err
	}
	if err := socket.Join(ctx, realtime.LandlordRoom(st.User.ID)); err != nil && !errors.Is(err, realtime.ErrNotConnected) {
		return err
	}

	fmt.Fprintf(out, "Watching bookings for %s, %d cached (Ctrl-C to stop)\n", st.User.Name, a.Store.Bookings.Count())
	if err := socket.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}


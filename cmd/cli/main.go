package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/aryan0dhankhar/rentdesk/internal/app"
	"github.com/aryan0dhankhar/rentdesk/internal/domain"
	"github.com/aryan0dhankhar/rentdesk/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/rentdesk/internal/notify"
	"github.com/aryan0dhankhar/rentdesk/internal/service"
	"github.com/aryan0dhankhar/rentdesk/pkg/config"
)

// command runs one subcommand against the wired client stack
type command func(ctx context.Context, a *app.App, args []string) error

var commands = map[string]map[string]command{
	"auth": {
		"register":       registerUser,
		"login":          loginUser,
		"logout":         logoutUser,
		"who":            whoAmI,
		"verify":         verifyEmail,
		"forgot":         forgotPassword,
		"reset":          resetPassword,
		"apply-landlord": applyForLandlord,
	},
	"profile": {
		"show":   showProfile,
		"update": updateProfile,
	},
	"admin": {
		"users":           listUsers,
		"properties":      listProperties,
		"bookings":        listAdminBookings,
		"reviews":         listReviews,
		"metrics":         showMetrics,
		"role":            changeRole,
		"delete-user":     deleteUser,
		"delete-property": deleteProperty,
		"delete-review":   deleteReview,
		"booking-status":  bookingStatus,
	},
	"landlord": {
		"bookings": listLandlordBookings,
		"confirm":  confirmBooking,
		"reject":   rejectBooking,
		"watch":    watchBookings,
	},
}

// out is where command results are written
var out io.Writer = os.Stdout

func main() {
	if len(os.Args) < 2 || os.Args[1] == "help" || os.Args[1] == "-h" {
		printUsage()
		if len(os.Args) < 2 {
			os.Exit(1)
		}
		return
	}

	group, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: rentdesk %s <%s>\n", os.Args[1], strings.Join(subcommands(group), "|"))
		os.Exit(1)
	}
	run, ok := group[os.Args[2]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown %s command: %s\n", os.Args[1], os.Args[2])
		os.Exit(1)
	}

	if err := execute(run, os.Args[3:]); err != nil {
		fmt.Fprintf(os.Stderr, "✗ %s\n", err)
		os.Exit(1)
	}
}

func execute(run command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(os.Stderr, cliLogLevel())
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// error toasts repeat the command error
	a, err := app.New(ctx, cfg, log, notify.Only(notify.NewWriterNotifier(out), domain.LevelSuccess, domain.LevelInfo))
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.Restore(ctx); err != nil && !isSignedOut(err) {
		return err
	}
	return run(ctx, a, args)
}

// cliLogLevel keeps the terminal quiet unless LOG_LEVEL asks otherwise
func cliLogLevel() string {
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "warn"
}

func isSignedOut(err error) bool {
	return errors.Is(err, service.ErrNotSignedIn) || errors.Is(err, service.ErrSessionExpired)
}

func subcommands(group map[string]command) []string {
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func table(header string, rows func(w io.Writer)) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, header)
	rows(w)
	w.Flush()
}

func roleOf(a *app.App) domain.Role {
	if u := a.Store.Auth.Snapshot().User; u != nil {
		return u.Role
	}
	return ""
}

func printUsage() {
	fmt.Print(`rentdesk - property rental marketplace client

Usage:
  rentdesk <command> <subcommand> [options]

Commands:
  auth      register, login, logout, who, verify, forgot, reset, apply-landlord
  profile   show, update
  admin     users, properties, bookings, reviews, metrics, role,
            delete-user, delete-property, delete-review, booking-status
  landlord  bookings, confirm, reject, watch
  help      Show this help message

Environment Variables:
  RENTDESK_API_URL      API endpoint (default: http://localhost:5000)
  RENTDESK_SOCKET_URL   Websocket endpoint (default: derived from the API URL)
  RENTDESK_PROFILE      Session profile name (default: default)
  SESSION_BACKEND       file or redis (default: file)

Examples:
  rentdesk auth login -email user@example.com -password pass
  rentdesk admin users -page 2
  rentdesk landlord confirm 65f1c0ffee
  rentdesk landlord watch
`)
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aryan0dhankhar/rentdesk/internal/api"
	"github.com/aryan0dhankhar/rentdesk/internal/app"
)

// multiFlag collects a repeatable flag
type multiFlag []string

func (m *multiFlag) String() string     { return strings.Join(*m, ",") }
func (m *multiFlag) Set(v string) error { *m = append(*m, v); return nil }

func required(fs *flag.FlagSet, values map[string]string) error {
	var missing []string
	for name, v := range values {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, "-"+name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%s: missing %s", fs.Name(), strings.Join(missing, ", "))
	}
	return nil
}

func registerUser(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, map[string]string{"name": *name, "email": *email, "password": *password}); err != nil {
		return err
	}

	if err := a.Auth.Register(ctx, *name, *email, *password); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Registered %s, check your inbox to verify the address\n", *email)
	return nil
}

func loginUser(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, map[string]string{"email": *email, "password": *password}); err != nil {
		return err
	}

	user, err := a.Auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Logged in as %s (%s)\n", user.Email, user.Role)
	return nil
}

func logoutUser(ctx context.Context, a *app.App, _ []string) error {
	if err := a.Auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "✓ Logged out")
	return nil
}

func whoAmI(_ context.Context, a *app.App, _ []string) error {
	st := a.Store.Auth.Snapshot()
	if st.User == nil {
		fmt.Fprintln(out, "Not logged in")
		return nil
	}
	fmt.Fprintf(out, "%s <%s> %s (id %s)\n", st.User.Name, st.User.Email, roleOf(a), st.User.ID)
	return nil
}

func verifyEmail(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	token := fs.String("token", "", "verification token from the email link")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, map[string]string{"token": *token}); err != nil {
		return err
	}

	if err := a.Auth.VerifyEmail(ctx, *token); err != nil {
		return err
	}
	fmt.Fprintln(out, "✓ Email verified")
	return nil
}

func forgotPassword(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("forgot", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, map[string]string{"email": *email}); err != nil {
		return err
	}

	if err := a.Auth.ForgotPassword(ctx, *email); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Reset link sent to %s\n", *email)
	return nil
}

func resetPassword(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	token := fs.String("token", "", "reset token from the email link")
	password := fs.String("password", "", "new password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, map[string]string{"token": *token, "password": *password}); err != nil {
		return err
	}

	if err := a.Auth.ResetPassword(ctx, *token, *password); err != nil {
		return err
	}
	fmt.Fprintln(out, "✓ Password reset, you can log in now")
	return nil
}

func applyForLandlord(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("apply-landlord", flag.ContinueOnError)
	var fields, docs multiFlag
	fs.Var(&fields, "field", "form field as key=value (repeatable)")
	fs.Var(&docs, "doc", "verification document path (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	form := api.Form{Fields: map[string]string{}}
	for _, kv := range fields {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return fmt.Errorf("apply-landlord: invalid -field %q, want key=value", kv)
		}
		form.Fields[k] = v
	}
	for _, path := range docs {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("apply-landlord: %w", err)
		}
		defer f.Close()
		form.Files = append(form.Files, api.File{Field: "documents", Name: filepath.Base(path), Content: f})
	}
	if len(form.Fields) == 0 && len(form.Files) == 0 {
		return errors.New("apply-landlord: nothing to submit, pass -field or -doc")
	}

	if err := a.Auth.ApplyForLandlord(ctx, form); err != nil {
		return err
	}
	fmt.Fprintln(out, "✓ Landlord application submitted")
	return nil
}

func showProfile(ctx context.Context, a *app.App, _ []string) error {
	user, err := a.Auth.FetchProfile(ctx)
	if err != nil {
		return err
	}

	photo := "-"
	if user.ProfilePhoto != nil {
		photo = *user.ProfilePhoto
	}
	table("FIELD\tVALUE", func(w io.Writer) {
		fmt.Fprintf(w, "id\t%s\n", user.ID)
		fmt.Fprintf(w, "name\t%s\n", user.Name)
		fmt.Fprintf(w, "email\t%s\n", user.Email)
		fmt.Fprintf(w, "role\t%s\n", user.Role)
		fmt.Fprintf(w, "photo\t%s\n", photo)
		if user.RoleRequest != nil {
			fmt.Fprintf(w, "role request\t%s (%s)\n", user.RoleRequest.RequestedRole, user.RoleRequest.Status)
		}
		for _, d := range user.LandlordDocs {
			fmt.Fprintf(w, "document\t%s %s\n", d.DocType, d.Status)
		}
	})
	return nil
}

func updateProfile(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email (optional)")
	photoPath := fs.String("photo", "", "profile photo path (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, map[string]string{"name": *name}); err != nil {
		return err
	}

	var photo *api.File
	if *photoPath != "" {
		f, err := os.Open(*photoPath)
		if err != nil {
			return fmt.Errorf("update: %w", err)
		}
		defer f.Close()
		photo = &api.File{Name: filepath.Base(*photoPath), Content: f}
	}

	user, err := a.Auth.SaveProfile(ctx, strings.TrimSpace(*name), *email, photo)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Profile saved for %s\n", user.Name)
	return nil
}

package cli

import (
	"context"
	"fmt"

	"github.com/eduxperience/eduxperience/internal/client/models"
	"github.com/eduxperience/eduxperience/internal/common"
)

// Admin dispatches the admin subcommands: login, status and logout.
func (a *App) Admin(ctx context.Context, args []string) error {
	sub := "status"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "login":
		return a.adminLogin(ctx)
	case "status":
		return a.adminStatus(ctx)
	case "logout":
		a.admin.Logout(ctx)
		fmt.Fprintln(a.out, "Admin signed out.")
		if a.nav.Current() == models.DestinationAdminDashboard && !a.isLoggedIn() {
			return a.nav.Navigate(ctx, models.DestinationLogin)
		}
		return nil
	default:
		fmt.Fprintln(a.out, "Usage: admin login|status|logout")
		return nil
	}
}

func (a *App) adminLogin(ctx context.Context) error {
	if a.admin.Validate(ctx) {
		fmt.Fprintln(a.out, "Admin session already active.")
		return a.nav.Navigate(ctx, models.DestinationAdminDashboard)
	}

	username, err := getSimpleText(a.reader, "Admin username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Admin password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if !a.admin.Login(ctx, username, string(password)) {
		fmt.Fprintln(a.out, "Invalid admin credentials.")
		return nil
	}
	fmt.Fprintln(a.out, "Admin signed in.")
	return a.nav.Navigate(ctx, models.DestinationAdminDashboard)
}

func (a *App) adminStatus(ctx context.Context) error {
	if !a.admin.Validate(ctx) {
		fmt.Fprintln(a.out, "No active admin session.")
		return nil
	}
	session, ok := a.admin.Session(ctx)
	if !ok {
		fmt.Fprintln(a.out, "No active admin session.")
		return nil
	}
	expires := session.LoginTime.Add(models.AdminSessionTTL)
	fmt.Fprintf(a.out, "Admin %s signed in at %s, expires %s\n",
		session.Username, session.LoginTime.Local().Format("2006-01-02 15:04"), expires.Local().Format("2006-01-02 15:04"))
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/eduxperience/eduxperience/internal/client/services"
	"github.com/eduxperience/eduxperience/internal/common"
)

// Login signs the user in. The email defaults to the argument or to the
// most recently remembered one; a remembered password can be reused
// without typing it.
//
// Expected failures (bad password, unverified email, backend down) are
// reported to the user and do not return an error.
func (a *App) Login(ctx context.Context, args []string) error {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "Already signed in; type 'logout' first.")
		return nil
	}

	suggested := ""
	if len(args) > 0 {
		suggested = args[0]
	} else if saved, ok := a.flow.SavedLogin(ctx); ok {
		suggested = saved.Email
	}

	prompt := "Enter email"
	if suggested != "" {
		prompt += " [" + suggested + "]"
	}
	email, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if email == "" {
		email = suggested
	}
	if email == "" {
		fmt.Fprintln(a.out, "Email is required.")
		return nil
	}

	var password []byte
	saved, haveSaved := a.flow.SavedLoginFor(ctx, email)
	if haveSaved {
		useSaved, err := getYesNo(a.reader, "Use remembered password?", true, a.out)
		if err != nil {
			return err
		}
		if useSaved {
			password = []byte(saved.Password)
		}
	}
	if password == nil {
		password, err = getPassword(a.reader, "Enter password", a.out)
		if err != nil {
			return err
		}
	}
	defer common.WipeByteArray(password)

	remember, err := getYesNo(a.reader, "Remember me on this device?", haveSaved, a.out)
	if err != nil {
		return err
	}

	res, err := a.flow.Login(ctx, services.LoginRequest{Email: email, Password: string(password), Remember: remember})
	if res != nil {
		for _, w := range res.Warnings {
			fmt.Fprintln(a.out, userMessage(w))
		}
	}
	if err != nil {
		fmt.Fprintln(a.out, userMessage(err))
		if errors.Is(err, services.ErrEmailUnverified) {
			a.lastUnverified = common.NormalizeEmail(email)
		}
		return nil
	}

	a.lastUnverified = ""
	a.setMode(ModeOnline)
	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", res.Identity.Email, res.Route.Role)
	return nil
}

// Resend asks the backend for a new verification email.
func (a *App) Resend(ctx context.Context, args []string) error {
	email := a.lastUnverified
	if len(args) > 0 {
		email = args[0]
	}
	if email == "" {
		var err error
		email, err = getSimpleText(a.reader, "Enter email", a.out)
		if err != nil {
			return err
		}
	}

	if err := a.auth.ResendVerification(ctx, email); err != nil {
		fmt.Fprintln(a.out, userMessage(err))
		return nil
	}
	fmt.Fprintf(a.out, "Verification email sent to %s.\n", common.NormalizeEmail(email))
	return nil
}

// WhoAmI re-reads the signed-in identity from the backend.
func (a *App) WhoAmI(ctx context.Context) error {
	id, err := a.flow.Refresh(ctx)
	if err != nil {
		fmt.Fprintln(a.out, userMessage(err))
		return nil
	}

	confirmed := "not verified"
	if id.EmailConfirmed() {
		confirmed = "verified " + id.EmailConfirmedAt.Format("2006-01-02")
	}
	fmt.Fprintf(a.out, "%s  role=%s  email %s  view=%s\n", id.Email, id.Role, confirmed, a.nav.Current())
	return nil
}

// Logout returns to the login view. Remembered logins are kept; use
// 'forget' to remove them.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, userMessage(services.ErrNotSignedIn))
		return nil
	}
	if err := a.flow.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

// Saved lists the remembered logins, most recent first.
func (a *App) Saved(ctx context.Context) error {
	emails := a.flow.SavedEmails(ctx)
	if len(emails) == 0 {
		fmt.Fprintln(a.out, "No remembered logins.")
		return nil
	}
	for i, e := range emails {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		fmt.Fprintf(a.out, "%s %s\n", marker, e)
	}
	return nil
}

// Forget removes the remembered logins named in args, or all of them.
func (a *App) Forget(ctx context.Context, args []string) error {
	if len(args) == 0 {
		ok, err := getYesNo(a.reader, "Forget all remembered logins?", false, a.out)
		if err != nil || !ok {
			return err
		}
	}
	if err := a.flow.ForgetSaved(ctx, args...); err != nil {
		fmt.Fprintln(a.out, userMessage(err))
		return nil
	}
	fmt.Fprintln(a.out, "Forgotten.")
	return nil
}

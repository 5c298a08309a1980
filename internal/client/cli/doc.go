// Package cli provides the interactive EduXperience command-line client.
//
// It wires configuration, local storage, the backend client and the client
// services into a REPL. Typical flow: offer the remembered email, sign in,
// land on the role's dashboard, and keep a background connectivity watcher
// running.
//
// Key features:
//   - Login with "remember me" auto-fill, Logout
//   - Sign-up with a staged profile, verification resend
//   - Listing and forgetting remembered logins
//   - Admin dashboard login with a 24h session
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher and runREPL for details.
package cli

// Package notifications delivers account emails.
package notifications

import "context"

type VerificationInput struct {
	Email string
	Link  string
}

type Notifier interface {
	SendVerification(ctx context.Context, input VerificationInput) error
}

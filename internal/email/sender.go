// Package email delivers verification and welcome emails. The service
// layer only sees the Sender interface; delivery failures there trigger
// signup rollback.
package email

import "context"

type Sender interface {
	// SendOTP delivers a verification code. The context carries the
	// dispatch timeout; exceeding it counts as a delivery failure.
	SendOTP(ctx context.Context, to, firstName, code string) error

	// SendWelcome delivers the post-verification welcome email.
	SendWelcome(ctx context.Context, to, firstName string) error
}

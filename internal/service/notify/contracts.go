//go:generate mockgen -source=contracts.go -destination=notify_mocks_test.go -package=notify_test

package notify

import "context"

// Notifier delivers an HTML formatted message to the operators.
type Notifier interface {
	Notify(ctx context.Context, html string) error
}

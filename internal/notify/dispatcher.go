package notify

import (
	"context"
	"sync"
	"time"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

const defaultDeliveryTimeout = 3 * time.Minute

// Inline delivers notifications on background goroutines inside the API
// process. It is used when no message broker is configured.
type Inline struct {
	Sender  Sender
	Policy  RetryPolicy
	Timeout time.Duration

	wg sync.WaitGroup
}

func NewInline(s Sender, p RetryPolicy) *Inline {
	return &Inline{Sender: s, Policy: p, Timeout: defaultDeliveryTimeout}
}

// Dispatch never blocks on delivery and never fails; delivery outlives the
// request context.
func (d *Inline) Dispatch(ctx context.Context, ns ...Notification) error {
	base := context.WithoutCancel(ctx)
	l := logging.FromContext(ctx).With("component", "notify.inline")

	for _, n := range ns {
		d.wg.Add(1)
		go func(n Notification) {
			defer d.wg.Done()
			timeout := d.Timeout
			if timeout <= 0 {
				timeout = defaultDeliveryTimeout
			}
			dctx, cancel := context.WithTimeout(base, timeout)
			defer cancel()

			if err := d.Policy.Deliver(dctx, d.Sender, n); err != nil {
				l.Error("notification_failed", "id", n.ID, "kind", n.Kind, "order_id", n.Order.OrderID, "error", err)
				return
			}
			l.Info("notification_sent", "id", n.ID, "kind", n.Kind, "order_id", n.Order.OrderID)
		}(n)
	}
	return nil
}

// Wait blocks until every dispatched notification has finished.
func (d *Inline) Wait() {
	d.wg.Wait()
}

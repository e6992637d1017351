package billing

import (
	"encoding/json"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
)

// Kind tags the narrow set of billing events the rest of the service
// reacts to. Core code depends on this variant, never on the payment
// provider's payload shapes.
type Kind string

const (
	SubscriptionCreated  Kind = "subscription_created"
	SubscriptionUpdated  Kind = "subscription_updated"
	SubscriptionCanceled Kind = "subscription_canceled"
	PaymentSucceeded     Kind = "payment_succeeded"
	PaymentFailed        Kind = "payment_failed"
)

// Event is a provider-neutral billing event.
type Event struct {
	Kind              Kind
	Email             string
	CustomerID        string
	SubscriptionID    string
	Status            string
	PeriodEnd         time.Time
	CancelAtPeriodEnd bool
}

// FromStripeEvent translates a verified Stripe webhook event into the
// internal variant. The second return is false for event types the
// service does not handle.
func FromStripeEvent(ev stripe.Event) (Event, bool, error) {
	switch ev.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &sess); err != nil {
			return Event{}, false, fmt.Errorf("unmarshal checkout session: %w", err)
		}
		e := Event{Kind: SubscriptionCreated}
		if sess.CustomerDetails != nil {
			e.Email = sess.CustomerDetails.Email
		}
		if sess.Customer != nil {
			e.CustomerID = sess.Customer.ID
		}
		if sess.Subscription != nil {
			e.SubscriptionID = sess.Subscription.ID
		}
		return e, true, nil

	case "invoice.paid":
		var invoice stripe.Invoice
		if err := json.Unmarshal(ev.Data.Raw, &invoice); err != nil {
			return Event{}, false, fmt.Errorf("unmarshal invoice: %w", err)
		}
		return Event{
			Kind:           PaymentSucceeded,
			SubscriptionID: subscriptionIDFromInvoice(invoice),
			PeriodEnd:      time.Unix(invoice.PeriodEnd, 0).UTC(),
		}, true, nil

	case "invoice.payment_failed":
		var invoice stripe.Invoice
		if err := json.Unmarshal(ev.Data.Raw, &invoice); err != nil {
			return Event{}, false, fmt.Errorf("unmarshal invoice: %w", err)
		}
		return Event{
			Kind:           PaymentFailed,
			SubscriptionID: subscriptionIDFromInvoice(invoice),
		}, true, nil

	case "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(ev.Data.Raw, &sub); err != nil {
			return Event{}, false, fmt.Errorf("unmarshal subscription: %w", err)
		}
		return Event{
			Kind:              SubscriptionUpdated,
			SubscriptionID:    sub.ID,
			Status:            string(sub.Status),
			CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		}, true, nil

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(ev.Data.Raw, &sub); err != nil {
			return Event{}, false, fmt.Errorf("unmarshal subscription: %w", err)
		}
		return Event{
			Kind:           SubscriptionCanceled,
			SubscriptionID: sub.ID,
		}, true, nil
	}

	return Event{}, false, nil
}

// subscriptionIDFromInvoice digs the subscription ID out of an
// invoice's parent.
func subscriptionIDFromInvoice(invoice stripe.Invoice) string {
	if invoice.Parent != nil &&
		invoice.Parent.SubscriptionDetails != nil &&
		invoice.Parent.SubscriptionDetails.Subscription != nil {
		return invoice.Parent.SubscriptionDetails.Subscription.ID
	}
	return ""
}

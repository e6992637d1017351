package billing

import (
	"encoding/json"
	"testing"

	stripe "github.com/stripe/stripe-go/v82"
)

func stripeEvent(t *testing.T, eventType string, payload string) stripe.Event {
	t.Helper()
	return stripe.Event{
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: json.RawMessage(payload)},
	}
}

func TestFromStripeEventCheckoutCompleted(t *testing.T) {
	ev := stripeEvent(t, "checkout.session.completed", `{
		"customer_details": {"email": "alice@example.com"},
		"customer": {"id": "cus_1"},
		"subscription": {"id": "sub_1"}
	}`)

	e, ok, err := FromStripeEvent(ev)
	if err != nil {
		t.Fatalf("from stripe event: %v", err)
	}
	if !ok {
		t.Fatal("expected handled event")
	}
	if e.Kind != SubscriptionCreated {
		t.Errorf("kind = %q, want %q", e.Kind, SubscriptionCreated)
	}
	if e.Email != "alice@example.com" {
		t.Errorf("email = %q", e.Email)
	}
	if e.CustomerID != "cus_1" || e.SubscriptionID != "sub_1" {
		t.Errorf("ids = %q/%q", e.CustomerID, e.SubscriptionID)
	}
}

func TestFromStripeEventInvoicePaid(t *testing.T) {
	ev := stripeEvent(t, "invoice.paid", `{
		"period_end": 1767225600,
		"parent": {"subscription_details": {"subscription": {"id": "sub_1"}}}
	}`)

	e, ok, err := FromStripeEvent(ev)
	if err != nil {
		t.Fatalf("from stripe event: %v", err)
	}
	if !ok || e.Kind != PaymentSucceeded {
		t.Fatalf("kind = %q, want payment_succeeded", e.Kind)
	}
	if e.SubscriptionID != "sub_1" {
		t.Errorf("subscription id = %q", e.SubscriptionID)
	}
	if e.PeriodEnd.Unix() != 1767225600 {
		t.Errorf("period end = %v", e.PeriodEnd)
	}
}

func TestFromStripeEventSubscriptionUpdated(t *testing.T) {
	ev := stripeEvent(t, "customer.subscription.updated", `{
		"id": "sub_1",
		"status": "past_due",
		"cancel_at_period_end": true
	}`)

	e, ok, err := FromStripeEvent(ev)
	if err != nil {
		t.Fatalf("from stripe event: %v", err)
	}
	if !ok || e.Kind != SubscriptionUpdated {
		t.Fatalf("kind = %q", e.Kind)
	}
	if e.Status != "past_due" || !e.CancelAtPeriodEnd {
		t.Errorf("status = %q, cancel = %v", e.Status, e.CancelAtPeriodEnd)
	}
}

func TestFromStripeEventSubscriptionDeleted(t *testing.T) {
	ev := stripeEvent(t, "customer.subscription.deleted", `{"id": "sub_1"}`)

	e, ok, err := FromStripeEvent(ev)
	if err != nil {
		t.Fatalf("from stripe event: %v", err)
	}
	if !ok || e.Kind != SubscriptionCanceled {
		t.Fatalf("kind = %q", e.Kind)
	}
	if e.SubscriptionID != "sub_1" {
		t.Errorf("subscription id = %q", e.SubscriptionID)
	}
}

func TestFromStripeEventUnhandledType(t *testing.T) {
	ev := stripeEvent(t, "charge.refunded", `{}`)

	_, ok, err := FromStripeEvent(ev)
	if err != nil {
		t.Fatalf("from stripe event: %v", err)
	}
	if ok {
		t.Error("expected unhandled event type")
	}
}

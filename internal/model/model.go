package model

import "time"

// SubscriptionStatus is the canonical lifecycle state of an account's
// subscription. Accounts are never deleted; archived is a soft state
// reversible by reactivation.
type SubscriptionStatus string

const (
	StatusNone     SubscriptionStatus = "none"
	StatusTrialing SubscriptionStatus = "trialing"
	StatusActive   SubscriptionStatus = "active"
	StatusCanceled SubscriptionStatus = "canceled"
	StatusArchived SubscriptionStatus = "archived"
)

type Account struct {
	ID                int64              `json:"id"`
	Email             string             `json:"email"`
	PasswordHash      string             `json:"-"`
	Status            SubscriptionStatus `json:"status"`
	StripeCustomerID  *string            `json:"stripe_customer_id,omitempty"`
	TrialStart        *time.Time         `json:"trial_start,omitempty"`
	SubscriptionStart *time.Time         `json:"subscription_start,omitempty"`
	UnlockedModules   []int              `json:"unlocked_modules"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

type Subscription struct {
	ID                   int64      `json:"id"`
	AccountID            int64      `json:"account_id"`
	StripeSubscriptionID *string    `json:"stripe_subscription_id"`
	Plan                 string     `json:"plan"`
	Status               string     `json:"status"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end"`
	CancelAtPeriodEnd    bool       `json:"cancel_at_period_end"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	AccountID int64     `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// QuizResult captures one completed diagnostic quiz. Quizzes are taken
// before signup, so results are keyed by email and linked to the account
// when one is created.
type QuizResult struct {
	ID        int64     `json:"id"`
	AccountID *int64    `json:"account_id,omitempty"`
	Email     string    `json:"email"`
	Answers   string    `json:"answers"`
	Score     int       `json:"score"`
	Segment   string    `json:"segment"`
	CreatedAt time.Time `json:"created_at"`
}

// IntakeForm is the one-per-account health intake submitted during
// onboarding. It is the prerequisite artifact for report generation.
type IntakeForm struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"account_id"`
	Age         int       `json:"age"`
	HeightCm    int       `json:"height_cm"`
	WeightKg    float64   `json:"weight_kg"`
	PrimaryGoal string    `json:"primary_goal"`
	Symptoms    string    `json:"symptoms"`
	Medications string    `json:"medications"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

// DailyLog is one entry of the 5-day symptom log. Day is 1-based and
// unique per account.
type DailyLog struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	Day       int       `json:"day"`
	Energy    int       `json:"energy"`
	Sleep     int       `json:"sleep"`
	Mood      int       `json:"mood"`
	Symptoms  string    `json:"symptoms"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	ReportKindInitial = "initial"
	ReportKindModule  = "module"
)

type Report struct {
	ID        int64     `json:"id"`
	PublicID  string    `json:"public_id"`
	AccountID int64     `json:"account_id"`
	Kind      string    `json:"kind"`
	Module    int       `json:"module,omitempty"`
	Content   string    `json:"content"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

// Acknowledgment records that an account has dismissed a banner or modal.
// Keyed by notice id plus the trial day it was shown on, so a banner that
// reappears on a later day can be dismissed again independently.
type Acknowledgment struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	NoticeID  string    `json:"notice_id"`
	Day       int       `json:"day"`
	AckedAt   time.Time `json:"acked_at"`
}

type PushSubscription struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	Endpoint  string    `json:"endpoint"`
	P256dhKey string    `json:"p256dh_key"`
	AuthKey   string    `json:"auth_key"`
	CreatedAt time.Time `json:"created_at"`
}

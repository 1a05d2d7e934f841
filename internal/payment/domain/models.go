package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusFailed    = "failed"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
)

const (
	PaymentStatusCompleted = "completed"
	PaymentStatusRefunded  = "refunded"
)

const (
	ProviderDLocalGo  = "dlocal_go"
	ProviderDemo      = "demo"
	PaymentMethodCard = "CARD"
)

type PaymentLink struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrderID       string            `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_id"`
	MyCompanyID   *snowflake.ID     `gorm:"index" json:"my_company_id"`
	Amount        float64           `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency      string            `gorm:"type:varchar(3);not null" json:"currency"`
	Country       string            `gorm:"type:varchar(2);not null" json:"country"`
	Description   string            `gorm:"type:text;not null" json:"description"`
	CustomerName  *string           `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerEmail *string           `gorm:"type:varchar(255)" json:"customer_email"`
	CustomerPhone *string           `gorm:"type:varchar(50)" json:"customer_phone"`
	ProjectID     *snowflake.ID     `json:"project_id"`
	DealID        *snowflake.ID     `json:"deal_id"`
	Status        string            `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentURL    string            `gorm:"type:text;not null" json:"payment_url"`
	RedirectURL   string            `gorm:"type:text" json:"redirect_url"`
	CheckoutURL   string            `gorm:"type:text" json:"checkout_url"`
	DemoMode      bool              `gorm:"not null" json:"demo_mode"`
	ExpiresAt     time.Time         `gorm:"not null" json:"expires_at"`
	ExternalID    *string           `gorm:"type:varchar(128)" json:"external_id"`
	PaidAt        *time.Time        `json:"paid_at"`
	PaymentMethod *string           `gorm:"type:varchar(50)" json:"payment_method"`
	ErrorMessage  *string           `gorm:"type:text" json:"error_message"`
	Metadata      datatypes.JSONMap `json:"metadata"`
	CreatedBy     *snowflake.ID     `json:"created_by"`
	CreatedAt     time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"not null" json:"updated_at"`
}

func (PaymentLink) TableName() string { return "payment_links" }

// PastExpiry reports whether an unsettled link has outlived expires_at.
func (l PaymentLink) PastExpiry(now time.Time) bool {
	switch l.Status {
	case StatusPending, StatusFailed:
		return !l.ExpiresAt.IsZero() && now.After(l.ExpiresAt)
	}
	return false
}

type Payment struct {
	ID            snowflake.ID   `gorm:"primaryKey" json:"id"`
	PaymentLinkID snowflake.ID   `gorm:"not null;index" json:"payment_link_id"`
	OrderID       string         `gorm:"type:varchar(64);not null;index" json:"order_id"`
	ExternalID    string         `gorm:"type:varchar(128);not null;uniqueIndex" json:"external_id"`
	Amount        float64        `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency      string         `gorm:"type:varchar(3);not null" json:"currency"`
	Status        string         `gorm:"type:varchar(20);not null" json:"status"`
	PaymentMethod *string        `gorm:"type:varchar(50)" json:"payment_method"`
	Provider      string         `gorm:"type:varchar(30);not null" json:"provider"`
	RawResponse   datatypes.JSON `json:"raw_response"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
}

func (Payment) TableName() string { return "payments" }

// Paid is published on events.SubjectPaymentPaid.
type Paid struct {
	PaymentLinkID snowflake.ID  `json:"payment_link_id"`
	OrderID       string        `json:"order_id"`
	ExternalID    string        `json:"external_id"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
	MyCompanyID   *snowflake.ID `json:"my_company_id"`
	Source        string        `json:"source"`
}

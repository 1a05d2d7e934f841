package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertLink(ctx context.Context, db *gorm.DB, link *PaymentLink) error
	FindLinkByOrderID(ctx context.Context, db *gorm.DB, orderID string) (*PaymentLink, error)
	UpdateLink(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error

	InsertPayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindPaymentByExternalID(ctx context.Context, db *gorm.DB, externalID string) (*Payment, error)
	FindPaymentByStatus(ctx context.Context, db *gorm.DB, orderID, status string) (*Payment, error)
	UpdatePayment(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
}

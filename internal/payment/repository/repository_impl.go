package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/payment/domain"
	pkgrepo "github.com/verlyx/hub/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertLink(ctx context.Context, db *gorm.DB, link *domain.PaymentLink) error {
	return pkgrepo.ProvideStore[domain.PaymentLink](db).Create(ctx, link)
}

func (r *repo) FindLinkByOrderID(ctx context.Context, db *gorm.DB, orderID string) (*domain.PaymentLink, error) {
	return pkgrepo.ProvideStore[domain.PaymentLink](db).FindOne(ctx,
		pkgrepo.Where("order_id = ?", orderID),
	)
}

func (r *repo) UpdateLink(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	_, err := pkgrepo.ProvideStore[domain.PaymentLink](db).Update(ctx, id, fields)
	return err
}

func (r *repo) InsertPayment(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return pkgrepo.ProvideStore[domain.Payment](db).Create(ctx, payment)
}

func (r *repo) FindPaymentByExternalID(ctx context.Context, db *gorm.DB, externalID string) (*domain.Payment, error) {
	return pkgrepo.ProvideStore[domain.Payment](db).FindOne(ctx,
		pkgrepo.Where("external_id = ?", externalID),
	)
}

func (r *repo) FindPaymentByStatus(ctx context.Context, db *gorm.DB, orderID, status string) (*domain.Payment, error) {
	return pkgrepo.ProvideStore[domain.Payment](db).FindOne(ctx,
		pkgrepo.Where("order_id = ? AND status = ?", orderID, status),
		pkgrepo.OrderBy("created_at desc"),
	)
}

func (r *repo) UpdatePayment(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	_, err := pkgrepo.ProvideStore[domain.Payment](db).Update(ctx, id, fields)
	return err
}

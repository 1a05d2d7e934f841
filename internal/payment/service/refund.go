package service

import (
	"context"
	"strings"

	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/companycontext"
	"github.com/verlyx/hub/internal/payment/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Refund returns money for a paid link and cancels it. Partial amounts are
// passed through to the gateway.
func (s *Service) Refund(ctx context.Context, orderID string, req domain.RefundLinkRequest) (*domain.RefundResult, error) {
	if _, ok := companycontext.UserIDFromContext(ctx); !ok {
		return nil, domain.ErrUnauthenticated
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, domain.ErrInvalidOrder
	}

	unlock, err := s.lock(ctx, orderID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	link, err := s.repo.FindLinkByOrderID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if link == nil || link.MyCompanyID == nil {
		return nil, domain.ErrNotFound
	}
	if err := authorization.Require(ctx, s.authz, *link.MyCompanyID, authorization.ObjectPaymentLink, authorization.ActionCreate); err != nil {
		return nil, err
	}
	if link.Status != domain.StatusPaid {
		return nil, domain.ErrNotRefundable
	}
	payment, err := s.repo.FindPaymentByStatus(ctx, s.db, orderID, domain.PaymentStatusCompleted)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, domain.ErrNotRefundable
	}

	amount := payment.Amount
	if req.Amount != nil {
		amount = round2(*req.Amount)
		if amount <= 0 || amount > payment.Amount {
			return nil, domain.ErrInvalidAmount
		}
	}

	refundID := "demo_refund_" + orderID
	status := "SUCCESS"
	if payment.Provider != domain.ProviderDemo {
		if s.demoMode() {
			return nil, domain.ErrGatewayNotAvailable
		}
		var partial *float64
		if amount < payment.Amount {
			partial = &amount
		}
		refund, err := s.gateway.Refund(ctx, domain.RefundRequest{
			PaymentID: payment.ExternalID,
			Amount:    partial,
			Currency:  payment.Currency,
		})
		if err != nil {
			s.log.Warn("refund failed", zap.String("order_id", orderID), zap.Error(err))
			return nil, err
		}
		refundID = refund.ID
		if refund.Status != "" {
			status = refund.Status
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.UpdatePayment(ctx, tx, payment.ID, map[string]any{"status": domain.PaymentStatusRefunded}); err != nil {
			return err
		}
		return s.repo.UpdateLink(ctx, tx, link.ID, map[string]any{"status": domain.StatusCancelled})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment refunded",
		zap.String("order_id", orderID),
		zap.String("refund_id", refundID),
		zap.Float64("amount", amount),
	)
	return &domain.RefundResult{
		Success:  true,
		RefundID: refundID,
		OrderID:  orderID,
		Amount:   amount,
		Currency: payment.Currency,
		Status:   status,
	}, nil
}

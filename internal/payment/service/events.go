package service

import (
	"context"
	"strings"

	"github.com/verlyx/hub/internal/payment/domain"
	"go.uber.org/zap"
)

// ApplyEvent moves a link to the status reported by the gateway. A paid
// link is never downgraded, a cancelled or expired link only accepts a
// payment, and a refunded order is never settled again.
func (s *Service) ApplyEvent(ctx context.Context, event *domain.WebhookEvent) error {
	if event == nil || strings.TrimSpace(event.OrderID) == "" {
		return domain.ErrInvalidPayload
	}
	orderID := strings.TrimSpace(event.OrderID)

	unlock, err := s.lock(ctx, orderID)
	if err != nil {
		return err
	}
	defer unlock()

	link, err := s.repo.FindLinkByOrderID(ctx, s.db, orderID)
	if err != nil {
		return err
	}
	if link == nil {
		return domain.ErrNotFound
	}

	status := domain.MapWebhookStatus(event.Status)
	if link.Status == domain.StatusPaid && status != domain.StatusPaid {
		s.log.Info("ignoring downgrade of paid link",
			zap.String("order_id", orderID),
			zap.String("gateway_status", event.Status),
		)
		return nil
	}
	if isClosed(link.Status) && status != domain.StatusPaid {
		s.log.Info("ignoring status change of closed link",
			zap.String("order_id", orderID),
			zap.String("status", link.Status),
			zap.String("gateway_status", event.Status),
		)
		return nil
	}

	if status == domain.StatusPaid {
		refunded, err := s.repo.FindPaymentByStatus(ctx, s.db, orderID, domain.PaymentStatusRefunded)
		if err != nil {
			return err
		}
		if refunded != nil {
			s.log.Info("ignoring payment of refunded order", zap.String("order_id", orderID))
			return nil
		}
		externalID := event.PaymentID
		if externalID == "" {
			externalID = "webhook_" + orderID
		}
		amount := link.Amount
		if event.Amount != nil && *event.Amount > 0 {
			amount = *event.Amount
		}
		currency := link.Currency
		if event.Currency != "" {
			currency = event.Currency
		}
		method := event.PaymentMethod
		if method == "" {
			method = domain.PaymentMethodCard
		}
		payment, created, err := s.settle(ctx, link, settlement{
			externalID: externalID,
			method:     method,
			provider:   domain.ProviderDLocalGo,
			amount:     amount,
			currency:   currency,
			raw:        event.RawPayload,
		})
		if err != nil {
			return err
		}
		if created {
			s.afterSettle(ctx, link, payment, "webhook")
		}
		return nil
	}

	fields := map[string]any{"status": status}
	if event.PaymentID != "" {
		fields["external_id"] = event.PaymentID
	}
	if event.PaymentMethod != "" {
		fields["payment_method"] = event.PaymentMethod
	}
	return s.repo.UpdateLink(ctx, s.db, link.ID, fields)
}

func isClosed(status string) bool {
	return status == domain.StatusCancelled || status == domain.StatusExpired
}

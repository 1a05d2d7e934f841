package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/verlyx/hub/internal/events"
	notificationdomain "github.com/verlyx/hub/internal/notification/domain"
	"github.com/verlyx/hub/internal/payment/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type settlement struct {
	externalID string
	method     string
	provider   string
	amount     float64
	currency   string
	raw        []byte
}

// Process charges a link once. Tokens are the default path; raw card data is
// accepted only when explicitly enabled.
func (s *Service) Process(ctx context.Context, req domain.ProcessRequest) (*domain.ProcessResult, error) {
	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		return nil, domain.ErrInvalidOrder
	}
	token := strings.TrimSpace(req.Token)
	if token == "" && req.Card == nil {
		return nil, domain.ErrMissingPaymentData
	}
	var card *domain.Card
	if token == "" {
		if !s.payments.Get().AllowRawCard {
			return nil, domain.ErrRawCardDisabled
		}
		parsed, err := parseCard(*req.Card)
		if err != nil {
			return nil, err
		}
		card = parsed
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
	if link == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.checkPayable(ctx, link); err != nil {
		return nil, err
	}

	if link.DemoMode || s.demoMode() {
		payment, created, err := s.settle(ctx, link, settlement{
			externalID: "demo_" + link.OrderID,
			method:     domain.PaymentMethodCard,
			provider:   domain.ProviderDemo,
			amount:     link.Amount,
			currency:   link.Currency,
		})
		if err != nil {
			return nil, err
		}
		if created {
			s.afterSettle(ctx, link, payment, "process")
		}
		s.obsMetrics.RecordPaymentProcessed(ctx, domain.ProviderDemo, domain.StatusPaid)
		return &domain.ProcessResult{
			Success:   true,
			Status:    domain.StatusPaid,
			PaymentID: payment.ExternalID,
			OrderID:   link.OrderID,
			DemoMode:  true,
		}, nil
	}

	charge, err := s.gateway.CreatePayment(ctx, s.chargeRequest(link, req, token, card))
	if err != nil {
		return nil, s.fail(ctx, link, err)
	}

	switch {
	case domain.Settled(charge.Status):
		payment, created, err := s.settle(ctx, link, settlement{
			externalID: charge.ID,
			method:     domain.PaymentMethodCard,
			provider:   domain.ProviderDLocalGo,
			amount:     link.Amount,
			currency:   link.Currency,
			raw:        charge.Raw,
		})
		if err != nil {
			return nil, err
		}
		if created {
			s.afterSettle(ctx, link, payment, "process")
		}
		s.obsMetrics.RecordPaymentProcessed(ctx, domain.ProviderDLocalGo, domain.StatusPaid)
		s.log.Info("payment settled", zap.String("order_id", link.OrderID), zap.String("external_id", charge.ID))
		return &domain.ProcessResult{Success: true, Status: domain.StatusPaid, PaymentID: charge.ID, OrderID: link.OrderID}, nil

	case strings.EqualFold(charge.Status, "PENDING"):
		if err := s.repo.UpdateLink(ctx, s.db, link.ID, map[string]any{
			"status":        domain.StatusPending,
			"external_id":   charge.ID,
			"error_message": nil,
		}); err != nil {
			return nil, err
		}
		s.obsMetrics.RecordPaymentProcessed(ctx, domain.ProviderDLocalGo, domain.StatusPending)
		s.log.Info("payment pending", zap.String("order_id", link.OrderID), zap.String("external_id", charge.ID))
		return &domain.ProcessResult{Success: true, Status: domain.StatusPending, PaymentID: charge.ID, OrderID: link.OrderID}, nil

	default:
		message := charge.StatusDetail
		if message == "" {
			message = fmt.Sprintf("Payment %s", strings.ToLower(charge.Status))
		}
		return nil, s.fail(ctx, link, &domain.GatewayError{Code: charge.Status, Message: message})
	}
}

func (s *Service) checkPayable(ctx context.Context, link *domain.PaymentLink) error {
	switch link.Status {
	case domain.StatusPaid:
		return domain.ErrAlreadyPaid
	case domain.StatusCancelled:
		return domain.ErrLinkCancelled
	case domain.StatusExpired:
		return domain.ErrLinkExpired
	}
	if link.PastExpiry(s.now()) {
		if err := s.expire(ctx, link); err != nil {
			return err
		}
		return domain.ErrLinkExpired
	}
	return nil
}

func (s *Service) chargeRequest(link *domain.PaymentLink, req domain.ProcessRequest, token string, card *domain.Card) domain.ChargeRequest {
	country := link.Country
	if country == "" {
		country = s.payments.Get().DefaultCountry
	}
	description := link.Description
	if description == "" {
		description = defaultSubject
	}
	email := strings.TrimSpace(req.PayerEmail)
	if email == "" && link.CustomerEmail != nil {
		email = *link.CustomerEmail
	}
	if email == "" {
		email = defaultPayer
	}
	var name string
	if link.CustomerName != nil {
		name = *link.CustomerName
	}
	return domain.ChargeRequest{
		Amount:            link.Amount,
		Currency:          link.Currency,
		Country:           country,
		Description:       description,
		ExternalReference: link.OrderID,
		NotificationURL:   s.webhookURL(),
		PayerName:         name,
		PayerEmail:        email,
		Token:             token,
		Card:              card,
	}
}

func (s *Service) webhookURL() string {
	prefix := strings.Trim(s.cfg.APIPrefix, "/")
	if prefix == "" {
		return s.cfg.AppURL + "/webhooks/dlocal"
	}
	return s.cfg.AppURL + "/" + prefix + "/webhooks/dlocal"
}

// fail records the gateway outcome on the link. No retry is attempted.
func (s *Service) fail(ctx context.Context, link *domain.PaymentLink, cause error) error {
	var gwErr *domain.GatewayError
	if !errors.As(cause, &gwErr) {
		s.log.Error("gateway call failed", zap.String("order_id", link.OrderID), zap.Error(cause))
		gwErr = &domain.GatewayError{Message: "Payment processing failed"}
	} else {
		s.log.Warn("payment rejected",
			zap.String("order_id", link.OrderID),
			zap.String("code", gwErr.Code),
			zap.String("message", gwErr.Message),
		)
	}

	message := gwErr.Error()
	if err := s.repo.UpdateLink(ctx, s.db, link.ID, map[string]any{
		"status":        domain.StatusFailed,
		"error_message": message,
	}); err != nil {
		return err
	}
	link.Status = domain.StatusFailed
	link.ErrorMessage = &message
	s.obsMetrics.RecordPaymentProcessed(ctx, domain.ProviderDLocalGo, domain.StatusFailed)
	return gwErr
}

// settle marks the link paid and records one payment row. A link that was
// already paid is left untouched.
func (s *Service) settle(ctx context.Context, link *domain.PaymentLink, st settlement) (*domain.Payment, bool, error) {
	if link.Status == domain.StatusPaid {
		payment, err := s.repo.FindPaymentByExternalID(ctx, s.db, st.externalID)
		return payment, false, err
	}

	now := s.now()
	var (
		payment *domain.Payment
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.UpdateLink(ctx, tx, link.ID, map[string]any{
			"status":         domain.StatusPaid,
			"external_id":    st.externalID,
			"paid_at":        now,
			"payment_method": st.method,
			"error_message":  nil,
		}); err != nil {
			return err
		}

		existing, err := s.repo.FindPaymentByExternalID(ctx, tx, st.externalID)
		if err != nil {
			return err
		}
		if existing != nil {
			payment = existing
			return nil
		}

		payment = &domain.Payment{
			ID:            s.genID.Generate(),
			PaymentLinkID: link.ID,
			OrderID:       link.OrderID,
			ExternalID:    st.externalID,
			Amount:        round2(st.amount),
			Currency:      st.currency,
			Status:        domain.PaymentStatusCompleted,
			Provider:      st.provider,
			CreatedAt:     now,
		}
		if st.method != "" {
			method := st.method
			payment.PaymentMethod = &method
		}
		if len(st.raw) > 0 && json.Valid(st.raw) {
			payment.RawResponse = datatypes.JSON(st.raw)
		}
		if err := s.repo.InsertPayment(ctx, tx, payment); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	externalID := st.externalID
	method := st.method
	link.Status = domain.StatusPaid
	link.ExternalID = &externalID
	link.PaidAt = &now
	link.PaymentMethod = &method
	link.ErrorMessage = nil
	if payment != nil {
		payment.Status = domain.PaymentStatusCompleted
	}
	return payment, created, nil
}

// afterSettle publishes payment.paid and tells the link creator. Both are
// best effort.
func (s *Service) afterSettle(ctx context.Context, link *domain.PaymentLink, payment *domain.Payment, source string) {
	events.PublishSafe(ctx, s.publisher, s.log, events.SubjectPaymentPaid, domain.Paid{
		PaymentLinkID: link.ID,
		OrderID:       link.OrderID,
		ExternalID:    payment.ExternalID,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		MyCompanyID:   link.MyCompanyID,
		Source:        source,
	})

	if s.notifications == nil || link.CreatedBy == nil {
		return
	}
	client := "Cliente"
	if link.CustomerName != nil && *link.CustomerName != "" {
		client = *link.CustomerName
	}
	actionURL := "/payments/" + link.OrderID
	relatedType := "payment_link"
	relatedID := link.OrderID
	_, err := s.notifications.Create(context.WithoutCancel(ctx), notificationdomain.CreateRequest{
		UserID:      *link.CreatedBy,
		Type:        notificationdomain.TypePayment,
		Title:       "Pago recibido",
		Message:     fmt.Sprintf("Se recibió un pago de %s %s de %s", payment.Currency, strconv.FormatFloat(payment.Amount, 'f', 2, 64), client),
		ActionURL:   &actionURL,
		RelatedType: &relatedType,
		RelatedID:   &relatedID,
		RelatedName: &link.Description,
		Metadata: map[string]any{
			"payment_id": payment.ExternalID,
			"order_id":   link.OrderID,
			"amount":     payment.Amount,
		},
	})
	if err != nil {
		s.log.Warn("payment notification failed", zap.String("order_id", link.OrderID), zap.Error(err))
	}
}

// parseCard reads "MM/YY" (or "MM/YYYY") expirations.
func parseCard(in domain.CardInput) (*domain.Card, error) {
	number := strings.ReplaceAll(strings.TrimSpace(in.Number), " ", "")
	if len(number) < 12 || len(number) > 19 {
		return nil, domain.ErrInvalidCard
	}
	month, year, ok := strings.Cut(strings.TrimSpace(in.Expiration), "/")
	if !ok {
		return nil, domain.ErrInvalidCard
	}
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil || m < 1 || m > 12 {
		return nil, domain.ErrInvalidCard
	}
	year = strings.TrimSpace(year)
	y, err := strconv.Atoi(year)
	if err != nil {
		return nil, domain.ErrInvalidCard
	}
	switch len(year) {
	case 2:
		y += 2000
	case 4:
	default:
		return nil, domain.ErrInvalidCard
	}
	cvv := strings.TrimSpace(in.CVV)
	if len(cvv) < 3 || len(cvv) > 4 {
		return nil, domain.ErrInvalidCard
	}
	return &domain.Card{
		Number:          number,
		HolderName:      strings.TrimSpace(in.HolderName),
		ExpirationMonth: m,
		ExpirationYear:  y,
		CVV:             cvv,
	}, nil
}

package service

import (
	"context"
	"log/slog"

	"github.com/LuvaSoftEC/yopago/internal/apperr"
	"github.com/LuvaSoftEC/yopago/internal/calculator"
	"github.com/LuvaSoftEC/yopago/internal/events"
	"github.com/LuvaSoftEC/yopago/internal/metrics"
	"github.com/LuvaSoftEC/yopago/internal/models"
	"github.com/LuvaSoftEC/yopago/internal/storage"
)

// PaymentService records settlement payments between members and applies
// their lifecycle rules: anyone involved may confirm, only the sender may
// delete, and confirmed payments are immutable.
type PaymentService struct {
	store     storage.Store
	publisher events.Publisher
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(store storage.Store, publisher events.Publisher) *PaymentService {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &PaymentService{store: store, publisher: publisher}
}

// RegisterPayment records a pending payment from one member to another.
func (s *PaymentService) RegisterPayment(ctx context.Context, in models.PaymentInput) (*models.Payment, error) {
	if in.Amount <= 0 {
		return nil, apperr.Validation("payment amount must be positive")
	}
	if in.FromMemberID == in.ToMemberID {
		return nil, apperr.Validation("payment sender and recipient must differ")
	}

	group, err := s.store.GetGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(in.FromMemberID) {
		return nil, apperr.Validation("member %s does not belong to group %s", in.FromMemberID, group.ID)
	}
	if !group.HasMember(in.ToMemberID) {
		return nil, apperr.Validation("member %s does not belong to group %s", in.ToMemberID, group.ID)
	}

	payment := &models.Payment{
		GroupID:      in.GroupID,
		FromMemberID: in.FromMemberID,
		ToMemberID:   in.ToMemberID,
		Amount:       calculator.Round2(in.Amount),
		Note:         in.Note,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		slog.Error("RegisterPayment failed", "group_id", in.GroupID, "error", err)
		return nil, err
	}

	slog.Info("Payment registered", "payment_id", payment.ID, "group_id", payment.GroupID, "amount", payment.Amount)
	s.publisher.Publish(events.New(events.TypePaymentCreated, payment.GroupID, paymentPayload(payment)))
	return payment, nil
}

// ConfirmPayment marks a payment as confirmed. Either the sender or the
// recipient may confirm; confirming twice is an error.
func (s *PaymentService) ConfirmPayment(ctx context.Context, paymentID, memberID string) (*models.Payment, error) {
	payment, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if memberID != payment.FromMemberID && memberID != payment.ToMemberID {
		return nil, apperr.Conflict("member %s is not a party to payment %s", memberID, paymentID)
	}
	if payment.Confirmed {
		return nil, apperr.Conflict("payment %s is already confirmed", paymentID)
	}

	if err := s.store.ConfirmPayment(ctx, paymentID); err != nil {
		return nil, err
	}
	payment.Confirmed = true

	metrics.PaymentsConfirmed.Inc()
	slog.Info("Payment confirmed", "payment_id", paymentID, "member_id", memberID)
	s.publisher.Publish(events.New(events.TypePaymentConfirmed, payment.GroupID, paymentPayload(payment)))
	return payment, nil
}

// DeletePayment removes a pending payment. Only the sender may delete, and
// a confirmed payment cannot be deleted.
func (s *PaymentService) DeletePayment(ctx context.Context, paymentID, memberID string) error {
	payment, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if memberID != payment.FromMemberID {
		return apperr.Conflict("only the sender may delete payment %s", paymentID)
	}
	if payment.Confirmed {
		return apperr.Conflict("cannot delete confirmed payment %s", paymentID)
	}

	if err := s.store.DeletePayment(ctx, paymentID); err != nil {
		return err
	}

	slog.Info("Payment deleted", "payment_id", paymentID, "member_id", memberID)
	s.publisher.Publish(events.New(events.TypePaymentDeleted, payment.GroupID, paymentPayload(payment)))
	return nil
}

// ListPayments returns a group's payments partitioned into confirmed and
// pending, newest first within each slice.
func (s *PaymentService) ListPayments(ctx context.Context, groupID string) (confirmed, pending []*models.Payment, err error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, nil, err
	}
	payments, err := s.store.ListPaymentsByGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	for _, p := range payments {
		if p.Confirmed {
			confirmed = append(confirmed, p)
		} else {
			pending = append(pending, p)
		}
	}
	return confirmed, pending, nil
}

// MemberSummary sums a member's confirmed payment flow within a group: how
// much they have sent and how much they have received.
func (s *PaymentService) MemberSummary(ctx context.Context, groupID, memberID string) (sent, received float64, err error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return 0, 0, err
	}
	if !group.HasMember(memberID) {
		return 0, 0, apperr.Validation("member %s does not belong to group %s", memberID, groupID)
	}
	payments, err := s.store.ListPaymentsByGroup(ctx, groupID)
	if err != nil {
		return 0, 0, err
	}
	for _, p := range payments {
		if !p.Confirmed {
			continue
		}
		switch memberID {
		case p.FromMemberID:
			sent = calculator.Round2(sent + p.Amount)
		case p.ToMemberID:
			received = calculator.Round2(received + p.Amount)
		}
	}
	return sent, received, nil
}

func paymentPayload(payment *models.Payment) map[string]any {
	return map[string]any{
		"paymentId": payment.ID,
		"fromId":    payment.FromMemberID,
		"toId":      payment.ToMemberID,
		"amount":    payment.Amount,
	}
}

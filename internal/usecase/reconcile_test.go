package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	domainErrors "github.com/pixlabs/rifamart/internal/domain/errors"
	"github.com/pixlabs/rifamart/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessNotification_SettlesPaidNotification(t *testing.T) {
	repo := &stubTransactionRepo{}
	uc := NewReconcileUseCase(repo, testLogger())

	body := []byte(`{"idTransaction":"GW-1","external_reference":"order-1","status":"paid","amount":"29,70"}`)
	settlement, err := uc.ProcessNotification(context.Background(), body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settlement == nil || !settlement.FirstTimePaid {
		t.Fatalf("expected first-time settlement, got %+v", settlement)
	}
	if len(repo.Settled) != 1 {
		t.Fatalf("Settle called %d times, want 1", len(repo.Settled))
	}
	n := repo.Settled[0]
	if n.GatewayID != "GW-1" || n.OrderCode != "order-1" || !n.Paid {
		t.Errorf("unexpected normalized notification: %+v", n)
	}
	if n.PaidValue == nil || *n.PaidValue != 29.70 {
		t.Errorf("PaidValue not carried through: %v", n.PaidValue)
	}
}

func TestProcessNotification_IgnoresUnpaidStatus(t *testing.T) {
	repo := &stubTransactionRepo{}
	uc := NewReconcileUseCase(repo, testLogger())

	settlement, err := uc.ProcessNotification(context.Background(), []byte(`{"idTransaction":"GW-1","status":"pending"}`))
	if err != nil || settlement != nil {
		t.Fatalf("got (%+v, %v), want (nil, nil)", settlement, err)
	}
	if len(repo.Settled) != 0 {
		t.Errorf("Settle must not run for unpaid notifications")
	}
}

func TestProcessNotification_IgnoresUnidentifiableBody(t *testing.T) {
	repo := &stubTransactionRepo{}
	uc := NewReconcileUseCase(repo, testLogger())

	for _, body := range []string{`{"status":"paid"}`, `not json`, `{}`} {
		settlement, err := uc.ProcessNotification(context.Background(), []byte(body))
		if err != nil || settlement != nil {
			t.Errorf("body %q: got (%+v, %v), want (nil, nil)", body, settlement, err)
		}
	}
	if len(repo.Settled) != 0 {
		t.Errorf("Settle must not run without a usable reference")
	}
}

func TestProcessNotification_UnknownReferenceIsNoOp(t *testing.T) {
	repo := &stubTransactionRepo{
		SettleFn: func(context.Context, model.Notification) (*model.Settlement, error) {
			return nil, domainErrors.ErrNotFound
		},
	}
	uc := NewReconcileUseCase(repo, testLogger())

	settlement, err := uc.ProcessNotification(context.Background(), []byte(`{"txid":"GW-unknown","status":"paid"}`))
	if err != nil || settlement != nil {
		t.Fatalf("got (%+v, %v), want (nil, nil)", settlement, err)
	}
}

func TestProcessNotification_PersistenceErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	repo := &stubTransactionRepo{
		SettleFn: func(context.Context, model.Notification) (*model.Settlement, error) {
			return nil, boom
		},
	}
	uc := NewReconcileUseCase(repo, testLogger())

	_, err := uc.ProcessNotification(context.Background(), []byte(`{"txid":"GW-1","status":"paid"}`))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestSettleCharge_BuildsPaidNotification(t *testing.T) {
	repo := &stubTransactionRepo{}
	uc := NewReconcileUseCase(repo, testLogger())

	value := 15.0
	order := model.Order{ID: 3, Code: "order-3", Status: model.OrderStatusPending}
	charge := &model.Charge{GatewayID: "GW-3", Status: "paid", Value: &value}

	if _, err := uc.SettleCharge(context.Background(), order, charge); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.Settled) != 1 {
		t.Fatalf("Settle called %d times, want 1", len(repo.Settled))
	}
	n := repo.Settled[0]
	if n.GatewayID != "GW-3" || n.OrderCode != "order-3" || !n.Paid {
		t.Errorf("unexpected notification: %+v", n)
	}
	if n.PaidValue == nil || *n.PaidValue != 15.0 {
		t.Errorf("PaidValue = %v, want 15.0", n.PaidValue)
	}
}

package model

import (
	"testing"
	"time"
)

func TestIsPaidStatus(t *testing.T) {
	cases := []struct {
		status string
		paid   bool
	}{
		{"paid", true},
		{"PAID", true},
		{"pago", true},
		{"Aprovado", true},
		{"confirmed", true},
		{" completed ", true},
		{"liquidado", true},
		{"pending", false},
		{"waiting_payment", false},
		{"refused", false},
		{"", false},
		{"paidish", false},
	}

	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			if got := IsPaidStatus(tc.status); got != tc.paid {
				t.Fatalf("IsPaidStatus(%q) = %v, want %v", tc.status, got, tc.paid)
			}
		})
	}
}

func TestNotificationIdentifiable(t *testing.T) {
	if (Notification{}).Identifiable() {
		t.Fatal("zero notification must not be identifiable")
	}
	if !(Notification{GatewayID: "GW-1"}).Identifiable() {
		t.Fatal("gateway id makes a notification identifiable")
	}
	if !(Notification{OrderCode: "order-1"}).Identifiable() {
		t.Fatal("order code makes a notification identifiable")
	}
}

func TestConversionMetaSent(t *testing.T) {
	var meta ConversionMeta
	if meta.Sent() {
		t.Fatal("zero meta must not report sent")
	}

	meta.Attempts = 3
	meta.LastStatus = 500
	if meta.Sent() {
		t.Fatal("failed attempts must not report sent")
	}

	now := time.Now()
	meta.SentAt = &now
	if !meta.Sent() {
		t.Fatal("meta with sent_at must report sent")
	}
}

func TestChargePaid(t *testing.T) {
	if !(Charge{Status: "paid"}).Paid() {
		t.Fatal("paid charge must report paid")
	}
	if (Charge{Status: "pending"}).Paid() {
		t.Fatal("pending charge must not report paid")
	}
}

func TestStatusValues(t *testing.T) {
	if OrderStatusPending != "pending" || OrderStatusPaid != "paid" || OrderStatusCanceled != "canceled" {
		t.Fatal("unexpected order status values")
	}
	if TransactionStatusPending != "pending" || TransactionStatusPaid != "paid" {
		t.Fatal("unexpected transaction status values")
	}
	if DispatchSent != "sent" || DispatchSkipped != "skipped_already_sent" || DispatchFailed != "failed" {
		t.Fatal("unexpected dispatch outcome values")
	}
}

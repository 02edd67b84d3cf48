package enums

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusConfirmed, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.ok {
			t.Fatalf("%s -> %s: expected %v got %v", tc.from, tc.to, tc.ok, got)
		}
	}
	if !OrderStatusDelivered.IsTerminal() || !OrderStatusCancelled.IsTerminal() || OrderStatusPending.IsTerminal() {
		t.Fatal("terminal states mismatch")
	}
}

func TestPaymentStatusTransitions(t *testing.T) {
	if !PaymentStatusPending.CanTransitionTo(PaymentStatusPaid) {
		t.Fatal("pending -> paid should be allowed")
	}
	if !PaymentStatusFailed.CanTransitionTo(PaymentStatusPending) {
		t.Fatal("failed -> pending should be allowed")
	}
	if PaymentStatusRefunded.CanTransitionTo(PaymentStatusPaid) {
		t.Fatal("refunded is terminal")
	}
}

func TestParseHelpers(t *testing.T) {
	if _, err := ParseProductType("Crop"); err != nil {
		t.Fatalf("expected Crop to parse: %v", err)
	}
	if _, err := ParseProductType("crop"); err == nil {
		t.Fatal("product types are case sensitive")
	}
	if c, err := ParseCropCategory(" Cash-Crops "); err != nil || c != CropCategoryCashCrops {
		t.Fatalf("unexpected category %q err=%v", c, err)
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Fatal("unknown role should fail")
	}
	if _, err := ParseLanguage("kn"); err != nil {
		t.Fatalf("kn should parse: %v", err)
	}
}

func TestCropHelpers(t *testing.T) {
	if CropCategoryVegetables.FreshnessDays() != 7 || CropCategoryFruits.FreshnessDays() != 14 {
		t.Fatal("unexpected produce freshness")
	}
	if CropCategoryPulses.FreshnessDays() != 365 || CropCategoryCashCrops.FreshnessDays() != 30 {
		t.Fatal("unexpected freshness thresholds")
	}
	if PriceUnitQuintal.Kilograms() != 100 || PriceUnitTon.Kilograms() != 1000 || PriceUnitKg.Kilograms() != 1 {
		t.Fatal("unexpected unit conversion")
	}
	if len(CertificationValues()) != 4 {
		t.Fatal("expected four certifications")
	}
}

package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyJSONAcceptsStringAndNumber(t *testing.T) {
	var fromString Money
	if err := json.Unmarshal([]byte(`"19.999"`), &fromString); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	if fromString.String() != "20.00" {
		t.Fatalf("want 20.00 got %s", fromString.String())
	}

	var fromNumber Money
	if err := json.Unmarshal([]byte(`0.1`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	if !fromNumber.Decimal.Equal(decimal.RequireFromString("0.1")) {
		t.Fatalf("want 0.1 got %s", fromNumber.Decimal.String())
	}

	out, err := json.Marshal(MustMoney("5"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `"5.00"` {
		t.Fatalf("want \"5.00\" got %s", string(out))
	}
}

func TestShippingMethodPriceDecimal(t *testing.T) {
	method := ShippingMethod{ID: "express", Price: " 10.50 "}
	price, err := method.PriceDecimal()
	if err != nil {
		t.Fatalf("parse price failed: %v", err)
	}
	if price.StringFixed(2) != "10.50" {
		t.Fatalf("want 10.50 got %s", price.StringFixed(2))
	}
	if method.Price != " 10.50 " {
		t.Fatalf("price text must stay untouched, got %q", method.Price)
	}

	if _, err := (ShippingMethod{Price: "free"}).PriceDecimal(); err == nil {
		t.Fatalf("expected parse error for non-numeric price")
	}
}

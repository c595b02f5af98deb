package cart

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestLineTotal(t *testing.T) {
	t.Run("base plus variant delta times quantity", func(t *testing.T) {
		got := LineTotal(dec("10.00"), dec("2.50"), 3)
		if !got.Equal(dec("37.50")) {
			t.Fatalf("expected 37.50, got %s", got)
		}
	})

	t.Run("no variant contributes zero delta", func(t *testing.T) {
		got := LineTotal(dec("19.99"), decimal.Zero, 2)
		if !got.Equal(dec("39.98")) {
			t.Fatalf("expected 39.98, got %s", got)
		}
	})

	t.Run("no float drift on cent values", func(t *testing.T) {
		got := LineTotal(dec("0.10"), dec("0.20"), 3)
		if !got.Equal(dec("0.90")) {
			t.Fatalf("expected 0.90, got %s", got)
		}
	})
}

func TestHasVariant(t *testing.T) {
	if (Line{VariantID: NoVariant}).HasVariant() {
		t.Fatal("sentinel variant id must mean no variant")
	}
	if !(Line{VariantID: 7}).HasVariant() {
		t.Fatal("non-zero variant id must mean a variant is selected")
	}
}

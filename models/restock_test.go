package models

import "testing"

func TestFilterRestockLines_DropsIncompleteRows(t *testing.T) {
	lines := filterRestockLines([]NewRestockLine{
		{ProductId: 0, Qty: 5},   // no product chosen
		{ProductId: -3, Qty: 5},  // invalid product
		{ProductId: 7, Qty: 0},   // empty delta
		{ProductId: 7, Qty: 10},  // kept
		{ProductId: 12, Qty: -3}, // corrections are kept too
	})

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines after filtering, got %d: %+v", len(lines), lines)
	}
	if lines[0].ProductId != 7 || lines[0].Qty != 10 {
		t.Fatalf("unexpected first line: %+v", lines[0])
	}
	if lines[1].ProductId != 12 || lines[1].Qty != -3 {
		t.Fatalf("unexpected second line: %+v", lines[1])
	}
}

func TestFilterRestockLines_PreservesOrder(t *testing.T) {
	lines := filterRestockLines([]NewRestockLine{
		{ProductId: 3, Qty: 1},
		{ProductId: 1, Qty: 2},
		{ProductId: 2, Qty: 3},
	})
	for i, want := range []int{3, 1, 2} {
		if lines[i].ProductId != want {
			t.Fatalf("line %d: expected product %d, got %d", i, want, lines[i].ProductId)
		}
	}
}

func TestFilterRestockLines_AllInvalid(t *testing.T) {
	lines := filterRestockLines([]NewRestockLine{
		{ProductId: 0, Qty: 0},
		{ProductId: -1, Qty: 4},
	})
	if lines != nil {
		t.Fatalf("expected nil, got %+v", lines)
	}
}

func TestDebtStatusIsValid(t *testing.T) {
	if !DebtStatusInvoiced.IsValid() || !DebtStatusPaid.IsValid() {
		t.Fatal("expected invoiced and paid to be valid")
	}
	if DebtStatus("refunded").IsValid() || DebtStatus("").IsValid() {
		t.Fatal("expected unknown statuses to be invalid")
	}
}

package domain

import (
	"errors"
	"testing"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderConfirmed, true},
		{OrderPending, OrderCancelled, true},
		{OrderConfirmed, OrderProcessing, true},
		{OrderConfirmed, OrderCancelled, true},
		{OrderProcessing, OrderShipped, true},
		{OrderShipped, OrderDelivered, true},
		{OrderProcessing, OrderCancelled, false},
		{OrderDelivered, OrderCancelled, false},
		{OrderCancelled, OrderPending, false},
		{OrderPending, OrderDelivered, false},
		{OrderShipped, OrderConfirmed, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestOrderStatusCancellable(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderConfirmed} {
		if !s.IsCancellable() {
			t.Errorf("%s should be cancellable", s)
		}
	}
	for _, s := range []OrderStatus{OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled} {
		if s.IsCancellable() {
			t.Errorf("%s should not be cancellable", s)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	if _, ok := ParseOrderStatus("SHIPPED"); !ok {
		t.Fatal("SHIPPED should parse")
	}
	if _, ok := ParseOrderStatus("shipped"); ok {
		t.Fatal("status parsing is case sensitive")
	}
}

func TestErrorKinds(t *testing.T) {
	err := ErrInsufficientStock.WithMessage("insufficient stock for Tea")
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatal("WithMessage copy should match its sentinel")
	}
	if errors.Is(err, ErrEmptyCart) {
		t.Fatal("different sentinels must not match")
	}
	if KindOf(err) != KindBusinessRule {
		t.Fatalf("kind = %v", KindOf(err))
	}
	if KindOf(errors.New("plain")) != KindInternal {
		t.Fatal("plain errors are internal")
	}
	if !IsNotFound(NewNotFoundError("order")) {
		t.Fatal("expected not found")
	}
}

func TestPagination(t *testing.T) {
	p := NewPageRequest(0, 0, 12)
	if p.Page != 1 || p.Limit != 12 || p.Offset() != 0 {
		t.Fatalf("defaults not applied: %+v", p)
	}

	p = NewPageRequest(3, 500, 10)
	if p.Limit != MaxPageSize || p.Offset() != 200 {
		t.Fatalf("limit not capped: %+v", p)
	}

	pg := NewPagination(NewPageRequest(2, 10, 10), 25)
	if pg.TotalPages != 3 || !pg.HasNext || !pg.HasPrev || pg.TotalItems != 25 {
		t.Fatalf("unexpected pagination %+v", pg)
	}

	pg = NewPagination(NewPageRequest(1, 10, 10), 0)
	if pg.TotalPages != 0 || pg.HasNext || pg.HasPrev {
		t.Fatalf("unexpected empty pagination %+v", pg)
	}
}

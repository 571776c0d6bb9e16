package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/adanianlabs/hrassist/history"
)

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	exchange := &history.Exchange{
		SessionID: "sess-1",
		Question:  "What is the leave policy?",
		Answer:    "21 days per year.",
		QueryType: "document_query",
	}
	if err := store.Append(ctx, exchange); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if exchange.ID == "" {
		t.Fatal("expected generated ID")
	}
	if exchange.CreatedAt.IsZero() {
		t.Fatal("expected assigned timestamp")
	}

	if err := store.Append(ctx, nil); err == nil {
		t.Fatal("expected error for nil exchange")
	}
	if err := store.Append(ctx, &history.Exchange{Question: "no session"}); err == nil {
		t.Fatal("expected error for missing session ID")
	}
}

func TestRecentNewestFirstAndLimited(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	for i := 0; i < 5; i++ {
		err := store.Append(ctx, &history.Exchange{
			SessionID: "sess-1",
			Question:  fmt.Sprintf("question %d", i),
		})
		if err != nil {
			t.Fatalf("Append error: %v", err)
		}
	}

	recent, err := store.Recent(ctx, "sess-1", 3)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d exchanges, want 3", len(recent))
	}
	if recent[0].Question != "question 4" || recent[2].Question != "question 2" {
		t.Fatalf("not newest first: %q, %q, %q", recent[0].Question, recent[1].Question, recent[2].Question)
	}

	all, err := store.Recent(ctx, "sess-1", 0)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("limit<=0 should return all: got %d", len(all))
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	_ = store.Append(ctx, &history.Exchange{SessionID: "sess-a", Question: "a"})
	_ = store.Append(ctx, &history.Exchange{SessionID: "sess-b", Question: "b"})

	a, _ := store.Recent(ctx, "sess-a", 10)
	if len(a) != 1 || a[0].Question != "a" {
		t.Fatalf("session a = %+v", a)
	}

	if err := store.ClearSession(ctx, "sess-a"); err != nil {
		t.Fatalf("ClearSession error: %v", err)
	}
	a, _ = store.Recent(ctx, "sess-a", 10)
	if len(a) != 0 {
		t.Fatalf("session a not cleared: %d exchanges", len(a))
	}
	b, _ := store.Recent(ctx, "sess-b", 10)
	if len(b) != 1 {
		t.Fatalf("session b affected by clearing a: %d exchanges", len(b))
	}
}

func TestRecentReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	_ = store.Append(ctx, &history.Exchange{SessionID: "sess-1", Question: "original"})

	first, _ := store.Recent(ctx, "sess-1", 1)
	first[0].Question = "mutated"

	second, _ := store.Recent(ctx, "sess-1", 1)
	if second[0].Question != "original" {
		t.Fatal("stored exchange mutated through a returned copy")
	}
}

func TestGenerateExchangeIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := history.GenerateExchangeID()
		if seen[id] {
			t.Fatalf("duplicate ID %q after %d generations", id, i)
		}
		seen[id] = true
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/flashmart/stock-sync/internal/adapter/remote"
	"github.com/flashmart/stock-sync/internal/core/domain"
	"github.com/flashmart/stock-sync/internal/core/service"
	"github.com/flashmart/stock-sync/internal/core/store"
)

const (
	itemID       = "demo-item"
	initialStock = 10
	debounce     = 300 * time.Millisecond
)

// editsim replays a shop owner's editing session against a live stock
// server: a typing burst in the numeric field, a stepper storm, and a mixed
// type-then-click edit. It verifies the client view converges to the
// server's authoritative count.
func main() {
	ctx := context.Background()

	apiURL := os.Getenv("STOCK_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}

	client := remote.NewHTTPClient(apiURL, nil)
	if _, err := client.SetStock(ctx, itemID, initialStock); err != nil {
		log.Fatalf("failed to seed stock (is the server running?): %v", err)
	}

	st := store.NewItemStore()
	st.Load(domain.Item{ID: itemID, ConfirmedStock: initialStock})

	rec := service.NewReconciler(st, client, service.Config{
		Debounce: debounce,
		OnError: func(id string, err error) {
			fmt.Printf("  write failed for %s: %v\n", id, err)
		},
	})

	pass := true
	settle := func() { time.Sleep(debounce + 500*time.Millisecond) }

	// Typing burst: only the last value within the quiet period goes out.
	fmt.Println("-- typing burst: 2 -> 25 --")
	rec.EditAbsolute(itemID, "2")
	rec.EditAbsolute(itemID, "25")
	settle()
	pass = check(ctx, client, rec, 25) && pass

	// Stepper storm: five rapid -1 clicks.
	fmt.Println("-- stepper storm: five -1 clicks --")
	for i := 0; i < 5; i++ {
		rec.EditDelta(itemID, -1)
	}
	settle()
	pass = check(ctx, client, rec, 20) && pass

	// Mixed edit: typed value folded with a +1 click into one write.
	fmt.Println("-- mixed edit: type 30, then +1 --")
	rec.EditAbsolute(itemID, "30")
	rec.EditDelta(itemID, +1)
	settle()
	pass = check(ctx, client, rec, 31) && pass

	rec.Close()

	fmt.Println("==========================================")
	if pass {
		fmt.Println("PASS: client converged to server state after every burst")
	} else {
		fmt.Println("FAIL: client and server disagree, see above")
		os.Exit(1)
	}
}

func check(ctx context.Context, client *remote.HTTPClient, rec *service.Reconciler, want int) bool {
	display := rec.DisplayValue(itemID)
	server, err := client.GetStock(ctx, itemID)
	if err != nil {
		fmt.Printf("  FAIL: could not read server stock: %v\n", err)
		return false
	}

	fmt.Printf("  display=%d server=%d want=%d\n", display, server, want)
	if display != want || server != want {
		fmt.Println("  FAIL")
		return false
	}
	fmt.Println("  OK")
	return true
}

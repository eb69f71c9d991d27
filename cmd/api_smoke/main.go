package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"todo_webapp/internal/client"
)

// Drives a running server through a full session: register, add, toggle,
// filter, remove, logout. Exits non-zero at the first surprise.
func main() {
	apiURL := flag.String("api", "http://localhost:5000", "server base URL")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := client.NewController(client.NewAPI(*apiURL, nil), &client.MemoryTokenStore{})
	email := fmt.Sprintf("smoke-%d@example.com", time.Now().UnixNano())

	if err := c.Register(ctx, "Smoke", email, "smoke-password"); err != nil {
		log.Fatalf("register: %v", err)
	}
	log.Printf("registered %s\n", email)

	for _, text := range []string{"Buy milk", "Write report"} {
		if err := c.Add(ctx, text); err != nil {
			log.Fatalf("add %q: %v", text, err)
		}
	}

	todos := c.Snapshot().Todos
	if len(todos) != 2 {
		log.Fatalf("expected 2 todos, got %d", len(todos))
	}

	if err := c.Toggle(ctx, todos[0].ID); err != nil {
		log.Fatalf("toggle: %v", err)
	}
	if s := c.Stats(); s.Total != 2 || s.Completed != 1 || s.Pending != 1 {
		log.Fatalf("unexpected stats %+v", s)
	}

	c.SetFilter("buy")
	if v := c.VisibleTodos(); len(v) != 1 || v[0].Text != "Buy milk" {
		log.Fatalf("unexpected filtered view %+v", v)
	}
	c.SetFilter("")

	if err := c.Remove(ctx, todos[1].ID); err != nil {
		log.Fatalf("remove: %v", err)
	}
	if n := len(c.Snapshot().Todos); n != 1 {
		log.Fatalf("expected 1 todo after remove, got %d", n)
	}

	if err := c.Logout(); err != nil {
		log.Fatalf("logout: %v", err)
	}
	log.Println("smoke test passed")
}

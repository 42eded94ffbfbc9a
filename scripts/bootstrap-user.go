package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gatepost/gatepost/internal/model"
	"github.com/gatepost/gatepost/internal/repository"
)

type output struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "", "Email address to grant dashboard access")
		isAdmin     = flag.Bool("admin", false, "Mark the user as an admin")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *email == "" || !strings.Contains(*email, "@") {
		fmt.Fprintln(os.Stderr, "a valid -email is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	user := &model.User{
		ID:        ulid.Make().String(),
		Email:     strings.ToLower(strings.TrimSpace(*email)),
		IsAdmin:   *isAdmin,
		CreatedAt: time.Now().UTC(),
	}

	// Upsert so rerunning with the same email keeps the existing row.
	// This also repairs an approved request whose user insert failed.
	stored, err := repo.UpsertUser(ctx, user)
	if err != nil {
		fmt.Fprintln(os.Stderr, "upsert user:", err)
		os.Exit(1)
	}

	out := output{
		UserID:  stored.ID,
		Email:   stored.Email,
		IsAdmin: stored.IsAdmin,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Printf("%s %s\n", out.UserID, out.Email)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

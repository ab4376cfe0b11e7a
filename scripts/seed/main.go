// Command seed bootstraps an initial admin account so a fresh deployment
// can log in and start creating instructors and courses.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	var (
		dsn      string
		email    string
		password string
		role     string
		timeout  time.Duration
	)

	flag.StringVar(&dsn, "dsn", "host=localhost port=5432 user=postgres password=postgres dbname=skillshare sslmode=disable", "PostgreSQL DSN")
	flag.StringVar(&email, "email", "admin@skillshare.local", "Account email")
	flag.StringVar(&password, "password", "", "Account password (required)")
	flag.StringVar(&role, "role", "admin", "Account role (admin, instructor or learner)")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Database timeout")
	flag.Parse()

	if password == "" {
		log.Fatal("-password is required")
	}
	switch role {
	case "admin", "instructor", "learner":
	default:
		log.Fatalf("invalid role %q", role)
	}

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to reach database: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	const query = `INSERT INTO users (id, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (email) DO NOTHING`

	res, err := db.ExecContext(ctx, query, uuid.NewString(), strings.ToLower(strings.TrimSpace(email)), string(hash), role, now)
	if err != nil {
		log.Fatalf("failed to insert user: %v", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		fmt.Printf("user %s already exists, nothing to do\n", email)
		return
	}
	fmt.Printf("created %s account %s\n", role, email)
}

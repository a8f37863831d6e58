// cmd/hashpassword prints a bcrypt hash for a password using the configured
// cost and password policy. Useful for setting an admin password by hand.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/optommarket/backend/internal/config"
	"github.com/optommarket/backend/internal/pkg/auth"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: hashpassword <password>")
	}
	password := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	passwords := auth.NewPasswordManager(cfg)

	hash, err := passwords.HashPassword(password)
	if err != nil {
		log.Fatalf("Error generating hash: %v", err)
	}

	if err := passwords.VerifyPassword(password, hash); err != nil {
		log.Fatalf("Hash verification failed: %v", err)
	}

	fmt.Println(hash)
}

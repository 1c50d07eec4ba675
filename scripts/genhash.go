//go:build ignore

// One-off: go run scripts/genhash.go <name> <email> <password>
// Prints an INSERT for seeding a users row with a bcrypt hash.
package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	name, email, password := "Admin", "admin@example.com", "admin1"
	if len(os.Args) > 3 {
		name, email, password = os.Args[1], os.Args[2], os.Args[3]
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		panic(err)
	}
	fmt.Printf("INSERT INTO users (name, email, password_hash) VALUES ('%s', '%s', '%s');\n", name, email, string(h))
}

// Command hash-token generates an Argon2id PHC hash for AUTH_TOKEN_HASH.
// Usage: go run ./scripts/hash-token.go -token <token>
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/afftrack/afftrack/internal/auth"
)

func main() {
	token := flag.String("token", "", "Bearer token to hash")
	flag.Parse()

	if *token == "" {
		fmt.Fprintln(os.Stderr, "-token is required")
		os.Exit(1)
	}

	hash, err := auth.HashToken(*token)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash token:", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}

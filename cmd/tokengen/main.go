package main

import (
	"fmt"
	"log"

	"github.com/earnly/backend/pkg/utils/keygen"
)

// tokengen mints an API token for seeding a user row by hand, for
// environments where the admin endpoint is not reachable yet.
func main() {
	token, err := keygen.GenerateAPIToken()
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}
	fmt.Println(token)
}

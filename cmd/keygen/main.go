// Command keygen prints a fresh hex key for TENANT_HINT_KEY or
// TENANT_FORWARD_KEY.
package main

import (
	"encoding/hex"
	"fmt"
	"log"

	"github.com/dmitrymomot/tenantdb/pkg/secrets"
)

func main() {
	key, err := secrets.GenerateKey()
	if err != nil {
		log.Fatalf("Failed to generate key: %v", err)
	}

	fmt.Println(hex.EncodeToString(key))
}

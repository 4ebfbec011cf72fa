package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateKEK prints a freshly generated 256-bit key-encryption key as a
// 64-character hex string, formatted for direct use as the KEK environment
// variable. It never touches the database or any running container: the KEK
// is process-wide and lives only in memory once loaded.
func GenerateKEK() error {
	kek := make([]byte, 32)
	if _, err := rand.Read(kek); err != nil {
		return fmt.Errorf("failed to generate kek: %w", err)
	}

	fmt.Println("# Key-encryption key for envelope encryption")
	fmt.Println("# Copy this to your .env file or secrets manager")
	fmt.Println()
	fmt.Printf("KEK=%s\n", hex.EncodeToString(kek))

	return nil
}

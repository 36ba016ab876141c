package store

import (
	"fmt"

	"github.com/subtrack-cli/subtrack/internal/vault"
)

// File magic distinguishing a subtrack document from arbitrary data
// before attempting decryption.
var docMagic = []byte("STRK1\x00")

func encryptDocument(key, plaintext []byte) ([]byte, error) {
	sealed, err := vault.Encrypt(key, plaintext)
	if err != nil {
		return nil, fmt.Errorf("store: encrypting document: %w", err)
	}
	return append(append([]byte(nil), docMagic...), sealed...), nil
}

func decryptDocument(key, data []byte) ([]byte, error) {
	if len(data) < len(docMagic) || string(data[:len(docMagic)]) != string(docMagic) {
		return nil, fmt.Errorf("store: not a subtrack document")
	}
	plaintext, err := vault.Decrypt(key, data[len(docMagic):])
	if err != nil {
		return nil, fmt.Errorf("store: decrypting document: %w", err)
	}
	return plaintext, nil
}

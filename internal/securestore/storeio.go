package securestore

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ReadDecryptedJSON reads path, decrypts it with the passphrase and
// unmarshals the payload into v.
func ReadDecryptedJSON(path, passphrase string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	plain, err := Decrypt(passphrase, raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(plain, v)
}

// WriteEncryptedJSON marshals v, encrypts it and writes it with private
// permissions, creating parent directories as needed.
func WriteEncryptedJSON(path, passphrase string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	encrypted, err := Encrypt(passphrase, payload)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, encrypted, 0o600)
}

package filestore

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

// ErrBadPassphrase is returned when a backup cannot be opened with the
// given passphrase, or is not a backup at all.
var ErrBadPassphrase = errors.New("wrong passphrase or corrupt backup")

var backupMagic = []byte("ETBK1")

const (
	saltSize  = 16
	nonceSize = 24

	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

func deriveKey(passphrase string, salt []byte) (*[32]byte, error) {
	raw, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, 32)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	var key [32]byte
	copy(key[:], raw)
	return &key, nil
}

// SealBackup encrypts data with a key derived from passphrase. The output is
// magic | salt | nonce | secretbox(data).
func SealBackup(passphrase string, data []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase is required")
	}

	var salt [saltSize]byte
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, salt[:]); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	key, err := deriveKey(passphrase, salt[:])
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(backupMagic)+saltSize+nonceSize+len(data)+secretbox.Overhead)
	out = append(out, backupMagic...)
	out = append(out, salt[:]...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, data, &nonce, key), nil
}

// OpenBackup reverses SealBackup
func OpenBackup(passphrase string, sealed []byte) ([]byte, error) {
	header := len(backupMagic) + saltSize + nonceSize
	if len(sealed) < header+secretbox.Overhead || !bytes.HasPrefix(sealed, backupMagic) {
		return nil, ErrBadPassphrase
	}

	salt := sealed[len(backupMagic) : len(backupMagic)+saltSize]
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[len(backupMagic)+saltSize:header])

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	data, ok := secretbox.Open(nil, sealed[header:], &nonce, key)
	if !ok {
		return nil, ErrBadPassphrase
	}
	return data, nil
}

// Backup seals the user's transaction log and stores it under backups/.
// It returns the stored name.
func (s *Store) Backup(userID int64, passphrase string, now time.Time) (string, error) {
	data, err := s.ReadLog(userID)
	if err != nil {
		return "", err
	}
	sealed, err := SealBackup(passphrase, data)
	if err != nil {
		return "", err
	}

	name := filepath.Join("backups", fmt.Sprintf("backup_%d_%s.enc", userID, now.Format("20060102")))
	if err := os.WriteFile(s.FullPath(name), sealed, 0600); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return name, nil
}

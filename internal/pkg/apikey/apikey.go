// Package apikey verifies the shared key presented by edge collaborators (detection pipeline,
// prediction service, slot administration). Only the bcrypt hash lives in configuration.
package apikey

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrHashingFailed = errors.New("api key hashing failed")
	ErrKeyMismatch   = errors.New("api key mismatch")
	ErrEmptyKey      = errors.New("api key is empty")
	ErrNotConfigured = errors.New("api key hash not configured")
)

const DefaultCost = bcrypt.DefaultCost

func Hash(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(key), DefaultCost)
	if err != nil {
		return "", ErrHashingFailed
	}

	return string(hashedBytes), nil
}

func Verify(hashedKey, key string) error {
	if hashedKey == "" {
		return ErrNotConfigured
	}
	if key == "" {
		return ErrEmptyKey
	}

	err := bcrypt.CompareHashAndPassword([]byte(hashedKey), []byte(key))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrKeyMismatch
		}
		return err
	}

	return nil
}

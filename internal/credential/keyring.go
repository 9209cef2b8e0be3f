// Package credential keeps profile passwords in the OS keyring.
package credential

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// KeyringService is the keyring service name passwords are filed under.
const KeyringService = "dbquerytool"

// Service handles password storage in the OS keyring.
type Service struct {
	service string
}

// NewService creates a new credential service.
func NewService() *Service {
	return &Service{service: KeyringService}
}

// SetPassword stores a password in the OS keyring.
func (s *Service) SetPassword(account, password string) error {
	if password == "" {
		// Delete any existing password
		_ = keyring.Delete(s.service, account)
		return nil
	}
	return keyring.Set(s.service, account, password)
}

// GetPassword retrieves a password from the OS keyring.
func (s *Service) GetPassword(account string) (string, error) {
	password, err := keyring.Get(s.service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return password, err
}

// DeletePassword removes a password from the OS keyring.
func (s *Service) DeletePassword(account string) error {
	err := keyring.Delete(s.service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

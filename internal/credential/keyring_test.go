package credential

import (
	"testing"

	"github.com/zalando/go-keyring"
)

func TestService_PasswordLifecycle(t *testing.T) {
	keyring.MockInit()
	s := NewService()

	if err := s.SetPassword("mongo:local", "s3cret"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	got, err := s.GetPassword("mongo:local")
	if err != nil || got != "s3cret" {
		t.Errorf("GetPassword = %q, %v; want s3cret", got, err)
	}

	if err := s.SetPassword("mongo:local", ""); err != nil {
		t.Fatalf("SetPassword(empty) failed: %v", err)
	}
	got, err = s.GetPassword("mongo:local")
	if err != nil || got != "" {
		t.Errorf("Empty password should delete, got %q, %v", got, err)
	}
}

func TestService_MissingIsNotAnError(t *testing.T) {
	keyring.MockInit()
	s := NewService()

	if got, err := s.GetPassword("redis:nope"); err != nil || got != "" {
		t.Errorf("GetPassword(missing) = %q, %v", got, err)
	}
	if err := s.DeletePassword("redis:nope"); err != nil {
		t.Errorf("DeletePassword(missing) = %v", err)
	}
}

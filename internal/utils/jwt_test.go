package utils_test

import (
	"testing"

	"github.com/saferoute-app/saferoute-server/internal/utils"
)

func TestJWTRoundTrip(t *testing.T) {
	t.Parallel()

	token, err := utils.GenerateJWT("changeme", 42)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	uid, err := utils.VerifyJWT("changeme", token)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if uid != 42 {
		t.Errorf("expected user id 42, got %d", uid)
	}
}

func TestJWTWrongKey(t *testing.T) {
	t.Parallel()

	token, err := utils.GenerateJWT("changeme", 42)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	_, err = utils.VerifyJWT("notthekey", token)
	if err == nil {
		t.Error("expected verification to fail with the wrong key")
	}
}

func TestJWTGarbage(t *testing.T) {
	t.Parallel()

	_, err := utils.VerifyJWT("changeme", "not-a-token")
	if err == nil {
		t.Error("expected verification to fail for garbage input")
	}
}

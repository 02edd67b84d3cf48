package security_test

import (
	"strings"
	"testing"

	"github.com/smartkisan/kisan-backend/pkg/config"
	"github.com/smartkisan/kisan-backend/pkg/security"
)

func testHasher() *security.Hasher {
	return security.NewHasher(config.PasswordConfig{
		ArgonMemoryKB:    64,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
}

func TestHashAndVerify(t *testing.T) {
	h := testHasher()
	hash, err := h.Hash("kisan123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=64,t=1,p=1$") {
		t.Fatalf("unexpected encoding %q", hash)
	}

	ok, err := h.Verify("kisan123", hash)
	if err != nil || !ok {
		t.Fatalf("expected match ok=%v err=%v", ok, err)
	}
	ok, err = h.Verify("wrong", hash)
	if err != nil || ok {
		t.Fatalf("expected mismatch ok=%v err=%v", ok, err)
	}
}

func TestHashesAreSalted(t *testing.T) {
	h := testHasher()
	a, _ := h.Hash("same-password")
	b, _ := h.Hash("same-password")
	if a == b {
		t.Fatal("expected distinct salts")
	}
}

func TestVerifyWithDifferentParams(t *testing.T) {
	old := security.NewHasher(config.PasswordConfig{ArgonMemoryKB: 32, ArgonTime: 2, ArgonParallelism: 1, ArgonSaltLen: 8, ArgonKeyLen: 16})
	hash, err := old.Hash("rotated")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if ok, err := testHasher().Verify("rotated", hash); err != nil || !ok {
		t.Fatalf("params should be read from the hash ok=%v err=%v", ok, err)
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	h := testHasher()
	for _, bad := range []string{"", "plain", "$bcrypt$v=19$m=1,t=1,p=1$aa$bb", "$argon2id$v=19$m=x$aa$bb"} {
		if _, err := h.Verify("pw", bad); err != security.ErrInvalidHash {
			t.Fatalf("expected ErrInvalidHash for %q, got %v", bad, err)
		}
	}
	if _, err := h.Hash(""); err == nil {
		t.Fatal("expected empty password error")
	}
}

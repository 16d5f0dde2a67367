package password

import (
	"errors"
	"strings"
	"testing"
)

func testHasher(t *testing.T) *Hasher {
	t.Helper()
	// Floor-level costs keep the test fast.
	h, err := NewHasher(Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	return h
}

func TestHashAndVerify(t *testing.T) {
	h := testHasher(t)

	encoded, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("unexpected hash prefix: %q", encoded)
	}

	ok, err := h.Verify("correct horse battery staple", encoded)
	if err != nil || !ok {
		t.Fatalf("Verify(correct) = %v, %v", ok, err)
	}

	ok, err = h.Verify("wrong password", encoded)
	if err != nil {
		t.Fatalf("Verify(wrong) errored: %v", err)
	}
	if ok {
		t.Fatal("Verify accepted a wrong password")
	}
}

func TestHash_SaltedPerCall(t *testing.T) {
	h := testHasher(t)

	a, _ := h.Hash("same input")
	b, _ := h.Hash("same input")
	if a == b {
		t.Fatal("two hashes of the same input are identical; salt not applied")
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	h := testHasher(t)

	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=8192,t=1,p=1$notbase64!!$x",
		"$bcrypt$whatever",
	} {
		if _, err := h.Verify("x", encoded); !errors.Is(err, ErrHashFormat) {
			t.Fatalf("Verify(%q): expected ErrHashFormat, got %v", encoded, err)
		}
	}
}

func TestNewHasher_RejectsWeakParams(t *testing.T) {
	if _, err := NewHasher(Params{Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}); !errors.Is(err, ErrWeakParams) {
		t.Fatalf("expected ErrWeakParams, got %v", err)
	}
}

func TestNeedsRehash(t *testing.T) {
	weak := testHasher(t)
	encoded, _ := weak.Hash("some password here")

	strong, err := NewHasher(DefaultParams())
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}

	needs, err := strong.NeedsRehash(encoded)
	if err != nil {
		t.Fatalf("NeedsRehash failed: %v", err)
	}
	if !needs {
		t.Fatal("expected floor-cost hash to need rehash under default params")
	}

	needs, err = weak.NeedsRehash(encoded)
	if err != nil {
		t.Fatalf("NeedsRehash failed: %v", err)
	}
	if needs {
		t.Fatal("hash at current params should not need rehash")
	}
}

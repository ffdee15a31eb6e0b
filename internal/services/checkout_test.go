package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/storyloft/storyloft-backend/internal/types"
)

func signPayload(payload []byte, secret string, at time.Time) string {
	ts := fmt.Sprintf("%d", at.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifySignatureValid(t *testing.T) {
	payload := []byte(`{"type":"checkout.session.completed"}`)
	now := time.Now()
	header := signPayload(payload, "whsec_test", now)

	if err := VerifySignature(payload, header, "whsec_test", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerifySignatureWrongSecret(t *testing.T) {
	payload := []byte(`{}`)
	now := time.Now()
	header := signPayload(payload, "whsec_other", now)

	if err := VerifySignature(payload, header, "whsec_test", now); err == nil {
		t.Fatalf("expected error for signature under a different secret")
	}
}

func TestVerifySignatureTamperedPayload(t *testing.T) {
	now := time.Now()
	header := signPayload([]byte(`{"a":1}`), "whsec_test", now)

	if err := VerifySignature([]byte(`{"a":2}`), header, "whsec_test", now); err == nil {
		t.Fatalf("expected error for tampered payload")
	}
}

func TestVerifySignatureExpiredTimestamp(t *testing.T) {
	payload := []byte(`{}`)
	signedAt := time.Now().Add(-10 * time.Minute)
	header := signPayload(payload, "whsec_test", signedAt)

	if err := VerifySignature(payload, header, "whsec_test", time.Now()); err == nil {
		t.Fatalf("expected error for timestamp outside tolerance")
	}
}

func TestVerifySignatureJustInsideTolerance(t *testing.T) {
	payload := []byte(`{}`)
	now := time.Now()
	header := signPayload(payload, "whsec_test", now.Add(-4*time.Minute))

	if err := VerifySignature(payload, header, "whsec_test", now); err != nil {
		t.Fatalf("unexpected error inside tolerance: %v", err)
	}
}

func TestVerifySignatureMalformedHeader(t *testing.T) {
	cases := []string{
		"",
		"v1=deadbeef",
		"t=12345",
		"t=notanumber,v1=deadbeef",
	}
	for _, header := range cases {
		if err := VerifySignature([]byte(`{}`), header, "whsec_test", time.Now()); err == nil {
			t.Fatalf("header %q: expected error", header)
		}
	}
}

func TestPhasesForPackage(t *testing.T) {
	cases := []struct {
		pkg  string
		want []int
	}{
		{types.PackagePublishing, []int{types.PhasePublishing}},
		{types.PackageMarketing, []int{types.PhaseMarketing}},
		{types.PackageComplete, []int{types.PhasePublishing, types.PhaseMarketing}},
		{"unknown", nil},
	}
	for _, tc := range cases {
		got := PhasesForPackage(tc.pkg)
		if len(got) != len(tc.want) {
			t.Fatalf("%q: want=%v got=%v", tc.pkg, tc.want, got)
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Fatalf("%q: want=%v got=%v", tc.pkg, tc.want, got)
			}
		}
	}
}

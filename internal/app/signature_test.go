package app

import (
	"strings"
	"testing"
)

func TestAppendSignatureWhenMissing(t *testing.T) {
	body := "Hello,\n\nWe would like to discuss pricing for Q4.\n"
	signed := appendSignatureIfMissing(body, "Nicolas Salapete", "CEO at SERICA")

	if !strings.HasSuffix(signed, "Best regards,\nNicolas Salapete\nCEO at SERICA") {
		t.Fatalf("signature not appended:\n%s", signed)
	}
	if !strings.Contains(signed, "discuss pricing") {
		t.Fatalf("body lost:\n%s", signed)
	}
}

func TestExistingSignOffIsKept(t *testing.T) {
	bodies := []string{
		"Hello,\n\nBest regards,\nSomeone Else",
		"Hello,\n\nSincerely,\nSomeone Else",
		"Hello,\n\nregards,\nSomeone Else",
		"Hello,\n\nTHANK YOU,\nSomeone Else",
	}
	for _, body := range bodies {
		signed := appendSignatureIfMissing(body, "Nicolas Salapete", "CEO at SERICA")
		if signed != body {
			t.Fatalf("body with sign-off was modified:\n%s", signed)
		}
	}
}

func TestEmptyBodyGetsBareSignature(t *testing.T) {
	signed := appendSignatureIfMissing("", "Nicolas Salapete", "CEO at SERICA")
	if signed != "Best regards,\nNicolas Salapete\nCEO at SERICA" {
		t.Fatalf("unexpected signature for empty body:\n%s", signed)
	}
}

func TestTrailingWhitespaceTrimmedBeforeSignature(t *testing.T) {
	signed := appendSignatureIfMissing("Hello\n\n\n", "Nicolas Salapete", "CEO at SERICA")
	if !strings.HasPrefix(signed, "Hello\n\nBest regards,") {
		t.Fatalf("whitespace not normalized:\n%s", signed)
	}
}

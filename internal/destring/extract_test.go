package destring

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestExtractBinary(t *testing.T) {
	prefix := strings.Repeat("var scaffold = 'noise';\n", 200)
	suffix := "\n// trailing vendor comment " + strings.Repeat("x", 500)
	artifact := prefix + `loader.load("data:application/octet-stream;base64,QUJD");` + suffix

	binary, err := ExtractBinary(artifact)
	if err != nil {
		t.Fatalf("ExtractBinary failed: %v", err)
	}
	if !bytes.Equal(binary, []byte("ABC")) {
		t.Errorf("binary = %q, want ABC", binary)
	}
}

func TestExtractBinaryNoMarker(t *testing.T) {
	_, err := ExtractBinary("var scaffold = 'no payload here';")
	if !errors.Is(err, ErrPayloadNotFound) {
		t.Fatalf("error = %v, want ErrPayloadNotFound", err)
	}
}

func TestExtractBinaryEmptyPayload(t *testing.T) {
	// A marker whose base64 decodes to nothing is vendor drift, not a
	// valid zero-byte binary.
	_, err := ExtractBinary(`x("data:application/octet-stream;base64,====");`)
	if !errors.Is(err, ErrPayloadNotFound) {
		t.Fatalf("error = %v, want ErrPayloadNotFound", err)
	}
}

func TestPatchReadyHook(t *testing.T) {
	patched, err := PatchReadyHook("var Decoder = { onReady(){} };")
	if err != nil {
		t.Fatalf("PatchReadyHook failed: %v", err)
	}
	if !strings.Contains(patched, readyBinding+"();") {
		t.Errorf("patched text %q does not invoke the ready binding", patched)
	}
}

func TestPatchReadyHookMissing(t *testing.T) {
	_, err := PatchReadyHook("var Decoder = { onLoaded(){} };")
	if !errors.Is(err, ErrHookNotFound) {
		t.Fatalf("error = %v, want ErrHookNotFound", err)
	}
}

package engine

import (
	"encoding/binary"
	"strings"
	"testing"
)

// buildPE constructs a minimal header that passes the PE checks: a DOS
// header pointing at a PE signature, with the given COFF characteristics.
func buildPE(t *testing.T, size int, characteristics uint16) []byte {
	t.Helper()
	if size < 96 {
		t.Fatalf("buildPE size %d too small", size)
	}

	header := make([]byte, size)
	copy(header, "MZ")
	binary.LittleEndian.PutUint32(header[60:64], 64)
	copy(header[64:], "PE\x00\x00")
	binary.LittleEndian.PutUint16(header[86:88], characteristics)
	copy(header[96:], dosStubMessage)
	return header
}

func TestIsPEFile(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   bool
	}{
		{"valid", buildPE(t, 256, 0), true},
		{"too short", []byte("MZ"), false},
		{"not MZ", make([]byte, 128), false},
		{"text", []byte(strings.Repeat("hello ", 32)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isPEFile(tt.header); got != tt.want {
				t.Errorf("isPEFile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsPEFileOffsetOutOfRange(t *testing.T) {
	header := make([]byte, 128)
	copy(header, "MZ")
	binary.LittleEndian.PutUint32(header[60:64], 0xFFFFFFF0)

	if isPEFile(header) {
		t.Error("isPEFile() accepted an out-of-range PE offset")
	}
}

func TestAnalyzePECharacteristics(t *testing.T) {
	header := buildPE(t, 256, peIsDLL|peRelocsStripped)

	score, findings := analyzePE(header)
	if score != 10 {
		t.Errorf("score = %d, want 10", score)
	}

	joined := strings.Join(findings, "; ")
	if !strings.Contains(joined, "DLL file detected") {
		t.Errorf("missing DLL finding in %q", joined)
	}
	if !strings.Contains(joined, "No relocation info") {
		t.Errorf("missing relocation finding in %q", joined)
	}
}

func TestAnalyzePEPackerSection(t *testing.T) {
	header := buildPE(t, 256, 0)
	copy(header[200:], "UPX0")

	score, findings := analyzePE(header)
	if score != 15 {
		t.Errorf("score = %d, want 15", score)
	}
	if len(findings) != 1 || !strings.Contains(findings[0], "UPX0") {
		t.Errorf("findings = %v", findings)
	}
}

func TestAnalyzePEEmbeddedExecutable(t *testing.T) {
	header := buildPE(t, 1024, 0)
	// Drop the DOS stub text and plant a second MZ past the stub region.
	for i := 96; i < 96+len(dosStubMessage); i++ {
		header[i] = 0
	}
	copy(header[700:], "MZ")

	score, findings := analyzePE(header)
	if score != 10 {
		t.Errorf("score = %d, want 10", score)
	}
	if len(findings) != 1 || findings[0] != "Possible embedded executable" {
		t.Errorf("findings = %v", findings)
	}
}

func TestAnalyzePENormalStub(t *testing.T) {
	// With the standard stub message present, an extra MZ is not scored.
	header := buildPE(t, 1024, 0)
	copy(header[700:], "MZ")

	score, _ := analyzePE(header)
	if score != 0 {
		t.Errorf("score = %d, want 0", score)
	}
}

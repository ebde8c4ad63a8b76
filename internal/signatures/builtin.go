package signatures

import (
	"regexp"

	"github.com/LinkyJayy/Sentry-Antivirus/pkg/models"
)

// Built-in signatures shipped with the engine. This is a demonstration set,
// not real-world coverage; a production database would have millions of
// entries.
var builtinHashes = []models.SignatureEntry{
	{
		SHA256:      "275a021bbfb6489e54d471899f7db9d1663fc695ec2fe2a2c4538aabf651fd0f",
		Name:        "EICAR-Test-File",
		Level:       models.LevelLow,
		Description: "EICAR antivirus test file - not a real threat",
	},
	{
		SHA256:      "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Name:        "Empty.File.Suspicion",
		Level:       models.LevelLow,
		Description: "Empty file - commonly used as placeholder by malware",
	},
}

// Built-in pattern rules, checked in order. First match wins.
var builtinPatterns = []models.PatternRule{
	{
		Name:        "EICAR-Test-Pattern",
		Level:       models.LevelLow,
		Description: "EICAR standard antivirus test pattern",
		Literal:     []byte(`X5O!P%@AP[4\PZX54(P^)7CC)7}$EICAR-STANDARD-ANTIVIRUS-TEST-FILE!$H+H*`),
	},
	{
		Name:        "Suspicious.PowerShell.Download",
		Level:       models.LevelMedium,
		Description: "PowerShell script downloading executable files",
		Regex:       regexp.MustCompile(`(?i)(invoke-webrequest|wget|curl).*(-outfile|-o)\s*["']?[\w:\\/.]+\.exe`),
	},
	{
		Name:        "Suspicious.Base64.Payload",
		Level:       models.LevelHigh,
		Description: "Encoded PowerShell command - possible obfuscated malware",
		Regex:       regexp.MustCompile(`(?i)powershell.*-e(nc(odedcommand)?)?.*[A-Za-z0-9+/=]{100,}`),
	},
	{
		Name:        "Suspicious.Registry.Run",
		Level:       models.LevelMedium,
		Description: "Attempts to add registry run key for persistence",
		Regex:       regexp.MustCompile(`(?i)reg\s+add.*\\(run|runonce)`),
	},
	{
		Name:        "Suspicious.Disable.Security",
		Level:       models.LevelHigh,
		Description: "Attempts to disable Windows security features",
		Regex:       regexp.MustCompile(`(?i)(disable|stop).*windows\s*(defender|firewall|security)`),
	},
	{
		Name:        "Suspicious.Shadow.Delete",
		Level:       models.LevelCritical,
		Description: "Volume shadow copy deletion - ransomware indicator",
		Regex:       regexp.MustCompile(`(?i)vssadmin.*delete\s*shadows`),
	},
	{
		Name:        "Suspicious.BCDEdit.NoRecovery",
		Level:       models.LevelCritical,
		Description: "Disabling recovery mode - ransomware indicator",
		Regex:       regexp.MustCompile(`(?i)bcdedit.*/set.*recoveryenabled.*no`),
	},
	{
		Name:        "Trojan.Generic.Shellcode",
		Level:       models.LevelCritical,
		Description: "Common shellcode pattern detected",
		Literal:     []byte{0xfc, 0xe8, 0x82, 0x00, 0x00, 0x00, 0x60, 0x89, 0xe5},
	},
	{
		Name:        "Suspicious.Mimikatz.Strings",
		Level:       models.LevelCritical,
		Description: "Mimikatz-related strings detected - credential theft tool",
		Regex:       regexp.MustCompile(`(?i)(sekurlsa|kerberos|wdigest|logonpasswords)`),
	},
	{
		Name:        "Suspicious.Keylogger.Pattern",
		Level:       models.LevelHigh,
		Description: "Potential keylogger activity detected",
		Regex:       regexp.MustCompile(`(?i)(getkeystate|getasynckeystate|setwindowshook).*log`),
	},
}

package engine

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/LinkyJayy/Sentry-Antivirus/pkg/models"
)

const (
	// DefaultThreshold is the minimum heuristic score that flags a file as
	// suspicious.
	DefaultThreshold = 50

	// entropyThreshold is the Shannon entropy above which content is treated
	// as packed or encrypted.
	entropyThreshold = 7.2

	heuristicThreatName = "Heuristic.Suspicious.Gen"
)

// stringSignal is one suspicious-content indicator with its score weight.
type stringSignal struct {
	re          *regexp.Regexp
	description string
	points      int
}

var suspiciousStrings = []stringSignal{
	// Network
	{regexp.MustCompile(`(?i)http[s]?://\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`), "Hardcoded IP address", 10},
	{regexp.MustCompile(`(?i)(tor2web|onion)`), "Tor network reference", 15},

	// System manipulation
	{regexp.MustCompile(`(?i)(createremotethread|virtualallocex|writeprocessmemory)`), "Process injection APIs", 25},
	{regexp.MustCompile(`(?i)(ntcreatethreadex|rtlcreateuserthread)`), "Low-level thread creation", 20},
	{regexp.MustCompile(`(?i)setwindowshookex`), "Keyboard/mouse hooking", 15},

	// Anti-analysis
	{regexp.MustCompile(`(?i)(isdebuggerpresent|checkremotedebuggerpresent)`), "Anti-debugging", 20},
	{regexp.MustCompile(`(?i)(vmware|virtualbox|qemu|vbox)`), "VM detection", 15},
	{regexp.MustCompile(`(?i)(sandboxie|wireshark|procmon|processmonitor)`), "Analysis tool detection", 20},

	// Persistence
	{regexp.MustCompile(`(?i)schtasks.*/create`), "Scheduled task creation", 15},
	{regexp.MustCompile(`(?i)(currentversion\\run|currentversion\\runonce)`), "Registry run key", 15},

	// Data exfiltration
	{regexp.MustCompile(`(?i)(password|passwd|credential|login).*=`), "Credential harvesting", 15},
	{regexp.MustCompile(`(?i)(credit.*card|ssn|social.*security)`), "Sensitive data keywords", 10},

	// Crypto/ransomware
	{regexp.MustCompile(`(?i)(encrypt|decrypt|aes|rsa|cipher)`), "Cryptographic operations", 10},
	{regexp.MustCompile(`(?i)(bitcoin|btc|monero|xmr|wallet)`), "Cryptocurrency reference", 15},
	{regexp.MustCompile(`(?i)your\s*files?\s*(have\s*been|are)\s*encrypted`), "Ransomware message", 30},
}

var (
	rePSEncoded   = regexp.MustCompile(`(?i)-e(nc(odedcommand)?)?`)
	rePSDownload  = regexp.MustCompile(`(?i)(downloadstring|downloadfile|invoke-expression|iex)`)
	rePSBypass    = regexp.MustCompile(`(?i)(bypass|unrestricted|hidden)`)
	reBatchSubstr = regexp.MustCompile(`%[^%]+:~\d+,\d+%`)
	reVBScript    = regexp.MustCompile(`(?i)(wscript\.shell|createobject|execute)`)
	reJSDynamic   = regexp.MustCompile(`(?i)(eval\s*\(|new\s+function|activexobject)`)
)

// Expected leading magic bytes per extension. Extensions absent from this
// table are never checked for a mismatch.
var magicTable = map[string][][]byte{
	".exe":  {[]byte("MZ")},
	".dll":  {[]byte("MZ")},
	".pdf":  {[]byte("%PDF")},
	".zip":  {{0x50, 0x4b, 0x03, 0x04}, {0x50, 0x4b, 0x05, 0x06}},
	".rar":  {[]byte("Rar!")},
	".7z":   {{0x37, 0x7a, 0xbc, 0xaf, 0x27, 0x1c}},
	".png":  {{0x89, 0x50, 0x4e, 0x47}},
	".jpg":  {{0xff, 0xd8, 0xff}},
	".gif":  {[]byte("GIF87a"), []byte("GIF89a")},
	".doc":  {{0xd0, 0xcf, 0x11, 0xe0}},
	".docx": {{0x50, 0x4b, 0x03, 0x04}},
}

// Verdict is the outcome of heuristic analysis for one file.
type Verdict struct {
	Suspicious  bool
	Score       int
	Level       models.ThreatLevel
	Findings    []string
	Description string
}

// Analyzer scores file headers against behavioral indicators. The score
// threshold may be changed at runtime; everything else is immutable.
type Analyzer struct {
	threshold atomic.Int32
}

// NewAnalyzer creates an analyzer with the default threshold.
func NewAnalyzer() *Analyzer {
	a := &Analyzer{}
	a.threshold.Store(DefaultThreshold)
	return a
}

// SetThreshold sets the minimum score that flags a file.
func (a *Analyzer) SetThreshold(threshold int) {
	a.threshold.Store(int32(threshold))
}

// Threshold returns the current flagging threshold.
func (a *Analyzer) Threshold() int {
	return int(a.threshold.Load())
}

// Analyze scores the header of one file. Short or empty input degrades to a
// clean verdict, never an error.
func (a *Analyzer) Analyze(filePath string, header []byte) Verdict {
	score := 0
	var findings []string

	if points, finding := checkExtensionMismatch(filePath, header); points > 0 {
		score += points
		findings = append(findings, finding)
	}

	if isPEFile(header) {
		points, peFindings := analyzePE(header)
		score += points
		findings = append(findings, peFindings...)
	}

	if entropy := CalculateEntropy(header); entropy > entropyThreshold {
		score += 20
		findings = append(findings, fmt.Sprintf("High entropy (%.2f) - possible packing/encryption", entropy))
	}

	for _, signal := range suspiciousStrings {
		if signal.re.Match(header) {
			score += signal.points
			findings = append(findings, signal.description)
		}
	}

	points, scriptFindings := checkScriptThreats(filePath, header)
	score += points
	findings = append(findings, scriptFindings...)

	verdict := Verdict{
		Suspicious: score >= a.Threshold(),
		Score:      score,
		Level:      levelForScore(score),
		Findings:   findings,
	}
	if len(findings) > 0 {
		verdict.Description = strings.Join(findings, "; ")
	} else {
		verdict.Description = "No suspicious indicators"
	}
	return verdict
}

// checkExtensionMismatch compares the file extension against the leading
// magic bytes. An executable hiding behind a document or archive extension
// scores much higher than a merely invalid executable.
func checkExtensionMismatch(filePath string, header []byte) (int, string) {
	ext := strings.ToLower(filepath.Ext(filePath))
	expected, ok := magicTable[ext]
	if !ok {
		return 0, ""
	}

	for _, magic := range expected {
		if bytes.HasPrefix(header, magic) {
			return 0, ""
		}
	}
	if len(header) <= 2 {
		return 0, ""
	}

	if bytes.HasPrefix(header, []byte("MZ")) && ext != ".exe" && ext != ".dll" && ext != ".scr" && ext != ".com" {
		return 30, fmt.Sprintf("Executable disguised as %s file", ext)
	}
	if ext == ".exe" || ext == ".dll" {
		return 15, fmt.Sprintf("File extension mismatch - not a valid %s", ext)
	}
	return 0, ""
}

// checkScriptThreats applies script-specific indicators selected by file
// extension.
func checkScriptThreats(filePath string, header []byte) (int, []string) {
	score := 0
	var findings []string
	ext := strings.ToLower(filepath.Ext(filePath))

	// PowerShell, by extension or by content
	if ext == ".ps1" || ext == ".psm1" || ext == ".psd1" ||
		bytes.Contains(bytes.ToLower(header), []byte("powershell")) {
		if rePSEncoded.Match(header) {
			score += 20
			findings = append(findings, "Encoded PowerShell command")
		}
		if rePSDownload.Match(header) {
			score += 25
			findings = append(findings, "Download and execute pattern")
		}
		if rePSBypass.Match(header) {
			score += 15
			findings = append(findings, "Execution policy bypass attempt")
		}
	}

	if ext == ".bat" || ext == ".cmd" {
		if bytes.Count(header, []byte("^")) > 10 {
			score += 15
			findings = append(findings, "Heavy caret obfuscation in batch file")
		}
		if reBatchSubstr.Match(header) {
			score += 15
			findings = append(findings, "Variable substring obfuscation")
		}
	}

	if ext == ".vbs" || ext == ".vbe" {
		if reVBScript.Match(header) {
			score += 15
			findings = append(findings, "Script execution via WScript")
		}
	}

	if ext == ".js" || ext == ".jse" {
		if reJSDynamic.Match(header) {
			score += 15
			findings = append(findings, "Dynamic code execution in JavaScript")
		}
	}

	return score, findings
}

// levelForScore maps a heuristic score to a threat level.
func levelForScore(score int) models.ThreatLevel {
	switch {
	case score >= 80:
		return models.LevelCritical
	case score >= 60:
		return models.LevelHigh
	case score >= 40:
		return models.LevelMedium
	case score >= 20:
		return models.LevelLow
	default:
		return models.LevelClean
	}
}

package engine

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// COFF characteristics flags of interest.
const (
	peRelocsStripped = 0x0001
	peIsDLL          = 0x2000
)

var dosStubMessage = []byte("This program cannot be run in DOS mode")

// Section names left behind by common packers.
var packerSections = [][]byte{
	[]byte(".UPX"),
	[]byte(".aspack"),
	[]byte(".adata"),
	[]byte("UPX0"),
	[]byte("UPX1"),
	[]byte(".nsp"),
}

// isPEFile reports whether header starts a Portable Executable image.
// The PE header offset is read from bytes 60..63 of the DOS header; the
// offset is attacker-controlled, so every access is bounds-checked.
func isPEFile(header []byte) bool {
	if len(header) < 64 {
		return false
	}
	if !bytes.HasPrefix(header, []byte("MZ")) {
		return false
	}

	peOffset := binary.LittleEndian.Uint32(header[60:64])
	if int64(peOffset)+4 > int64(len(header)) {
		return false
	}
	return bytes.Equal(header[peOffset:peOffset+4], []byte("PE\x00\x00"))
}

// analyzePE scores PE-specific indicators. Call only after isPEFile
// returned true.
func analyzePE(header []byte) (int, []string) {
	score := 0
	var findings []string

	peOffset := int(binary.LittleEndian.Uint32(header[60:64]))
	if peOffset+24 <= len(header) {
		characteristics := binary.LittleEndian.Uint16(header[peOffset+22 : peOffset+24])

		if characteristics&peIsDLL != 0 {
			findings = append(findings, "DLL file detected")
		}
		if characteristics&peRelocsStripped != 0 {
			score += 10
			findings = append(findings, "No relocation info (common in packed malware)")
		}
	}

	for _, section := range packerSections {
		if bytes.Contains(header, section) {
			score += 15
			findings = append(findings, fmt.Sprintf("Suspicious section name: %s", section))
		}
	}

	// An extra MZ past the DOS stub region suggests an embedded payload,
	// unless the normal stub message explains the header layout.
	if !bytes.Contains(header, dosStubMessage) && len(header) > 512 && bytes.Contains(header[512:], []byte("MZ")) {
		score += 10
		findings = append(findings, "Possible embedded executable")
	}

	return score, findings
}

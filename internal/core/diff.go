package core

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	BinarySampleSize   = 8192 // Bytes to sample for text/binary detection
	BinaryThresholdPct = 10   // Max % non-printable chars for text
)

// IsText determines if data is likely text.
//
// Detection heuristic (in order):
//  1. Null bytes present → binary
//  2. Invalid UTF-8 → binary
//  3. >10% non-printable control chars → binary
func IsText(data []byte) bool {
	if len(data) == 0 {
		return true
	}

	if bytes.IndexByte(data, 0) != -1 {
		return false
	}

	sample := data
	if len(sample) > BinarySampleSize {
		sample = sample[:BinarySampleSize]
	}

	if !utf8.Valid(sample) {
		return false
	}

	nonPrintable := 0
	for _, b := range sample {
		// Allow common whitespace: tab, newline, carriage return
		if (b < 32 && b != 9 && b != 10 && b != 13) || b == 127 {
			nonPrintable++
		}
	}

	return nonPrintable <= len(sample)*BinaryThresholdPct/100
}

// GenerateUnifiedDiff generates a unified diff from the stored text of an
// entry to a local file. Returns an empty string if they are identical.
func GenerateUnifiedDiff(name, localPath string, stored, local []byte) (string, error) {
	if bytes.Equal(stored, local) {
		return "", nil
	}

	if !IsText(stored) || !IsText(local) {
		return fmt.Sprintf("Binary content of %s and %s differs\n", name, localPath), nil
	}

	dmp := diffmatchpatch.New()

	// Line-mode diff for better output
	storedStr, localStr := string(stored), string(local)
	a, b, lineArray := dmp.DiffLinesToChars(storedStr, localStr)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	patches := dmp.PatchMake(storedStr, diffs)
	if len(patches) == 0 {
		return "", nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("--- lockbox/%s\n", name))
	result.WriteString(fmt.Sprintf("+++ %s\n", localPath))
	result.WriteString(dmp.PatchToText(patches))

	return result.String(), nil
}

package textlock

import "unicode/utf8"

const maxASCII = 0x7f

// validateASCII returns the bytes of text if every character is ASCII
func validateASCII(op, text string) ([]byte, error) {
	for i := 0; i < len(text); i++ {
		if text[i] > maxASCII {
			r, _ := utf8.DecodeRuneInString(text[i:])
			return nil, &EncodingError{Op: op, Offset: i, Char: r}
		}
	}
	return []byte(text), nil
}

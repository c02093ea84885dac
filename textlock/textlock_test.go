package textlock

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"
)

// fastEngine keeps grid tests quick; the format is the same at any count.
func fastEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(WithIterations(8))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		password string
	}{
		{"simple", "hello", "password"},
		{"empty", "", "emptypass"},
		{"repeating", "aaaaaaa", "repeating"},
		{"special", "!@#$%^&*()_+-=[]{}|;':\",.<>?/", "specialchars"},
		{"long text", strings.Repeat("a", 10000), "longpassword"},
		{"long password", "secure text", strings.Repeat("p", 1000)},
		{"empty password", "secure text", ""},
		{"control chars", "\x00\x01\t\n\r\x7f", "ctl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locked, err := Lock(tt.text, tt.password)
			if err != nil {
				t.Fatalf("Lock failed: %v", err)
			}
			got, err := Unlock(locked, tt.password)
			if err != nil {
				t.Fatalf("Unlock failed: %v", err)
			}
			if got != tt.text {
				t.Errorf("round trip mismatch: got %q, want %q", got, tt.text)
			}
		})
	}
}

func TestRoundTripGrid(t *testing.T) {
	e := fastEngine(t)
	rng := rand.New(rand.NewSource(1))

	randomASCII := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = byte(rng.Intn(128))
		}
		return string(b)
	}

	for _, n := range []int{0, 1, 10, 100, 1000, 10000} {
		text := randomASCII(n)
		password := randomASCII(1 + rng.Intn(64))
		locked, err := e.Lock(text, password)
		if err != nil {
			t.Fatalf("len %d: Lock failed: %v", n, err)
		}
		got, err := e.Unlock(locked, password)
		if err != nil {
			t.Fatalf("len %d: Unlock failed: %v", n, err)
		}
		if got != text {
			t.Errorf("len %d: round trip mismatch", n)
		}
	}

	for pl := 1; pl <= 1000; pl++ {
		text := randomASCII(rng.Intn(50))
		password := randomASCII(pl)
		locked, err := e.Lock(text, password)
		if err != nil {
			t.Fatalf("password len %d: Lock failed: %v", pl, err)
		}
		got, err := e.Unlock(locked, password)
		if err != nil {
			t.Fatalf("password len %d: Unlock failed: %v", pl, err)
		}
		if got != text {
			t.Fatalf("password len %d: round trip mismatch", pl)
		}
	}
}

func TestWrongPassword(t *testing.T) {
	locked, err := Lock("secure text", "correctpassword")
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}

	for _, wrong := range []string{"wrongpassword", "", "correctpassword ", "Correctpassword"} {
		got, err := Unlock(locked, wrong)
		if !errors.Is(err, ErrWrongPasswordOrCorruptData) {
			t.Errorf("password %q: expected ErrWrongPasswordOrCorruptData, got %v", wrong, err)
		}
		if got != "" {
			t.Errorf("password %q: expected no text, got %q", wrong, got)
		}
	}
}

func TestWrongPasswordEmptyText(t *testing.T) {
	locked, err := Lock("", "emptypass")
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	if _, err := Unlock(locked, "otherpass"); !errors.Is(err, ErrWrongPasswordOrCorruptData) {
		t.Errorf("expected ErrWrongPasswordOrCorruptData, got %v", err)
	}
}

func TestNonASCIIRejected(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		offset int
		char   rune
	}{
		{"emoji", "😀🌍📚✨", 0, '😀'},
		{"chinese", "abc中文", 3, '中'},
		{"cyrillic", "привет", 0, 'п'},
		{"accented", "café", 3, 'é'},
		{"gothic", strings.Repeat("𐍈", 1000), 0, '𐍈'},
		{"invalid utf8", "ok\xff", 2, '�'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locked, err := Lock(tt.text, "unicode")
			if !errors.Is(err, ErrEncoding) {
				t.Fatalf("expected ErrEncoding, got %v", err)
			}
			if locked != "" {
				t.Errorf("expected no output, got %q", locked)
			}

			var encErr *EncodingError
			if !errors.As(err, &encErr) {
				t.Fatalf("expected *EncodingError, got %T", err)
			}
			if encErr.Op != "lock" {
				t.Errorf("Op: got %q, want lock", encErr.Op)
			}
			if encErr.Offset != tt.offset {
				t.Errorf("Offset: got %d, want %d", encErr.Offset, tt.offset)
			}
			if encErr.Char != tt.char {
				t.Errorf("Char: got %q, want %q", encErr.Char, tt.char)
			}
		})
	}
}

func TestDeterministic(t *testing.T) {
	a, err := Lock("hello", "password")
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	b, err := Lock("hello", "password")
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	if a != b {
		t.Errorf("expected identical locked values, got %q and %q", a, b)
	}
}

func TestLockedValueIsPrintable(t *testing.T) {
	locked, err := Lock(strings.Repeat("\x00", 300), "pw")
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	for i, c := range locked {
		ok := c == '-' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !ok {
			t.Fatalf("character %q at %d is outside the base64url alphabet", c, i)
		}
	}
}

func TestEmptyTextIsTagOnly(t *testing.T) {
	locked, err := Lock("", "emptypass")
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	raw, err := encoding.DecodeString(locked)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(raw) != overhead {
		t.Errorf("expected %d bytes, got %d", overhead, len(raw))
	}
}

func TestRepeatingTextHasNoShortCycle(t *testing.T) {
	e := fastEngine(t)
	locked, err := e.Lock(strings.Repeat("a", 4096), "repeating")
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	s, err := decode(locked)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	// No 32-byte block of ciphertext may repeat another.
	seen := make(map[string]bool)
	for off := 0; off+32 <= len(s.cipher); off += 32 {
		block := string(s.cipher[off : off+32])
		if seen[block] {
			t.Fatalf("ciphertext block at %d repeats", off)
		}
		seen[block] = true
	}
}

func TestCorruptionDetected(t *testing.T) {
	e := fastEngine(t)
	locked, err := e.Lock("the quick brown fox jumps over the lazy dog", "password")
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}

	// Skip the header characters; they are checked in TestMalformedHeader.
	for i := 7; i < len(locked); i++ {
		b := []byte(locked)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}

		got, err := e.Unlock(string(b), "password")
		if err == nil {
			t.Fatalf("mutation at %d was accepted, got %q", i, got)
		}
		if !errors.Is(err, ErrWrongPasswordOrCorruptData) && !errors.Is(err, ErrMalformedLockedValue) {
			t.Fatalf("mutation at %d: unexpected error %v", i, err)
		}
	}
}

func TestTruncationDetected(t *testing.T) {
	e := fastEngine(t)
	locked, err := e.Lock("some text worth protecting", "password")
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	for n := 0; n < len(locked); n++ {
		if _, err := e.Unlock(locked[:n], "password"); err == nil {
			t.Fatalf("truncation to %d characters was accepted", n)
		}
	}
}

func TestMalformed(t *testing.T) {
	valid, err := Lock("hello", "password")
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}

	tests := []struct {
		name   string
		locked string
	}{
		{"empty", ""},
		{"bad alphabet", "!!!!" + valid[4:]},
		{"padding", valid + "=="},
		{"standard alphabet", strings.Repeat("+/", 30)},
		{"too short", encoding.EncodeToString(make([]byte, overhead-1))},
		{"line break", valid[:10] + "\n" + valid[10:]},
		{"impossible length", valid + "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unlock(tt.locked, "password"); !errors.Is(err, ErrMalformedLockedValue) {
				t.Errorf("expected ErrMalformedLockedValue, got %v", err)
			}
		})
	}
}

func TestMalformedHeader(t *testing.T) {
	raw := make([]byte, overhead)

	raw[0] = 2
	raw[4] = 1
	if _, err := Unlock(encoding.EncodeToString(raw), "pw"); !errors.Is(err, ErrMalformedLockedValue) {
		t.Errorf("unknown version: expected ErrMalformedLockedValue, got %v", err)
	}

	raw = make([]byte, overhead)
	raw[0] = formatVersion
	if _, err := Unlock(encoding.EncodeToString(raw), "pw"); !errors.Is(err, ErrMalformedLockedValue) {
		t.Errorf("zero iterations: expected ErrMalformedLockedValue, got %v", err)
	}

	raw[1] = 0xff
	if _, err := Unlock(encoding.EncodeToString(raw), "pw"); !errors.Is(err, ErrMalformedLockedValue) {
		t.Errorf("huge iterations: expected ErrMalformedLockedValue, got %v", err)
	}
}

func TestIterationsRecorded(t *testing.T) {
	slow, err := New(WithIterations(100))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	locked, err := slow.Lock("hello", "password")
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}

	s, err := decode(locked)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if s.header.iterations != 100 {
		t.Errorf("header iterations: got %d, want 100", s.header.iterations)
	}

	// Any engine unlocks it, whatever its own count.
	got, err := fastEngine(t).Unlock(locked, "password")
	if err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	if got != "hello" {
		t.Errorf("got %q, want hello", got)
	}

	other, err := slow.Lock("hello", "password")
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	fast, err := fastEngine(t).Lock("hello", "password")
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	if other == fast {
		t.Error("different iteration counts should give different locked values")
	}
}

func TestNewInvalidIterations(t *testing.T) {
	for _, n := range []int{0, -1, 1<<24 + 1} {
		if _, err := New(WithIterations(n)); !errors.Is(err, ErrInvalidIterations) {
			t.Errorf("iterations %d: expected ErrInvalidIterations, got %v", n, err)
		}
	}
}

func TestConcurrentUse(t *testing.T) {
	e := fastEngine(t)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text := strings.Repeat(string(rune('a'+i%26)), i*10)
			password := strings.Repeat("k", i+1)
			locked, err := e.Lock(text, password)
			if err != nil {
				errs <- err
				return
			}
			got, err := e.Unlock(locked, password)
			if err != nil {
				errs <- err
				return
			}
			if got != text {
				errs <- errors.New("round trip mismatch")
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

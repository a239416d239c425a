package transcriber

import (
	"strings"
	"testing"
)

func TestErrorCategories(t *testing.T) {
	for _, tt := range []struct {
		err  *Error
		want string
	}{
		{errInvalidCredential(), CategoryCredential},
		{errNetwork(), CategoryNetwork},
		{errTimeout(), CategoryNetwork},
		{errRateLimited(), CategoryRateLimit},
		{errServer(500), CategoryGeneral},
		{errMalformed(), CategoryGeneral},
		{errPayloadTooLarge(30_000_000, MaxUploadBytes), CategoryGeneral},
	} {
		if got := tt.err.Category(); got != tt.want {
			t.Errorf("kind %d: category = %q, want %q", tt.err.Kind, got, tt.want)
		}
	}
}

func TestTimeoutAndNetworkShareBucket(t *testing.T) {
	if errTimeout().Category() != errNetwork().Category() {
		t.Error("timeout and network unreachable must share a throttle bucket")
	}
	if errRateLimited().Category() == errNetwork().Category() {
		t.Error("rate limit must have its own throttle bucket")
	}
}

func TestErrorMessages(t *testing.T) {
	if msg := errServer(503).Error(); !strings.Contains(msg, "503") {
		t.Errorf("server error message missing code: %q", msg)
	}
	if msg := errPayloadTooLarge(30_000_000, 25_000_000).Error(); !strings.Contains(msg, "30000000") {
		t.Errorf("payload message missing size: %q", msg)
	}
	if errTimeout().Error() == "" || errNetwork().Error() == "" {
		t.Error("empty user message")
	}
}

func TestErrorTitles(t *testing.T) {
	for _, e := range []*Error{
		errInvalidCredential(), errRateLimited(), errNetwork(),
		errTimeout(), errServer(500), errMalformed(),
		errPayloadTooLarge(1, 1),
	} {
		if e.Title() == "" {
			t.Errorf("kind %d: empty title", e.Kind)
		}
	}
}

package version

import (
	"strings"
	"testing"
)

func TestSummary(t *testing.T) {
	origVersion, origCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = origVersion, origCommit })

	Version, Commit = "dev", "none"
	if got := Summary(); got != "dev" {
		t.Errorf("Summary() = %q, want %q", got, "dev")
	}

	Version, Commit = "1.2.0", "0123456789abcdef"
	if got := Summary(); got != "1.2.0 (0123456)" {
		t.Errorf("Summary() = %q, want %q", got, "1.2.0 (0123456)")
	}

	Version = ""
	if got := Summary(); !strings.HasPrefix(got, "dev") {
		t.Errorf("Summary() with empty version = %q, want dev prefix", got)
	}
}

func TestDetails(t *testing.T) {
	info := Details()
	for _, want := range []string{"chatcal version", "commit:", "built:", "go:", "platform:"} {
		if !strings.Contains(info, want) {
			t.Errorf("Details should contain %q, got: %s", want, info)
		}
	}
}

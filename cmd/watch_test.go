package cmd

import (
	"os"
	"testing"
)

func TestDataSubdir(t *testing.T) {
	want := "/tmp/tt-root" + string(os.PathSeparator) + "data"
	if got := dataSubdir("/tmp/tt-root"); got != want {
		t.Fatalf("dataSubdir = %q, want %q", got, want)
	}
}

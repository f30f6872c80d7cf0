package testutil

import (
	"log"
	"testing"
)

// TestLogger returns a logger that routes through t.Log so output is
// attributed to the running test.
func TestLogger(t *testing.T) *log.Logger {
	return log.New(testWriter{t}, "[test] ", log.LstdFlags)
}

type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

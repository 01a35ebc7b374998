package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestInitLogger_FileAndLevel(t *testing.T) {
	t.Cleanup(func() { InitLogger("", "info") })

	fp := filepath.Join(t.TempDir(), "run.log")
	InitLogger(fp, "debug")
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %v, want debug", logrus.GetLevel())
	}

	logrus.Debug("hello from test")
	data, err := os.ReadFile(fp)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Fatalf("log file does not contain message: %q", data)
	}
}

func TestInitLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	t.Cleanup(func() { InitLogger("", "info") })

	InitLogger("", "chatty")
	if logrus.GetLevel() != logrus.InfoLevel {
		t.Fatalf("level = %v, want info", logrus.GetLevel())
	}
}

package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func benchFile(b *testing.B) string {
	b.Helper()
	var sb strings.Builder
	for i := 0; i < 20000; i++ {
		sb.WriteString("2024-01-01 INFO request served path=/api/v1/items status=200\n")
		if i%500 == 0 {
			sb.WriteString("2024-01-01 ERROR upstream timeout path=/api/v1/items\r\n")
		}
	}
	fp := filepath.Join(b.TempDir(), "app.log")
	if err := os.WriteFile(fp, []byte(sb.String()), 0644); err != nil {
		b.Fatal(err)
	}
	return fp
}

func BenchmarkSearch_Cached(b *testing.B) {
	fp := benchFile(b)
	patterns := []string{`error`, `timeout`}
	s := NewSearcher()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if res := s.SearchFile(fp, patterns, false, true); len(res) == 0 {
			b.Fatal("expected results")
		}
	}
}

func BenchmarkSearch_Recompile(b *testing.B) {
	fp := benchFile(b)
	patterns := []string{`error`, `timeout`}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if res := NewSearcher().SearchFile(fp, patterns, false, true); len(res) == 0 {
			b.Fatal("expected results")
		}
	}
}

func BenchmarkSearch_EarlyReject(b *testing.B) {
	fp := benchFile(b)
	patterns := []string{`panic`, `error`}
	s := NewSearcher()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if res := s.SearchFile(fp, patterns, false, false); len(res) != 0 {
			b.Fatal("expected no results")
		}
	}
}

func BenchmarkLoadPatterns(b *testing.B) {
	dir := b.TempDir()
	fp := filepath.Join(dir, "p.txt")
	var body strings.Builder
	for i := 0; i < 2000; i++ {
		body.WriteString("hello\n")
	}
	body.WriteString("re:^user=\\w+$\n")
	_ = os.WriteFile(fp, []byte(body.String()), 0644)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := LoadPatterns(fp); err != nil {
			b.Fatal(err)
		}
	}
}

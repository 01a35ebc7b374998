package internal

import (
	"reflect"
	"testing"
)

func TestResolvePositions(t *testing.T) {
	cases := []struct {
		name        string
		data        string
		positions   []int
		includeText bool
		want        []LineResult
	}{
		{
			name:        "union of two patterns",
			data:        "foo\nbar baz\nfoo bar\n",
			positions:   []int{0, 12, 4, 16},
			includeText: true,
			want:        []LineResult{{1, "foo"}, {2, "bar baz"}, {3, "foo bar"}},
		},
		{
			name:        "same offset and same line collapse",
			data:        "abc\ndef\n",
			positions:   []int{2, 0, 0, 1, 5},
			includeText: true,
			want:        []LineResult{{1, "abc"}, {2, "def"}},
		},
		{
			name:        "crlf",
			data:        "abc\r\ndef\r\n",
			positions:   []int{5, 0},
			includeText: true,
			want:        []LineResult{{1, "abc"}, {2, "def"}},
		},
		{
			name:        "only one carriage return stripped",
			data:        "ab\r\r\n",
			positions:   []int{0},
			includeText: true,
			want:        []LineResult{{1, "ab\r"}},
		},
		{
			name:        "text suppressed",
			data:        "foo\nbar\n",
			positions:   []int{4, 0},
			includeText: false,
			want:        []LineResult{{1, ""}, {2, ""}},
		},
		{
			name:        "last line without newline",
			data:        "x\n\n\ny",
			positions:   []int{4},
			includeText: true,
			want:        []LineResult{{4, "y"}},
		},
		{
			name:        "match at end of file",
			data:        "a\n",
			positions:   []int{2},
			includeText: true,
			want:        []LineResult{{2, ""}},
		},
		{
			name:        "match on a newline byte belongs to its line",
			data:        "ab\ncd",
			positions:   []int{2},
			includeText: true,
			want:        []LineResult{{1, "ab"}},
		},
		{
			name:        "invalid utf-8 replaced",
			data:        "a\xffb\nok\n",
			positions:   []int{0, 4},
			includeText: true,
			want:        []LineResult{{1, "a\uFFFDb"}, {2, "ok"}},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := resolvePositions([]byte(c.data), c.positions, c.includeText)
			if !reflect.DeepEqual(got, c.want) {
				t.Fatalf("got %+v, want %+v", got, c.want)
			}
		})
	}
}

func TestResolvePositions_StrictlyAscending(t *testing.T) {
	data := []byte("l1\nl2\nl3\nl4\nl5\n")
	got := resolvePositions(data, []int{13, 1, 7, 0, 12, 4, 6}, false)
	for i := 1; i < len(got); i++ {
		if got[i].Line <= got[i-1].Line {
			t.Fatalf("lines not strictly ascending: %+v", got)
		}
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 distinct lines, got %+v", got)
	}
}

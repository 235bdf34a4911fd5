package application_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/codeconvert/internal/application"
)

// strip feeds fragments through a FenceStripper and returns the joined output.
func strip(fragments ...string) string {
	var f application.FenceStripper
	var out strings.Builder
	for _, frag := range fragments {
		out.WriteString(f.Write(frag))
	}
	out.WriteString(f.Flush())
	return out.String()
}

func TestFenceStripper(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
		want      string
	}{
		{
			name:      "no fences",
			fragments: []string{"def f():\n", "    return 1\n"},
			want:      "def f():\n    return 1\n",
		},
		{
			name:      "fence with language tag",
			fragments: []string{"```python\n", "print(1)\n", "```"},
			want:      "print(1)\n",
		},
		{
			name:      "fence marker split across fragments",
			fragments: []string{"`", "``ja", "va\nint x = 1;\n``", "`\n"},
			want:      "int x = 1;\n",
		},
		{
			name:      "fence with CRLF line endings",
			fragments: []string{"```go\r\n", "x := 1\r\n", "```\r\n"},
			want:      "x := 1\r\n",
		},
		{
			name:      "inline backticks are kept",
			fragments: []string{"s := `raw`\n", "``not a fence\n"},
			want:      "s := `raw`\n``not a fence\n",
		},
		{
			name:      "backticks followed by code are kept",
			fragments: []string{"```x = 1; y = 2\n"},
			want:      "```x = 1; y = 2\n",
		},
		{
			name:      "indented fence",
			fragments: []string{"  ```cpp\n", "int main() {}\n", "  ```\n"},
			want:      "int main() {}\n",
		},
		{
			name:      "trailing partial line flushed",
			fragments: []string{"a\n", "``"},
			want:      "a\n``",
		},
		{
			name:      "empty input",
			fragments: nil,
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, strip(tt.fragments...))
		})
	}
}

func TestFenceStripper_ForwardsContentImmediately(t *testing.T) {
	var f application.FenceStripper

	assert.Equal(t, "func main", f.Write("func main"))
	assert.Equal(t, "() {\n", f.Write("() {\n"))
	assert.Empty(t, f.Write("``"), "potential fence prefix is held back")
	assert.Equal(t, "``x", f.Write("x"), "held text is released once it cannot be a fence")
}

func TestFenceStripper_TracksFenceState(t *testing.T) {
	var f application.FenceStripper

	assert.False(t, f.InFence())
	f.Write("```rust\n")
	assert.True(t, f.InFence())
	f.Write("fn main() {}\n```")
	assert.True(t, f.InFence(), "closing marker without newline is still pending")
	assert.Empty(t, f.Flush())
	assert.False(t, f.InFence())
}

package application

import "strings"

type fenceState int

const (
	stateLineStart   fenceState = iota // Nothing of the current line seen yet.
	statePending                       // Current line may still turn out to be a fence marker.
	statePassthrough                   // Current line is content and is forwarded as it arrives.
)

// FenceStripper removes markdown code-fence lines ("```" with an optional
// language tag) from a fragmented text stream. Fence markers split across
// fragments are still recognized: only text that can still become a fence
// line is held back, everything else is returned as soon as it is written.
type FenceStripper struct {
	state   fenceState
	pending strings.Builder
	inFence bool
}

// Write consumes the next fragment and returns the text that can be
// forwarded now. Order is preserved across calls.
func (f *FenceStripper) Write(fragment string) string {
	var out strings.Builder

	for len(fragment) > 0 {
		if f.state == statePassthrough {
			i := strings.IndexByte(fragment, '\n')
			if i < 0 {
				out.WriteString(fragment)
				break
			}
			out.WriteString(fragment[:i+1])
			fragment = fragment[i+1:]
			f.state = stateLineStart
			continue
		}

		i := strings.IndexByte(fragment, '\n')
		if i < 0 {
			f.pending.WriteString(fragment)
			fragment = ""
			if couldBeFence(f.pending.String()) {
				f.state = statePending
				continue
			}
			out.WriteString(f.pending.String())
			f.pending.Reset()
			f.state = statePassthrough
			continue
		}

		f.pending.WriteString(fragment[:i])
		fragment = fragment[i+1:]
		line := f.pending.String()
		f.pending.Reset()
		f.state = stateLineStart

		if isFenceLine(line) {
			f.inFence = !f.inFence
			continue
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}

	return out.String()
}

// Flush returns any held-back text at end of stream, dropping it if it is a
// complete fence marker without a trailing newline.
func (f *FenceStripper) Flush() string {
	line := f.pending.String()
	f.pending.Reset()
	f.state = stateLineStart

	if line == "" {
		return ""
	}
	if isFenceLine(line) {
		f.inFence = !f.inFence
		return ""
	}
	return line
}

// InFence reports whether the stream is currently between an opening and a
// closing fence marker.
func (f *FenceStripper) InFence() bool {
	return f.inFence
}

// isFenceLine reports whether line consists of optional blanks, three or more
// backticks, an optional language tag, and optional trailing blanks.
func isFenceLine(line string) bool {
	t := strings.TrimSpace(line)
	if !strings.HasPrefix(t, "```") {
		return false
	}
	return isLanguageTag(strings.TrimLeft(t, "`"))
}

// couldBeFence reports whether a partial line may still become a fence line
// once more text arrives.
func couldBeFence(partial string) bool {
	t := strings.TrimLeft(partial, " \t")
	if len(t) < 3 {
		return strings.HasPrefix("```", t)
	}
	if !strings.HasPrefix(t, "```") {
		return false
	}
	rest := strings.TrimLeft(t, "`")
	return isLanguageTag(strings.TrimRight(rest, " \t\r"))
}

func isLanguageTag(s string) bool {
	for _, ch := range s {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '_' || ch == '+' || ch == '#' || ch == '.' || ch == '-':
		default:
			return false
		}
	}
	return true
}

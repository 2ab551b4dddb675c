package matcher

// ExtractContext extracts up to window characters before and after a match
// inside a block's text. Returned strings are independent copies. Handles
// block boundaries gracefully (empty at start/end). The matched content
// itself (between start and end) is not duplicated in the context.
func ExtractContext(text string, start, end, window int) (before, after string) {
	if window <= 0 {
		return "", ""
	}
	if start < 0 || end < start || end > len(text) {
		return "", ""
	}

	b := start - window
	if b < 0 {
		b = 0
	}
	a := end + window
	if a > len(text) {
		a = len(text)
	}

	// Clone so stored context does not pin the block text's backing array.
	before = string(append([]byte{}, text[b:start]...))
	after = string(append([]byte{}, text[end:a]...))
	return before, after
}

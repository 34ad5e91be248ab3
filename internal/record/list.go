package record

// prepend inserts v at the front of s.
func prepend[T any](s []T, v T) []T {
	s = append(s, v)
	copy(s[1:], s)
	s[0] = v
	return s
}

// moveToFront places word at the front of words, removing an earlier
// occurrence. It reports whether word was already present.
func moveToFront(words []string, word string) ([]string, bool) {
	for i, w := range words {
		if w != word {
			continue
		}
		copy(words[1:i+1], words[:i])
		words[0] = word
		return words, true
	}
	return prepend(words, word), false
}

// Package text provides utilities for text processing and analysis.
package text

// CountRunes counts the number of Unicode characters (runes) in the given
// text. It correctly handles multi-byte characters including Japanese,
// Chinese and emoji by counting runes instead of bytes.
//
// Examples:
//
//	CountRunes("hello")     // returns 5 (ASCII text)
//	CountRunes("こんにちは")  // returns 5 (Japanese text)
//	CountRunes("hello世界")  // returns 7 (mixed text)
//	CountRunes("")          // returns 0 (empty string)
func CountRunes(text string) int {
	return len([]rune(text))
}

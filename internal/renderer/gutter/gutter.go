// Package gutter formats the line-number column drawn left of the text.
//
// The gutter is sized in cells: the digits of the largest line number plus
// one cell of padding on each side. Both renderers draw the labels produced
// here, so the software and atlas paths number lines identically.
package gutter

import "strconv"

// Cells returns the gutter width in cells for a document of lineCount
// lines using at least minDigits digits. A non-positive minDigits disables
// the gutter.
func Cells(lineCount, minDigits int) int {
	if minDigits <= 0 {
		return 0
	}
	return Digits(lineCount, minDigits) + 2
}

// Digits returns how many digits the last line number of a document of
// lineCount lines takes, but at least minDigits.
func Digits(lineCount, minDigits int) int {
	return max(minDigits, len(strconv.Itoa(max(lineCount, 1))))
}

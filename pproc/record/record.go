package record

import (
	"bufio"
	"bytes"
)

// TagSplitter returns a bufio.SplitFunc that yields complete XML elements of
// the given name, including their tags. Data between elements is skipped.
// The size of a single element is bounded by the scanner buffer.
func TagSplitter(tagName string) bufio.SplitFunc {
	var (
		openTag  = []byte("<" + tagName)
		closeTag = []byte("</" + tagName + ">")
	)
	return func(data []byte, atEOF bool) (advance int, token []byte, err error) {
		start, end := findFirstCompleteTag(data, openTag, closeTag)
		switch {
		case end != -1:
			return end, data[start:end], nil
		case atEOF:
			// trailing garbage or an unterminated element
			return len(data), nil, nil
		case start > 0:
			return start, nil, nil
		case start == -1 && len(data) >= len(openTag):
			// keep a tail, which may be the beginning of an opening tag
			return len(data) - len(openTag) + 1, nil, nil
		}
		return 0, nil, nil
	}
}

func isValidTagTerminator(ch byte) bool {
	switch ch {
	case '>', ' ', '/', '\n', '\t', '\r':
		return true
	}
	return false
}

// indexOpenTag finds the next opening tag at or after i, skipping tags that
// only share a prefix, like <records> for <record>. It returns -1, if there is
// no such tag and -2, if the data ends right after a potential tag.
func indexOpenTag(input []byte, openTag []byte, i int) int {
	for i < len(input) {
		k := bytes.Index(input[i:], openTag)
		if k == -1 {
			return -1
		}
		k += i
		t := k + len(openTag)
		if t == len(input) {
			return -2
		}
		if isValidTagTerminator(input[t]) {
			return k
		}
		i = k + 1
	}
	return -1
}

// findFirstCompleteTag returns the boundaries of the first complete element.
// If an element starts, but does not end in input, end is -1.
func findFirstCompleteTag(input, openTag, closeTag []byte) (start, end int) {
	start = indexOpenTag(input, openTag, 0)
	switch start {
	case -1:
		return -1, -1
	case -2:
		// cannot tell yet, request more data from the last possible position
		return bytes.LastIndex(input, openTag), -1
	}
	openEnd := bytes.IndexByte(input[start:], '>')
	if openEnd == -1 {
		return start, -1
	}
	openEnd += start
	if input[openEnd-1] == '/' {
		return start, openEnd + 1
	}
	var (
		depth = 1
		j     = openEnd + 1
	)
	for depth > 0 {
		nextClose := bytes.Index(input[j:], closeTag)
		if nextClose == -1 {
			return start, -1
		}
		nextClose += j
		nextOpen := indexOpenTag(input[:nextClose], openTag, j)
		if nextOpen >= 0 {
			depth++
			j = nextOpen + len(openTag)
			continue
		}
		depth--
		j = nextClose + len(closeTag)
	}
	return start, j
}

package aggregator

import "strings"

// commonSubstring tracks the longest substring shared by all added strings.
// For every rune offset i of the first sample, ends[i] is the largest end such
// that first[i:ends[i]] occurs in every sample seen so far. Ends only shrink,
// so the total work over a stream is bounded by the first sample's length.
type commonSubstring struct {
	n      int
	first  []rune
	ends   []int
	prefix []rune
	suffix []rune
}

func (c *commonSubstring) add(s string) {
	c.n++
	runes := []rune(s)
	if c.n == 1 {
		c.first = runes
		c.ends = make([]int, len(runes))
		for i := range c.ends {
			c.ends[i] = len(runes)
		}
		c.prefix = runes
		c.suffix = runes
		return
	}
	for i := range c.ends {
		for c.ends[i] > i && !strings.Contains(s, string(c.first[i:c.ends[i]])) {
			c.ends[i]--
		}
	}
	c.prefix = c.prefix[:commonPrefixLen(c.prefix, runes)]
	c.suffix = c.suffix[len(c.suffix)-commonSuffixLen(c.suffix, runes):]
}

// best returns the longest survivor; the earliest offset wins ties.
func (c *commonSubstring) best() string {
	start, length := 0, 0
	for i, end := range c.ends {
		if end-i > length {
			start, length = i, end-i
		}
	}
	if length == 0 {
		return ""
	}
	return string(c.first[start : start+length])
}

func (c *commonSubstring) anchoredStart() bool {
	sub := c.best()
	return sub != "" && strings.HasPrefix(string(c.prefix), sub)
}

func (c *commonSubstring) anchoredEnd() bool {
	sub := c.best()
	return sub != "" && strings.HasSuffix(string(c.suffix), sub)
}

func commonPrefixLen(a, b []rune) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func commonSuffixLen(a, b []rune) int {
	n := 0
	for n < len(a) && n < len(b) && a[len(a)-1-n] == b[len(b)-1-n] {
		n++
	}
	return n
}

// Package scanner locates candidate IP-address substrings in a line of
// text using O(1)-lookahead hint predicates, and hands each candidate to
// internal/ipaddr for a strict parse. Candidates are passed to the parser
// as byte-slice views into the original line, never converted to string,
// so a line in which no hint fires costs no allocation at all. A candidate
// that fails to parse does allocate: internal/ipaddr returns a *ParseError
// holding a copy of the candidate text. Per-line state
// (the Scratch found-address buffer used by full-scan mode) is reused
// across lines by the caller.
//
// There is a single scanning primitive, Scan, that yields every address it
// can parse out of a line; callers choose early-exit or full-scan
// semantics purely by whether their yield callback returns true to stop.
package scanner

import "github.com/netreduce/rgcidr/internal/ipaddr"

// Candidate is one successfully parsed address found in a line.
type Candidate struct {
	IsV4 bool
	V4   uint32
	V6   ipaddr.V6
}

// Scan walks line left to right, calling yield once per successfully
// parsed candidate address. If yield returns true, Scan stops immediately
// (early-exit mode); a yield that always returns false makes Scan collect
// every address in the line (full-scan mode).
func Scan(line []byte, yield func(Candidate) bool) {
	n := len(line)
	p := 0
	for p < n {
		if isDigit(line[p]) && hasDotWithin(line, p, 4) {
			j := extendWhile(line, p, isV4Field)
			if v, err := ipaddr.ParseV4Bytes(line[p:j]); err == nil {
				if yield(Candidate{IsV4: true, V4: v}) {
					return
				}
			}
			p = j
			continue
		}
		if ipv6HintAt(line, p) {
			j := extendWhile(line, p, isV6Field)
			if boundaryOK(line, j) {
				if v6, err := ipaddr.ParseV6Bytes(line[p:j]); err == nil {
					if yield(Candidate{V6: v6}) {
						return
					}
				}
			}
			p = j
			continue
		}
		p++
	}
}

// ExactAtStart attempts exactly one candidate parse at the first non-blank
// position of line, skipping leading spaces and tabs. IPv4 is attempted
// first; IPv6 is attempted when the first non-space character is ':' or a
// hex digit. No further positions are considered.
func ExactAtStart(line []byte) (Candidate, bool) {
	n := len(line)
	p := 0
	for p < n && (line[p] == ' ' || line[p] == '\t') {
		p++
	}
	if p >= n {
		return Candidate{}, false
	}

	if isDigit(line[p]) {
		j := extendWhile(line, p, isV4Field)
		if v, err := ipaddr.ParseV4Bytes(line[p:j]); err == nil {
			return Candidate{IsV4: true, V4: v}, true
		}
	}
	if line[p] == ':' || isHexDigit(line[p]) {
		j := extendWhile(line, p, isV6Field)
		if boundaryOK(line, j) {
			if v6, err := ipaddr.ParseV6Bytes(line[p:j]); err == nil {
				return Candidate{V6: v6}, true
			}
		}
	}
	return Candidate{}, false
}

// Scratch holds per-line full-scan state, reused across lines to avoid
// per-line allocation beyond growth.
type Scratch struct {
	Found []Candidate
}

// ScanAll fills scratch with every address found in line (full-scan mode).
func ScanAll(line []byte, scratch *Scratch) {
	scratch.Found = scratch.Found[:0]
	Scan(line, func(c Candidate) bool {
		scratch.Found = append(scratch.Found, c)
		return false
	})
}

func extendWhile(line []byte, p int, inSet func(byte) bool) int {
	n := len(line)
	j := p
	for j < n && inSet(line[j]) {
		j++
	}
	return j
}

// boundaryOK implements the IPv6 boundary rule: reject a candidate if the
// character immediately following it is alphabetic but not a hex digit,
// which signals the hex run was broken by extraneous trailing text.
func boundaryOK(line []byte, j int) bool {
	if j >= len(line) {
		return true
	}
	c := line[j]
	if isAlpha(c) && !isHexDigit(c) {
		return false
	}
	return true
}

func hasDotWithin(line []byte, p, lookahead int) bool {
	n := len(line)
	for k := p + 1; k <= p+lookahead && k < n; k++ {
		if line[k] == '.' {
			return true
		}
	}
	return false
}

func ipv6HintAt(line []byte, p int) bool {
	n := len(line)
	if p+1 < n && line[p] == ':' && line[p+1] == ':' {
		return true
	}
	if !isHexDigit(line[p]) {
		return false
	}
	for k := p + 1; k <= p+4 && k < n; k++ {
		if line[k] == ':' {
			return true
		}
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// isV4Field is deliberately tolerant of alphabetic characters: the scanner
// extends through them so an adjacent IPv4-shaped run that happens to
// trail into letters still gets handed to the strict parser (which will
// reject it) rather than silently truncated mid-octet.
func isV4Field(c byte) bool {
	return isDigit(c) || c == '.' || isAlpha(c)
}

func isV6Field(c byte) bool {
	return isHexDigit(c) || c == ':' || c == '.'
}

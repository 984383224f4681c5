// Package pattern compiles the rgcidr pattern grammar (single addresses,
// CIDR blocks, start-end ranges, for both address families) into the
// normalized intervals internal/ipindex builds its index from.
//
// Dispatch looks at a cheap syntactic cue in the token (a colon, a slash,
// a dash) and hands off to one of a small set of leaf parsers, rather
// than running a general-purpose grammar engine over every pattern.
package pattern

import (
	"strconv"
	"strings"

	"github.com/netreduce/rgcidr/internal/ipaddr"
	"github.com/netreduce/rgcidr/internal/ipindex"
)

// Kind tags which surface form a compiled Pattern came from.
type Kind int

const (
	KindV4Single Kind = iota
	KindV4CIDR
	KindV4Range
	KindV6Single
	KindV6CIDR
)

// Pattern is a tagged compiled pattern. Exactly one of V4/V6 is populated,
// selected by Kind's family.
type Pattern struct {
	Kind Kind
	V4   ipindex.IntervalV4
	V6   ipindex.IntervalV6
}

// IsV4 reports whether this pattern belongs to the IPv4 family.
func (p Pattern) IsV4() bool { return p.Kind == KindV4Single || p.Kind == KindV4CIDR || p.Kind == KindV4Range }

// CompileToken compiles a single pattern token (no separators). strict
// enables CIDR-alignment checking (-s).
func CompileToken(token string, strict bool) (Pattern, error) {
	if strings.ContainsRune(token, ':') {
		if strings.ContainsRune(token, '/') {
			return compileCIDR6(token, strict)
		}
		return compileSingle6(token)
	}
	if strings.ContainsRune(token, '/') {
		return compileCIDR4(token, strict)
	}
	if strings.ContainsRune(token, '-') {
		return compileRange4(token)
	}
	return compileSingle4(token)
}

// CompileBatch tokenizes a pattern string on runs of whitespace or commas
// and compiles each token independently.
func CompileBatch(s string, strict bool) ([]Pattern, error) {
	tokens := tokenize(s)
	if len(tokens) == 0 {
		return nil, &ipaddr.ParseError{Kind: ipaddr.InvalidFormat, Input: s}
	}
	out := make([]Pattern, 0, len(tokens))
	for _, tok := range tokens {
		p, err := CompileToken(tok, strict)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ' ', '\t', '\r', '\n', ',':
			return true
		default:
			return false
		}
	})
}

func compileSingle4(token string) (Pattern, error) {
	v, err := ipaddr.ParseV4(token)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{Kind: KindV4Single, V4: ipindex.IntervalV4{Min: v, Max: v}}, nil
}

func compileSingle6(token string) (Pattern, error) {
	v, err := ipaddr.ParseV6(token)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{Kind: KindV6Single, V6: ipindex.IntervalV6{Min: v, Max: v}}, nil
}

func compileRange4(token string) (Pattern, error) {
	parts := strings.SplitN(token, "-", 2)
	if len(parts) != 2 {
		return Pattern{}, &ipaddr.ParseError{Kind: ipaddr.InvalidFormat, Input: token}
	}
	lo, err := ipaddr.ParseV4(strings.TrimSpace(parts[0]))
	if err != nil {
		return Pattern{}, err
	}
	hi, err := ipaddr.ParseV4(strings.TrimSpace(parts[1]))
	if err != nil {
		return Pattern{}, err
	}
	if lo > hi {
		return Pattern{}, &ipaddr.ParseError{Kind: ipaddr.InvalidRange, Input: token}
	}
	return Pattern{Kind: KindV4Range, V4: ipindex.IntervalV4{Min: lo, Max: hi}}, nil
}

func parseMaskBits(s, token string, max int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > max {
		return 0, &ipaddr.ParseError{Kind: ipaddr.InvalidMask, Input: token}
	}
	return n, nil
}

func compileCIDR4(token string, strict bool) (Pattern, error) {
	addrStr, maskStr, ok := strings.Cut(token, "/")
	if !ok {
		return Pattern{}, &ipaddr.ParseError{Kind: ipaddr.InvalidFormat, Input: token}
	}
	addr, err := ipaddr.ParseV4(addrStr)
	if err != nil {
		return Pattern{}, err
	}
	bits, err := parseMaskBits(maskStr, token, 32)
	if err != nil {
		return Pattern{}, err
	}
	mask := maskV4(bits)
	network := addr & mask
	if strict && network != addr {
		return Pattern{}, &ipaddr.ParseError{Kind: ipaddr.MisalignedCidr, Input: token}
	}
	broadcast := addr | ^mask
	return Pattern{Kind: KindV4CIDR, V4: ipindex.IntervalV4{Min: network, Max: broadcast}}, nil
}

func compileCIDR6(token string, strict bool) (Pattern, error) {
	addrStr, maskStr, ok := strings.Cut(token, "/")
	if !ok {
		return Pattern{}, &ipaddr.ParseError{Kind: ipaddr.InvalidFormat, Input: token}
	}
	addr, err := ipaddr.ParseV6(addrStr)
	if err != nil {
		return Pattern{}, err
	}
	bits, err := parseMaskBits(maskStr, token, 128)
	if err != nil {
		return Pattern{}, err
	}
	mask := maskV6(bits)
	network := ipaddr.V6{Hi: addr.Hi & mask.Hi, Lo: addr.Lo & mask.Lo}
	if strict && !network.Equal(addr) {
		return Pattern{}, &ipaddr.ParseError{Kind: ipaddr.MisalignedCidr, Input: token}
	}
	broadcast := ipaddr.V6{Hi: addr.Hi | ^mask.Hi, Lo: addr.Lo | ^mask.Lo}
	return Pattern{Kind: KindV6CIDR, V6: ipindex.IntervalV6{Min: network, Max: broadcast}}, nil
}

func maskV4(bits int) uint32 {
	if bits <= 0 {
		return 0
	}
	if bits >= 32 {
		return ^uint32(0)
	}
	return ^uint32(0) << uint(32-bits)
}

func maskV6(bits int) ipaddr.V6 {
	switch {
	case bits <= 0:
		return ipaddr.V6{}
	case bits >= 128:
		return ipaddr.V6{Hi: ^uint64(0), Lo: ^uint64(0)}
	case bits <= 64:
		return ipaddr.V6{Hi: ^uint64(0) << uint(64-bits), Lo: 0}
	default:
		return ipaddr.V6{Hi: ^uint64(0), Lo: ^uint64(0) << uint(128-bits)}
	}
}

// ToIndexLists splits a compiled pattern slice into the per-family
// interval lists internal/ipindex.Build expects.
func ToIndexLists(patterns []Pattern) (v4 []ipindex.IntervalV4, v6 []ipindex.IntervalV6) {
	for _, p := range patterns {
		if p.IsV4() {
			v4 = append(v4, p.V4)
		} else {
			v6 = append(v6, p.V6)
		}
	}
	return v4, v6
}

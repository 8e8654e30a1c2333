// File: api/nibbles.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Nibbles is a trie path, one 4-bit value per element.
type Nibbles []byte

// NibblesFromBytes expands b into nibbles, high nibble first.
func NibblesFromBytes(b []byte) Nibbles {
	out := make(Nibbles, 0, len(b)*2)
	for _, x := range b {
		out = append(out, x>>4, x&0x0F)
	}
	return out
}

// PackedLen returns the number of bytes Pack writes.
func (n Nibbles) PackedLen() int {
	return (len(n) + 1) / 2
}

// Pack writes nibbles two per byte into dst, high nibble first, and returns
// the number of bytes written. An odd trailing nibble fills the high half.
// Pack stops when dst is full.
func (n Nibbles) Pack(dst []byte) int {
	w := 0
	for i := 0; i < len(n) && w < len(dst); i += 2 {
		b := n[i] << 4
		if i+1 < len(n) {
			b |= n[i+1] & 0x0F
		}
		dst[w] = b
		w++
	}
	return w
}

// HasPrefix reports whether p is a prefix of n.
func (n Nibbles) HasPrefix(p Nibbles) bool {
	if len(p) > len(n) {
		return false
	}
	for i := range p {
		if n[i] != p[i] {
			return false
		}
	}
	return true
}

// CommonPrefixLen returns the length of the longest shared prefix.
func (n Nibbles) CommonPrefixLen(o Nibbles) int {
	i := 0
	for i < len(n) && i < len(o) && n[i] == o[i] {
		i++
	}
	return i
}

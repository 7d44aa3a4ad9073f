package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRank_DescendingByLatest(t *testing.T) {
	s := NewStore()
	d := mustDate(t, "2020-03-10")
	s.Put("AA", d, 500, 0)
	s.Put("AA", d+1, 5, 0) // latest, not max, decides
	s.Put("BB", d, 50, 0)
	s.Put("CC", d, 70, 0)

	ranked := Rank([]Region{{Code: "AA"}, {Code: "BB"}, {Code: "CC"}}, s)
	assert.Equal(t, []string{"CC", "BB", "AA"}, codes(ranked))
}

func TestRank_StableOnTies(t *testing.T) {
	s := NewStore()
	d := mustDate(t, "2020-03-10")
	for _, c := range []string{"MM", "ZZ", "AA", "QQ"} {
		s.Put(c, d, 10, 0)
	}
	s.Put("TOP", d, 11, 0)

	input := []Region{{Code: "MM"}, {Code: "ZZ"}, {Code: "TOP"}, {Code: "AA"}, {Code: "QQ"}}
	ranked := Rank(input, s)

	assert.Equal(t, []string{"TOP", "MM", "ZZ", "AA", "QQ"}, codes(ranked))
	assert.Equal(t, "MM", input[0].Code, "input must not be reordered")
}

func codes(regions []Region) []string {
	out := make([]string, len(regions))
	for i, r := range regions {
		out[i] = r.Code
	}
	return out
}

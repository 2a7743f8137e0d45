// Package simhash fingerprints listing pages so a crawler can tell when a
// site starts serving the same results again.
package simhash

import (
	"hash/fnv"
	"math/bits"
	"strings"
	"unicode"
)

// RepeatThreshold is the Hamming distance at or below which two listing
// fingerprints are treated as the same page.
const RepeatThreshold = 3

// Fingerprint computes a 64-bit SimHash over the lower-cased words of text.
// Empty or whitespace-only input yields 0.
func Fingerprint(text string) uint64 {
	return fromFeatures(words(text))
}

// Listing fingerprints an ordered list of product titles. Features are
// word bigrams within each title, so reordering titles changes little while
// a different result set changes a lot.
func Listing(titles []string) uint64 {
	var features []string
	for _, t := range titles {
		w := words(t)
		if len(w) == 1 {
			features = append(features, w[0])
		}
		for i := 0; i+1 < len(w); i++ {
			features = append(features, w[i]+" "+w[i+1])
		}
	}
	return fromFeatures(features)
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar reports whether two fingerprints are within threshold bits.
func Similar(a, b uint64, threshold int) bool {
	return Distance(a, b) <= threshold
}

func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func fromFeatures(features []string) uint64 {
	if len(features) == 0 {
		return 0
	}

	var vector [64]int
	for _, f := range features {
		h := fnv.New64a()
		h.Write([]byte(f))
		sum := h.Sum64()
		for i := 0; i < 64; i++ {
			if sum&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i, v := range vector {
		if v > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

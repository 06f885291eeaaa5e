// Package lotto generates Korean 6/45 lottery number picks.
package lotto

import (
	"math/rand"
	"sort"
)

const (
	maxNumber = 45
	pickSize  = 6
)

// Picker draws lottery numbers. The random source is injectable so
// tests can fix the sequence.
type Picker struct {
	rng *rand.Rand
}

type PickerOption func(*Picker)

func WithRand(rng *rand.Rand) PickerOption {
	return func(p *Picker) { p.rng = rng }
}

func NewPicker(options ...PickerOption) *Picker {
	p := &Picker{}
	for _, option := range options {
		option(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return p
}

// Pick draws six distinct numbers from 1..45, sorted ascending.
func (p *Picker) Pick() []int {
	return p.pickFrom(allNumbers())
}

// PickFrequent draws six distinct numbers from the topN most frequent
// numbers in past winning draws. When topN cannot yield a valid pool
// (fewer than six numbers, or effectively the whole range) it falls
// back to a uniform pick.
func (p *Picker) PickFrequent(history [][]int, topN int) []int {
	if topN < pickSize || topN >= maxNumber {
		return p.Pick()
	}

	counts := make(map[int]int)
	for _, draw := range history {
		for _, n := range draw {
			if n >= 1 && n <= maxNumber {
				counts[n]++
			}
		}
	}
	if len(counts) < pickSize {
		return p.Pick()
	}

	pool := make([]int, 0, len(counts))
	for n := range counts {
		pool = append(pool, n)
	}
	// Rank by frequency, ties broken by the smaller number.
	sort.Slice(pool, func(i, j int) bool {
		if counts[pool[i]] != counts[pool[j]] {
			return counts[pool[i]] > counts[pool[j]]
		}
		return pool[i] < pool[j]
	})
	if len(pool) > topN {
		pool = pool[:topN]
	}
	return p.pickFrom(pool)
}

func (p *Picker) pickFrom(pool []int) []int {
	shuffled := make([]int, len(pool))
	copy(shuffled, pool)
	p.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	pick := shuffled[:pickSize]
	sort.Ints(pick)
	out := make([]int, pickSize)
	copy(out, pick)
	return out
}

func allNumbers() []int {
	numbers := make([]int, maxNumber)
	for i := range numbers {
		numbers[i] = i + 1
	}
	return numbers
}

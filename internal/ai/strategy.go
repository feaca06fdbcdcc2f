// internal/ai/strategy.go
package ai

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/Sumit112234/sixteen-parchi/internal/deck"
	"github.com/Sumit112234/sixteen-parchi/internal/models"
)

// Difficulty selects how an AI seat picks the card it passes.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty normalizes a client-supplied difficulty string,
// defaulting to Medium.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case Easy, Medium, Hard:
		return Difficulty(s)
	default:
		return Medium
	}
}

// TargetHero is the hero the AI is collecting: the one it holds the
// most copies of. Hard breaks count ties toward the hero worth more
// total points; other difficulties keep the first hero encountered.
func TargetHero(hand []*models.Card, d Difficulty) models.Hero {
	counts := map[models.Hero]int{}
	points := map[models.Hero]int{}
	for _, c := range hand {
		counts[c.Hero]++
		points[c.Hero] += c.Points
	}

	var best models.Hero
	seen := map[models.Hero]bool{}
	for _, c := range hand {
		h := c.Hero
		if seen[h] {
			continue
		}
		seen[h] = true
		switch {
		case best == "":
			best = h
		case counts[h] > counts[best]:
			best = h
		case counts[h] == counts[best] && d == Hard && points[h] > points[best]:
			best = h
		}
	}
	return best
}

// ChooseCard returns the index in hand of the card to pass.
//
// Candidates are the cards whose instance is not the one just
// received, unless the hand holds two or more of that card's hero, in
// which case everything is passable; an empty candidate set falls back
// to the whole hand. Easy passes a random candidate. Medium passes a
// random candidate outside the target hero. Hard passes a candidate
// from the hero it holds fewest copies of, first encountered on ties.
func ChooseCard(hand []*models.Card, lastReceivedID uuid.UUID, d Difficulty) int {
	candidates := PassableIndexes(hand, lastReceivedID)
	target := TargetHero(hand, d)

	switch d {
	case Hard:
		best, bestCount := -1, deck.HandSize+1
		for _, i := range candidates {
			if hand[i].Hero == target {
				continue
			}
			if n := deck.HeroCount(hand, hand[i].Hero); n < bestCount {
				best, bestCount = i, n
			}
		}
		if best >= 0 {
			return best
		}
	case Medium:
		var offTarget []int
		for _, i := range candidates {
			if hand[i].Hero != target {
				offTarget = append(offTarget, i)
			}
		}
		if len(offTarget) > 0 {
			return offTarget[rand.Intn(len(offTarget))]
		}
	}
	return candidates[rand.Intn(len(candidates))]
}

// PassableIndexes applies the pass restriction: the exact card
// instance just received stays in hand unless it has a duplicate hero.
func PassableIndexes(hand []*models.Card, lastReceivedID uuid.UUID) []int {
	restricted := -1
	if lastReceivedID != uuid.Nil {
		for i, c := range hand {
			if c.ID == lastReceivedID {
				if deck.HeroCount(hand, c.Hero) < 2 {
					restricted = i
				}
				break
			}
		}
	}
	idx := make([]int, 0, len(hand))
	for i := range hand {
		if i != restricted {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		for i := range hand {
			idx = append(idx, i)
		}
	}
	return idx
}

// Package matching computes application eligibility and an advisory
// match score from offered credentials vs. pool requirements. It is a
// pure function over its inputs and never mutates store state.
package matching

import "strings"

// ScoreScaleBP is the score range: 0-10000 basis points. Meeting every
// requirement exactly scores 5000; doubling every requirement caps at
// 10000.
const (
	ScoreScaleBP = 10000
	ratioCapBP   = 2 * ScoreScaleBP
)

// OfferedCredential is the slice of a credential the engine needs.
// Ownership and active/expiry checks happen before the engine runs;
// Usable carries their outcome.
type OfferedCredential struct {
	ID       int64
	Category string
	Level    int
	Usable   bool
}

type Requirement struct {
	Category     string
	MinimumLevel int
}

type SkillResult struct {
	Category     string
	MinimumLevel int
	BestLevel    int // 0 when no usable credential matches the category
	CredentialID int64
	Met          bool
}

type Result struct {
	// Eligible is the hard gate: every requirement covered by a usable
	// credential at or above its minimum level.
	Eligible bool
	// ScoreBP ranks eligible applications; it never gates eligibility.
	ScoreBP int
	Skills  []SkillResult
}

// Evaluate checks every requirement against the offered credentials and
// computes the basis-point score. For each requirement the per-skill
// ratio min(bestLevel/minimumLevel, 2.0) is taken in integer basis
// points, averaged across requirements, and scaled to 0-10000.
func Evaluate(offered []OfferedCredential, reqs []Requirement) Result {
	res := Result{
		Eligible: true,
		Skills:   make([]SkillResult, 0, len(reqs)),
	}
	if len(reqs) == 0 {
		res.Eligible = false
		return res
	}

	var ratioSumBP int64
	for _, r := range reqs {
		sr := SkillResult{Category: r.Category, MinimumLevel: r.MinimumLevel}

		for _, c := range offered {
			if !c.Usable {
				continue
			}
			if !strings.EqualFold(strings.TrimSpace(c.Category), strings.TrimSpace(r.Category)) {
				continue
			}
			if c.Level > sr.BestLevel {
				sr.BestLevel = c.Level
				sr.CredentialID = c.ID
			}
		}

		min := r.MinimumLevel
		if min < 1 {
			min = 1
		}
		sr.Met = sr.BestLevel >= min
		if !sr.Met {
			res.Eligible = false
		}

		ratioBP := int64(sr.BestLevel) * ScoreScaleBP / int64(min)
		if ratioBP > ratioCapBP {
			ratioBP = ratioCapBP
		}
		ratioSumBP += ratioBP

		res.Skills = append(res.Skills, sr)
	}

	res.ScoreBP = int(ratioSumBP / int64(2*len(reqs)))
	if res.ScoreBP < 0 {
		res.ScoreBP = 0
	}
	if res.ScoreBP > ScoreScaleBP {
		res.ScoreBP = ScoreScaleBP
	}
	return res
}

// BlendReputation folds an external reputation score (0-100) into a base
// match score at a 90/10 weighting. Reputation only reorders rankings;
// eligibility is decided before this is called.
func BlendReputation(baseBP int, reputation int) int {
	if reputation < 0 {
		reputation = 0
	}
	if reputation > 100 {
		reputation = 100
	}
	blended := (baseBP*9 + reputation*100) / 10
	if blended > ScoreScaleBP {
		blended = ScoreScaleBP
	}
	return blended
}

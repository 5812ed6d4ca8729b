package usecase

import "github.com/fairyhunter13/ai-career-advisor/internal/domain"

// Band thresholds: a level equal to a threshold belongs to the higher band.
const (
	intermediateThreshold = 33
	advancedThreshold     = 66
)

// ClassifySkill maps a skill level to its band. Levels outside [0,100] are not
// clamped here; range is enforced by ValidateProfile at the input boundary.
func ClassifySkill(level int) domain.SkillBand {
	switch {
	case level < intermediateThreshold:
		return domain.BandBeginner
	case level < advancedThreshold:
		return domain.BandIntermediate
	default:
		return domain.BandAdvanced
	}
}

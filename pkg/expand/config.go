package expand

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrConfig is wrapped by every configuration validation failure.
var ErrConfig = errors.New("expand: invalid config")

// Config holds every tunable of the expansion engine. Zero values are not
// usable; start from DefaultConfig and adjust.
type Config struct {
	// Scoring weights, must sum to 1.0.
	WeightPrefix    float64
	WeightEdit      float64
	WeightFrequency float64
	WeightLength    float64

	// ContextBonusWeight scales the bigram bonus added on top of a
	// candidate's combined score.
	ContextBonusWeight float64

	// AmbiguityMargin is the minimum score gap between the best and
	// second-best candidate to accept the best without flagging it.
	AmbiguityMargin float64

	// MinConfidence is the minimum combined score to accept any candidate.
	MinConfidence float64

	// MaxEditDistance caps the fuzzy search bound regardless of token length.
	MaxEditDistance int

	// MaxEditDistanceRatio bounds fuzzy distance as a fraction of token length.
	MaxEditDistanceRatio float64

	// MinPrefixLen is the shortest token that yields prefix candidates.
	MinPrefixLen int

	// MinFuzzyLen is the shortest token that is fuzzy-matched at all.
	MinFuzzyLen int

	// TopKPrefix and TopKFuzzy cap how many candidates each tier keeps.
	TopKPrefix int
	TopKFuzzy  int

	// MaxWordLen caps segment length in spaceless mode, keeping the
	// segmenter at O(n*W) instead of O(n^2).
	MaxWordLen int

	// PassthroughKnownWords emits known corpus words unchanged without
	// running the matching tiers.
	PassthroughKnownWords bool

	// LLMEnabled gates the fallback resolver; LLMTimeout bounds its one
	// batched call per expansion.
	LLMEnabled bool
	LLMTimeout time.Duration
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		WeightPrefix:          0.35,
		WeightEdit:            0.25,
		WeightFrequency:       0.25,
		WeightLength:          0.15,
		ContextBonusWeight:    0.20,
		AmbiguityMargin:       0.15,
		MinConfidence:         0.20,
		MaxEditDistance:       2,
		MaxEditDistanceRatio:  0.6,
		MinPrefixLen:          1,
		MinFuzzyLen:           2,
		TopKPrefix:            10,
		TopKFuzzy:             10,
		MaxWordLen:            20,
		PassthroughKnownWords: true,
		LLMEnabled:            false,
		LLMTimeout:            2 * time.Second,
	}
}

// Validate fails fast on out-of-range values so a bad config never
// reaches the pipeline.
func (c Config) Validate() error {
	sum := c.WeightPrefix + c.WeightEdit + c.WeightFrequency + c.WeightLength
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("%w: scoring weights sum to %v, want 1.0", ErrConfig, sum)
	}
	for _, w := range []struct {
		name string
		val  float64
	}{
		{"weight_prefix", c.WeightPrefix},
		{"weight_edit", c.WeightEdit},
		{"weight_frequency", c.WeightFrequency},
		{"weight_length", c.WeightLength},
		{"context_bonus_weight", c.ContextBonusWeight},
		{"ambiguity_margin", c.AmbiguityMargin},
		{"min_confidence", c.MinConfidence},
		{"max_edit_distance_ratio", c.MaxEditDistanceRatio},
	} {
		if w.val < 0 {
			return fmt.Errorf("%w: %s is negative (%v)", ErrConfig, w.name, w.val)
		}
	}
	if c.MinConfidence > 1 {
		return fmt.Errorf("%w: min_confidence %v > 1", ErrConfig, c.MinConfidence)
	}
	if c.MaxEditDistance < 1 {
		return fmt.Errorf("%w: max_edit_distance must be >= 1, got %d", ErrConfig, c.MaxEditDistance)
	}
	if c.MinPrefixLen < 1 {
		return fmt.Errorf("%w: min_prefix_len must be >= 1, got %d", ErrConfig, c.MinPrefixLen)
	}
	if c.MinFuzzyLen < 1 {
		return fmt.Errorf("%w: min_fuzzy_len must be >= 1, got %d", ErrConfig, c.MinFuzzyLen)
	}
	if c.TopKPrefix < 1 || c.TopKFuzzy < 1 {
		return fmt.Errorf("%w: top-k limits must be >= 1", ErrConfig)
	}
	if c.MaxWordLen < 2 {
		return fmt.Errorf("%w: max_word_len must be >= 2, got %d", ErrConfig, c.MaxWordLen)
	}
	if c.LLMEnabled && c.LLMTimeout <= 0 {
		return fmt.Errorf("%w: llm_timeout must be positive when llm is enabled", ErrConfig)
	}
	return nil
}

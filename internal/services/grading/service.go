package grading

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tunequiz/tunequiz/internal/model"
)

// DefaultPunctuation is the set of characters stripped during normalization
const DefaultPunctuation = `'"!?.,:;-_()[]{}/\&+*`

// Config holds tuning parameters for the grader
type Config struct {
	// MaxDistance caps the edit distance tolerated for a close match
	MaxDistance int
	// MinFuzzyLength is the shortest accepted answer eligible for fuzzy
	// matching; shorter answers must match exactly
	MinFuzzyLength int
	// Punctuation is the set of characters removed during normalization
	Punctuation string
}

// DefaultConfig returns sensible grading defaults
func DefaultConfig() Config {
	return Config{
		MaxDistance:    2,
		MinFuzzyLength: 3,
		Punctuation:    DefaultPunctuation,
	}
}

// Service grades submitted guesses against accepted answers.
// It holds only configuration: grading is a pure function of its inputs.
type Service struct {
	cfg         Config
	punctuation map[rune]bool
}

// New creates a grading service with the given config.
// The config is taken as given: MaxDistance 0 means exact matching
// only. Callers wanting the defaults pass DefaultConfig().
func New(cfg Config) *Service {
	punct := make(map[rune]bool, len(cfg.Punctuation))
	for _, r := range cfg.Punctuation {
		punct[r] = true
	}
	return &Service{cfg: cfg, punctuation: punct}
}

// Grade compares a submission against the accepted answers for one field.
// An empty accepted set is a caller error and returns ErrInvalidTrack.
func (s *Service) Grade(submission string, accepted []string) (model.GradeResult, error) {
	if len(accepted) == 0 {
		return model.GradeMiss, model.ErrInvalidTrack
	}

	sub := s.Normalize(submission)

	best := model.GradeMiss
	anyAnswer := false
	for _, answer := range accepted {
		ans := s.Normalize(answer)
		if ans == "" {
			continue
		}
		anyAnswer = true
		if sub == "" {
			continue
		}
		if sub == ans {
			return model.GradeExact, nil
		}
		if s.withinThreshold(sub, ans) {
			best = model.GradeClose
		}
	}
	if !anyAnswer {
		// Every accepted answer normalized away to nothing: the track
		// is misconfigured, not the caller's guess
		return model.GradeMiss, model.ErrInvalidTrack
	}
	return best, nil
}

// withinThreshold reports whether sub is a tolerable misspelling of ans.
// The allowance grows sub-linearly with answer length so very short
// titles cannot be matched by unrelated words.
func (s *Service) withinThreshold(sub, ans string) bool {
	allowed := s.allowedDistance(len([]rune(ans)))
	if allowed == 0 {
		return false
	}
	return levenshtein.ComputeDistance(sub, ans) <= allowed
}

func (s *Service) allowedDistance(length int) int {
	if length < s.cfg.MinFuzzyLength {
		return 0
	}
	allowed := 1 + length/8
	if allowed > s.cfg.MaxDistance {
		allowed = s.cfg.MaxDistance
	}
	return allowed
}

// stripMarks removes Unicode combining marks after NFD decomposition,
// turning e.g. "Beyoncé" into "Beyonce"
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize applies the fixed normalization pipeline: strip diacritics,
// lowercase, remove punctuation, trim and collapse whitespace
func (s *Service) Normalize(input string) string {
	stripped, _, err := transform.String(stripMarks, input)
	if err != nil {
		stripped = input
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range strings.ToLower(stripped) {
		if s.punctuation[r] {
			continue
		}
		b.WriteRune(r)
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Interface for dependency injection
type ServiceInterface interface {
	Grade(submission string, accepted []string) (model.GradeResult, error)
	Normalize(input string) string
}

var _ ServiceInterface = (*Service)(nil)

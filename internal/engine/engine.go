package engine

import (
	"go.uber.org/zap"

	"github.com/LinkyJayy/Sentry-Antivirus/internal/signatures"
	"github.com/LinkyJayy/Sentry-Antivirus/pkg/models"
)

// HeaderSize is how many leading bytes of a file the pattern and heuristic
// stages inspect.
const HeaderSize = 8192

// Engine is the detection pipeline: hash signatures, then byte patterns,
// then heuristic analysis. Classify is a pure function of its inputs and the
// loaded rule set; it performs no I/O and keeps no per-call state.
type Engine struct {
	signatures *signatures.Database
	heuristics *Analyzer
	logger     *zap.Logger
}

// New creates an engine backed by the given signature database.
func New(db *signatures.Database, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		signatures: db,
		heuristics: NewAnalyzer(),
		logger:     logger,
	}
}

// Classify runs the detection pipeline over one file's content. fileHash is
// the lowercase SHA-256 hex of the full content (empty when unavailable);
// header holds up to the first HeaderSize bytes. The first stage that
// matches wins. A zero Detection means clean.
func (e *Engine) Classify(filePath string, header []byte, fileHash string) models.Detection {
	if fileHash != "" {
		if entry, ok := e.signatures.CheckHash(fileHash); ok {
			return models.Detection{
				Level:       entry.Level,
				Name:        entry.Name,
				Description: entry.Description,
				Method:      models.MethodSignature,
			}
		}
	}

	if len(header) > 0 {
		if rule, ok := e.signatures.CheckPatterns(header); ok {
			return models.Detection{
				Level:       rule.Level,
				Name:        rule.Name,
				Description: rule.Description,
				Method:      models.MethodPattern,
			}
		}

		if verdict := e.heuristics.Analyze(filePath, header); verdict.Suspicious {
			return models.Detection{
				Level:       verdict.Level,
				Name:        heuristicThreatName,
				Description: verdict.Description,
				Method:      models.MethodHeuristic,
			}
		}
	}

	return models.Detection{}
}

// SetSensitivity adjusts the heuristic threshold to a named profile. Safe to
// call while scans are running; in-flight files may still use the previous
// threshold.
func (e *Engine) SetSensitivity(s Sensitivity) {
	e.heuristics.SetThreshold(s.Threshold())
	e.logger.Info("heuristic sensitivity changed",
		zap.String("profile", string(s)),
		zap.Int("threshold", s.Threshold()))
}

// SetThreshold sets the raw heuristic score threshold.
func (e *Engine) SetThreshold(threshold int) {
	e.heuristics.SetThreshold(threshold)
}

// Sensitivity names a heuristic threshold profile. Lower thresholds flag
// more files.
type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// Threshold returns the heuristic score threshold for the profile. Unknown
// profiles fall back to the medium default.
func (s Sensitivity) Threshold() int {
	switch s {
	case SensitivityLow:
		return 70
	case SensitivityHigh:
		return 30
	default:
		return DefaultThreshold
	}
}

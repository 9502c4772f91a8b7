package journey

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/elyx-health/journey-backend/pkg/logger"
)

// LoadEvents reads the event-log fixture. A missing or unparseable file is
// fatal to corpus construction, so the error is returned as-is.
func LoadEvents(path string) ([]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event log: %w", err)
	}

	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to parse event log: %w", err)
	}

	logger.Info("Event log loaded",
		zap.String("path", path),
		zap.Int("events", len(events)),
	)

	return events, nil
}

func LoadAnalysis(path string) (*Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis report: %w", err)
	}

	var analysis Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis report: %w", err)
	}

	logger.Info("Analysis report loaded",
		zap.String("path", path),
		zap.Int("episodes", len(analysis.JourneyEpisodes)),
	)

	return &analysis, nil
}

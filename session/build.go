package session

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/rustyeddy/papertrade/annotate"
	"github.com/rustyeddy/papertrade/config"
	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/metrics"
)

// OpenJournal opens the sink named by cfg.
func OpenJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "", "none":
		return journal.Nop{}, nil
	case "csv":
		return journal.NewCSV(cfg.FillsFile, cfg.EquityFile)
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	}
	return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
}

// NewAnnotator returns the Claude client when the annotator is enabled and a
// key is present, otherwise an offline annotator.
func NewAnnotator(cfg config.AnnotatorConfig, m *metrics.Metrics, logger *slog.Logger) annotate.Annotator {
	key := cfg.APIKey()
	if !cfg.Enabled || key == "" {
		logger.Info("annotator offline", "enabled", cfg.Enabled, "key_env", cfg.APIKeyEnv)
		return annotate.Offline{}
	}

	bs := annotate.BreakerSettings{}
	if m != nil {
		bs.OnStateChange = func(_, to gobreaker.State) {
			m.BreakerState.WithLabelValues("annotator").Set(float64(to))
		}
	}

	opts := []annotate.ClaudeOption{
		annotate.WithClaudeLogger(logger),
		annotate.WithModel(cfg.Model),
		annotate.WithMaxTokens(cfg.MaxTokens),
		annotate.WithBreaker(bs),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, annotate.WithBaseURL(cfg.BaseURL))
	}
	return annotate.NewClaude(key, opts...)
}

// FromConfig builds a session and the collaborators cfg names.
func FromConfig(cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}

	j, err := OpenJournal(cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	timeout, err := cfg.Annotator.RequestTimeout()
	if err != nil {
		_ = j.Close()
		return nil, fmt.Errorf("annotator timeout: %w", err)
	}

	seed := cfg.Market.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s, err := New(Options{
		Basket:          cfg.Market.Basket(),
		StartingCash:    cfg.Session.StartingCash,
		Window:          cfg.Market.Window,
		Seed:            seed,
		Journal:         j,
		Annotator:       NewAnnotator(cfg.Annotator, m, logger),
		AnnotateTimeout: timeout,
		Metrics:         m,
		Logger:          logger,
	})
	if err != nil {
		_ = j.Close()
		return nil, err
	}
	return s, nil
}

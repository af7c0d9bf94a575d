// Package cli is the terminal front end: a cobra root command that wires the
// session pipeline and runs the interactive chat loop.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/comigor/becas-go/internal/agent"
	"github.com/comigor/becas-go/internal/config"
	"github.com/comigor/becas-go/internal/document"
	"github.com/comigor/becas-go/internal/export"
	"github.com/comigor/becas-go/internal/history"
	"github.com/comigor/becas-go/internal/llm"
	"github.com/comigor/becas-go/internal/logger"
)

// Deps builds the collaborators a session needs from the loaded config.
// Tests swap the responder to avoid the network.
type Deps struct {
	OpenStore    func(ctx context.Context, cfg config.HistoryConfig) (history.Store, error)
	NewResponder func(cfg config.LLMConfig) agent.Responder
}

// DefaultDeps returns the production wiring.
func DefaultDeps() Deps {
	return Deps{
		OpenStore: OpenStore,
		NewResponder: func(cfg config.LLMConfig) agent.Responder {
			return llm.NewGenerator(llm.NewClient(cfg))
		},
	}
}

// OpenStore opens the conversation store selected by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.HistoryConfig) (history.Store, error) {
	switch cfg.Driver {
	case config.HistorySQLite:
		s, err := history.OpenSQLite(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return history.NewMemory(), nil
	}
}

// NewRootCmd builds the becas command.
func NewRootCmd(deps Deps) *cobra.Command {
	var (
		configPath string
		logLevel   string
		dir        string
	)

	cmd := &cobra.Command{
		Use:           "becas",
		Short:         "Asistente de becas para estudiantes peruanos",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			logger.SetLevel(cfg.LogLevel)

			return run(cmd.Context(), cfg, deps, cmd.InOrStdin(), cmd.OutOrStdout(), WithDir(dir))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "directory for relative /adjuntar and /exportar paths")
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func run(ctx context.Context, cfg *config.Config, deps Deps, in io.Reader, out io.Writer, opts ...SessionOption) error {
	store, err := deps.OpenStore(ctx, cfg.History)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.L.Warn("close history", "error", err)
		}
	}()

	extractor := document.New(
		document.WithPPTXMode(document.PPTXMode(cfg.Document.PPTXMode)),
		document.WithLegacyFormats(cfg.Document.LegacyFormats),
	)
	a := agent.New(store, extractor, deps.NewResponder(cfg.LLM))
	logger.L.Info("session started", "history", cfg.History.Driver, "pptx_mode", cfg.Document.PPTXMode)
	return NewSession(a, export.New(cfg.Export.Formats), in, out, opts...).Run(ctx)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"chatcal/pkg/ai"
	_ "chatcal/pkg/ai/providers"
	"chatcal/pkg/calendar"
	"chatcal/pkg/config"
	"chatcal/pkg/extract"
	"chatcal/pkg/logging"
	"chatcal/pkg/session"
	"chatcal/pkg/ui"
	"chatcal/pkg/version"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "chatcal",
		Short:         "Turn plain-language requests into calendar events",
		Version:       version.Summary(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(configPath)
			if err != nil {
				return err
			}
			return runTUI(app)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.GetConfigPath(), "config file (.json or .yaml)")

	root.AddCommand(newExtractCmd(&configPath))
	root.AddCommand(newProvidersCmd())
	root.AddCommand(newVersionCmd())
	return root
}

type app struct {
	cfg     config.Config
	loc     *time.Location
	session *session.Session
	store   *calendar.Store
}

func loadApp(configPath string) (*app, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if _, err := logging.Init(cfg); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config_invalid", "path", configPath, "error", err)
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	provider, err := ai.GetProviderFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	active, _ := cfg.ActiveProvider()
	client := extract.NewClient(provider, extract.WithModel(active.Model), extract.WithLocation(loc))
	store := calendar.NewStore()
	sess := session.New(client, store,
		session.WithTimeout(cfg.ExtractionTimeout()),
		session.WithLocation(loc),
	)

	slog.Info("app_start", "version", version.Summary(), "provider", cfg.LLMProvider, "model", active.Model, "timezone", loc.String())
	return &app{cfg: cfg, loc: loc, session: sess, store: store}, nil
}

func runTUI(a *app) error {
	defer a.session.Close()

	active, _ := a.cfg.ActiveProvider()
	model := ui.NewModel(a.session, ui.Options{
		Provider:   a.cfg.LLMProvider,
		Model:      active.Model,
		ExportPath: a.cfg.ExportPath,
		Location:   a.loc,
	})
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	slog.Info("app_exit", "events", a.store.Len())
	return nil
}

func newExtractCmd(configPath *string) *cobra.Command {
	var (
		icsPath string
		confirm bool
	)

	cmd := &cobra.Command{
		Use:   "extract <text>",
		Short: "Extract one event and print it as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer a.session.Close()

			ev, err := extractOnce(cmd.Context(), a.session, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if confirm || icsPath != "" {
				if ev, err = a.session.Confirm(); err != nil {
					return err
				}
			}
			if err := printEvent(cmd.OutOrStdout(), ev); err != nil {
				return err
			}
			if icsPath != "" {
				if _, err := a.store.ExportICS(icsPath); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", icsPath)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "add the event to the calendar")
	cmd.Flags().StringVar(&icsPath, "ics", "", "confirm and write the calendar to this .ics file")
	return cmd
}

// extractOnce submits text and waits for the preview.
func extractOnce(ctx context.Context, sess *session.Session, text string) (calendar.Event, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := sess.Submit(text)
	if err != nil {
		return calendar.Event{}, err
	}
	res, err := req.Wait(ctx)
	if err != nil {
		sess.Cancel()
		return calendar.Event{}, err
	}
	sess.Apply(res)
	if res.Err != nil {
		return calendar.Event{}, res.Err
	}
	ev, ok := sess.Candidate()
	if !ok {
		return calendar.Event{}, session.ErrNoCandidate
	}
	return ev, nil
}

func printEvent(w io.Writer, ev calendar.Event) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ev)
}

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List supported LLM providers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, info := range ai.ListProviders() {
				if _, err := fmt.Fprintf(out, "%-12s %s\n", info.Type, info.Description); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), version.Details())
			return err
		},
	}
}

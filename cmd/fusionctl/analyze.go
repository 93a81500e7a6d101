package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"SignalFusion/internal/domain/models"
	"SignalFusion/internal/services/engine"
	"SignalFusion/internal/services/features"
	"SignalFusion/internal/usecase"
	"SignalFusion/pkg/config"
	"SignalFusion/pkg/util"

	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	file       string
	configPath string
	interval   string
	now        string
	derive     bool
	quiet      bool
}

func analyzeCmd() *cobra.Command {
	var o analyzeOptions
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a snapshot or bar list stored as JSON",
		Long: `Reads a JSON document shaped like the POST /api/analyze body
({"symbol", "snapshot" | "bars", "prediction"}) and prints the bundle.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.file, "file", "f", "", "input JSON file (- for stdin)")
	f.StringVar(&o.configPath, "config", "", "optional config file for engine settings")
	f.StringVar(&o.interval, "interval", "", "bar interval, overrides the file (default 1d)")
	f.StringVar(&o.now, "now", "", "evaluation time (RFC3339, date or unix seconds); defaults to now")
	f.BoolVar(&o.derive, "derive", false, "derive missing oscillators from OHLCV")
	f.BoolVarP(&o.quiet, "quiet", "q", false, "print a one-line summary instead of the bundle")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runAnalyze(cmd *cobra.Command, o analyzeOptions) error {
	cfg := engine.DefaultConfig()
	if o.configPath != "" {
		c, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		cfg = c.Engine
	}
	if o.derive {
		cfg.DeriveMissingOscillators = true
	}

	req, err := readRequest(cmd, o.file)
	if err != nil {
		return err
	}
	interval := req.Interval
	if o.interval != "" {
		interval = o.interval
	}

	var now time.Time
	if o.now != "" {
		t, ok := util.ParseTime(o.now)
		if !ok {
			return fmt.Errorf("invalid --now %q", o.now)
		}
		now = t
	} else if req.Now != "" {
		if t, ok := util.ParseTime(req.Now); ok {
			now = t
		}
	}

	snap := req.Snapshot
	if snap == nil {
		if len(req.Bars) == 0 {
			return fmt.Errorf("%s: snapshot or bars is required", o.file)
		}
		snap = features.SnapshotFromBars(strings.ToUpper(req.Symbol), req.Bars)
	} else if snap.Symbol == "" {
		snap.Symbol = strings.ToUpper(req.Symbol)
	}

	uc := usecase.NewAnalysisUseCase(engine.New(cfg))
	bundle := uc.AnalyzeSnapshot(snap, req.Prediction, interval, now)

	out := cmd.OutOrStdout()
	if o.quiet {
		_, err := fmt.Fprintf(out, "%s %s score=%d %q advice=%s signals=%d\n",
			bundle.Symbol, bundle.Interval, bundle.Confluence.TotalScore,
			bundle.Confluence.Recommendation, bundle.Advice.Action, len(bundle.Timeline))
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(bundle)
}

func readRequest(cmd *cobra.Command, path string) (*models.AnalyzeSnapshotRequest, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	req := &models.AnalyzeSnapshotRequest{}
	if err := json.Unmarshal(b, req); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return req, nil
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/LinkyJayy/Sentry-Antivirus/internal/config"
	"github.com/LinkyJayy/Sentry-Antivirus/internal/engine"
	"github.com/LinkyJayy/Sentry-Antivirus/internal/metrics"
	"github.com/LinkyJayy/Sentry-Antivirus/internal/monitor"
	"github.com/LinkyJayy/Sentry-Antivirus/internal/quarantine"
	"github.com/LinkyJayy/Sentry-Antivirus/internal/report"
	"github.com/LinkyJayy/Sentry-Antivirus/internal/scanner"
	"github.com/LinkyJayy/Sentry-Antivirus/internal/signatures"
	"github.com/LinkyJayy/Sentry-Antivirus/pkg/models"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorOrange = "\033[38;5;208m"
	colorYellow = "\033[38;5;220m"
	colorGray   = "\033[38;5;245m"
	colorCyan   = "\033[36m"
)

var (
	version = "1.0.0"
	logger  *zap.Logger
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sentry",
		Short: "Sentry - Endpoint Malware Scanner with Real-Time Protection",
		Long: `Endpoint malware scanner that detects threats by hash signatures, byte
patterns, and heuristics, isolates them in an encrypted quarantine, and
watches the filesystem in real time.`,
		Version: version,
		Run: func(cmd *cobra.Command, args []string) {
			printMainBanner()
			cmd.Help()
		},
	}

	// Global verbose flag
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	// Disable built-in help command
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// Add commands
	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(monitorCmd())
	rootCmd.AddCommand(quarantineCmd())
	rootCmd.AddCommand(helpCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// printMainBanner prints the main banner
func printMainBanner() {
	fmt.Println()
	fmt.Printf("%s", colorOrange)
	fmt.Println("▄████▄ ███▀▀▀ ██▄ ██ ▀▀██▀▀ ██▀▀█▄ ██  ██")
	fmt.Println("▀████▄ ██▀▀▀  ██▀▄██   ██   ██▄▄█▀ ▀█▄▄█▀")
	fmt.Println("▀████▀ ███▄▄▄ ██ ▀██   ██   ██ ▀█▄   ██")
	fmt.Printf("%s", colorReset)
	fmt.Println()
	fmt.Printf("%sEndpoint Malware Scanner v%s%s\n", colorGray, version, colorReset)
	fmt.Println()
}

// initLogger initializes the global logger based on the verbose flag
func initLogger() error {
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		// Silent logger - only errors
		cfg := zap.Config{
			Level:            zap.NewAtomicLevelAt(zapcore.ErrorLevel),
			Encoding:         "json",
			OutputPaths:      []string{"stderr"},
			ErrorOutputPaths: []string{"stderr"},
			EncoderConfig:    zap.NewProductionEncoderConfig(),
		}
		logger, err = cfg.Build()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
	}
	return err
}

// buildEngine assembles the detection engine from the configuration
func buildEngine(cfg *config.Config) (*engine.Engine, error) {
	db := signatures.NewDatabase(logger)
	if cfg.SignaturesPath != "" {
		if err := db.LoadCustom(cfg.SignaturesPath); err != nil {
			return nil, fmt.Errorf("failed to load signatures: %w", err)
		}
	}
	eng := engine.New(db, logger)
	eng.SetSensitivity(engine.Sensitivity(cfg.Sensitivity))
	return eng, nil
}

// scanCmd creates the scan command
func scanCmd() *cobra.Command {
	var (
		quick          bool
		full           bool
		recursive      bool
		workers        int
		sensitivity    string
		maxSize        string
		exclude        []string
		signaturesPath string
		reportFormat   string
		outputFile     string
		doQuarantine   bool
	)

	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Scan paths for malware",
		Long: `Scan one or more paths for malware. Use --quick for the common infection
locations (downloads, desktop, temp), --full for every local drive, or pass
explicit paths.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !quick && !full && len(args) == 0 {
				return fmt.Errorf("specify paths to scan, or use --quick / --full")
			}
			if quick && full {
				return fmt.Errorf("--quick and --full are mutually exclusive")
			}
			if err := validateScanFlags(sensitivity, reportFormat); err != nil {
				fmt.Printf("\n  %s✗ Invalid parameter:%s %s\n\n", colorRed, colorReset, err.Error())
				return err
			}

			if err := initLogger(); err != nil {
				return err
			}
			defer logger.Sync()

			// Load configuration
			cfg, err := config.LoadConfig()
			if err != nil {
				logger.Error("Failed to load config", zap.Error(err))
				return err
			}

			// Override config with CLI flags
			if workers > 0 {
				cfg.Workers = workers
			}
			if sensitivity != "" {
				cfg.Sensitivity = sensitivity
			}
			if maxSize != "" {
				cfg.MaxFileSize = maxSize
			}
			if len(exclude) > 0 {
				cfg.Exclude = exclude
			}
			if signaturesPath != "" {
				cfg.SignaturesPath = signaturesPath
			}
			if reportFormat != "" {
				cfg.ReportFormat = normalizeFormat(reportFormat)
			}
			if outputFile != "" {
				cfg.OutputFile = outputFile
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			// Resolve scan targets
			var scanType string
			var roots []string
			switch {
			case quick:
				scanType = "quick"
				roots = scanner.QuickScanPaths()
			case full:
				scanType = "full"
				roots = scanner.FullScanRoots()
			default:
				scanType = "custom"
				roots = args
			}

			printScanBanner(roots, scanType)

			eng, err := buildEngine(cfg)
			if err != nil {
				return err
			}
			scn := scanner.New(cfg, eng, logger, metrics.Nop{})

			// Quarantine store, only when requested
			var store *quarantine.Store
			if doQuarantine {
				store, err = quarantine.NewStore(cfg.QuarantineDir, logger, metrics.Nop{})
				if err != nil {
					return fmt.Errorf("failed to open quarantine: %w", err)
				}
			}

			quarantined := 0
			onThreat := func(r models.ScanResult) {
				if store == nil {
					return
				}
				det := models.Detection{
					Level:       r.Level,
					Name:        r.ThreatName,
					Description: r.Description,
					Method:      r.Method,
				}
				if _, err := store.Isolate(r.FilePath, det); err != nil {
					logger.Warn("failed to quarantine file",
						zap.String("path", r.FilePath), zap.Error(err))
					return
				}
				quarantined++
			}

			// Render progress while the scan runs
			progressCh := scn.SubscribeProgress()
			done := make(chan struct{})
			renderDone := make(chan struct{})
			lastStatus := models.ScanStatus("")
			go func() {
				defer close(renderDone)
				for {
					select {
					case p := <-progressCh:
						renderProgress(p, &lastStatus)
					case <-done:
						return
					}
				}
			}()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var results []models.ScanResult
			switch scanType {
			case "quick":
				results = scn.QuickScan(ctx, onThreat)
			case "full":
				results = scn.FullScan(ctx, onThreat)
			default:
				results = scn.Scan(ctx, roots, recursive, onThreat)
			}

			close(done)
			<-renderDone
			renderProgress(scn.Progress(), &lastStatus)

			// Build and emit the report
			summary := report.NewSummary(scanType, roots, scn.Progress(), results)
			summary.Version = version

			gen, err := report.NewGenerator(cfg, logger)
			if err != nil {
				return err
			}
			reportPath, err := gen.Generate(summary)
			if err != nil {
				logger.Error("Report generation failed", zap.Error(err))
				return err
			}
			if reportPath != "" {
				fmt.Printf("  %sReport:%s    %s%s%s\n", colorGray, colorReset, colorOrange, reportPath, colorReset)
				fmt.Println()
			}
			if quarantined > 0 {
				fmt.Printf("  %s⛔ Quarantined:%s %d file(s) moved to %s\n", colorRed, colorReset, quarantined, store.Root())
				fmt.Println()
			}

			// Non-zero exit when threats were found, for scripting
			if summary.ThreatsFound > 0 {
				logger.Sync()
				os.Exit(1)
			}
			return nil
		},
	}

	// Flags
	cmd.Flags().BoolVar(&quick, "quick", false, "Scan common infection locations (downloads, desktop, temp)")
	cmd.Flags().BoolVar(&full, "full", false, "Scan all local drives")
	cmd.Flags().BoolVar(&recursive, "recursive", true, "Recurse into subdirectories")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of worker goroutines (default: 4)")
	cmd.Flags().StringVar(&sensitivity, "sensitivity", "", "Heuristic sensitivity: low, medium, high (default: medium)")
	cmd.Flags().StringVar(&maxSize, "max-size", "", "Maximum file size to scan (default: 500M)")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Directories to exclude (comma-separated)")
	cmd.Flags().StringVar(&signaturesPath, "signatures", "", "Path to a custom signature YAML file")
	cmd.Flags().StringVarP(&reportFormat, "report", "r", "", "Report format: txt, json, md (default: console output)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path")
	cmd.Flags().BoolVar(&doQuarantine, "quarantine", false, "Automatically quarantine detected threats")

	return cmd
}

// renderProgress draws one progress update, overwriting the previous line
// while the phase stays the same
func renderProgress(p models.ScanProgress, lastStatus *models.ScanStatus) {
	switch p.Status {
	case models.StatusCounting:
		if *lastStatus != models.StatusCounting {
			fmt.Printf("\n  %sStarting scan...%s\n", colorReset, colorReset)
		}
	case models.StatusScanning, models.StatusCompleted, models.StatusCancelled:
		if p.TotalFiles == 0 {
			break
		}
		if *lastStatus == models.StatusScanning {
			fmt.Print("\033[1A\033[K")
		} else if p.Status != models.StatusScanning {
			// Never rendered a bar; nothing to finalize.
			break
		}
		pct := p.Percent()
		barWidth := 30
		filled := int(float64(barWidth) * pct / 100)
		bar := fmt.Sprintf("%s%s", repeat("█", filled), repeat("░", barWidth-filled))
		fmt.Printf("  %sScanning:%s  [%s%s%s] %s%.1f%%%s (%d/%d)\n",
			colorGray, colorReset, colorOrange, bar, colorReset, colorOrange, pct, colorReset, p.ScannedFiles, p.TotalFiles)
	}
	*lastStatus = p.Status
}

// printScanBanner prints the startup banner for a scan
func printScanBanner(roots []string, scanType string) {
	printMainBanner()
	target := strings.Join(roots, ", ")
	if len(target) > 70 {
		target = target[:67] + "..."
	}
	fmt.Printf("  %sScanning:%s  %s\n", colorGray, colorReset, target)
	fmt.Printf("  %sType:%s      %s\n", colorGray, colorReset, scanType)
	fmt.Println()
}

// monitorCmd creates the monitor command
func monitorCmd() *cobra.Command {
	var (
		autoQuarantine bool
		metricsAddr    string
		sensitivity    string
		signaturesPath string
	)

	cmd := &cobra.Command{
		Use:   "monitor [paths...]",
		Short: "Watch directories and scan files in real time",
		Long: `Start real-time protection. New and changed files in the watched
directories are scanned as they appear; threats can be quarantined
automatically. Without paths the configured watch locations are used.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateScanFlags(sensitivity, ""); err != nil {
				return err
			}
			if err := initLogger(); err != nil {
				return err
			}
			defer logger.Sync()

			cfg, err := config.LoadConfig()
			if err != nil {
				logger.Error("Failed to load config", zap.Error(err))
				return err
			}
			if autoQuarantine {
				cfg.AutoQuarantine = true
			}
			if metricsAddr != "" {
				cfg.MetricsAddr = metricsAddr
			}
			if sensitivity != "" {
				cfg.Sensitivity = sensitivity
			}
			if signaturesPath != "" {
				cfg.SignaturesPath = signaturesPath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			// Metrics exposition is opt-in
			var collector metrics.Collector = metrics.Nop{}
			if cfg.MetricsAddr != "" {
				prom := metrics.NewPrometheus()
				collector = prom
				go func() {
					if err := http.ListenAndServe(cfg.MetricsAddr, prom.Handler()); err != nil {
						logger.Error("Metrics server stopped", zap.Error(err))
					}
				}()
			}

			eng, err := buildEngine(cfg)
			if err != nil {
				return err
			}
			scn := scanner.New(cfg, eng, logger, collector)
			store, err := quarantine.NewStore(cfg.QuarantineDir, logger, collector)
			if err != nil {
				return fmt.Errorf("failed to open quarantine: %w", err)
			}

			mon := monitor.New(cfg, scn, store, logger, collector)
			events := mon.SubscribeEvents()

			if err := mon.Start(args); err != nil {
				return err
			}

			printMainBanner()
			fmt.Printf("  %s%s● Real-time protection enabled%s\n", colorBold, colorGreen, colorReset)
			for _, path := range mon.WatchedPaths() {
				fmt.Printf("    %swatching%s %s\n", colorGray, colorReset, path)
			}
			if cfg.AutoQuarantine {
				fmt.Printf("    %sauto-quarantine%s on → %s\n", colorGray, colorReset, store.Root())
			}
			if cfg.MetricsAddr != "" {
				fmt.Printf("    %smetrics%s http://%s/metrics\n", colorGray, colorReset, cfg.MetricsAddr)
			}
			fmt.Printf("\n  %sPress Ctrl+C to stop.%s\n\n", colorGray, colorReset)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			for {
				select {
				case ev := <-events:
					printEvent(ev)
				case <-ctx.Done():
					fmt.Printf("\n  %sStopping real-time protection...%s\n", colorGray, colorReset)
					mon.Stop()
					fmt.Printf("  %s✓ Stopped.%s\n\n", colorGreen, colorReset)
					return nil
				}
			}
		},
	}

	cmd.Flags().BoolVar(&autoQuarantine, "auto-quarantine", false, "Quarantine detected threats automatically")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().StringVar(&sensitivity, "sensitivity", "", "Heuristic sensitivity: low, medium, high (default: medium)")
	cmd.Flags().StringVar(&signaturesPath, "signatures", "", "Path to a custom signature YAML file")

	return cmd
}

// printEvent prints one protection event to the console
func printEvent(ev models.ProtectionEvent) {
	ts := ev.Timestamp.Format("15:04:05")
	threat := ""
	if ev.Result != nil {
		threat = ev.Result.ThreatName
	}

	switch {
	case ev.Type == models.EventProtectionStarted, ev.Type == models.EventProtectionStopped:
		fmt.Printf("  %s%s %s%s\n", colorGray, ts, ev.Action, colorReset)
	case ev.Action == models.ActionQuarantined:
		fmt.Printf("  %s%s%s %s%s⛔ QUARANTINED%s %s %s(%s)%s\n",
			colorGray, ts, colorReset, colorBold, colorRed, colorReset, ev.FilePath, colorGray, threat, colorReset)
	case ev.Action == models.ActionThreatDetected:
		fmt.Printf("  %s%s%s %s%s⚠ THREAT%s      %s %s(%s)%s\n",
			colorGray, ts, colorReset, colorBold, colorRed, colorReset, ev.FilePath, colorGray, threat, colorReset)
	case ev.Action == models.ActionError:
		fmt.Printf("  %s%s%s %s⚠ scan error%s  %s\n",
			colorGray, ts, colorReset, colorYellow, colorReset, ev.FilePath)
	default:
		if verbose {
			fmt.Printf("  %s%s ✓ scanned      %s%s\n", colorGray, ts, ev.FilePath, colorReset)
		}
	}
}

// quarantineCmd creates the quarantine command group
func quarantineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quarantine",
		Short: "Manage quarantined files",
		Long:  `List, restore, delete, purge, and export quarantined files.`,
	}

	cmd.AddCommand(quarantineListCmd())
	cmd.AddCommand(quarantineRestoreCmd())
	cmd.AddCommand(quarantineDeleteCmd())
	cmd.AddCommand(quarantinePurgeCmd())
	cmd.AddCommand(quarantineExportCmd())

	return cmd
}

// openStore opens the quarantine store from the configuration
func openStore() (*quarantine.Store, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	store, err := quarantine.NewStore(cfg.QuarantineDir, logger, metrics.Nop{})
	if err != nil {
		return nil, fmt.Errorf("failed to open quarantine: %w", err)
	}
	return store, nil
}

func quarantineListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List quarantined files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initLogger(); err != nil {
				return err
			}
			defer logger.Sync()

			store, err := openStore()
			if err != nil {
				return err
			}

			items := store.Items()
			if len(items) == 0 {
				fmt.Printf("\n  %sQuarantine is empty.%s\n\n", colorGray, colorReset)
				return nil
			}

			fmt.Printf("\n%s%sQUARANTINE%s %s(%d items, %s)%s\n\n",
				colorBold, colorOrange, colorReset, colorGray, store.Count(), formatSize(store.TotalSize()), colorReset)
			fmt.Printf("  %s%-18s %-17s %-9s %-28s %s%s\n",
				colorGray, "ID", "DATE", "LEVEL", "THREAT", "ORIGINAL PATH", colorReset)

			for _, item := range items {
				date := item.QuarantineDate
				if t, err := time.Parse(time.RFC3339, date); err == nil {
					date = t.Format("2006-01-02 15:04")
				}
				threat := item.ThreatName
				if len(threat) > 26 {
					threat = threat[:23] + "..."
				}
				fmt.Printf("  %-18s %-17s %s%-9s%s %-28s %s\n",
					item.ID, date, levelColor(item.Level()), item.ThreatLevel, colorReset, threat, item.OriginalPath)
			}
			fmt.Println()
			return nil
		},
	}
}

func quarantineRestoreCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a quarantined file to its original location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initLogger(); err != nil {
				return err
			}
			defer logger.Sync()

			store, err := openStore()
			if err != nil {
				return err
			}

			id := args[0]
			item, ok := store.Item(id)
			if !ok {
				return fmt.Errorf("no quarantined item with id %s", id)
			}

			dest := outputPath
			if dest == "" {
				dest = item.OriginalPath
			}
			if err := store.Restore(id, outputPath); err != nil {
				return fmt.Errorf("failed to restore %s: %w", id, err)
			}

			fmt.Printf("\n  %s✓ Restored%s %s %s→%s %s\n\n", colorGreen, colorReset, item.ThreatName, colorGray, colorReset, dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Restore to this path instead of the original location")
	return cmd
}

func quarantineDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Permanently delete a quarantined file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initLogger(); err != nil {
				return err
			}
			defer logger.Sync()

			store, err := openStore()
			if err != nil {
				return err
			}

			id := args[0]
			item, ok := store.Item(id)
			if !ok {
				return fmt.Errorf("no quarantined item with id %s", id)
			}

			if !force {
				fmt.Printf("\n  Permanently delete %s%s%s (%s)? This cannot be undone. [y/N]: ",
					colorBold, item.ThreatName, colorReset, item.OriginalPath)
				reader := bufio.NewReader(os.Stdin)
				input, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				input = strings.TrimSpace(strings.ToLower(input))
				if input != "y" && input != "yes" {
					fmt.Printf("  %sAborted.%s\n\n", colorGray, colorReset)
					return nil
				}
			}

			if err := store.DeletePermanently(id); err != nil {
				return fmt.Errorf("failed to delete %s: %w", id, err)
			}
			fmt.Printf("\n  %s✓ Deleted%s %s\n\n", colorGreen, colorReset, id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without confirmation")
	return cmd
}

func quarantinePurgeCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete quarantined files older than a retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 {
				return fmt.Errorf("--days must not be negative")
			}
			if err := initLogger(); err != nil {
				return err
			}
			defer logger.Sync()

			store, err := openStore()
			if err != nil {
				return err
			}

			purged := store.PurgeOlderThan(days)
			fmt.Printf("\n  %s✓ Purged%s %d item(s) older than %d days\n\n", colorGreen, colorReset, purged, days)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Delete items quarantined more than this many days ago")
	return cmd
}

func quarantineExportCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the quarantine inventory as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initLogger(); err != nil {
				return err
			}
			defer logger.Sync()

			store, err := openStore()
			if err != nil {
				return err
			}

			if outputFile == "" {
				outputFile = fmt.Sprintf("SENTRY-QUARANTINE-%s.json", time.Now().Format("20060102-150405"))
			}
			if err := store.ExportReport(outputFile); err != nil {
				return fmt.Errorf("failed to export quarantine report: %w", err)
			}

			absPath, _ := filepath.Abs(outputFile)
			fmt.Printf("\n  %s✓ Exported%s %d item(s) %s→%s %s\n\n",
				colorGreen, colorReset, store.Count(), colorGray, colorReset, absPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path")
	return cmd
}

// validateScanFlags validates CLI flag values
func validateScanFlags(sensitivity, reportFormat string) error {
	if sensitivity != "" {
		validLevels := []string{"low", "medium", "high"}
		if !contains(validLevels, sensitivity) {
			return fmt.Errorf("--sensitivity must be one of: %s (got: %s)", strings.Join(validLevels, ", "), sensitivity)
		}
	}

	if reportFormat != "" {
		validFormats := []string{"txt", "text", "json", "md", "markdown"}
		if !contains(validFormats, reportFormat) {
			return fmt.Errorf("--report must be one of: %s (got: %s)", strings.Join(validFormats, ", "), reportFormat)
		}
	}

	return nil
}

// normalizeFormat maps report format aliases to their canonical names
func normalizeFormat(format string) string {
	switch format {
	case "txt":
		return "text"
	case "md":
		return "markdown"
	default:
		return format
	}
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// repeat returns a string with character c repeated n times
func repeat(c string, n int) string {
	if n <= 0 {
		return ""
	}
	result := ""
	for i := 0; i < n; i++ {
		result += c
	}
	return result
}

// levelColor returns the ANSI color for a threat level
func levelColor(level models.ThreatLevel) string {
	switch level {
	case models.LevelCritical:
		return colorRed + colorBold
	case models.LevelHigh:
		return colorOrange
	case models.LevelMedium:
		return colorYellow
	case models.LevelLow:
		return colorGreen
	default:
		return colorGray
	}
}

// formatSize renders a byte count in binary units
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGT"[exp])
}

// helpCmd creates a detailed help command
func helpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "help",
		Short: "Show detailed help and documentation",
		Long:  `Display complete documentation including all commands, flags, and examples.`,
		Run: func(cmd *cobra.Command, args []string) {
			printMainBanner()

			fmt.Printf("%s%sABOUT%s\n\n", colorBold, colorOrange, colorReset)
			fmt.Printf("  Sentry is an endpoint malware scanner. It detects threats with hash\n")
			fmt.Printf("  signatures, byte patterns, and heuristic analysis, isolates infected\n")
			fmt.Printf("  files in an encrypted quarantine, and can watch directories in real\n")
			fmt.Printf("  time to catch malware as it lands on disk.\n\n")

			fmt.Printf("%s%sCOMMANDS%s\n\n", colorBold, colorOrange, colorReset)

			fmt.Printf("  %sscan [paths...]%s      Scan paths, or --quick / --full presets\n", colorBold, colorReset)
			fmt.Printf("  %smonitor [paths...]%s   Real-time protection for the given directories\n", colorBold, colorReset)
			fmt.Printf("  %squarantine%s           Manage isolated files (list, restore, delete, purge, export)\n", colorBold, colorReset)

			fmt.Printf("\n%s%sSCAN FLAGS%s\n\n", colorBold, colorOrange, colorReset)

			fmt.Printf("  %s--quick%s             Scan downloads, desktop, documents, and temp\n", colorBold, colorReset)
			fmt.Printf("  %s--full%s              Scan every local drive\n", colorBold, colorReset)
			fmt.Printf("  %s--workers%s <n>       Number of parallel workers (default: 4)\n", colorBold, colorReset)
			fmt.Printf("  %s--sensitivity%s <s>   Heuristic sensitivity: %slow%s, %smedium%s, %shigh%s\n",
				colorBold, colorReset, colorCyan, colorReset, colorCyan, colorReset, colorCyan, colorReset)
			fmt.Printf("  %s--max-size%s <size>   Maximum file size to scan (default: 500M)\n", colorBold, colorReset)
			fmt.Printf("  %s--exclude%s           Directories to exclude (comma-separated)\n", colorBold, colorReset)
			fmt.Printf("  %s--signatures%s <f>    Custom signature YAML file\n", colorBold, colorReset)
			fmt.Printf("  %s--quarantine%s        Quarantine threats as they are found\n", colorBold, colorReset)
			fmt.Printf("  %s-r, --report%s <fmt>  Report format: %stxt%s, %sjson%s, %smd%s\n",
				colorBold, colorReset, colorCyan, colorReset, colorCyan, colorReset, colorCyan, colorReset)
			fmt.Printf("  %s-o, --output%s <file> Output file path\n", colorBold, colorReset)

			fmt.Printf("\n%s%sMONITOR FLAGS%s\n\n", colorBold, colorOrange, colorReset)

			fmt.Printf("  %s--auto-quarantine%s   Quarantine detected threats automatically\n", colorBold, colorReset)
			fmt.Printf("  %s--metrics-addr%s <a>  Serve Prometheus metrics (e.g. :9090)\n", colorBold, colorReset)

			fmt.Printf("\n%s%sGLOBAL FLAGS%s\n\n", colorBold, colorOrange, colorReset)

			fmt.Printf("  %s-v, --verbose%s       Enable verbose logging\n", colorBold, colorReset)
			fmt.Printf("  %s-h, --help%s          Show help for any command\n", colorBold, colorReset)
			fmt.Printf("  %s--version%s           Show version\n", colorBold, colorReset)

			fmt.Printf("\n%s%sEXAMPLES%s\n\n", colorBold, colorOrange, colorReset)

			fmt.Printf("  %s# Quick scan of the usual infection points%s\n", colorGray, colorReset)
			fmt.Printf("  sentry scan --quick\n\n")

			fmt.Printf("  %s# Scan a directory and quarantine anything found%s\n", colorGray, colorReset)
			fmt.Printf("  sentry scan --quarantine ~/Downloads\n\n")

			fmt.Printf("  %s# Full scan with a JSON report%s\n", colorGray, colorReset)
			fmt.Printf("  sentry scan --full --report=json --output=scan.json\n\n")

			fmt.Printf("  %s# Real-time protection with auto-quarantine%s\n", colorGray, colorReset)
			fmt.Printf("  sentry monitor --auto-quarantine ~/Downloads\n\n")

			fmt.Printf("  %s# Inspect and restore quarantined files%s\n", colorGray, colorReset)
			fmt.Printf("  sentry quarantine list\n")
			fmt.Printf("  sentry quarantine restore a1b2c3d4e5f6a7b8\n\n")
		},
	}
}

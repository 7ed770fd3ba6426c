// Package main is the CLI entry point for hotkeyd.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/chord"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/config"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/daemon"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/infra"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/module"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hotkeyd",
	Short: "Keyboard shortcut host - launches and activates programs from chords",
	Long: `hotkeyd installs a single low-level keyboard hook and dispatches
chords to the modules it hosts. Run-program shortcuts from the keyboard
manager profile start a program, or bring it to the front if it is
already running.`,
	Version:      Version,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the hotkey host in the foreground",
	Long: `Installs the keyboard hook, binds every configured module and watches
the keyboard manager settings for changes. Stops on SIGINT or SIGTERM.`,
	RunE: runHost,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List modules and run-program shortcuts",
	RunE:  runList,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the host config and the active run-program profile",
	RunE:  runValidate,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a run-program shortcut to the active profile",
	Long: `Adds a shortcut such as --keys "91;65" (LWin+A) --target notepad.exe.
The profile is validated first; when it has problems you are asked to
confirm unless --yes is given. A running hotkeyd picks the change up.`,
	RunE: runAdd,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
	Run:   runVersion,
}

var (
	configPath  string
	settingsDir string
	profileName string
	verbose     bool
	jsonOutput  bool

	addKeys   string
	addTarget string
	addArgs   string
	addDir    string
	assumeYes bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Host config file (default: per-user hotkeyd.yaml)")
	rootCmd.PersistentFlags().StringVar(&settingsDir, "settings-dir", "", "Keyboard manager settings directory")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Development logging to stderr")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")
	for _, cmd := range []*cobra.Command{listCmd, validateCmd, addCmd} {
		cmd.Flags().StringVar(&profileName, "profile", "", "Profile to use instead of the active one")
	}

	addCmd.Flags().StringVar(&addKeys, "keys", "", "Semicolon-separated virtual key codes, e.g. 91;65")
	addCmd.Flags().StringVar(&addTarget, "target", "", "Program path, or RefreshConfig")
	addCmd.Flags().StringVar(&addArgs, "args", "", "Program arguments")
	addCmd.Flags().StringVar(&addDir, "dir", "", "Working directory")
	addCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Save without asking when validation reports problems")
	_ = addCmd.MarkFlagRequired("keys")
	_ = addCmd.MarkFlagRequired("target")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the host config and applies the command line overrides.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = infra.DetectPaths().HostConfig
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if settingsDir != "" {
		cfg.SettingsDir = settingsDir
	}
	if cfg.SettingsDir == "" {
		cfg.SettingsDir = infra.DetectPaths().SettingsDir
	}
	return cfg, cfg.Validate()
}

// resolveProfile returns --profile or the active profile.
func resolveProfile(store *infra.SettingsStore) (string, error) {
	if profileName != "" {
		return profileName, nil
	}
	return store.GetActiveProfileName()
}

func runHost(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := createLogger(cfg, verbose)
	defer func() { _ = logger.Sync() }()

	hostConfig := daemon.HostConfigFrom(cfg)
	host, err := daemon.NewHost(hostConfig, daemon.DefaultHostDeps(hostConfig.SettingsDir, logger), logger)
	if err != nil {
		return err
	}

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	return host.Run(ctx)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	store := infra.NewSettingsStore(cfg.SettingsDir)

	fmt.Fprintln(out, "\n=== Modules ===")
	for _, mc := range cfg.Modules {
		m, err := module.NewConfiguredModule(mc, nil, zap.NewNop())
		if err != nil {
			return err
		}
		printModule(out, module.Describe(m))
	}
	if cfg.KeyboardManager {
		km := module.NewKeyboardManagerModule(store, zap.NewNop())
		if err := km.Reload(); err != nil {
			return err
		}
		printModule(out, module.Describe(km))
	}

	profile, err := resolveProfile(store)
	if errors.Is(err, domain.ErrNoActiveProfile) {
		fmt.Fprintln(out, "\nNo active keyboard profile.")
		return nil
	}
	if err != nil {
		return err
	}
	entries, err := store.Entries(profile)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n=== Run-program shortcuts (%s) ===\n", profile)
	for i, e := range entries {
		printEntry(out, i, e)
	}
	fmt.Fprintln(out, "\n==================================")
	return nil
}

func printModule(out io.Writer, d module.Descriptor) {
	state := "enabled"
	if !d.Enabled {
		state = "disabled"
	}
	fmt.Fprintf(out, "\n[%s] %s\n", d.ID, state)
	for _, hk := range d.Hotkeys {
		fmt.Fprintf(out, "  - %s\n", hk)
	}
	if d.ExtendedHotkey != "" {
		fmt.Fprintf(out, "  extended: %s\n", d.ExtendedHotkey)
	}
	if d.TracksHeldWinKey {
		fmt.Fprintf(out, "  hold Win: %dms\n", d.HoldMs)
	}
}

func printEntry(out io.Writer, i int, e domain.RunProgramEntry) {
	spec, err := chord.ParseRunProgramSpec(e.OriginalKeys, e.TargetApp)
	if err != nil {
		fmt.Fprintf(out, "  %2d. %-20s (invalid: %v)\n", i, e.OriginalKeys, err)
		return
	}
	line := fmt.Sprintf("  %2d. %-20s -> %s", i, chord.FormatSpec(spec), spec.Path)
	if spec.Args != "" {
		line += " " + spec.Args
	}
	if spec.Dir != "" {
		line += " (in " + spec.Dir + ")"
	}
	fmt.Fprintln(out, line)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("host config: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Host config: OK")

	store := infra.NewSettingsStore(cfg.SettingsDir)
	profile, err := resolveProfile(store)
	if errors.Is(err, domain.ErrNoActiveProfile) {
		fmt.Fprintln(out, "No active keyboard profile.")
		return nil
	}
	if err != nil {
		return err
	}
	entries, err := store.Entries(profile)
	if err != nil {
		return err
	}

	result := chord.Validate(entries)
	if result.OK() {
		fmt.Fprintf(out, "Profile %s: %d shortcuts OK\n", profile, len(entries))
		return nil
	}
	for _, issue := range result.Issues {
		fmt.Fprintf(out, "  %s\n", issue)
	}
	return fmt.Errorf("profile %s: %d invalid shortcuts", profile, len(result.Issues))
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store := infra.NewSettingsStore(cfg.SettingsDir)

	profile, err := resolveProfile(store)
	if errors.Is(err, domain.ErrNoActiveProfile) {
		profile = "Default"
		if err := store.SetActiveProfileName(profile); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	entries, err := store.Entries(profile)
	if err != nil {
		return err
	}

	entry := domain.RunProgramEntry{
		OriginalKeys: addKeys,
		TargetApp:    chord.JoinTarget(addTarget, addArgs, addDir),
	}
	updated, result := appendEntry(entries, entry)

	out := cmd.OutOrStdout()
	if !result.OK() {
		fmt.Fprintln(out, "Validation reported problems:")
		for _, issue := range result.Issues {
			fmt.Fprintf(out, "  %s\n", issue)
		}
		if !assumeYes && !confirm(cmd.InOrStdin(), out, "Save anyway?") {
			return errors.New("not saved")
		}
	}

	if err := store.SaveEntries(profile, updated); err != nil {
		return err
	}
	fmt.Fprintf(out, "Added %s to profile %s.\n", strings.TrimSpace(addKeys), profile)
	return nil
}

// appendEntry adds entry and validates the resulting buffer.
func appendEntry(entries []domain.RunProgramEntry, entry domain.RunProgramEntry) ([]domain.RunProgramEntry, chord.ValidationResult) {
	updated := make([]domain.RunProgramEntry, 0, len(entries)+1)
	updated = append(updated, entries...)
	updated = append(updated, entry)
	return updated, chord.Validate(updated)
}

// confirm asks a yes/no question; anything but y or yes is no.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func createLogger(cfg config.Config, verbose bool) *zap.Logger {
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return zap.NewNop()
		}
		return logger
	}

	zc := zap.NewProductionConfig()
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	if cfg.LogFile != "" {
		zc.OutputPaths = []string{cfg.LogFile}
		zc.ErrorOutputPaths = []string{cfg.LogFile}
	}
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zc.Build()
	if err != nil {
		// Fallback to stderr if file logging fails
		logger, _ = zap.NewProduction()
	}
	return logger
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Printf("hotkeyd %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}

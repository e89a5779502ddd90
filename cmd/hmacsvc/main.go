package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mattjoyce/hmacsvc/internal/api"
	"github.com/mattjoyce/hmacsvc/internal/audit"
	"github.com/mattjoyce/hmacsvc/internal/config"
	"github.com/mattjoyce/hmacsvc/internal/lock"
	"github.com/mattjoyce/hmacsvc/internal/log"
	"github.com/mattjoyce/hmacsvc/internal/secret"
	"github.com/mattjoyce/hmacsvc/internal/signer"
	"github.com/mattjoyce/hmacsvc/internal/storage"
	"github.com/mattjoyce/hmacsvc/internal/tui"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var theme = tui.NewDefaultTheme()

// confirmRotate asks before a secret is replaced. Tests swap it out.
var confirmRotate = func(path string) (bool, error) {
	return tui.Confirm(fmt.Sprintf("Replace the secret in %s? Signatures issued with the old secret will stop verifying.", path))
}

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(cliArgs []string) int {
	if len(cliArgs) < 1 {
		printUsage()
		return 1
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	switch cmd {
	// --- NOUNS ---
	case "system":
		return runSystemNoun(args)
	case "config":
		return runConfigNoun(args)
	case "secret":
		return runSecretNoun(args)
	case "audit":
		return runAuditNoun(args)

	// --- ROOT ALIASES ---
	case "serve", "start":
		if hasHelpFlag(args) {
			printSystemStartHelp()
			return 0
		}
		return runStart(args)
	case "version", "--version":
		return runVersion(args)
	case "help", "--help", "-h":
		printUsage()
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return 1
	}
}

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output version metadata as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Usage: hmacsvc version [--json]")
		return 1
	}

	info := currentVersionInfo()

	if *jsonOut {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render version JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("hmacsvc %s\n", info.Version)
	fmt.Printf("commit: %s\n", info.Commit)
	fmt.Printf("built_at: %s\n", info.BuildTime)
	return 0
}

func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:   strings.TrimSpace(version),
		Commit:    "unknown",
		BuildTime: "unknown",
	}
	if info.Version == "" {
		info.Version = "0.0.0-dev"
	}

	resolvedCommit := strings.TrimSpace(gitCommit)
	if resolvedCommit == "" || resolvedCommit == "unknown" {
		resolvedCommit = strings.TrimSpace(readBuildSetting("vcs.revision"))
	}
	if resolvedCommit != "" {
		info.Commit = shortenCommit(resolvedCommit)
	}

	resolvedBuildTime := strings.TrimSpace(buildDate)
	if resolvedBuildTime == "" || resolvedBuildTime == "unknown" {
		resolvedBuildTime = strings.TrimSpace(readBuildSetting("vcs.time"))
	}
	if t, err := time.Parse(time.RFC3339Nano, resolvedBuildTime); err == nil {
		info.BuildTime = t.UTC().Format(time.RFC3339)
	}

	return info
}

func shortenCommit(commit string) string {
	if len(commit) <= 12 {
		return commit
	}
	return commit[:12]
}

func readBuildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

func printUsage() {
	fmt.Print(`hmacsvc - HMAC-SHA256 message signing service

Usage:
  hmacsvc <noun> <action> [flags]

Core Resources (Nouns):
  system    Service lifecycle
  config    Configuration and integrity
  secret    Shared secret generation and rotation
  audit     Request audit trail

System Commands:
  system start      Start the HTTP service in foreground (alias: serve)

Config Commands:
  config check      Validate syntax, values, and integrity
  config show       Print the configuration with the secret redacted
  config lock       Authorize current state (update integrity hashes)

Secret Commands:
  secret generate   Print a new random secret
  secret rotate     Replace the configured secret (offline)

Audit Commands:
  audit list        Show recent sign/verify records

General:
  --version         Show version information
  version           Show version information
  help              Show this help message

Config discovery: --config, then $CONFIG_PATH, then ./config.yaml, then ./config.json.
Use 'hmacsvc <noun> help' for resource-specific flags.
`)
}

// --- NOUN DISPATCHERS ---

func runSystemNoun(args []string) int {
	if len(args) < 1 {
		printSystemNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printSystemNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "start":
		if hasHelpFlag(actionArgs) {
			printSystemStartHelp()
			return 0
		}
		return runStart(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown system action: %s\n", action)
		return 1
	}
}

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		printConfigNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printConfigNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "check":
		if hasHelpFlag(actionArgs) {
			printConfigCheckHelp()
			return 0
		}
		return runConfigCheck(actionArgs)
	case "show":
		if hasHelpFlag(actionArgs) {
			printConfigShowHelp()
			return 0
		}
		return runConfigShow(actionArgs)
	case "lock":
		if hasHelpFlag(actionArgs) {
			printConfigLockHelp()
			return 0
		}
		return runConfigLock(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}

func runSecretNoun(args []string) int {
	if len(args) < 1 {
		printSecretNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printSecretNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "generate":
		if hasHelpFlag(actionArgs) {
			printSecretGenerateHelp()
			return 0
		}
		return runSecretGenerate(actionArgs)
	case "rotate":
		if hasHelpFlag(actionArgs) {
			printSecretRotateHelp()
			return 0
		}
		return runSecretRotate(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown secret action: %s\n", action)
		return 1
	}
}

func runAuditNoun(args []string) int {
	if len(args) < 1 {
		printAuditNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printAuditNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "list":
		if hasHelpFlag(actionArgs) {
			printAuditListHelp()
			return 0
		}
		return runAuditList(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown audit action: %s\n", action)
		return 1
	}
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

func printSystemNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: hmacsvc system <action>")
	fmt.Fprintln(w, "Actions: start")
}

func printConfigNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: hmacsvc config <action> [flags]")
	fmt.Fprintln(w, "Actions: check, show, lock")
}

func printSecretNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: hmacsvc secret <action> [flags]")
	fmt.Fprintln(w, "Actions: generate, rotate")
}

func printAuditNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: hmacsvc audit <action> [flags]")
	fmt.Fprintln(w, "Actions: list")
}

func printSystemStartHelp() {
	fmt.Println("Usage: hmacsvc system start [--config PATH]")
	fmt.Println("Start the HTTP service in the foreground.")
}

func printConfigCheckHelp() {
	fmt.Println("Usage: hmacsvc config check [--config PATH]")
	fmt.Println("Validate the configuration and its integrity hash.")
	fmt.Println("")
	fmt.Println("Exit codes:")
	fmt.Println("  0  Configuration is valid")
	fmt.Println("  1  Configuration is invalid or fails integrity verification")
}

func printConfigShowHelp() {
	fmt.Println("Usage: hmacsvc config show [--config PATH] [--json]")
	fmt.Println("Print the resolved configuration. The secret is never printed.")
}

func printConfigLockHelp() {
	fmt.Println("Usage: hmacsvc config lock [--config PATH]")
	fmt.Println("Validate the configuration and record its BLAKE3 hash in .checksums.")
}

func printSecretGenerateHelp() {
	fmt.Println("Usage: hmacsvc secret generate [--bytes N]")
	fmt.Println("Print a random secret encoded as unpadded base64url.")
}

func printSecretRotateHelp() {
	fmt.Println("Usage: hmacsvc secret rotate [--config PATH] [--bytes N] [--yes]")
	fmt.Println("Write a new random secret into the config file. Other keys and comments are kept.")
	fmt.Println("The running service keeps its old secret until it is restarted.")
}

func printAuditListHelp() {
	fmt.Println("Usage: hmacsvc audit list [--config PATH] [--limit N] [--json]")
	fmt.Println("Show the most recent audit records. Requires audit.path in the config.")
}

// --- ACTIONS ---

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.LogLevel)
	logger := log.WithComponent("main")
	logger.Info("hmacsvc starting", "version", version, "config", cfg.SourcePath)

	s, err := signer.New(signer.Config{Algorithm: cfg.HMACAlg, Secret: cfg.SecretBytes})
	if err != nil {
		logger.Error("failed to initialize signer", "error", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recorder := audit.NewRecorder(log.WithComponent("audit"), nil)
	if cfg.Audit.Path != "" {
		db, err := storage.OpenSQLite(ctx, cfg.Audit.Path)
		if err != nil {
			logger.Error("failed to open audit database", "path", cfg.Audit.Path, "error", err)
			return 1
		}
		defer db.Close()
		recorder = audit.NewRecorder(log.WithComponent("audit"), audit.NewStore(db))
		logger.Info("audit database opened", "path", cfg.Audit.Path)
	}

	apiServer := api.New(api.Config{
		Listen:          cfg.Listen,
		MaxMsgSizeBytes: cfg.MaxMsgSizeBytes,
	}, s, recorder, log.WithComponent("api"))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start(ctx)
	}()

	logger.Info("hmacsvc running (press Ctrl+C to stop)")

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("shutdown failed", "error", err)
			return 1
		}
	case err := <-errCh:
		logger.Error("api server failed", "error", err)
		return 1
	}

	logger.Info("hmacsvc stopped")
	return 0
}

func runConfigCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", theme.Failed.Render("FAIL"), err)
		return 1
	}

	integrity := "unlocked (run 'hmacsvc config lock')"
	if config.HasChecksums(cfg.SourcePath) {
		integrity = "verified"
	}

	fmt.Printf("%s %s\n", theme.OK.Render("OK"), cfg.SourcePath)
	fmt.Printf("  hmac_alg:           %s\n", cfg.HMACAlg)
	fmt.Printf("  listen:             %s\n", cfg.Listen)
	fmt.Printf("  max_msg_size_bytes: %d\n", cfg.MaxMsgSizeBytes)
	fmt.Printf("  integrity:          %s\n", integrity)
	return 0
}

func runConfigShow(args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load error: %v\n", err)
		return 1
	}

	redacted := cfg.Redacted()
	if *jsonOut {
		data, err := json.MarshalIndent(redacted, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	data, err := yaml.Marshal(redacted)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render YAML: %v\n", err)
		return 1
	}
	fmt.Println(theme.Title.Render("# " + cfg.SourcePath))
	fmt.Print(string(data))
	return 0
}

func runConfigLock(args []string) int {
	fs := flag.NewFlagSet("lock", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	path, err := config.Discover(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to discover config: %v\n", err)
		return 1
	}

	// Refuse to authorize a file the service would reject.
	cfg, err := config.LoadUnverified(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", theme.Failed.Render("FAIL"), err)
		return 1
	}

	fl, err := lock.Acquire(lock.PathFor(cfg.SourcePath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to lock config for writing: %v\n", err)
		return 1
	}
	defer fl.Release()

	hash, err := config.Lock(cfg.SourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lock failed: %v\n", err)
		return 1
	}

	fmt.Printf("%s %s blake3:%s\n", theme.OK.Render("LOCKED"), cfg.SourcePath, hash)
	return 0
}

func runSecretGenerate(args []string) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	size := fs.Int("bytes", secret.DefaultSize, "Secret length in bytes")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	s, err := secret.Generate(*size)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate secret: %v\n", err)
		return 1
	}
	fmt.Println(s)
	return 0
}

func runSecretRotate(args []string) int {
	fs := flag.NewFlagSet("rotate", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	size := fs.Int("bytes", secret.DefaultSize, "Secret length in bytes")
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	// Load verifies integrity so a tampered file is never re-locked.
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	newSecret, err := secret.Generate(*size)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate secret: %v\n", err)
		return 1
	}

	if !*yes {
		ok, err := confirmRotate(cfg.SourcePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Confirmation failed: %v\n", err)
			return 1
		}
		if !ok {
			fmt.Println("Rotation cancelled.")
			return 1
		}
	}

	fl, err := lock.Acquire(lock.PathFor(cfg.SourcePath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to lock config for writing: %v\n", err)
		return 1
	}
	defer fl.Release()

	if err := config.RewriteSecret(cfg.SourcePath, newSecret); err != nil {
		fmt.Fprintf(os.Stderr, "Rotation failed: %v\n", err)
		return 1
	}

	if config.HasChecksums(cfg.SourcePath) {
		if _, err := config.Lock(cfg.SourcePath); err != nil {
			fmt.Fprintf(os.Stderr, "Secret rotated but checksum refresh failed: %v\n", err)
			return 1
		}
	}

	// The rewritten file must still load.
	if _, err := config.Load(cfg.SourcePath); err != nil {
		fmt.Fprintf(os.Stderr, "Rotated config failed validation: %v\n", err)
		return 1
	}

	fmt.Printf("%s secret rotated in %s (%d bytes)\n", theme.OK.Render("OK"), cfg.SourcePath, *size)
	fmt.Println(theme.Warn.Render("Restart the service to apply the new secret."))
	return 0
}

func runAuditList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	limit := fs.Int("limit", 20, "Maximum number of records")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load error: %v\n", err)
		return 1
	}
	if cfg.Audit.Path == "" {
		fmt.Fprintln(os.Stderr, "Audit sink is not configured (set audit.path)")
		return 1
	}

	ctx := context.Background()
	db, err := storage.OpenSQLite(ctx, cfg.Audit.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open audit database: %v\n", err)
		return 1
	}
	defer db.Close()

	records, err := audit.NewStore(db).Recent(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read audit records: %v\n", err)
		return 1
	}

	if *jsonOut {
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	if len(records) == 0 {
		fmt.Println(theme.Dim.Render("No audit records."))
		return 0
	}

	fmt.Println(theme.Title.Render(fmt.Sprintf("%-36s  %-6s  %7s  %-5s  %s", "ID", "OP", "MSG_LEN", "OK", "CREATED_AT")))
	for _, rec := range records {
		ok := "-"
		if rec.OK != nil {
			ok = fmt.Sprintf("%t", *rec.OK)
		}
		fmt.Printf("%-36s  %-6s  %7d  %-5s  %s\n", rec.ID, rec.Op, rec.MsgLen, ok, rec.CreatedAt.UTC().Format(time.RFC3339))
	}
	return 0
}

func loadConfig(explicit string) (*config.Config, error) {
	path, err := config.Discover(explicit)
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

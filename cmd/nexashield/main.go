package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/git-atharvb/nexashield-app/internal/cli"
	"github.com/git-atharvb/nexashield-app/internal/config"
	"github.com/git-atharvb/nexashield-app/internal/logging"
	"github.com/git-atharvb/nexashield-app/pkg/models"
	version "github.com/git-atharvb/nexashield-app/pkg/version"
)

// Package main provides the nexashield CLI for signature-based file scanning,
// quarantine management and scheduled background protection.

// -- Main Entry Point --

func main() {
	// Configure help text
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `nexashield - NexaShield Security CLI

A signature-based antivirus engine with quarantine and scheduling.

Usage:
  nexashield scan <quick|full|custom|file> [target]   Run a scan; result JSON goes to stdout
  nexashield hash <digest|file>                       Check one hash against the signature database
  nexashield update                                   Merge the bundled definition set into the database
  nexashield quarantine <list|apply|restore|purge>    Manage isolated files
  nexashield history [--clear]                        Show or wipe past scan runs
  nexashield schedule <show|set>                      Inspect or configure the daily scan
  nexashield daemon                                   Run scheduler + real-time watch until signalled
  nexashield watch [--root <dir>] [--scan]            Watch a directory for new/changed files
  nexashield version                                  Display CLI and engine version

Commands:
  scan    Walk the target, hash every regular file and match signatures.
          Flags:
            --db          Path to signature database
            --progress    Stream progress to stderr
            --quarantine  Auto-isolate every finding
  hash    Manual check of a single sha256/md5 digest (or hash a file first)
  update  Definition update; existing signatures are never overwritten
  history Most-recent-first scan log, stored alongside the signatures

Examples:
  nexashield scan quick --progress
  nexashield scan custom ~/Downloads --quarantine
  nexashield hash 275a021bbfb6489e54d471899f7db9d1663fc695ec2fe2a2c4538aabf651fd0f
  nexashield quarantine restore /home/user/Downloads/invoice.pdf.exe
  nexashield schedule set --enabled --type Quick --time 12:00
  nexashield daemon
`)
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	log := logging.Init("nexashield")
	cfg := config.Load()

	// -- Flag Definitions --

	scanCmd := flag.NewFlagSet("scan", flag.ExitOnError)
	scanDB := scanCmd.String("db", "", "Path to signature database")
	scanProgress := scanCmd.Bool("progress", false, "Stream progress to stderr")
	scanIsolate := scanCmd.Bool("quarantine", false, "Auto-isolate findings")

	hashCmd := flag.NewFlagSet("hash", flag.ExitOnError)
	hashDB := hashCmd.String("db", "", "Path to signature database")

	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	updateDB := updateCmd.String("db", "", "Path to signature database")

	historyCmd := flag.NewFlagSet("history", flag.ExitOnError)
	historyDB := historyCmd.String("db", "", "Path to signature database")
	historyClear := historyCmd.Bool("clear", false, "Wipe the scan history")

	scheduleSetCmd := flag.NewFlagSet("schedule set", flag.ExitOnError)
	schedEnabled := scheduleSetCmd.Bool("enabled", false, "Enable the daily scan")
	schedType := scheduleSetCmd.String("type", string(models.ScanQuick), "Scan type: Quick or Full")
	schedTime := scheduleSetCmd.String("time", "12:00", "Fire time, HH:mm 24-hour")

	watchCmd := flag.NewFlagSet("watch", flag.ExitOnError)
	watchRoot := watchCmd.String("root", cfg.WatchRoot, "Directory to watch")
	watchScan := watchCmd.Bool("scan", false, "Check events against the signature database")
	watchDB := watchCmd.String("db", "", "Path to signature database")

	// -- Command Routing --

	switch cmd {
	case "scan":
		if err := scanCmd.Parse(os.Args[2:]); err != nil {
			cli.ExitError(err)
		}
		if scanCmd.NArg() < 1 {
			scanCmd.Usage()
			os.Exit(1)
		}
		scanType, err := parseScanType(scanCmd.Arg(0))
		if err != nil {
			cli.ExitError(err)
		}
		opts := cli.ScanOptions{
			DBPath:        resolveDB(*scanDB, cfg),
			Target:        scanCmd.Arg(1),
			ShowProgress:  *scanProgress,
			AutoIsolate:   *scanIsolate,
			QuarantineDir: cfg.QuarantineDir,
			QuarantineLog: cfg.QuarantineLogPath,
		}
		if err := cli.RunScan(scanType, opts); err != nil {
			cli.ExitError(err)
		}

	case "hash":
		if err := hashCmd.Parse(os.Args[2:]); err != nil {
			cli.ExitError(err)
		}
		if hashCmd.NArg() < 1 {
			hashCmd.Usage()
			os.Exit(1)
		}
		if err := cli.RunHash(hashCmd.Arg(0), resolveDB(*hashDB, cfg)); err != nil {
			cli.ExitError(err)
		}

	case "update":
		if err := updateCmd.Parse(os.Args[2:]); err != nil {
			cli.ExitError(err)
		}
		if err := cli.RunUpdate(resolveDB(*updateDB, cfg)); err != nil {
			cli.ExitError(err)
		}

	case "quarantine":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: nexashield quarantine <list|apply|restore|purge> [paths...]")
			os.Exit(1)
		}
		sub, args := os.Args[2], os.Args[3:]
		var err error
		switch sub {
		case "list":
			err = cli.RunQuarantineList(cfg.QuarantineDir, cfg.QuarantineLogPath)
		case "apply":
			if len(args) == 0 {
				err = fmt.Errorf("quarantine apply requires at least one path")
			} else {
				err = cli.RunQuarantineApply(cfg.QuarantineDir, cfg.QuarantineLogPath, args)
			}
		case "restore":
			err = cli.RunQuarantineRestore(cfg.QuarantineDir, cfg.QuarantineLogPath, args)
		case "purge":
			err = cli.RunQuarantinePurge(cfg.QuarantineDir, cfg.QuarantineLogPath, args)
		default:
			err = fmt.Errorf("unknown quarantine subcommand: %s", sub)
		}
		if err != nil {
			cli.ExitError(err)
		}

	case "history":
		if err := historyCmd.Parse(os.Args[2:]); err != nil {
			cli.ExitError(err)
		}
		if err := cli.RunHistory(resolveDB(*historyDB, cfg), *historyClear); err != nil {
			cli.ExitError(err)
		}

	case "schedule":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: nexashield schedule <show|set>")
			os.Exit(1)
		}
		switch os.Args[2] {
		case "show":
			if err := cli.RunScheduleShow(cfg.ScheduleFilePath); err != nil {
				cli.ExitError(err)
			}
		case "set":
			if err := scheduleSetCmd.Parse(os.Args[3:]); err != nil {
				cli.ExitError(err)
			}
			if err := cli.RunScheduleSet(cfg.ScheduleFilePath, *schedEnabled, *schedType, *schedTime); err != nil {
				cli.ExitError(err)
			}
		default:
			fmt.Fprintf(os.Stderr, "unknown schedule subcommand: %s\n", os.Args[2])
			os.Exit(1)
		}

	case "daemon":
		if err := cli.RunDaemon(cfg, log); err != nil {
			cli.ExitError(err)
		}

	case "watch":
		if err := watchCmd.Parse(os.Args[2:]); err != nil {
			cli.ExitError(err)
		}
		if err := cli.RunWatch(*watchRoot, resolveDB(*watchDB, cfg), *watchScan, log); err != nil {
			cli.ExitError(err)
		}

	case "version":
		fmt.Println("NexaShield Security CLI")
		// Automatically pulls the tag from the build info, or "(devel)" when running locally
		fmt.Printf("Build: %s\n", version.EngineVersion())

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		if suggestion := cli.SuggestCommand(cmd); suggestion != "" {
			fmt.Fprintf(os.Stderr, "Did you mean '%s'?\n", suggestion)
		}
		flag.Usage()
		os.Exit(1)
	}
}

func parseScanType(arg string) (models.ScanType, error) {
	switch arg {
	case "quick", "Quick":
		return models.ScanQuick, nil
	case "full", "Full":
		return models.ScanFull, nil
	case "custom", "Custom":
		return models.ScanCustom, nil
	case "file", "File":
		return models.ScanFile, nil
	default:
		return "", fmt.Errorf("unknown scan type: %s (want quick, full, custom or file)", arg)
	}
}

// resolveDB prefers the explicit flag, then the environment chain, then the
// configured default path.
func resolveDB(flagValue string, cfg *config.Config) string {
	if flagValue != "" {
		return flagValue
	}
	if resolved := cli.ResolveDBPath(""); resolved != "" {
		return resolved
	}
	return cfg.DBPath
}

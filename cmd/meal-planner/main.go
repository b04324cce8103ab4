package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"meal-planner/internal/app"
	"meal-planner/internal/config"
	"meal-planner/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()
	rt, err := app.Bootstrap(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize application", zap.Error(err))
	}
	defer rt.Close()

	if err := run(ctx, rt.App, os.Args[1], os.Args[2:]); err != nil {
		log.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		rt.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, command string, args []string) error {
	switch command {
	case "analyze":
		if len(args) != 1 {
			return fmt.Errorf("usage: analyze <file>")
		}
		text, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		items, err := a.Analyze(ctx, string(text))
		if err != nil {
			return err
		}
		return printJSON(items)

	case "shopping-list":
		fs := flag.NewFlagSet("shopping-list", flag.ExitOnError)
		user := fs.String("user", "", "User id whose current plan is used")
		fs.Parse(args)
		if *user == "" {
			return fmt.Errorf("-user is required")
		}
		list, err := a.ShoppingList(ctx, *user)
		if err != nil {
			return err
		}
		return printJSON(list)

	case "import-ghost":
		fs := flag.NewFlagSet("import-ghost", flag.ExitOnError)
		owner := fs.String("owner", "", "User id that owns the imported recipes")
		fs.Parse(args)
		if *owner == "" {
			return fmt.Errorf("-owner is required")
		}
		report, err := a.ImportGhost(ctx, *owner)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d recipes (%d skipped, %d failed).\n", report.Imported, report.Skipped, report.Failed)
		return nil

	case "metrics-cleanup":
		fs := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := fs.Int("days", 30, "Keep records for the last N days")
		fs.Parse(args)
		affected, err := a.CleanupMetrics(ctx, *days)
		if err != nil {
			return err
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
		return nil

	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printUsage() {
	fmt.Println("Usage: meal-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  analyze <file>               Resolve an ingredient list against the catalog")
	fmt.Println("  shopping-list -user <id>     Print the shopping list of the user's current plan")
	fmt.Println("  import-ghost -owner <id>     Import recipe posts from Ghost")
	fmt.Println("  metrics-cleanup -days <n>    Remove old metric records")
}

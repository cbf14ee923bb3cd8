package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/log"
	"github.com/jholloway/watchdo/internal"
	"github.com/spf13/cobra"
)

var (
	command    string
	debounce   int
	throttle   int
	exclude    []string
	initial    bool
	kill       bool
	verbose    bool
	configFile string

	rootCmd = &cobra.Command{
		Use:     "watchdo [flags] [patterns]",
		Short:   "Runs a command when watched files change",
		Version: "0.1.0",
		Run:     execute,
	}

	logger = log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "watchdo",
	})
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&command, "command", "c", "", "shell command template to run; {path} and {event} are substituted")
	rootCmd.PersistentFlags().IntVar(&debounce, "debounce", 100, "debounce window in milliseconds")
	rootCmd.PersistentFlags().IntVar(&throttle, "throttle", 0, "throttle window in milliseconds, 0 to disable")
	rootCmd.PersistentFlags().StringSliceVarP(&exclude, "exclude", "e", []string{}, "exclude matching paths")
	rootCmd.PersistentFlags().BoolVarP(&initial, "initial", "i", false, "execute command once on load without any event")
	rootCmd.PersistentFlags().BoolVarP(&kill, "kill", "k", false, "interrupt a running command when a new change fires")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file; flags take precedence")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func execute(cmd *cobra.Command, args []string) {
	workDir, err := os.Getwd()
	if err != nil {
		fail(cmd, "Could not determine working directory: "+err.Error())
	}

	config := internal.Config{
		WorkDir:  workDir,
		Patterns: args,
		Command:  command,
		Debounce: debounce,
		Throttle: throttle,
		Exclude:  exclude,
		Initial:  initial,
		Kill:     kill,
		Verbose:  verbose,
	}

	if configFile != "" {
		fc, err := internal.LoadFileConfig(configFile)
		if err != nil {
			fail(cmd, err.Error())
		}
		config = fc.Merge(config, cmd.Flags().Changed)
	}

	if len(config.Patterns) == 0 {
		fail(cmd, "No patterns provided, pass at least one glob pattern to watch")
	}
	if config.Command == "" {
		fail(cmd, "No command specified, pass one with -c or in the config file")
	}

	watcher, err := internal.NewWatcher(logger)
	if err != nil {
		logger.Fatal("Could not start filesystem watcher", "err", err)
	}
	defer watcher.Close()

	if err := watcher.Subscribe(config.WorkDir, config.Patterns); err != nil {
		logger.Fatal("Could not watch patterns", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	controller := internal.NewController(config, watcher, internal.NewRunner(logger), clock.New(), logger)
	if err := controller.Run(ctx); err != nil {
		logger.Fatal("Watch session failed", "err", err)
	}
}

// fail reports an invalid invocation and exits non-zero.
func fail(cmd *cobra.Command, msg string) {
	fmt.Println(msg)
	fmt.Println("")
	cmd.Help()
	os.Exit(1)
}

package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/paperorg/paperorg/internal/logging"
	"github.com/paperorg/paperorg/internal/metadata"
	"github.com/paperorg/paperorg/internal/organize"
	"github.com/paperorg/paperorg/internal/transfer"
	"github.com/paperorg/paperorg/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "paperorg/0.1"
)

func init() {
	rootCmd.Flags().StringP("dir", "d", "", "destination directory (default $PAPERS_DIR or ~/Papers)")
	rootCmd.Flags().StringP("name", "n", "", "explicit filename for a single URL or file")
	rootCmd.Flags().Bool("no-auto-name", false, "keep the source filename instead of naming from metadata")
	rootCmd.Flags().BoolP("quiet", "q", false, "suppress per-item status output")
	rootCmd.Flags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	rootCmd.Flags().String("user-agent", "", "User-Agent header for HTTP requests")
	rootCmd.Flags().String("transfer-rules", "", "YAML file overriding download retry rules")
}

func runOrganize(cmd *cobra.Command, args []string) error {
	// Usage output is only helpful for argument mistakes, not for
	// runtime failures.
	cmd.SilenceUsage = true

	quiet, _ := cmd.Flags().GetBool("quiet")
	verbose, _ := cmd.Flags().GetBool("verbose")
	log := logging.New(os.Stderr, quiet, verbose)

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = viper.GetDuration("timeout")
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}

	userAgent, _ := cmd.Flags().GetString("user-agent")
	if userAgent == "" {
		userAgent = viper.GetString("user_agent")
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	rulesPath, _ := cmd.Flags().GetString("transfer-rules")
	if rulesPath == "" {
		rulesPath = viper.GetString("transfer_rules")
	}
	rules, err := transfer.LoadRules(rulesPath)
	if err != nil {
		return err
	}

	flagDir, _ := cmd.Flags().GetString("dir")
	if flagDir == "" {
		flagDir = viper.GetString("dir")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolving home directory: %w", err)
	}
	dest := organize.ResolveDestination(flagDir, os.Getenv(organize.EnvDir), home)
	dest, err = organize.EnsureDestination(dest)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if quiet {
		out = io.Discard
	}

	if dest.FirstUse && dest.Source == "default" {
		fmt.Fprintf(out, "Created %s; papers will be stored there. Set %s or pass --dir to change this.\n",
			dest.Path, organize.EnvDir)
	}
	if dest.Fallback {
		fmt.Fprintf(out, "Could not create the default papers directory; using %s instead.\n", dest.Path)
	}

	customName, _ := cmd.Flags().GetString("name")
	noAutoName, _ := cmd.Flags().GetBool("no-auto-name")

	client := &http.Client{Timeout: timeout}

	extractCfg := types.ExtractionConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: userAgent,
		},
	}

	org := &organize.Organizer{
		Client:    client,
		Extractor: metadata.New(client, extractCfg, log),
		Config: organize.Config{
			DestDir:    dest.Path,
			CustomName: customName,
			AutoName:   !noAutoName,
			UserAgent:  userAgent,
			Rules:      rules,
		},
		Log: log,
		Out: out,
	}

	summary := org.Run(cmd.Context(), args[0])
	if summary.Succeeded == 0 {
		if len(summary.Outcomes) == 1 && summary.Outcomes[0].Err != nil {
			return summary.Outcomes[0].Err
		}
		return fmt.Errorf("%d item(s) failed", summary.Failed)
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperorg CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the paperorg CLI.
var rootCmd = &cobra.Command{
	Use:   "paperorg [flags] INPUT",
	Short: "Download and organize academic paper PDFs",
	Long: `paperorg takes a URL, a PDF file or a directory of PDFs, extracts what
bibliographic metadata the files offer, and stores each paper under a
readable Surname_Year_Title.pdf filename in your papers directory.

INPUT may be an http(s) URL to download, a local PDF file to organize, or
a directory whose PDFs are organized one by one.`,
	Args: cobra.ExactArgs(1),
	RunE: runOrganize,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperorg.yaml or ~/.config/paperorg/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paperorg")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paperorg"))
		}
	}

	viper.SetEnvPrefix("PAPERORG")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

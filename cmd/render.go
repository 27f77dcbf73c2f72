package cmd

import (
	"github.com/arenadata/dbinit/internal/assemble"
	"github.com/arenadata/dbinit/internal/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the seed configuration into init and boot SQL scripts",
	Run:   renderScripts,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	configFileFlags(renderCmd)
	renderCmd.Flags().StringP("target", "t", "", "Target dialect (postgres, mysql or an alias)")
	renderCmd.Flags().StringP("output", "o", ".", "Output directory (init.d and boot.d are created inside)")
	renderCmd.Flags().String("secrets-root", "/run/secrets", "Directory holding secret files")
	renderCmd.Flags().String("age-key-file", ageKeyFilename, "Private age key for encrypted config values")
	renderCmd.Flags().Bool("drop-users", false, "Emit DROP USER before CREATE USER")
	renderCmd.Flags().Bool("drop-databases", false, "Emit DROP DATABASE before CREATE DATABASE")
	renderCmd.Flags().Bool("wrapper", false, "Also emit the runner script and launcher")
	renderCmd.Flags().String("template-dir", "", "Directory with <dialect>.runner templates (default: built-in)")

	_ = renderCmd.MarkFlagRequired("target")
}

func renderScripts(cmd *cobra.Command, _ []string) {
	logger := log.WithField("command", "render")

	var cfg *config.Config
	var err error
	if doc := getString(cmd, "config-data"); len(doc) > 0 {
		cfg, err = config.LoadString(doc)
	} else {
		cfg, err = config.LoadFile(getString(cmd, "file"))
	}
	if err != nil {
		logger.Fatal(err)
	}

	opts := assemble.Options{
		Target:        getString(cmd, "target"),
		OutputDir:     getString(cmd, "output"),
		SecretsRoot:   getString(cmd, "secrets-root"),
		AgeKeyFile:    getString(cmd, "age-key-file"),
		DropUsers:     getBool(cmd, "drop-users"),
		DropDatabases: getBool(cmd, "drop-databases"),
		Wrapper:       getBool(cmd, "wrapper"),
		TemplateDir:   getString(cmd, "template-dir"),
	}

	if err = assemble.Run(cfg, opts); err != nil {
		logger.Fatal(err)
	}
}

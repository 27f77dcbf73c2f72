package cmd

import (
	"fmt"
	"os"
	"path"
	goruntime "runtime"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	configFilename = "dbinit.yaml"
	ageKeyFilename = "dbinit.agekey"
)

var version = "1.0.0-dev"

var rootCmd = &cobra.Command{
	Use:   "dbinit",
	Short: "Render declarative database seed configuration into SQL scripts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if getBool(cmd, "version") {
			cmd.Println(version)
			return nil
		}
		return cmd.Usage()
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	var verbose bool
	cobra.OnInitialize(func() {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	})

	log.SetReportCaller(true)
	formatter := &log.TextFormatter{
		TimestampFormat:        "20060102150405",
		FullTimestamp:          true,
		DisableLevelTruncation: true,
		CallerPrettyfier: func(f *goruntime.Frame) (string, string) {
			return "", fmt.Sprintf(" %s:%d", path.Base(f.File), f.Line)
		},
	}
	log.SetFormatter(formatter)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose mode")
	rootCmd.Flags().Bool("version", false, "Print the version and exit")
}

func configFileFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", configFilename, `Seed configuration file ("-" reads stdin)`)
	cmd.Flags().String("config-data", "", "Literal seed configuration document")
	cmd.MarkFlagsMutuallyExclusive("file", "config-data")
}

func getBool(cmd *cobra.Command, key string) bool {
	ok, _ := cmd.Flags().GetBool(key)
	return ok
}

func getString(cmd *cobra.Command, key string) string {
	s, _ := cmd.Flags().GetString(key)
	return s
}

package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"sftpfetchapi/config"
	"sftpfetchapi/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "sftpfetchapi",
	Short: "SFTP file retrieval service",
	Long: `sftpfetchapi connects to SFTP servers with a caller-supplied private key,
lists a remote directory and downloads the files matching a set of expected
filename tokens, returning their content base64-encoded.

Run without a subcommand to start the HTTP service.
Configuration is loaded from .env file or environment variables`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)

	rootCmd.PersistentFlags().String("log-level", "", "Override LOG_LEVEL from config")
}

// logLevel returns the --log-level flag when set, otherwise the configured level.
func logLevel(cmd *cobra.Command) logger.LogLevel {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = config.Cfg.LogLevel
	}
	return logger.ParseLogLevel(level)
}

// initServiceLogger installs the rotating file logger, falling back to stdout only
// when the log file cannot be created.
func initServiceLogger(cmd *cobra.Command) {
	cfg := logger.Config{
		Path:       config.Cfg.LogFile,
		Level:      logLevel(cmd),
		MaxSize:    config.Cfg.LogMaxSize,
		MaxBackups: config.Cfg.LogMaxBackups,
		MaxAge:     config.Cfg.LogMaxAge,
		Compress:   config.Cfg.LogCompress,
	}
	if err := logger.InitWithConfig(cfg); err != nil {
		log.Printf("[WARN] cannot open log file %s, logging to stdout only: %v", cfg.Path, err)
		cfg.Path = ""
		_ = logger.InitWithConfig(cfg)
	}
}

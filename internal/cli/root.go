package cli

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"todo_webapp/internal/client"
	"todo_webapp/internal/logger"

	"github.com/spf13/cobra"
)

// Version information, set at build time with ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// app is the state shared by every subcommand after the root pre-run
type app struct {
	configPath string
	apiURL     string
	tokenFile  string
	logLevel   string

	settings client.Settings
	api      *client.API
	ctrl     *client.Controller
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "todoctl", "config.yaml")
}

// NewRootCommand builds the todoctl command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "todoctl",
		Short: "Command line client for the todo API",
		Long: `todoctl keeps a session with a todo server and manages your todo list.

Every change is sent to the server and followed by a full reload of the list,
so what you see is always what the server holds.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath(), "settings file (YAML)")
	root.PersistentFlags().StringVar(&a.apiURL, "api", "", "server base URL (overrides api_url)")
	root.PersistentFlags().StringVar(&a.tokenFile, "token-file", "", "where the session token is kept (overrides token_file)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newListCmd(a),
		newAddCmd(a),
		newToggleCmd(a),
		newRemoveCmd(a),
		newStatsCmd(a),
		newActivityCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	logger.InitWithWriter(cmd.ErrOrStderr(), a.logLevel, "text")

	settings, err := client.LoadSettings(a.configPath)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		settings.APIURL = a.apiURL
	}
	if a.tokenFile != "" {
		settings.TokenFile = a.tokenFile
	}
	a.settings = settings

	a.api = client.NewAPI(settings.APIURL, &http.Client{Timeout: 15 * time.Second})
	a.ctrl = client.NewController(a.api, &client.FileTokenStore{Path: settings.TokenFile})
	logger.Debug("client ready", "api", settings.APIURL, "token_file", settings.TokenFile)
	return nil
}

// Execute runs todoctl and exits non-zero on failure
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

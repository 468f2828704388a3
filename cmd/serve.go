package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/issuebridge/issuebridge/internal/bridge"
	"github.com/issuebridge/issuebridge/internal/config"
	"github.com/issuebridge/issuebridge/internal/github"
	"github.com/issuebridge/issuebridge/internal/jira"
	"github.com/issuebridge/issuebridge/internal/logging"
	"github.com/issuebridge/issuebridge/internal/server"
)

// serveCmd runs the webhook server until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook server",
	Long: `Run the webhook server.

The server listens for GitHub issue and issue_comment deliveries, verifies
their signatures against WEBHOOK_SECRET, and reconciles each event against
Jira. Credentials and defaults come from the environment:

  GITHUB_TOKEN, GITHUB_DOMAIN
  JIRA_URL, JIRA_USERNAME, JIRA_TOKEN
  WEBHOOK_SECRET, BOT_NAME, LISTEN_ADDR
  DEFAULT_BOT_CONFIG or BOT_CONFIG_FILE (default sync settings)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		defaults, err := cfg.LoadDefaultSettings()
		if err != nil {
			return fmt.Errorf("failed to load default settings: %w", err)
		}

		if cfg.Webhook.BotName == "" {
			logging.Warn("BOT_NAME is not set; the bot's own comments will be processed")
		}

		githubClient, err := github.NewClient(cfg.GitHub)
		if err != nil {
			return fmt.Errorf("failed to initialize github client: %w", err)
		}

		jiraClient, err := jira.NewClient(cfg.Jira)
		if err != nil {
			return fmt.Errorf("failed to initialize jira client: %w", err)
		}

		addr, err := cmd.Flags().GetString("addr")
		if err != nil {
			return err
		}
		if addr == "" {
			addr = cfg.Webhook.ListenAddr
		}

		b := bridge.New(githubClient, jiraClient, defaults, cfg.Webhook.BotName)
		srv := server.New(b, cfg.Webhook.Secret)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logging.Info("starting webhook server",
			"addr", addr,
			"bot_name", cfg.Webhook.BotName,
			"github_domain", cfg.GitHub.Domain)

		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (overrides LISTEN_ADDR)")
}

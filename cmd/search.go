package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/naka-gawa/github-search/internal/config"
	"github.com/naka-gawa/github-search/internal/gateway"
	"github.com/naka-gawa/github-search/internal/report"
	"github.com/naka-gawa/github-search/internal/usecase"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Searches GitHub code and writes popular matches to an HTML report",
	Long: `Searches GitHub code for each comma separated keyword, resolves the
repository of every match and keeps those with more stars than --min-stars.
The links are written to GitHub_Search_Results_<DDMonYYYY>.html.

The access token is read from GITHUB_TOKEN or the config file, and prompted
for when neither is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := newLogger(cmd.ErrOrStderr(), verbose)

		configPath, _ := cmd.InheritedFlags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := applyFlags(cmd, cfg); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		keywords, err := usecase.ParseKeywords(cfg.Keywords)
		if err != nil {
			return err
		}

		token := cfg.Token
		if token == "" {
			token, err = promptToken(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
		}

		// Inject dependencies and run the main business logic.
		githubGateway, err := gateway.NewGitHubGateway(token, cfg.GatewayOptions(), logger)
		if err != nil {
			return fmt.Errorf("failed to create GitHub gateway: %w", err)
		}
		orchestrator := usecase.NewSearchOrchestrator(githubGateway, cfg.SearchConfig(), newProgressLine(cmd.ErrOrStderr()), logger)

		results, err := orchestrator.SearchAll(ctx, keywords)
		if err != nil {
			return fmt.Errorf("failed to search GitHub: %w", err)
		}

		path, err := report.NewWriter(cfg.OutputDir, logger).Write(results)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

// applyFlags overrides cfg with every flag set explicitly on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	set := func(name string, apply func() error) {
		if err == nil && flags.Changed(name) {
			err = apply()
		}
	}
	set("keywords", func() (e error) { cfg.Keywords, e = flags.GetString("keywords"); return })
	set("max-items", func() (e error) { cfg.MaxItems, e = flags.GetInt("max-items"); return })
	set("min-stars", func() (e error) { cfg.MinStars, e = flags.GetInt("min-stars"); return })
	set("pacing-delay", func() (e error) { cfg.PacingDelay, e = flags.GetDuration("pacing-delay"); return })
	set("cooldown-delay", func() (e error) { cfg.CooldownDelay, e = flags.GetDuration("cooldown-delay"); return })
	set("keyword-delay", func() (e error) { cfg.KeywordDelay, e = flags.GetDuration("keyword-delay"); return })
	set("rate-limit-policy", func() (e error) { cfg.RateLimitPolicy, e = flags.GetString("rate-limit-policy"); return })
	set("metadata-backend", func() (e error) { cfg.MetadataBackend, e = flags.GetString("metadata-backend"); return })
	set("api-url", func() (e error) { cfg.APIBaseURL, e = flags.GetString("api-url"); return })
	set("output-dir", func() (e error) { cfg.OutputDir, e = flags.GetString("output-dir"); return })
	return err
}

func init() {
	rootCmd.AddCommand(searchCmd)
	defaults := usecase.DefaultDelays()
	searchCmd.Flags().StringP("keywords", "k", usecase.DefaultKeywords, "Comma separated search keywords")
	searchCmd.Flags().Int("max-items", usecase.DefaultMaxItems, "Maximum number of results processed per keyword")
	searchCmd.Flags().Int("min-stars", usecase.DefaultMinStars, "Stars a repository has to exceed to be reported")
	searchCmd.Flags().Duration("pacing-delay", defaults.Pacing, "Pause after every fetched result")
	searchCmd.Flags().Duration("cooldown-delay", defaults.Cooldown, "Pause after a rate limit")
	searchCmd.Flags().Duration("keyword-delay", defaults.Keyword, "Pause between keywords")
	searchCmd.Flags().String("rate-limit-policy", string(usecase.PolicyAccept), "What to do with rate limited results: accept or skip")
	searchCmd.Flags().String("metadata-backend", gateway.BackendREST, "How repositories are resolved: rest or graphql")
	searchCmd.Flags().String("api-url", "", "GitHub Enterprise REST base URL")
	searchCmd.Flags().StringP("output-dir", "o", ".", "Directory of the HTML report")
}

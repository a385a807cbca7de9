package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"basegraph.app/ticketsync/core/config"
	"basegraph.app/ticketsync/internal/dispatch"
	"basegraph.app/ticketsync/internal/event"
	"basegraph.app/ticketsync/internal/mapper"
	"basegraph.app/ticketsync/internal/model"
	"basegraph.app/ticketsync/internal/queue"
	"basegraph.app/ticketsync/internal/service"
	"basegraph.app/ticketsync/internal/service/issue_tracker"
	"basegraph.app/ticketsync/internal/strategy"
	"basegraph.app/ticketsync/internal/ticket"
)

type app struct {
	out        io.Writer
	loadConfig func() (config.Config, error)
	// newRedis defaults to redis.ParseURL + redis.NewClient.
	newRedis func(url string) (*redis.Client, error)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "ticketsync",
		Short: "Operate the ticketsync webhook bridge",
		Long: `ticketsync - move Jira tickets from pull request activity.

Examples:
  ticketsync keys "PROJ-12: fix login"           # Extract ticket keys
  ticketsync classify --event pull_request pr.json
  ticketsync replay --event pull_request pr.json  # Dry run, nothing is sent
  ticketsync replay --live --event pull_request pr.json
  ticketsync results --limit 20                  # Recently processed deliveries`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)

	root.AddCommand(a.keysCmd(), a.classifyCmd(), a.replayCmd(), a.resultsCmd())
	return root
}

func (a *app) keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys [text...]",
		Short: "Print the ticket keys found in text or a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			asJSON, _ := cmd.Flags().GetBool("json")

			texts := args
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("reading %s: %w", file, err)
				}
				texts = append(texts, string(data))
			}
			if len(texts) == 0 {
				return errors.New("nothing to scan: pass text or --file")
			}

			keys := ticket.ExtractFromTexts(texts...)
			if asJSON {
				return a.printJSON(keys)
			}
			for _, k := range keys {
				fmt.Fprintln(a.out, k)
			}
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "Read text from a file")
	cmd.Flags().Bool("json", false, "Print keys as a JSON array")
	return cmd
}

func (a *app) classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <payload.json>",
		Short: "Print the event kind a saved webhook payload maps to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvelope(cmd, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s\t%s\n", event.Classify(env), env.Label())
			return nil
		},
	}
	addEnvelopeFlags(cmd)
	return cmd
}

func (a *app) replayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <payload.json>",
		Short: "Run a saved webhook payload through the strategies",
		Long: `Replays a saved webhook payload. By default tracker calls are recorded
and printed instead of sent, and no pull request comments are posted. Use
--live to act on the configured Jira, GitHub and GitLab accounts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			live, _ := cmd.Flags().GetBool("live")
			ctx := cmd.Context()

			cfg, err := a.loadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			env, err := loadEnvelope(cmd, args[0])
			if err != nil {
				return err
			}

			var (
				conns  strategy.Connections
				dryRun *issue_tracker.DryRunIssueTracker
			)
			if live {
				if !cfg.Jira.Enabled() {
					return errors.New("--live needs JIRA_BASE_URL, JIRA_USER_EMAIL and JIRA_API_TOKEN")
				}
				conns, _, err = service.NewConnections(ctx, cfg)
				if err != nil {
					return err
				}
			} else {
				dryRun = issue_tracker.NewDryRunIssueTracker()
				conns.Tracker = dryRun
			}

			result := dispatch.New(strategy.NewRegistry()).Process(ctx, env, conns, cfg.Transitions)
			if err := a.printJSON(result); err != nil {
				return err
			}

			if dryRun != nil {
				for _, c := range dryRun.Calls() {
					fmt.Fprintf(a.out, "dry run: %s %s: %s\n", c.Method, c.IssueKey, firstLine(c.Value))
				}
			}
			if result.Status == model.StatusError {
				return fmt.Errorf("replay finished with status %s", result.Status)
			}
			return nil
		},
	}
	addEnvelopeFlags(cmd)
	cmd.Flags().Bool("live", false, "Send tracker calls and pull request comments")
	return cmd
}

func (a *app) resultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "List recently processed deliveries from the result stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt64("limit")
			ctx := cmd.Context()

			cfg, err := a.loadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if !cfg.Redis.Enabled() {
				return errors.New("REDIS_URL is not set")
			}

			client, err := a.redisClient(cfg.Redis.URL)
			if err != nil {
				return err
			}
			defer client.Close()

			messages, err := queue.NewReader(client, cfg.Redis.ResultStream).Recent(ctx, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RECEIVED\tDELIVERY\tPROVIDER\tKIND\tSTATUS\tMESSAGE")
			for _, m := range messages {
				message := ""
				if m.Result != nil {
					message = m.Result.Message
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					m.ReceivedAt.Format(time.RFC3339), m.DeliveryID, m.Provider, m.EventKind, m.Status, message)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int64P("limit", "n", 20, "Number of results to show")
	return cmd
}

func (a *app) redisClient(url string) (*redis.Client, error) {
	if a.newRedis != nil {
		return a.newRedis(url)
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func addEnvelopeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("provider", "p", "github", "Webhook provider (github or gitlab)")
	cmd.Flags().StringP("event", "e", "", "Event name as sent in X-GitHub-Event or X-Gitlab-Event")
	cmd.Flags().String("delivery", "", "Delivery id")
}

// loadEnvelope reads a saved payload and normalizes it the way the webhook
// endpoint does.
func loadEnvelope(cmd *cobra.Command, path string) (event.Envelope, error) {
	provider, _ := cmd.Flags().GetString("provider")
	eventName, _ := cmd.Flags().GetString("event")
	delivery, _ := cmd.Flags().GetString("delivery")

	data, err := os.ReadFile(path)
	if err != nil {
		return event.Envelope{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return event.Envelope{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	m, err := mapper.NewMapperRegistry().Get(provider)
	if err != nil {
		return event.Envelope{}, err
	}

	headers := map[string]string{}
	switch provider {
	case string(event.SourceGitHub):
		setIfPresent(headers, "X-GitHub-Event", eventName)
		setIfPresent(headers, "X-GitHub-Delivery", delivery)
	case string(event.SourceGitLab):
		setIfPresent(headers, "X-Gitlab-Event", eventName)
		setIfPresent(headers, "X-Gitlab-Event-UUID", delivery)
	}

	return m.Map(cmd.Context(), body, headers)
}

func setIfPresent(headers map[string]string, key, value string) {
	if value != "" {
		headers[key] = value
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

// Command mohaaquery polls MOHAA game servers with the status protocol and
// prints hostname, map and players. With no addresses it reads the enabled
// servers from mohaa-portal's config file.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"mohaa-portal/internal/config"
	"mohaa-portal/internal/logger"
	"mohaa-portal/internal/query"
	"mohaa-portal/internal/stats"

	"github.com/spf13/cobra"
)

type options struct {
	timeout time.Duration
	watch   time.Duration
	asJSON  bool
	players bool
	logFile string
	verbose bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:          "mohaaquery [address...]",
		Short:        "Query MOHAA servers for their live status",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	f := cmd.Flags()
	f.DurationVar(&opts.timeout, "timeout", query.DefaultTimeout, "per-server query timeout")
	f.DurationVar(&opts.watch, "watch", 0, "repeat every interval until interrupted")
	f.BoolVar(&opts.asJSON, "json", false, "print results as JSON")
	f.BoolVarP(&opts.players, "players", "p", false, "list players under each server")
	f.StringVar(&opts.logFile, "log-file", "", "also write logs as JSON lines to this file")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output")

	return cmd
}

func run(ctx context.Context, out io.Writer, args []string, opts options) error {
	log, closeLog, err := newLogger(opts)
	if err != nil {
		return err
	}
	defer closeLog()

	servers, err := targets(args)
	if err != nil {
		return err
	}

	pool := query.NewServerPoolWithClient(query.NewClientWithTimeout(opts.timeout), log)
	for _, s := range servers {
		pool.AddServer(s.Address, s.Name)
	}

	report := func(results map[string]*query.ServerStatus) {
		if err := printResults(out, results, opts); err != nil {
			log.Error("Failed to print results", "error", err)
		}
	}

	if opts.watch <= 0 {
		report(pool.QueryAll(ctx))
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	pool.Monitor(ctx, opts.watch, report)
	return nil
}

// targets turns addresses into servers, falling back to the config file.
func targets(args []string) ([]config.ServerConfig, error) {
	if len(args) > 0 {
		servers := make([]config.ServerConfig, 0, len(args))
		for _, a := range args {
			servers = append(servers, config.ServerConfig{Name: a, Address: a, Enabled: true})
		}
		return servers, nil
	}

	if !config.Exists() {
		return nil, fmt.Errorf("no addresses given and no mohaa-portal config found")
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	servers := cfg.EnabledServers()
	if len(servers) == 0 {
		return nil, fmt.Errorf("config has no enabled servers")
	}
	return servers, nil
}

func newLogger(opts options) (*slog.Logger, func(), error) {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	if opts.logFile == "" {
		return slog.New(handler), func() {}, nil
	}

	fw, err := logger.NewFileWriter(logger.FileWriterConfig{FilePath: opts.logFile})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	handler = logger.NewTeeHandler(handler, fw, slog.LevelDebug)
	return slog.New(handler), func() { _ = fw.Close() }, nil
}

type result struct {
	Address  string         `json:"address"`
	Name     string         `json:"name"`
	Online   bool           `json:"online"`
	Hostname string         `json:"hostname,omitempty"`
	Map      string         `json:"map,omitempty"`
	Gametype string         `json:"gametype,omitempty"`
	Players  int            `json:"players"`
	Max      int            `json:"max_players"`
	PingMS   int64          `json:"query_ms"`
	Error    string         `json:"error,omitempty"`
	Roster   []query.Player `json:"roster,omitempty"`
}

func collect(results map[string]*query.ServerStatus, withPlayers bool) []result {
	out := make([]result, 0, len(results))
	for _, st := range results {
		r := result{
			Address: st.Address,
			Name:    st.Name,
			Online:  st.Online,
			PingMS:  st.QueryTime.Milliseconds(),
			Players: st.PlayerCount(),
		}
		if st.Error != nil {
			r.Error = st.Error.Error()
		}
		if st.Status != nil {
			r.Hostname = stats.StripColors(st.Status.Hostname)
			r.Map = st.Status.Map
			r.Gametype = st.Status.Gametype
			r.Max = st.Status.MaxPlayers
			if withPlayers {
				r.Roster = st.Status.Players
			}
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

func printResults(w io.Writer, results map[string]*query.ServerStatus, opts options) error {
	rows := collect(results, opts.players)

	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ADDRESS\tHOSTNAME\tMAP\tTYPE\tPLAYERS\tQUERY")
	for _, r := range rows {
		if !r.Online {
			fmt.Fprintf(tw, "%s\t(offline)\t-\t-\t-\t%s\n", r.Address, r.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\t%dms\n",
			r.Address, r.Hostname, stats.MapLabel(r.Map), r.Gametype, r.Players, r.Max, r.PingMS)
		for _, p := range r.Roster {
			fmt.Fprintf(tw, "\t  %s\t\t\t%d pts\t%dms\n", stats.StripColors(p.Name), p.Score, p.Ping)
		}
	}
	return tw.Flush()
}

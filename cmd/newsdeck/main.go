package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"github.com/glabrego/newsdeck/internal/config"
	"github.com/glabrego/newsdeck/internal/feed"
	"github.com/glabrego/newsdeck/internal/opml"
	"github.com/glabrego/newsdeck/internal/refresh"
	"github.com/glabrego/newsdeck/internal/store"
	"github.com/glabrego/newsdeck/internal/tui"
)

const (
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitDataError    = 3
)

func main() {
	app := &cli.App{
		Name:    "newsdeck",
		Usage:   "A terminal RSS/Atom reader",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   defaultConfigPath(),
				Usage:   "Config file path",
				EnvVars: []string{"NEWSDECK_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Database file path (overrides config)",
				EnvVars: []string{"NEWSDECK_DB_PATH"},
			},
		},
		Action: runReader,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Subscribe to a feed",
				ArgsUsage: "<url>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "category",
						Aliases: []string{"g"},
						Usage:   "Feed category",
					},
				},
				Action: addFeed,
			},
			{
				Name:   "feeds",
				Usage:  "List subscribed feeds",
				Action: listFeeds,
			},
			{
				Name:      "remove",
				Usage:     "Unsubscribe from a feed and drop its posts",
				ArgsUsage: "<feed-id>",
				Action:    removeFeed,
			},
			{
				Name:      "import",
				Usage:     "Import feeds from an OPML file",
				ArgsUsage: "<opml-file>",
				Action:    importOPML,
			},
			{
				Name:  "export",
				Usage: "Export feeds as OPML",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file (default: stdout)",
					},
				},
				Action: exportOPML,
			},
			{
				Name:  "cleanup",
				Usage: "Delete old read posts, keeping starred ones",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "days",
						Value: 30,
						Usage: "Delete posts older than this many days",
					},
				},
				Action: cleanupPosts,
			},
			{
				Name:  "reset",
				Usage: "Wipe all feeds, posts and categories",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Confirm the wipe",
					},
				},
				Action: resetDatabase,
			},
			{
				Name:   "stats",
				Usage:  "Show database statistics",
				Action: showStats,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitGeneralError)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "newsdeck.yaml"
	}
	return filepath.Join(home, ".config", "newsdeck", "config.yaml")
}

func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return config.Config{}, err
	}
	if db := c.String("db"); db != "" {
		cfg.App.DBPath = db
	}
	return cfg, nil
}

// openStore opens the database named by config and flags, creating
// the schema on first use.
func openStore(ctx context.Context, c *cli.Context) (*store.Store, config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, config.Config{}, err
	}
	if dir := filepath.Dir(cfg.App.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, config.Config{}, fmt.Errorf("create database directory: %w", err)
		}
	}
	st, err := store.New(cfg.App.DBPath)
	if err != nil {
		return nil, config.Config{}, err
	}
	if err := st.Init(ctx); err != nil {
		st.Close()
		return nil, config.Config{}, err
	}
	if err := st.CheckWritable(ctx); err != nil {
		st.Close()
		return nil, config.Config{}, err
	}
	return st, cfg, nil
}

func runReader(c *cli.Context) error {
	ctx := context.Background()
	st, cfg, err := openStore(ctx, c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer st.Close()

	for _, source := range cfg.Feeds {
		category := source.Category
		if category == "" {
			category = store.GeneralCategory
		}
		if _, err := st.AddFeed(ctx, source.URL, source.URL, category); err != nil {
			return cli.Exit(fmt.Sprintf("seed feed %s: %v", source.URL, err), ExitDataError)
		}
	}

	coord := refresh.NewCoordinator(st, feed.NewFetcher())
	model := tui.NewModel(st, coord)
	model.SetRefreshInterval(cfg.RefreshInterval())

	feeds, err := st.ListFeeds(ctx)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	model.SetStartupRefresh(len(feeds) > 0)

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run reader: %w", err)
	}
	return nil
}

func addFeed(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: newsdeck add <url>", ExitUsageError)
	}
	url := c.Args().Get(0)
	category := c.String("category")
	if category == "" {
		category = store.GeneralCategory
	}

	ctx := context.Background()
	st, _, err := openStore(ctx, c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer st.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	title, entries, err := feed.NewFetcher().FetchFeed(fetchCtx, url)
	if err != nil {
		return cli.Exit(err.Error(), ExitGeneralError)
	}
	if title == "" {
		title = url
	}

	feedID, err := st.AddFeed(ctx, url, title, category)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	added := 0
	for _, entry := range entries {
		if entry.Link == "" {
			continue
		}
		if err := st.InsertPostIfAbsent(ctx, feedID, entry.Title, entry.Link, entry.Content, entry.Published); err != nil {
			return cli.Exit(err.Error(), ExitDataError)
		}
		added++
	}
	fmt.Printf("Subscribed to %q (%d posts)\n", title, added)
	return nil
}

func listFeeds(c *cli.Context) error {
	ctx := context.Background()
	st, _, err := openStore(ctx, c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer st.Close()

	feeds, err := st.ListFeeds(ctx)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	if len(feeds) == 0 {
		fmt.Println("No feeds subscribed.")
		return nil
	}
	for _, f := range feeds {
		fmt.Printf("%4d  %-30s  %-15s  %s\n", f.ID, f.Title, f.Category, f.URL)
	}
	return nil
}

func removeFeed(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: newsdeck remove <feed-id>", ExitUsageError)
	}
	id, err := strconv.ParseInt(c.Args().Get(0), 10, 64)
	if err != nil {
		return cli.Exit("feed id must be a number", ExitUsageError)
	}

	ctx := context.Background()
	st, _, err := openStore(ctx, c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer st.Close()

	if err := st.DeleteFeed(ctx, id); err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	fmt.Printf("Removed feed %d\n", id)
	return nil
}

func importOPML(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: newsdeck import <opml-file>", ExitUsageError)
	}
	file, err := os.Open(c.Args().Get(0))
	if err != nil {
		return cli.Exit(err.Error(), ExitGeneralError)
	}
	defer file.Close()

	feeds, err := opml.Parse(file)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	ctx := context.Background()
	st, _, err := openStore(ctx, c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer st.Close()

	for _, f := range feeds {
		title := f.Title
		if title == "" {
			title = f.URL
		}
		if _, err := st.AddFeed(ctx, f.URL, title, f.Category); err != nil {
			return cli.Exit(err.Error(), ExitDataError)
		}
	}
	fmt.Printf("Imported %d feeds\n", len(feeds))
	return nil
}

func exportOPML(c *cli.Context) error {
	ctx := context.Background()
	st, _, err := openStore(ctx, c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer st.Close()

	feeds, err := st.ListFeeds(ctx)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	out := os.Stdout
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return cli.Exit(err.Error(), ExitGeneralError)
		}
		defer f.Close()
		out = f
	}
	return opml.Generate(out, feeds)
}

func cleanupPosts(c *cli.Context) error {
	ctx := context.Background()
	st, cfg, err := openStore(ctx, c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer st.Close()

	days := c.Int("days")
	if !c.IsSet("days") && cfg.App.CleanupDays > 0 {
		days = cfg.App.CleanupDays
	}
	deleted, err := st.CleanupOldPosts(ctx, days)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	fmt.Printf("Deleted %d posts older than %d days\n", deleted, days)
	return nil
}

func resetDatabase(c *cli.Context) error {
	if !c.Bool("yes") {
		return cli.Exit("This wipes all data. Re-run with --yes to confirm.", ExitUsageError)
	}
	ctx := context.Background()
	st, _, err := openStore(ctx, c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer st.Close()

	if err := st.Reset(ctx); err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	fmt.Println("Database reset.")
	return nil
}

func showStats(c *cli.Context) error {
	ctx := context.Background()
	st, _, err := openStore(ctx, c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	defer st.Close()

	stats, err := st.Stats(ctx)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	fmt.Printf("Feeds:       %d\n", stats.FeedCount)
	fmt.Printf("Posts:       %d (%d read, %d unread)\n", stats.TotalPosts, stats.ReadPosts, stats.UnreadPosts)
	fmt.Printf("Starred:     %d\n", stats.StarredPosts)
	fmt.Printf("Read later:  %d\n", stats.ReadLaterPosts)
	fmt.Printf("Archived:    %d\n", stats.ArchivedPosts)
	if len(stats.Categories) > 0 {
		fmt.Println("Categories:")
		for _, cc := range stats.Categories {
			fmt.Printf("  %-20s %d\n", cc.Name, cc.Posts)
		}
	}
	return nil
}

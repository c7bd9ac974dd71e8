package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/searchgate/internal/config"
	dbElastic "github.com/kailas-cloud/searchgate/internal/db/elastic"
	dbRedis "github.com/kailas-cloud/searchgate/internal/db/redis"
	"github.com/kailas-cloud/searchgate/internal/domain/role"
	"github.com/kailas-cloud/searchgate/internal/domain/search/filter"
	"github.com/kailas-cloud/searchgate/internal/domain/search/mode"
	"github.com/kailas-cloud/searchgate/internal/domain/search/request"
	"github.com/kailas-cloud/searchgate/internal/domain/user"
	"github.com/kailas-cloud/searchgate/internal/query"
	"github.com/kailas-cloud/searchgate/internal/repository/identity"
	"github.com/kailas-cloud/searchgate/internal/transport/token"
	authuc "github.com/kailas-cloud/searchgate/internal/usecase/auth"
	healthuc "github.com/kailas-cloud/searchgate/internal/usecase/health"
	"github.com/kailas-cloud/searchgate/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "searchctl",
		Usage:   "Operate a searchgate deployment",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Environment whose config/<env>.yaml is loaded",
				EnvVars: []string{"ENV"},
				Value:   "local",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Explicit config file path (overrides --env)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "token",
				Usage:  "Issue an access token for a directory user",
				Action: tokenCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Email of the user to log in as",
						Required: true,
					},
				},
			},
			{
				Name:   "compile",
				Usage:  "Print the backend request a search would send",
				Action: compileCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Search text", Required: true},
					&cli.StringFlag{Name: "role", Usage: "Role of the searching user", Value: role.Employee.String()},
					&cli.StringFlag{Name: "department", Usage: "Department of the searching user"},
					&cli.StringSliceFlag{Name: "source", Usage: "Source filter (repeatable)"},
					&cli.StringSliceFlag{Name: "content-type", Usage: "Content type filter (repeatable)"},
					&cli.StringSliceFlag{Name: "author", Usage: "Author filter (repeatable)"},
					&cli.StringSliceFlag{Name: "tags", Usage: "Tag filter (repeatable)"},
					&cli.StringFlag{Name: "date-range", Usage: "all, last_week, last_month or last_year"},
					&cli.IntFlag{Name: "size", Usage: "Page size (default from config)"},
					&cli.IntFlag{Name: "from", Usage: "Result offset"},
					&cli.BoolFlag{Name: "semantic", Usage: "Override semantic search"},
					&cli.Float64Flag{Name: "hybrid-weight", Usage: "Override the hybrid weight"},
					&cli.StringFlag{Name: "mode", Usage: "direct or application (default from config)"},
				},
			},
			{
				Name:   "health",
				Usage:  "Probe the search backend and the configured target",
				Action: healthCommand,
			},
			{
				Name:  "users",
				Usage: "Inspect and manage the identity directory",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List directory users",
						Action: usersListCommand,
					},
					{
						Name:   "seed",
						Usage:  "Write configured users (or the demo users) to the Redis directory",
						Action: usersSeedCommand,
					},
				},
			},
		},
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.LoadFile(path)
	}
	return config.Load(c.String("env"))
}

// directory opens the configured identity directory. The returned func releases it.
func directory(ctx context.Context, cfg config.Config) (authuc.Directory, func(), error) {
	if cfg.Identity.Driver != config.DriverRedis {
		return identity.NewStatic(cfg.Auth.Users), func() {}, nil
	}
	dir, closeFn, err := redisDirectory(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return dir, closeFn, nil
}

func redisDirectory(ctx context.Context, cfg config.Config) (*identity.Redis, func(), error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Identity.Addrs,
		Password: cfg.Identity.Password,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("identity store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Identity.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("identity store not ready: %w", err)
	}
	return identity.NewRedis(store, cfg.Identity.KeyPrefix), store.Close, nil
}

func tokenCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	dir, closeDir, err := directory(c.Context, cfg)
	if err != nil {
		return err
	}
	defer closeDir()

	issuer, err := token.NewIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMin)*time.Minute)
	if err != nil {
		return err
	}

	session, err := authuc.New(dir, issuer).Login(c.Context, c.String("email"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, session.AccessToken)
	return err
}

func compileCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	r, err := role.Parse(c.String("role"))
	if err != nil {
		return err
	}
	u := user.User{Role: r, Department: c.String("department")}

	p := request.Params{
		Query: c.String("query"),
		Filters: filter.Filters{
			Source:      c.StringSlice("source"),
			ContentType: c.StringSlice("content-type"),
			Author:      c.StringSlice("author"),
			Tags:        c.StringSlice("tags"),
			DateRange:   filter.DateRange(c.String("date-range")),
		},
		From: c.Int("from"),
	}
	if c.IsSet("size") {
		size := c.Int("size")
		p.Size = &size
	}
	if c.IsSet("semantic") {
		semantic := c.Bool("semantic")
		p.SemanticEnabled = &semantic
	}
	if c.IsSet("hybrid-weight") {
		w := c.Float64("hybrid-weight")
		p.HybridWeight = &w
	}

	req, err := request.New(p, request.Limits{DefaultSize: cfg.Search.DefaultPageSize, MaxSize: cfg.Search.MaxPageSize})
	if err != nil {
		return err
	}

	m := cfg.SearchMode()
	if c.IsSet("mode") {
		m = mode.Mode(c.String("mode"))
		if !m.IsValid() {
			return fmt.Errorf("unknown mode %q", c.String("mode"))
		}
	}

	compiler := query.NewCompiler(query.Defaults{
		SemanticEnabled:  cfg.Elasticsearch.Semantic.Enabled,
		SemanticModel:    cfg.Elasticsearch.Semantic.Model,
		HybridWeight:     cfg.HybridWeight(),
		FieldPrefix:      cfg.Elasticsearch.Semantic.FieldPrefix,
		RoleBoostInQuery: cfg.Search.RoleBoostInQuery,
	})
	in := query.InputFor(req.Query(), req.Filters(), req.SemanticEnabled(), req.HybridWeight(), u)

	var out any
	switch m {
	case mode.Application:
		out = query.ApplicationBody{Params: compiler.ApplicationParams(in, u, req.Size(), req.From())}
	case mode.DirectIndex:
		out = compiler.Compile(in).Body(req.Size(), req.From())
	}
	return printJSON(c.App.Writer, out)
}

func healthCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	backend, err := dbElastic.NewStore(dbElastic.Config{
		URL:        cfg.Elasticsearch.URL,
		APIKey:     cfg.Elasticsearch.APIKey,
		MaxRetries: cfg.Elasticsearch.MaxRetries,
		Timeout:    time.Duration(cfg.Elasticsearch.TimeoutSec) * time.Second,
	})
	if err != nil {
		return err
	}

	report := healthuc.New(backend, nil, healthuc.Target{
		Mode:        cfg.SearchMode(),
		Index:       cfg.Elasticsearch.Index,
		Application: cfg.Elasticsearch.SearchApplication,
	}).CheckBackend(c.Context)

	if err := printJSON(c.App.Writer, map[string]any{
		"status":  report.Status,
		"details": report.Details,
		"error":   report.Error,
	}); err != nil {
		return err
	}
	if report.Status == healthuc.Unhealthy {
		return cli.Exit("search backend unreachable", 2)
	}
	return nil
}

func usersListCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	dir, closeDir, err := directory(c.Context, cfg)
	if err != nil {
		return err
	}
	defer closeDir()

	users, err := dir.List(c.Context)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tDEPARTMENT\tROLE")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Name, u.Department, u.Role)
	}
	return tw.Flush()
}

func usersSeedCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Identity.Driver != config.DriverRedis {
		return cli.Exit("users seed requires identity.driver: redis", 1)
	}

	dir, closeDir, err := redisDirectory(c.Context, cfg)
	if err != nil {
		return err
	}
	defer closeDir()

	users := cfg.Auth.Users
	if len(users) == 0 {
		users = identity.DemoUsers()
	}
	if err := dir.Seed(c.Context, users); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "seeded %d users\n", len(users))
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

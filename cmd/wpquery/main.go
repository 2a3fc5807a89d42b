// Command wpquery runs the content repository reads from the command line
// and prints the result as JSON.
//
//	wpquery [-config config.yaml] [-columns a,b] [-order col] [-offset n] <command> [args]
//
// Commands: post <id>, latest <n>, meta <key> <post-id>, categories [post-id],
// tags <post-id>, comments <post-id>, user <id>.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"wpfeed/internal/config"
	"wpfeed/internal/domain"
	"wpfeed/internal/logger"
	"wpfeed/internal/storage/postgres"
)

var errNotFound = errors.New("not found")

type command struct {
	name    string
	args    []string
	columns []string
	order   string
	offset  uint64
}

func parseCommand(argv []string) (string, command, error) {
	fs := flag.NewFlagSet("wpquery", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "config.yaml", "path to config file")
	columns := fs.String("columns", "", "comma separated projection")
	order := fs.String("order", "", "order column")
	offset := fs.Uint64("offset", 0, "rows to skip for latest")
	if err := fs.Parse(argv); err != nil {
		return "", command{}, err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return "", command{}, errors.New("missing command")
	}

	cmd := command{name: rest[0], args: rest[1:], order: *order, offset: *offset}
	if *columns != "" {
		cmd.columns = strings.Split(*columns, ",")
	}

	want := map[string][2]int{
		"post":       {1, 1},
		"latest":     {1, 1},
		"meta":       {2, 2},
		"categories": {0, 1},
		"tags":       {1, 1},
		"comments":   {1, 1},
		"user":       {1, 1},
	}
	bounds, ok := want[cmd.name]
	if !ok {
		return "", command{}, fmt.Errorf("unknown command %q", cmd.name)
	}
	if len(cmd.args) < bounds[0] || len(cmd.args) > bounds[1] {
		return "", command{}, fmt.Errorf("%s: wrong number of arguments", cmd.name)
	}

	return *configPath, cmd, nil
}

func (c command) intArg(i int) (int64, error) {
	n, err := strconv.ParseInt(c.args[i], 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: %q is not a positive integer", c.name, c.args[i])
	}
	return n, nil
}

func run(ctx context.Context, repo *postgres.ContentRepository, cmd command) (any, error) {
	switch cmd.name {
	case "post":
		id, err := cmd.intArg(0)
		if err != nil {
			return nil, err
		}
		cols, err := postgres.ParseColumns(postgres.Posts, cmd.columns)
		if err != nil {
			return nil, err
		}
		var post domain.Post
		return one(repo.Posts(postgres.PostFilter{ID: id, Columns: cols}).One(ctx, &post))(&post)

	case "latest":
		n, err := cmd.intArg(0)
		if err != nil {
			return nil, err
		}
		cols, err := postgres.ParseColumns(postgres.Posts, cmd.columns)
		if err != nil {
			return nil, err
		}
		var order postgres.Column
		if cmd.order != "" {
			if order, err = postgres.ParseColumn(postgres.Posts, cmd.order); err != nil {
				return nil, err
			}
		}
		q := repo.Posts(postgres.PostFilter{Columns: cols}).Latest(uint64(n), order)
		if cmd.offset > 0 {
			q = q.Limit(uint64(n), cmd.offset)
		}
		var posts []domain.Post
		return one(q.All(ctx, &posts))(&posts)

	case "meta":
		id, err := cmd.intArg(1)
		if err != nil {
			return nil, err
		}
		value, found, err := repo.MetaValue(ctx, cmd.args[0], id)
		return one(found, err)(value)

	case "categories":
		if len(cmd.args) == 1 {
			id, err := cmd.intArg(0)
			if err != nil {
				return nil, err
			}
			var names []string
			return one(repo.Categories(id).All(ctx, &names))(&names)
		}
		var order postgres.Column
		if cmd.order != "" {
			var err error
			if order, err = postgres.ParseColumn(postgres.Terms, cmd.order); err != nil {
				return nil, err
			}
		}
		terms, found, err := repo.ListCategories(ctx, order)
		return one(found, err)(terms)

	case "tags":
		id, err := cmd.intArg(0)
		if err != nil {
			return nil, err
		}
		var names []string
		return one(repo.Tags(id).All(ctx, &names))(&names)

	case "comments":
		id, err := cmd.intArg(0)
		if err != nil {
			return nil, err
		}
		n, err := repo.CountComments(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]int64{"post_id": id, "comments": n}, nil

	case "user":
		id, err := cmd.intArg(0)
		if err != nil {
			return nil, err
		}
		cols, err := postgres.ParseColumns(postgres.Users, cmd.columns)
		if err != nil {
			return nil, err
		}
		u, found, err := repo.User(ctx, id, cols...)
		return one(found, err)(u)
	}

	return nil, fmt.Errorf("unknown command %q", cmd.name)
}

// one turns a terminal (found, err) pair into a result, mapping the empty
// result to errNotFound for the command line. Scanned destinations are passed
// by pointer so they are read after the terminal call has filled them.
func one(found bool, err error) func(v any) (any, error) {
	return func(v any) (any, error) {
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, errNotFound
		}
		return v, nil
	}
}

func main() {
	configPath, cmd, err := parseCommand(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "wpquery:", err)
		os.Exit(2)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "wpquery:", err)
		os.Exit(1)
	}
	log := logger.NewWithWriter(os.Stderr, cfg.LogLevel)

	projections, err := postgres.ProjectionsFromNames(cfg.Content.PostColumns, cfg.Content.UserColumns)
	if err != nil {
		log.Error("invalid content columns", "error", err)
		os.Exit(1)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := postgres.NewContentRepository(db,
		postgres.WithTablePrefix(cfg.Database.TablePrefix),
		postgres.WithProjections(projections),
	)

	result, err := run(context.Background(), repo, cmd)
	if errors.Is(err, errNotFound) {
		fmt.Fprintln(os.Stderr, "not found")
		db.Close()
		os.Exit(1)
	}
	if err != nil {
		log.Error("query failed", "command", cmd.name, "error", err)
		db.Close()
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Error("encode result", "error", err)
		os.Exit(1)
	}
}

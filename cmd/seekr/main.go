// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/seekr"
	"github.com/poiesic/seekr/config"
	"github.com/poiesic/seekr/controller"
	"github.com/poiesic/seekr/core"
	"github.com/poiesic/seekr/suggest"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "seekr",
		Usage: "Debounced, cached search over a data asset catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB directory for history and saved searches (overrides SEEKR_DB_PATH)",
			},
			&cli.StringFlag{
				Name:  "backend-url",
				Usage: "Search service base URL (overrides SEEKR_BACKEND_URL)",
			},
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Asset catalog JSON for the built-in engine (overrides SEEKR_CATALOG)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Run a search and print the results",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(filterFlags(),
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "Search mode (keyword, nl, semantic, faceted)",
						Value:   "keyword",
					},
					&cli.StringSliceFlag{
						Name:  "facet",
						Usage: "Facet field for faceted mode (repeatable)",
					},
				),
			},
			{
				Name:      "suggest",
				Usage:     "Print completions for a partial query",
				ArgsUsage: "<prefix>",
				Action:    suggestCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for suggestions",
						Value: 5 * time.Second,
					},
				},
			},
			{
				Name:  "history",
				Usage: "Inspect search history",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List recent searches, newest first",
						Action: historyListCommand,
					},
					{
						Name:   "clear",
						Usage:  "Forget every recent search",
						Action: historyClearCommand,
					},
				},
			},
			{
				Name:  "saved",
				Usage: "Manage saved searches",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List saved searches",
						Action: savedListCommand,
					},
					{
						Name:      "save",
						Usage:     "Save a query and filters under a name",
						ArgsUsage: "<query>",
						Action:    savedSaveCommand,
						Flags: append(filterFlags(),
							&cli.StringFlag{
								Name:     "name",
								Aliases:  []string{"n"},
								Usage:    "Name of the saved search",
								Required: true,
							},
						),
					},
					{
						Name:      "delete",
						Usage:     "Delete a saved search",
						ArgsUsage: "<id>",
						Action:    savedDeleteCommand,
					},
					{
						Name:      "run",
						Usage:     "Run a saved search",
						ArgsUsage: "<id>",
						Action:    savedRunCommand,
					},
				},
			},
			{
				Name:      "share",
				Usage:     "Encode a query and filters as a shareable string",
				ArgsUsage: "<query>",
				Action:    shareCommand,
				Flags:     filterFlags(),
			},
			{
				Name:      "open",
				Usage:     "Run a search from a shared string",
				ArgsUsage: "<shared>",
				Action:    openCommand,
			},
			{
				Name:   "interactive",
				Usage:  "Read one line of input per keystroke and search as you type",
				Action: interactiveCommand,
			},
		},
	}
}

func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "type", Aliases: []string{"t"}, Usage: "Restrict to asset types (repeatable)"},
		&cli.StringSliceFlag{Name: "source", Usage: "Restrict to sources (repeatable)"},
		&cli.StringSliceFlag{Name: "tag", Usage: "Require tags (repeatable)"},
		&cli.StringSliceFlag{Name: "owner", Usage: "Restrict to owners (repeatable)"},
		&cli.Float64Flag{Name: "min-quality", Usage: "Minimum quality score", Value: 0},
		&cli.Float64Flag{Name: "max-quality", Usage: "Maximum quality score", Value: 1},
		&cli.StringFlag{Name: "sort", Usage: "Sort field (name, qualityScore, createdAt, updatedAt)"},
		&cli.BoolFlag{Name: "desc", Usage: "Sort descending"},
	}
}

func filterOptions(c *cli.Context) []core.FilterOption {
	var opts []core.FilterOption
	if v := c.StringSlice("type"); len(v) > 0 {
		opts = append(opts, core.WithAssetTypes(v...))
	}
	if v := c.StringSlice("source"); len(v) > 0 {
		opts = append(opts, core.WithSources(v...))
	}
	if v := c.StringSlice("tag"); len(v) > 0 {
		opts = append(opts, core.WithTags(v...))
	}
	if v := c.StringSlice("owner"); len(v) > 0 {
		opts = append(opts, core.WithOwners(v...))
	}
	if c.IsSet("min-quality") || c.IsSet("max-quality") {
		opts = append(opts, core.WithQualityRange(c.Float64("min-quality"), c.Float64("max-quality")))
	}
	return opts
}

func sortOptions(c *cli.Context) core.SortOptions {
	sort := core.SortOptions{Field: c.String("sort")}
	if c.Bool("desc") {
		sort.Direction = core.SortDescending
	} else if sort.Field != "" {
		sort.Direction = core.SortAscending
	}
	return sort
}

// session is an open Seekr instance and one controller over it.
type session struct {
	seekr *seekr.Seekr
	ctrl  *controller.Controller
}

func (s *session) Close() {
	_ = s.ctrl.Close()
	_ = s.seekr.Close()
}

func openSession(c *cli.Context, opts ...controller.Option) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("backend-url") {
		cfg.BackendURL = c.String("backend-url")
	}
	if c.IsSet("catalog") {
		cfg.Catalog = c.String("catalog")
	}

	s, err := seekr.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open seekr: %w", err)
	}
	ctrl, err := s.NewController(opts...)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create controller: %w", err)
	}
	return &session{seekr: s, ctrl: ctrl}, nil
}

// quiet disables the debounced search and suggestions for commands that
// only set the query.
var quiet = []controller.Option{
	controller.WithDebounceDelay(time.Hour),
	controller.WithSuggestOptions(suggest.WithEnabled(false)),
}

func queryArg(c *cli.Context, what string) (string, error) {
	query := strings.Join(c.Args().Slice(), " ")
	if core.IsBlank(query) {
		return "", fmt.Errorf("%s is required", what)
	}
	return query, nil
}

func searchCommand(c *cli.Context) error {
	query, err := queryArg(c, "query")
	if err != nil {
		return err
	}
	s, err := openSession(c, quiet...)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := c.Context
	if opts := filterOptions(c); len(opts) > 0 {
		if err := s.ctrl.UpdateFilters(ctx, opts...); err != nil {
			return err
		}
	}
	if err := s.ctrl.UpdateSort(ctx, sortOptions(c)); err != nil {
		return err
	}

	switch mode := c.String("mode"); mode {
	case "keyword":
		err = s.ctrl.Search(ctx, query)
	case "nl":
		err = s.ctrl.NaturalLanguageSearch(ctx, query)
	case "semantic":
		err = s.ctrl.SemanticSearch(ctx, query)
	case "faceted":
		err = s.ctrl.FacetedSearch(ctx, query, c.StringSlice("facet")...)
	default:
		return fmt.Errorf("invalid mode %q: must be one of keyword, nl, semantic, faceted", mode)
	}
	if err != nil {
		return err
	}
	printResults(c.App.Writer, s.ctrl.State())
	return nil
}

func suggestCommand(c *cli.Context) error {
	prefix, err := queryArg(c, "prefix")
	if err != nil {
		return err
	}
	s, err := openSession(c, controller.WithDebounceDelay(time.Hour))
	if err != nil {
		return err
	}
	defer s.Close()

	ready := make(chan core.SearchState, 1)
	unsubscribe := s.ctrl.Subscribe(func(state core.SearchState) {
		if state.IsSuggestionsLoading {
			return
		}
		select {
		case ready <- state:
		default:
		}
	})
	defer unsubscribe()

	if err := s.ctrl.UpdateQuery(prefix); err != nil {
		return err
	}
	select {
	case state := <-ready:
		for _, sg := range state.Suggestions {
			fmt.Fprintf(c.App.Writer, "%s\t(%s)\n", sg.Text, sg.Source)
		}
		return nil
	case <-time.After(c.Duration("timeout")):
		return errors.New("timed out waiting for suggestions")
	}
}

func historyListCommand(c *cli.Context) error {
	s, err := openSession(c, quiet...)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, q := range s.ctrl.State().RecentSearches {
		fmt.Fprintln(c.App.Writer, q)
	}
	return nil
}

func historyClearCommand(c *cli.Context) error {
	s, err := openSession(c, quiet...)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.ctrl.ClearHistory(c.Context)
}

func savedListCommand(c *cli.Context) error {
	s, err := openSession(c, quiet...)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, saved := range s.ctrl.State().SavedSearches {
		fmt.Fprintf(c.App.Writer, "%s\t%s\t%q\t%s\n",
			saved.ID, saved.Name, saved.Query, controller.EncodeShare("", saved.Filters))
	}
	return nil
}

func savedSaveCommand(c *cli.Context) error {
	query, err := queryArg(c, "query")
	if err != nil {
		return err
	}
	s, err := openSession(c, quiet...)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := c.Context
	if err := s.ctrl.UpdateFilters(ctx, filterOptions(c)...); err != nil {
		return err
	}
	if err := s.ctrl.UpdateQuery(query); err != nil {
		return err
	}
	saved, err := s.ctrl.SaveSearch(ctx, c.String("name"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, saved.ID)
	return nil
}

func savedDeleteCommand(c *cli.Context) error {
	id, err := queryArg(c, "id")
	if err != nil {
		return err
	}
	s, err := openSession(c, quiet...)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.ctrl.DeleteSavedSearch(c.Context, id)
}

func savedRunCommand(c *cli.Context) error {
	id, err := queryArg(c, "id")
	if err != nil {
		return err
	}
	s, err := openSession(c, quiet...)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ctrl.LoadSavedSearch(c.Context, id); err != nil {
		return err
	}
	printResults(c.App.Writer, s.ctrl.State())
	return nil
}

func shareCommand(c *cli.Context) error {
	query, err := queryArg(c, "query")
	if err != nil {
		return err
	}
	filters := core.SearchFilters{}.Apply(filterOptions(c)...)
	if err := core.ValidateFilters(filters); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, controller.EncodeShare(query, filters))
	return nil
}

func openCommand(c *cli.Context) error {
	shared := c.Args().First()
	if shared == "" {
		return errors.New("shared string is required")
	}
	s, err := openSession(c, quiet...)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ctrl.ApplyShare(c.Context, shared); err != nil {
		return err
	}
	printResults(c.App.Writer, s.ctrl.State())
	return nil
}

// lockedWriter serializes output from the controller loop and the input loop.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, format, args...)
}

func interactiveCommand(c *cli.Context) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	out := &lockedWriter{w: c.App.Writer}
	var (
		lastID          string
		lastError       string
		lastSuggestions []core.Suggestion
	)
	unsubscribe := s.ctrl.Subscribe(func(state core.SearchState) {
		if state.Error != "" && state.Error != lastError {
			out.printf("! %s\n", state.Error)
		}
		lastError = state.Error
		if !slices.Equal(state.Suggestions, lastSuggestions) && len(state.Suggestions) > 0 {
			texts := make([]string, len(state.Suggestions))
			for i, sg := range state.Suggestions {
				texts[i] = sg.Text
			}
			out.printf("  suggestions: %s\n", strings.Join(texts, ", "))
		}
		lastSuggestions = state.Suggestions
		if state.SearchID != "" && state.SearchID != lastID {
			out.printf("= %q: %d results in %s\n", state.Query, state.TotalResults, state.ExecutionTime.Round(time.Microsecond))
			for i, a := range state.Results.Assets {
				out.printf("  %d. %s [%s]\n", i+1, a.Name, a.Type)
			}
		}
		lastID = state.SearchID
	})
	defer unsubscribe()

	ctx := c.Context
	scanner := bufio.NewScanner(c.App.Reader)
	for scanner.Scan() {
		line := scanner.Text()
		switch strings.TrimSpace(line) {
		case ":quit", ":q":
			return nil
		case ":clear":
			err = s.ctrl.ClearQuery()
		case ":history":
			out.printf("  history: %s\n", strings.Join(s.ctrl.State().RecentSearches, ", "))
		case ":share":
			out.printf("  share: %s\n", s.ctrl.ShareSearch())
		default:
			err = s.ctrl.UpdateQuery(line)
		}
		if err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	// Flush the pending debounced search, if any.
	if q := s.ctrl.State().Query; !core.IsBlank(q) {
		if err := s.ctrl.Search(ctx, q); err != nil && !errors.Is(err, controller.ErrSearchFailed) {
			return err
		}
	}
	return nil
}

func printResults(w io.Writer, state core.SearchState) {
	fmt.Fprintf(w, "Found %d results for %q (search %s, %s)\n",
		state.TotalResults, state.Query, state.SearchID, state.ExecutionTime.Round(time.Microsecond))
	if state.Results != nil {
		for i, a := range state.Results.Assets {
			fmt.Fprintf(w, "%2d. %s [%s] owner=%s quality=%.2f\n", i+1, a.Name, a.Type, a.Owner, a.QualityScore)
			if a.Description != "" {
				fmt.Fprintf(w, "    %s\n", a.Description)
			}
		}
	}
	for _, f := range state.Facets {
		values := make([]string, len(f.Values))
		for i, v := range f.Values {
			values[i] = fmt.Sprintf("%s(%d)", v.Value, v.Count)
		}
		fmt.Fprintf(w, "%s: %s\n", f.Field, strings.Join(values, ", "))
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

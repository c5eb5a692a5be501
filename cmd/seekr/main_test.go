package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// run executes the app with args and returns what it wrote.
func run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.Reader = strings.NewReader(input)
	err := app.Run(append([]string{"seekr", "--log-level", "error"}, args...))
	return out.String(), err
}

// isolate runs the test in an empty directory with a short debounce.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("SEEKR_DEBOUNCE_DELAY", "10ms")
	return filepath.Join(dir, "db")
}

func TestSearchCommand(t *testing.T) {
	isolate(t)

	t.Run("keyword", func(t *testing.T) {
		out, err := run(t, "", "search", "customer")
		require.NoError(t, err)
		assert.Contains(t, out, "customers [table]")
		assert.Contains(t, out, "customer orders [table]")
	})

	t.Run("filters", func(t *testing.T) {
		out, err := run(t, "", "search", "--tag", "pii", "customer")
		require.NoError(t, err)
		assert.Contains(t, out, "customers [table]")
		assert.NotContains(t, out, "customer orders")
	})

	t.Run("faceted", func(t *testing.T) {
		out, err := run(t, "", "search", "--mode", "faceted", "--facet", "owner", "customer")
		require.NoError(t, err)
		assert.Contains(t, out, "owner: ")
	})

	t.Run("query is required", func(t *testing.T) {
		_, err := run(t, "", "search")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query is required")
	})

	t.Run("invalid mode", func(t *testing.T) {
		_, err := run(t, "", "search", "--mode", "psychic", "customer")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid mode")
	})
}

func TestSuggestCommand(t *testing.T) {
	isolate(t)

	out, err := run(t, "", "suggest", "cust")
	require.NoError(t, err)
	assert.Contains(t, out, "customer")
}

func TestHistoryCommands(t *testing.T) {
	db := isolate(t)

	_, err := run(t, "", "--db", db, "search", "orders")
	require.NoError(t, err)
	_, err = run(t, "", "--db", db, "search", "revenue")
	require.NoError(t, err)

	out, err := run(t, "", "--db", db, "history", "list")
	require.NoError(t, err)
	assert.Equal(t, "revenue\norders\n", out)

	_, err = run(t, "", "--db", db, "history", "clear")
	require.NoError(t, err)
	out, err = run(t, "", "--db", db, "history", "list")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSavedCommands(t *testing.T) {
	db := isolate(t)

	out, err := run(t, "", "--db", db, "saved", "save", "--name", "pii customers", "--tag", "pii", "customer")
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	out, err = run(t, "", "--db", db, "saved", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "pii customers")
	assert.Contains(t, out, "tag=pii")

	out, err = run(t, "", "--db", db, "saved", "run", id)
	require.NoError(t, err)
	assert.Contains(t, out, "customers [table]")
	assert.NotContains(t, out, "customer orders")

	_, err = run(t, "", "--db", db, "saved", "delete", id)
	require.NoError(t, err)
	out, err = run(t, "", "--db", db, "saved", "list")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = run(t, "", "--db", db, "saved", "save", "customer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestShareAndOpen(t *testing.T) {
	isolate(t)

	out, err := run(t, "", "share", "--tag", "pii", "customer")
	require.NoError(t, err)
	shared := strings.TrimSpace(out)
	assert.Equal(t, "q=customer&tag=pii", shared)

	out, err = run(t, "", "open", shared)
	require.NoError(t, err)
	assert.Contains(t, out, `for "customer"`)
	assert.Contains(t, out, "customers [table]")

	_, err = run(t, "", "open", "quality_min=high")
	assert.Error(t, err)
}

func TestInteractiveCommand(t *testing.T) {
	isolate(t)

	out, err := run(t, "c\ncu\ncus\ncustomer\n", "interactive")
	require.NoError(t, err)
	assert.Contains(t, out, `= "customer"`)
	assert.Contains(t, out, "customers [table]")
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "WaRn"} {
			t.Run(level, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: "info",
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}

		err := app.Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		app := newApp()
		app.Writer = &bytes.Buffer{}
		app.Action = func(c *cli.Context) error {
			assert.Equal(t, "debug", c.String("log-level"))
			return nil
		}

		err := app.Run([]string{"seekr", "-l", "debug"})
		require.NoError(t, err)
	})
}

func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

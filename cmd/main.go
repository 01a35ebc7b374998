package main

import (
	"LineFinder/internal"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "LineFinder",
		Usage: "Report the lines of a file matched by a set of patterns that must all match the file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "logfile",
				Usage: "Write logs into file instead of stderr",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
				Value: "info",
			},
		},
		Before: func(c *cli.Context) error {
			internal.InitLogger(c.String("logfile"), c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			searchCommand(),
			batchCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search one file; every pattern must match somewhere in it",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "pattern",
				Aliases: []string{"e"},
				Usage:   "Regular expression (repeatable); matching is case-insensitive and multi-line",
			},
			&cli.StringFlag{
				Name:  "pattern-file",
				Usage: "Path to text file with one regular expression per line ('#' comments, optional 're:' prefix)",
			},
			&cli.BoolFlag{
				Name:  "unicode",
				Usage: "Unicode-aware classes and case folding (default: ASCII folding, no \\p{..} classes)",
			},
			&cli.BoolFlag{
				Name:  "lines",
				Usage: "Print the text of every matching line",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as a JSON array of {line,text}",
			},
		},
		Action: func(c *cli.Context) error {
			opts := internal.SearchOptions{
				Path:        c.Args().First(),
				Patterns:    c.StringSlice("pattern"),
				PatternFile: c.String("pattern-file"),
				Unicode:     c.Bool("unicode"),
				IncludeText: c.Bool("lines"),
				JSON:        c.Bool("json"),
			}
			if err := opts.Validate(); err != nil {
				return cli.Exit(err.Error(), 2)
			}
			if err := opts.Prepare(); err != nil {
				return cli.Exit(err.Error(), 2)
			}

			results, err := internal.NewSearcher().Search(opts.Request())
			if err != nil {
				if errors.Is(err, internal.ErrNoMatch) {
					logrus.WithField("file", opts.Path).Debug("No match")
				} else {
					logrus.WithFields(logrus.Fields{"file": opts.Path, "err": err}).Warn("Search failed")
				}
				results = []internal.LineResult{}
			}

			if err := printResults(os.Stdout, results, opts); err != nil {
				return err
			}
			if len(results) == 0 {
				// grep convention: nothing found
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func printResults(w io.Writer, results []internal.LineResult, opts internal.SearchOptions) error {
	if opts.JSON {
		return json.NewEncoder(w).Encode(results)
	}
	for _, r := range results {
		var err error
		if opts.IncludeText {
			_, err = fmt.Fprintf(w, "%d:%s\n", r.Line, r.Text)
		} else {
			_, err = fmt.Fprintf(w, "%d\n", r.Line)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Answer JSON-lines requests {id,path,patterns,unicode,include_lines} with JSON-lines responses",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "input",
				Usage: "Read requests from file instead of stdin",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Write responses into file instead of stdout",
			},
			&cli.IntFlag{
				Name:  "threads",
				Usage: "Max concurrent searches (default scales with CPU)",
				Value: 0,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Global timeout for the batch (e.g. 10m, 1h)",
			},
			&cli.DurationFlag{
				Name:  "stats-every",
				Usage: "Interval of the periodic stats log line",
			},
			&cli.BoolFlag{
				Name:  "fail-fast",
				Usage: "Stop on the first malformed request",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Show a progress spinner on stderr",
			},
		},
		Action: func(c *cli.Context) error {
			logrus.Info("LineFinder batch started")

			// ctx with timeout + OS signals
			base := context.Background()

			var cancel context.CancelFunc
			if t := c.Duration("timeout"); t > 0 {
				base, cancel = context.WithTimeout(base, t)
			} else {
				base, cancel = context.WithCancel(base)
			}
			defer cancel()

			ctx, stop := signal.NotifyContext(base, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			opts := internal.BatchOptions{
				Threads:    c.Int("threads"),
				FailFast:   c.Bool("fail-fast"),
				Progress:   c.Bool("progress"),
				StatsEvery: c.Duration("stats-every"),
			}
			if err := opts.Validate(); err != nil {
				return cli.Exit(err.Error(), 2)
			}

			in, out := io.Reader(os.Stdin), io.Writer(os.Stdout)
			if p := c.String("input"); p != "" {
				f, err := os.Open(p)
				if err != nil {
					return cli.Exit(err.Error(), 2)
				}
				defer f.Close()
				in = f
			}
			if p := c.String("output"); p != "" {
				f, err := os.Create(p)
				if err != nil {
					return cli.Exit(err.Error(), 2)
				}
				defer f.Close()
				out = f
			}

			var stats internal.BatchStats
			runner := internal.NewBatchRunner(opts)

			if err := runner.Run(ctx, in, internal.NewResponseSink(out, &stats)); err != nil {
				if ctx.Err() != nil {
					logrus.Warn("Batch cancelled")
				} else {
					logrus.WithError(err).Error("Batch failed")
				}
			}

			fmt.Fprintf(os.Stderr,
				"\n======= Batch finished in %s =======\nRequests: %d\nWith results: %d\nEmpty: %d\nErrors: %d\n",
				stats.Elapsed(), stats.Requests.Load(), stats.Matched.Load(), stats.Empty.Load(), stats.Errors.Load(),
			)
			return nil
		},
	}
}

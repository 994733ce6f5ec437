// Command feedparse normalizes Atom and RSS documents from files or stdin
// and prints the result as JSON, YAML or RSS 2.0.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/jessevdk/go-flags"
	"github.com/lysyi3m/feed-norm/app/cfg"
	"github.com/lysyi3m/feed-norm/app/feed"
	"github.com/lysyi3m/feed-norm/app/logging"
	"github.com/lysyi3m/feed-norm/app/model"
	"github.com/lysyi3m/feed-norm/app/parser"
	"github.com/lysyi3m/feed-norm/app/tasks"
	"gopkg.in/yaml.v3"
)

type options struct {
	Format           string `short:"f" long:"format" default:"json" choice:"json" choice:"yaml" choice:"rss" description:"Output format"`
	HTMLEntities     bool   `long:"html-entities" description:"Resolve HTML named entities such as &nbsp;"`
	StrictTimestamps bool   `long:"strict-timestamps" description:"Fail on unparseable timestamps instead of dropping them"`
	ProfilesDir      string `long:"profiles-dir" default:"./profiles" description:"Directory containing processing profiles"`
	Profile          string `short:"p" long:"profile" description:"Apply the named profile's filters"`
	LogLevel         string `long:"log-level" default:"warn" description:"Log level"`
	Workers          int    `short:"w" long:"workers" default:"4" description:"Number of files parsed concurrently"`

	Args struct {
		Files []string `positional-arg-name:"FILE" description:"Feed documents to parse; - or none reads stdin"`
	} `positional-args:"yes"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options

	flagParser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := flagParser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, err)
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	level, err := logging.ParseLevel(opts.LogLevel)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	logger := logging.New(stderr, level, false)

	parserOpts := []parser.Option{parser.WithLogger(logger)}
	if opts.HTMLEntities {
		parserOpts = append(parserOpts, parser.WithHTMLEntities())
	}
	if opts.StrictTimestamps {
		parserOpts = append(parserOpts, parser.WithStrictTimestamps())
	}
	p := parser.NewParser(parserOpts...)

	var profile *feed.Profile
	if opts.Profile != "" {
		profile, err = feed.NewProfileCache(opts.ProfilesDir).LoadProfile(opts.Profile)
		if err != nil {
			fmt.Fprintf(stderr, "failed to load profile: %v\n", err)
			return 2
		}
	}

	files := opts.Args.Files
	if len(files) == 0 {
		files = []string{"-"}
	}
	if slices.Index(files, "-") != slices.LastIndex(files, "-") {
		fmt.Fprintln(stderr, "stdin (-) may be given only once")
		return 2
	}

	parseTasks := make([]tasks.TaskInterface, len(files))
	for i, file := range files {
		parseTasks[i] = tasks.NewParseFileTask(p, file, stdin)
	}
	errs := tasks.NewPool(opts.Workers).Run(context.Background(), parseTasks)

	out := &printer{format: opts.Format, w: stdout, generator: feed.NewGenerator(cfg.GetVersion())}
	filterer := feed.NewFilterer()

	status := 0
	for i, file := range files {
		if errs[i] != nil {
			fmt.Fprintf(stderr, "%s: %s: %v\n", file, errorKind(errs[i]), errs[i])
			status = 1
			continue
		}

		parsed := parseTasks[i].(*tasks.ParseFileTask).Result
		if profile != nil {
			var rejected []feed.Rejection
			parsed, rejected = filterer.Run(parsed, profile)
			for _, r := range rejected {
				logger.Info("Entry rejected", "file", file, "entry", r.EntryID, "reason", r.Reason)
			}
		}

		if err := out.print(parsed); err != nil {
			fmt.Fprintf(stderr, "%s: failed to write output: %v\n", file, err)
			return 1
		}
	}

	return status
}

// errorKind names the failure class printed ahead of the message.
func errorKind(err error) string {
	var xmlErr *parser.XMLError
	var parseErr *parser.ParseError

	switch {
	case errors.As(err, &parseErr):
		return parseErr.Kind.String()
	case errors.As(err, &xmlErr):
		return "xml"
	default:
		return "io"
	}
}

type printer struct {
	format    string
	w         io.Writer
	generator *feed.Generator
	count     int
}

func (pr *printer) print(f *model.Feed) error {
	defer func() { pr.count++ }()

	switch pr.format {
	case "yaml":
		if pr.count > 0 {
			if _, err := io.WriteString(pr.w, "---\n"); err != nil {
				return err
			}
		}
		enc := yaml.NewEncoder(pr.w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	case "rss":
		rss, err := pr.generator.Run(f, "")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(pr.w, rss)
		return err
	default:
		enc := json.NewEncoder(pr.w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	}
}

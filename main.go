package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mcncl/kyopro/internal/casing"
	"github.com/mcncl/kyopro/internal/client"
	"github.com/mcncl/kyopro/internal/config"
	"github.com/mcncl/kyopro/internal/errors"
	"github.com/mcncl/kyopro/internal/formatter"
	"github.com/mcncl/kyopro/internal/models"
	"github.com/mcncl/kyopro/internal/parser"
	"github.com/mcncl/kyopro/internal/problems"
)

// CLI defines the command-line interface
var CLI struct {
	Config  string           `help:"Path to config file. Defaults to .kyopro.yml in the current or a parent directory." short:"c" type:"path"`
	Debug   bool             `help:"Enable debug logging." short:"d"`
	Version kong.VersionFlag `help:"Show version information." short:"v"`

	Normalize NormalizeCmd `cmd:"" help:"Rewrite the object keys of a JSON document from snake_case to camelCase."`
	Problems  ProblemsCmd  `cmd:"" help:"List the problems of a platform."`
	Platforms PlatformsCmd `cmd:"" help:"List supported platforms and their contest categories."`
}

// Context holds the runtime context shared by all commands
type Context struct {
	Ctx    context.Context
	Debug  bool
	Config *config.Config
	Logger *zap.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Version information
const (
	Version = "0.2.0"
)

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("kyopro"),
		kong.Description("A client for the competitive programming problem API"),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("kyopro version %s", Version)},
	)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctx, err := newContext(sigCtx, CLI.Config, CLI.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}
	defer func() { _ = ctx.Logger.Sync() }()

	if err := kctx.Run(ctx); err != nil {
		ctx.Logger.Debug("command failed", zap.String("command", kctx.Command()), zap.Error(err))
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: kyopro --help\n")
		stop()
		os.Exit(1)
	}
}

// newContext loads the configuration and builds the logger.
func newContext(parent context.Context, configPath string, debug bool) (*Context, error) {
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	cfg, err := config.LoadConfigWithCLI(configPath, config.Overrides{Debug: debug})
	if err != nil {
		return nil, errors.NewConfigError("failed to load configuration", err)
	}

	logger, err := newLogger(cfg.Dev.Debug)
	if err != nil {
		return nil, errors.NewConfigError("failed to initialize logger", err)
	}
	if configPath != "" {
		logger.Debug("loaded config file", zap.String("path", configPath))
	}

	return &Context{
		Ctx:    parent,
		Debug:  cfg.Dev.Debug,
		Config: cfg,
		Logger: logger,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	logCfg := zap.NewProductionConfig()
	logCfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return logCfg.Build()
}

// NormalizeCmd converts the keys of a JSON document
type NormalizeCmd struct {
	Input       string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	To          string `help:"Target key case (${enum})." enum:"camel,snake" default:"camel"`
	Indent      int    `help:"Spaces per indentation level, 0 for compact output. Defaults to the configured indent." default:"-1"`
	Interactive bool   `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
}

// Run executes the normalize command
func (c *NormalizeCmd) Run(ctx *Context) error {
	doc, err := c.parseInput(ctx)
	if err != nil {
		return err
	}

	var out models.Value
	switch c.To {
	case "snake":
		out = casing.Snake(doc.Root)
	default:
		out = casing.Normalize(doc.Root)
	}

	indent := ctx.Config.Output.Indent
	if c.Indent >= 0 {
		indent = c.Indent
	}
	text, err := formatter.NewFormatter(indent).FormatJSON(out)
	if err != nil {
		return errors.NewOutputError("failed to encode JSON", err)
	}

	return c.writeOutput(ctx, text)
}

// parseInput reads JSON from file or stdin
func (c *NormalizeCmd) parseInput(ctx *Context) (models.Document, error) {
	if c.Input != "" {
		ctx.Logger.Debug("reading input file", zap.String("path", c.Input))
		return parser.ParseFile(c.Input)
	}

	if f, ok := ctx.Stdin.(*os.File); ok {
		stdinInfo, err := f.Stat()
		if err != nil {
			return models.Document{}, errors.NewInputError("failed to access stdin", err)
		}
		if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
			// Terminal is interactive (not piped)
			if c.Interactive {
				return readInteractiveInput(ctx)
			}
			return models.Document{}, errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}

	jsonData, err := io.ReadAll(ctx.Stdin)
	if err != nil {
		return models.Document{}, errors.NewInputError("failed to read from stdin", err)
	}

	if len(jsonData) == 0 {
		return models.Document{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return parser.ParseBytes(jsonData)
}

// writeOutput writes text to file or stdout
func (c *NormalizeCmd) writeOutput(ctx *Context, text string) error {
	if c.Output != "" {
		err := os.WriteFile(c.Output, []byte(text+"\n"), 0o644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", c.Output), err)
		}
		fmt.Fprintf(ctx.Stderr, "Normalized JSON written to %s\n", c.Output)
		return nil
	}

	if _, err := fmt.Fprintln(ctx.Stdout, strings.TrimSpace(text)); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput lets users paste JSON and signal completion with
// Ctrl+D (EOF)
func readInteractiveInput(ctx *Context) (models.Document, error) {
	fmt.Fprintln(ctx.Stderr, "kyopro interactive mode")
	fmt.Fprintln(ctx.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(ctx.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Document{}, errors.NewInputError("error reading input", err)
		}
	}

	jsonData := jsonBuilder.String()
	if strings.TrimSpace(jsonData) == "" {
		return models.Document{}, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(ctx.Stderr, "\nProcessing JSON...")
	return parser.ParseString(jsonData)
}

// ProblemsCmd fetches and lists problems
type ProblemsCmd struct {
	Platform string `arg:"" optional:"" help:"Platform name or abbreviation (atcoder, codeforces, yukicoder, aoj, yosupo_online_judge). Defaults to the configured platform."`
	Category string `help:"Contest category to show, or 'all'. Defaults to the platform's first category." short:"C"`
	Sort     string `help:"Column to sort by: contestName, title, difficulty, rawPoint or solverCount." short:"s"`
	Desc     bool   `help:"Sort in descending order."`
	Page     int    `help:"Page to show, starting at 1." default:"1"`
	PerPage  int    `help:"Problems per page: 20, 50 or 100." name:"per-page"`
	Format   string `help:"Output format: table or json." short:"f"`
	BaseURL  string `help:"API base URL." name:"base-url"`
}

// Run executes the problems command
func (c *ProblemsCmd) Run(ctx *Context) error {
	overrides := config.Overrides{
		BaseURL:  c.BaseURL,
		Platform: c.Platform,
		Category: c.Category,
		Sort:     c.Sort,
		PerPage:  c.PerPage,
		Format:   c.Format,
	}
	if c.Desc {
		overrides.Desc = &c.Desc
	}
	cfg := ctx.Config.Apply(overrides)
	if err := cfg.Validate(); err != nil {
		return errors.NewValidationError(err.Error(), err)
	}

	platform, err := problems.ParsePlatform(cfg.Browse.Platform)
	if err != nil {
		return err
	}
	category, err := resolveCategory(platform, cfg.Browse.Category)
	if err != nil {
		return err
	}

	cl, err := client.New(cfg.ClientOptions(), client.WithLogger(ctx.Logger))
	if err != nil {
		return err
	}
	defer cl.Close()

	ps, err := cl.FetchProblems(ctx.Ctx, platform)
	if err != nil {
		return err
	}
	ctx.Logger.Debug("fetched problems",
		zap.String("platform", platform.String()),
		zap.Int("count", len(ps)))

	ps = problems.FilterByCategory(ps, category)
	if cfg.Browse.Sort != "" {
		key, err := problems.ParseSortKey(cfg.Browse.Sort)
		if err != nil {
			return err
		}
		ps = problems.SortBy(ps, key, cfg.Browse.Desc)
	}

	page, err := problems.Paginate(ps, c.Page, cfg.Browse.PerPage)
	if err != nil {
		return err
	}

	f := formatter.NewFormatter(cfg.Output.Indent)
	var text string
	switch cfg.Output.Format {
	case config.FormatJSON:
		text, err = f.FormatProblemsJSON(page)
		if err != nil {
			return errors.NewOutputError("failed to encode problems", err)
		}
	default:
		text = f.FormatTable(page)
	}

	if _, err := fmt.Fprintln(ctx.Stdout, text); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// resolveCategory maps the configured category to a filter value: "" picks
// the platform's first category and "all" disables filtering.
func resolveCategory(platform problems.Platform, category string) (string, error) {
	switch {
	case category == "":
		return problems.DefaultCategory(platform), nil
	case strings.EqualFold(category, "all"):
		return "", nil
	case problems.ValidCategory(platform, category):
		return category, nil
	}
	return "", errors.NewValidationError(
		fmt.Sprintf("category %q does not exist on %s", category, platform),
		errors.ErrUnknownCategory,
	)
}

// PlatformsCmd lists platforms
type PlatformsCmd struct{}

// Run executes the platforms command
func (c *PlatformsCmd) Run(ctx *Context) error {
	for _, p := range problems.Platforms {
		cats := problems.Categories(p)
		list := "-"
		if len(cats) > 0 {
			list = strings.Join(cats, ", ")
		}
		if _, err := fmt.Fprintf(ctx.Stdout, "%s (%s): %s\n", p, p.Abbr(), list); err != nil {
			return errors.NewOutputError("failed to write to stdout", err)
		}
	}
	return nil
}

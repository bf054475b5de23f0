// Package cli provides the pdftool command-line interface. It runs the same
// operations as the HTTP server through a local scratch-workspace pipeline.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"text/tabwriter"

	"pdf-tools-server/internal/domain"
	"pdf-tools-server/internal/service"
	"pdf-tools-server/pkg/logger"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Version information set at build time.
var Version = "dev"

// App represents the CLI application.
type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer

	tempRoot  string
	logLevel  string
	logFormat string
}

// New creates a new CLI application.
func New() *App {
	app := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	app.root = &cobra.Command{
		Use:   "pdftool",
		Short: "Run PDF operations on local files",
		Long: `pdftool runs the PDF operations offered by pdf-tools-server on local files.

Every file is processed in its own scratch workspace, which is removed
afterwards whether the operation succeeds or fails.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	app.root.PersistentFlags().StringVar(&app.tempRoot, "temp-root", os.TempDir(), "Directory for scratch workspaces")
	app.root.PersistentFlags().StringVar(&app.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	app.root.PersistentFlags().StringVar(&app.logFormat, "log-format", "text", "Log format (text or json)")

	app.root.AddCommand(app.newVersionCmd(), app.newListCmd())
	for _, op := range service.DefaultOperations() {
		app.root.AddCommand(app.newOperationCmd(op))
	}

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "pdftool version %s\n", Version)
		},
	}
}

func (a *App) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available operations",
		Run: func(cmd *cobra.Command, args []string) {
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "OPERATION\tREQUIRED\tDESCRIPTION")
			for _, op := range service.DefaultOperations() {
				fmt.Fprintf(tw, "%s\t%v\t%s\n", op.Name, op.RequiredParams, op.Description)
			}
			_ = tw.Flush()
		},
	}
}

// operationOptions holds the flags shared by every operation command.
type operationOptions struct {
	outDir        string
	password      string
	ownerPassword string
	angle         string
	pages         string
	jobs          int
}

func (o *operationOptions) params() domain.Params {
	params := domain.Params{}
	for key, value := range map[string]string{
		domain.ParamPassword:      o.password,
		domain.ParamOwnerPassword: o.ownerPassword,
		domain.ParamAngle:         o.angle,
		domain.ParamPages:         o.pages,
	} {
		if value != "" {
			params[key] = value
		}
	}
	return params
}

func (a *App) newOperationCmd(op *domain.Operation) *cobra.Command {
	opts := &operationOptions{}

	cmd := &cobra.Command{
		Use:   op.Name + " <file.pdf> [file.pdf...]",
		Short: op.Description,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOperation(cmd.Context(), op, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "out-dir", "o", "", "Directory for results (defaults to each input's directory)")
	cmd.Flags().StringVarP(&opts.password, "password", "p", "", "Document password")
	cmd.Flags().StringVar(&opts.ownerPassword, "owner-password", "", "Owner password (protect only)")
	cmd.Flags().StringVar(&opts.angle, "angle", "", "Rotation angle: 90, 180, 270 or negative (rotate only)")
	cmd.Flags().StringVar(&opts.pages, "pages", "", "Page selection such as 1-3,5 (rotate only)")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", runtime.NumCPU(), "Files processed concurrently")

	return cmd
}

func (a *App) newPipeline() (*service.Pipeline, error) {
	appLogger := logger.NewLoggerWithOutput(a.stderr, a.logLevel, a.logFormat)
	workspaces := service.NewWorkspaceManager(a.tempRoot, service.OSFileSystem{}, service.NopObserver{}, appLogger)
	if err := workspaces.EnsureRoot(); err != nil {
		return nil, err
	}
	return service.NewPipeline(workspaces, service.NopObserver{}, appLogger, service.DefaultOperations()...), nil
}

// runOperation processes every input concurrently. Each file fails on its
// own; the command reports all failures together.
func (a *App) runOperation(ctx context.Context, op *domain.Operation, inputs []string, opts *operationOptions) error {
	pipeline, err := a.newPipeline()
	if err != nil {
		return err
	}
	params := opts.params()

	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	jobs := opts.jobs
	if jobs < 1 {
		jobs = 1
	}
	targets := planOutputs(op.OutputPrefix, inputs, opts.outDir)
	failures := make([]error, len(inputs))
	written := make([]bool, len(inputs))

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			if err := processFile(ctx, pipeline, op.Name, input, targets[i], params); err != nil {
				failures[i] = fmt.Errorf("%s: %w", input, err)
				return nil
			}
			written[i] = true
			return nil
		})
	}
	_ = g.Wait()

	for i, ok := range written {
		if ok {
			fmt.Fprintf(a.stdout, "%s -> %s\n", inputs[i], targets[i])
		}
	}
	return errors.Join(failures...)
}

// planOutputs assigns every input its own result path before any work
// starts. Inputs that would land on the same path, such as a/doc.pdf and
// b/doc.pdf with one output directory, get numbered suffixes.
func planOutputs(prefix string, inputs []string, outDir string) []string {
	targets := make([]string, len(inputs))
	taken := make(map[string]bool, len(inputs))
	for i, input := range inputs {
		dir := outDir
		if dir == "" {
			dir = filepath.Dir(input)
		}
		name := service.OutputFilename(prefix, filepath.Base(input))
		target := filepath.Join(dir, name)
		ext := filepath.Ext(name)
		for n := 1; taken[filepath.Clean(target)]; n++ {
			target = filepath.Join(dir, fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext))
		}
		taken[filepath.Clean(target)] = true
		targets[i] = target
	}
	return targets
}

func processFile(ctx context.Context, pipeline *service.Pipeline, operation, input, target string, params domain.Params) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	result, err := pipeline.Process(ctx, operation, &domain.Upload{
		Filename:    filepath.Base(input),
		ContentType: domain.ContentTypePDF,
		Data:        data,
	}, params)
	if err != nil {
		return err
	}

	if err := os.WriteFile(target, result.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

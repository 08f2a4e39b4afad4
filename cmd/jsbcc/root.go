package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/deepnoodle-ai/jsbcc/batch"
	"github.com/deepnoodle-ai/jsbcc/diag"
	"github.com/deepnoodle-ai/jsbcc/driver"
	"github.com/deepnoodle-ai/jsbcc/engine"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	config *viper.Viper
	engine engine.Engine
	fs     afero.Fs
}

func newApp() *app {
	return &app{
		config: newConfig(),
		engine: engine.NewRisor(),
		fs:     afero.NewOsFs(),
	}
}

func (a *app) rootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "jsbcc input_file [byte_code_file]",
		Short: "Compile scripts to byte-code files",
		Long:  usage,
		// Arguments are resolved by hand: -p is the only flag, and any other
		// first argument, even one starting with a dash, is an input path.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), cmd, args)
		},
	}
}

func (a *app) run(ctx context.Context, cmd *cobra.Command, args []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	inv, err := resolve(args)
	if errors.Is(err, errUsage) {
		fmt.Fprintln(stderr, usage)
		return exitCode(1)
	}

	if err := readConfigFile(a.config); err != nil {
		return err
	}
	s, err := loadSettings(a.config)
	if err != nil {
		return err
	}

	logger := newLogger(stderr, s.logLevel, s.noColor)
	printer := diag.NewPrinter(stderr, logger, !s.noColor && isTerminal(stderr))
	d := driver.New(a.engine, append(s.driverOptions(),
		driver.WithFs(a.fs),
		driver.WithSink(s.outputSink(a.fs)),
		driver.WithStdout(stdout),
		driver.WithReporter(printer),
		driver.WithLogger(logger),
	)...)

	if inv.mode == modePipe {
		r := batch.NewReader(cmd.InOrStdin(), logger)
		if err := r.WaitReady(); err != nil {
			printer.Errorf("Failed to read from pipe")
			logger.Error().Err(err).Msg("wait for input")
			return exitCode(1)
		}
		res := r.Run(ctx, func(ctx context.Context, path string) error {
			_, err := d.Compile(ctx, path, "")
			return err
		})
		if res.Errors != nil {
			logger.Warn().
				Err(res.Errors).
				Int("processed", res.Processed).
				Int("failed", res.Failed).
				Msg("batch finished with failures")
		}
		return nil
	}

	if !d.CompileFile(ctx, inv.input, inv.output) {
		return exitCode(1)
	}
	return nil
}

// execute runs the command line and returns the process exit status.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return executeApp(newApp(), args, stdin, stdout, stderr)
}

func executeApp(a *app, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{}
	}
	cmd := a.rootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		var code exitCode
		if errors.As(err, &code) {
			return int(code)
		}
		fmt.Fprintln(stderr, color.RedString(err.Error()))
		return 1
	}
	return 0
}

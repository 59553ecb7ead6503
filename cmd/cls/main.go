package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/hijiri0404/cdk-learning-samples/cmd/internal/bincheck"
	"github.com/hijiri0404/cdk-learning-samples/cmd/internal/cmdexec"
	"github.com/hijiri0404/cdk-learning-samples/cmd/internal/projcfg"
)

type App struct {
	Doctor DoctorCmd `cmd:"" help:"Check that the cdk, aws and go binaries are installed."`
	Cdk    struct {
		Bootstrap BootstrapCmd `cmd:"" help:"Bootstrap CDK in the configured region and us-east-1."`
		Synth     SynthCmd     `cmd:"" help:"Synthesize the stacks of an environment."`
		Deploy    DeployCmd    `cmd:"" help:"Deploy the stacks of an environment."`
		Diff      DiffCmd      `cmd:"" help:"Show the CDK diff of an environment."`
		Destroy   DestroyCmd   `cmd:"" help:"Destroy the stacks of an environment."`
		List      ListCmd      `cmd:"" help:"List the stacks the app declares."`
		Outputs   OutputsCmd   `cmd:"" help:"Show the outputs of the deployed stacks of an environment."`
	} `cmd:"" help:"CDK commands."`
}

func main() {
	cfg, err := projcfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var app App
	kctx := kong.Parse(&app,
		kong.Name("cls"),
		kong.Description("CDK learning samples CLI."),
		kong.UsageOnError(),
		kong.Bind(cfg),
		kong.Bind(bincheck.NewChecker()),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.BindTo(cmdexec.Runner(cmdexec.Exec{}), (*cmdexec.Runner)(nil)),
		kong.BindTo(io.Writer(os.Stdout), (*io.Writer)(nil)),
	)
	if err := kctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

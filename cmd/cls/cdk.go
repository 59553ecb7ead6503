package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
	"github.com/hijiri0404/cdk-learning-samples/cmd/internal/cdkctx"
	"github.com/hijiri0404/cdk-learning-samples/cmd/internal/cfnread"
	"github.com/hijiri0404/cdk-learning-samples/cmd/internal/cmdexec"
	"github.com/hijiri0404/cdk-learning-samples/cmd/internal/projcfg"
)

// Target selects the stacks of one environment, optionally narrowed to one sample.
type Target struct {
	Environment string `arg:"" help:"Environment (dev, stg, prod)."`
	Stack       string `short:"s" help:"Only this sample stack (e.g. Network, file-upload)."`
}

func (t Target) resolve(cfg *projcfg.Config) (*cdkctx.CDKContext, clcdkutil.Environment, error) {
	cctx, err := cdkctx.Load(cfg.CdkDir(), cfg.Cdk.ContextPrefix)
	if err != nil {
		return nil, "", err
	}
	env, err := cctx.Environment(t.Environment)
	if err != nil {
		return nil, "", err
	}
	return cctx, env, nil
}

func runCdk(ctx context.Context, cfg *projcfg.Config, runner cmdexec.Runner, args ...string) error {
	args = append(args, cfg.ProfileArgs()...)
	return runner.Run(ctx, cfg.CdkDir(), "cdk", args...)
}

type BootstrapCmd struct {
	ExecutionPolicies string `name:"execution-policies" help:"IAM policy ARNs for the CloudFormation execution role."`
}

func (c *BootstrapCmd) Run(ctx context.Context, cfg *projcfg.Config, runner cmdexec.Runner) error {
	cctx, err := cdkctx.Load(cfg.CdkDir(), cfg.Cdk.ContextPrefix)
	if err != nil {
		return err
	}

	regions := []string{cctx.Region}
	if cctx.Region != clcdkutil.EdgeRegion {
		regions = append(regions, clcdkutil.EdgeRegion)
	}

	for _, region := range regions {
		args := []string{"bootstrap", "--qualifier", cctx.Qualifier,
			"--toolkit-stack-name", "CDKToolkit-" + cctx.Qualifier,
			"aws://unknown-account/" + region}
		if c.ExecutionPolicies != "" {
			args = append(args, "--cloudformation-execution-policies", c.ExecutionPolicies)
		}
		if err := runCdk(ctx, cfg, runner, args...); err != nil {
			return errors.Wrapf(err, "bootstrapping %s", region)
		}
	}
	return nil
}

type SynthCmd struct {
	Target `embed:""`
}

func (c *SynthCmd) Run(ctx context.Context, cfg *projcfg.Config, runner cmdexec.Runner) error {
	cctx, env, err := c.resolve(cfg)
	if err != nil {
		return err
	}
	return runCdk(ctx, cfg, runner, "synth", "--quiet", cctx.StackGlob(env, c.Stack))
}

type DeployCmd struct {
	Target `embed:""`
	Hotswap     bool `help:"Use CDK hotswap for faster iterations. Not allowed for prod."`
	Exclusively bool `short:"e" help:"With --stack, skip the stacks it depends on."`
}

func (c *DeployCmd) Run(ctx context.Context, cfg *projcfg.Config, runner cmdexec.Runner) error {
	cctx, env, err := c.resolve(cfg)
	if err != nil {
		return err
	}

	args := []string{"deploy"}
	// prod keeps the interactive approval of security sensitive changes
	if !env.Settings().RequireApproval {
		args = append(args, "--require-approval", "never")
	}
	if c.Hotswap {
		if env.IsProd() {
			return errors.New("hotswap deployments are not allowed for prod")
		}
		args = append(args, "--hotswap")
	}
	if c.Exclusively {
		if c.Stack == "" {
			return errors.New("--exclusively requires --stack")
		}
		args = append(args, "--exclusively")
	}
	args = append(args, cctx.StackGlob(env, c.Stack))
	return runCdk(ctx, cfg, runner, args...)
}

type DiffCmd struct {
	Target `embed:""`
}

func (c *DiffCmd) Run(ctx context.Context, cfg *projcfg.Config, runner cmdexec.Runner) error {
	cctx, env, err := c.resolve(cfg)
	if err != nil {
		return err
	}
	return runCdk(ctx, cfg, runner, "diff", cctx.StackGlob(env, c.Stack))
}

type DestroyCmd struct {
	Target `embed:""`
	AllowProd bool `name:"allow-prod" help:"Required to destroy prod stacks."`
}

func (c *DestroyCmd) Run(ctx context.Context, cfg *projcfg.Config, runner cmdexec.Runner) error {
	cctx, env, err := c.resolve(cfg)
	if err != nil {
		return err
	}
	if env.IsProd() && !c.AllowProd {
		return errors.New("refusing to destroy prod without --allow-prod")
	}
	return runCdk(ctx, cfg, runner, "destroy", "--force", cctx.StackGlob(env, c.Stack))
}

type ListCmd struct {
	Environment string `arg:"" optional:"" help:"Only list the stacks of this environment."`
}

func (c *ListCmd) Run(ctx context.Context, cfg *projcfg.Config, runner cmdexec.Runner, w io.Writer) error {
	stacks, err := listStacks(ctx, cfg, runner)
	if err != nil {
		return err
	}

	if c.Environment != "" {
		cctx, env, err := Target{Environment: c.Environment}.resolve(cfg)
		if err != nil {
			return err
		}
		stacks = filterStacks(stacks, func(s string) bool { return cctx.BelongsTo(s, env) })
	}

	for _, s := range stacks {
		fmt.Fprintln(w, s)
	}
	return nil
}

type OutputsCmd struct {
	Target `embed:""`
}

func (c *OutputsCmd) Run(ctx context.Context, cfg *projcfg.Config, runner cmdexec.Runner, w io.Writer) error {
	cctx, env, err := c.resolve(cfg)
	if err != nil {
		return err
	}

	stacks, err := listStacks(ctx, cfg, runner)
	if err != nil {
		return err
	}

	suffix := ""
	if c.Stack != "" {
		suffix = strings.TrimPrefix(cctx.StackGlob(env, c.Stack), cctx.Qualifier+"*")
	}
	stacks = filterStacks(stacks, func(s string) bool {
		return cctx.BelongsTo(s, env) && strings.HasSuffix(s, suffix)
	})
	if len(stacks) == 0 {
		return errors.Newf("no stacks match %s", cctx.StackGlob(env, c.Stack))
	}

	reader := cfnread.Reader{Runner: runner, Args: cfg.ProfileArgs()}
	for _, stack := range stacks {
		region, ok := cctx.ResolveStackRegion(stack)
		if !ok {
			continue
		}

		fmt.Fprintf(w, "=== %s (%s) ===\n", stack, region)

		outputs, err := reader.StackOutputs(ctx, region, stack)
		if isStackMissing(err) {
			fmt.Fprintln(w, "(not deployed)")
			fmt.Fprintln(w)
			continue
		}
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, o := range outputs {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", o.Key, o.Value, o.Description)
		}
		tw.Flush()
		fmt.Fprintln(w)
	}
	return nil
}

// isStackMissing reports whether describe-stacks failed because the stack was
// never deployed. Credential and throttling failures are not.
func isStackMissing(err error) bool {
	var execErr *cmdexec.Error
	return errors.As(err, &execErr) && strings.Contains(execErr.Stderr, "does not exist")
}

func listStacks(ctx context.Context, cfg *projcfg.Config, runner cmdexec.Runner) ([]string, error) {
	args := append([]string{"list"}, cfg.ProfileArgs()...)
	out, err := runner.Output(ctx, cfg.CdkDir(), "cdk", args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing stacks")
	}

	var stacks []string
	for line := range strings.SplitSeq(out, "\n") {
		// cdk list prints "Name (DisplayPath)" for nested stage stacks
		name, _, _ := strings.Cut(strings.TrimSpace(line), " ")
		if name != "" {
			stacks = append(stacks, name)
		}
	}
	return stacks, nil
}

func filterStacks(stacks []string, keep func(string) bool) []string {
	var out []string
	for _, s := range stacks {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

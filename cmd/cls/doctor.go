package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/hijiri0404/cdk-learning-samples/cmd/internal/bincheck"
	"github.com/hijiri0404/cdk-learning-samples/cmd/internal/cdkctx"
	"github.com/hijiri0404/cdk-learning-samples/cmd/internal/projcfg"
)

type DoctorCmd struct{}

func (c *DoctorCmd) Run(cfg *projcfg.Config, checker *bincheck.Checker, w io.Writer) error {
	var failed bool

	fmt.Fprintln(w, "=== binaries ===")
	for _, r := range checker.CheckAll(bincheck.Required) {
		if r.InPath {
			fmt.Fprintf(w, "  ✓ %s (%s)\n", r.Name, r.Path)
			continue
		}
		fmt.Fprintf(w, "  ✗ %s not found: %s\n", r.Name, r.Reason)
		failed = true
	}

	fmt.Fprintln(w, "=== cdk app ===")
	if cctx, err := cdkctx.Load(cfg.CdkDir(), cfg.Cdk.ContextPrefix); err != nil {
		fmt.Fprintf(w, "  ✗ %v\n", err)
		failed = true
	} else {
		rel, _ := filepath.Rel(cfg.Root, cfg.CdkDir())
		fmt.Fprintf(w, "  ✓ %s: qualifier %s, region %s, environments %v\n",
			rel, cctx.Qualifier, cctx.Region, cctx.Environments)
	}

	if failed {
		return errors.New("doctor found problems; see above")
	}

	fmt.Fprintln(w, "All checks passed.")
	return nil
}

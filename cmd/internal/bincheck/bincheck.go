// Package bincheck looks up the external binaries the CLI shells out to.
package bincheck

import (
	"os/exec"
	"sync"
)

// Binary is a required executable and why it is needed.
type Binary struct {
	Name   string
	Reason string
}

// Required lists the binaries the cdk commands depend on.
var Required = []Binary{
	{Name: "cdk", Reason: "synthesizes and deploys the stacks (npm install -g aws-cdk)"},
	{Name: "aws", Reason: "reads stack outputs"},
	{Name: "go", Reason: "runs the CDK app and bundles the Lambda functions"},
}

// Result of looking up one binary.
type Result struct {
	Binary
	Path   string
	InPath bool
}

// Checker caches lookups. LookPath defaults to exec.LookPath.
type Checker struct {
	LookPath func(file string) (string, error)

	cache sync.Map
}

func NewChecker() *Checker {
	return &Checker{LookPath: exec.LookPath}
}

// Check looks up bin once; later calls for the same name return the cached result.
func (c *Checker) Check(bin Binary) Result {
	if v, ok := c.cache.Load(bin.Name); ok {
		r, _ := v.(Result)
		return r
	}

	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	r := Result{Binary: bin}
	if path, err := lookPath(bin.Name); err == nil {
		r.Path, r.InPath = path, true
	}

	actual, _ := c.cache.LoadOrStore(bin.Name, r)
	stored, _ := actual.(Result)
	return stored
}

// CheckAll checks every binary in order.
func (c *Checker) CheckAll(bins []Binary) []Result {
	results := make([]Result, 0, len(bins))
	for _, bin := range bins {
		results = append(results, c.Check(bin))
	}
	return results
}

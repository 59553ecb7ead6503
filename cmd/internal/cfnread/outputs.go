// Package cfnread reads deployed stacks through the aws CLI.
package cfnread

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/hijiri0404/cdk-learning-samples/cmd/internal/cmdexec"
)

// Output is one stack output.
type Output struct {
	Key         string `json:"OutputKey"`
	Value       string `json:"OutputValue"`
	Description string `json:"Description"`
}

type describeStacksResponse struct {
	Stacks []struct {
		StackStatus string   `json:"StackStatus"`
		Outputs     []Output `json:"Outputs"`
	} `json:"Stacks"`
}

// Reader runs describe-stacks with optional extra aws CLI flags (e.g. --profile).
type Reader struct {
	Runner cmdexec.Runner
	Args   []string
}

// StackOutputs returns the outputs of a stack sorted by key.
func (r Reader) StackOutputs(ctx context.Context, region, stackName string) ([]Output, error) {
	args := []string{"cloudformation", "describe-stacks",
		"--no-cli-pager",
		"--region", region,
		"--stack-name", stackName,
		"--output", "json",
	}
	args = append(args, r.Args...)

	out, err := r.Runner.Output(ctx, "/", "aws", args...)
	if err != nil {
		return nil, errors.Wrapf(err, "describing stack %s in %s", stackName, region)
	}

	var resp describeStacksResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		return nil, errors.Wrapf(err, "parsing stack outputs for %s", stackName)
	}

	if len(resp.Stacks) == 0 {
		return nil, errors.Newf("stack %s not found in %s", stackName, region)
	}

	outputs := resp.Stacks[0].Outputs
	sort.Slice(outputs, func(i, j int) bool { return outputs[i].Key < outputs[j].Key })
	return outputs, nil
}

// StackOutputMap returns the outputs of a stack keyed by output key.
func (r Reader) StackOutputMap(ctx context.Context, region, stackName string) (map[string]string, error) {
	outputs, err := r.StackOutputs(ctx, region, stackName)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(outputs))
	for _, o := range outputs {
		m[o.Key] = o.Value
	}
	return m, nil
}

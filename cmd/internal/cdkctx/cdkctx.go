// Package cdkctx reads the app context from cdk.json and maps environments and
// sample stacks to the stack names the CDK app declares.
package cdkctx

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
	"github.com/iancoleman/strcase"
)

// CDKContext is the subset of the app context the CLI needs.
type CDKContext struct {
	Qualifier    string
	Prefix       string
	Region       string
	Environments []clcdkutil.Environment
	// RegionIdents maps stack name idents (e.g. "Apn1") to regions.
	RegionIdents map[string]string
}

// Load parses cdkDir/cdk.json. Keys are read with the given context prefix
// (e.g. "cls-qualifier").
func Load(cdkDir, prefix string) (*CDKContext, error) {
	cdkJSON := filepath.Join(cdkDir, "cdk.json")
	data, err := os.ReadFile(cdkJSON)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", cdkJSON)
	}

	var file struct {
		Context map[string]json.RawMessage `json:"context"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", cdkJSON)
	}

	qualifier, err := getString(file.Context, prefix+"qualifier")
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", cdkJSON)
	}
	region, err := getString(file.Context, prefix+"region")
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", cdkJSON)
	}
	if !clcdkutil.IsKnownRegion(region) {
		return nil, errors.Newf("unknown region %q in %s", region, cdkJSON)
	}
	names, err := getStringSlice(file.Context, prefix+"environments")
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", cdkJSON)
	}

	envs := make([]clcdkutil.Environment, 0, len(names))
	for _, name := range names {
		env, err := clcdkutil.ParseEnvironment(name)
		if err != nil {
			return nil, errors.Wrapf(err, "in %s", cdkJSON)
		}
		envs = append(envs, env)
	}

	idents := make(map[string]string, len(clcdkutil.RegionIdents))
	for r, ident := range clcdkutil.RegionIdents {
		idents[ident] = r
	}

	return &CDKContext{
		Qualifier:    qualifier,
		Prefix:       prefix,
		Region:       region,
		Environments: envs,
		RegionIdents: idents,
	}, nil
}

// Environment validates name against the configured environments.
func (c *CDKContext) Environment(name string) (clcdkutil.Environment, error) {
	env, err := clcdkutil.ParseEnvironment(name)
	if err != nil {
		return "", err
	}
	if !slices.Contains(c.Environments, env) {
		return "", errors.Newf("environment %q is not configured in cdk.json", name)
	}
	return env, nil
}

// StackGlob returns the cdk stack selector for env: "{qualifier}*{Env}*", or
// "{qualifier}*{Env}{Stack}" when a sample stack is named. Stack accepts any casing
// ("file-upload" and "FileUpload" are the same stack). The leading wildcard covers
// the region ident so edge stacks in us-east-1 are included.
func (c *CDKContext) StackGlob(env clcdkutil.Environment, stack string) string {
	if stack == "" {
		return c.Qualifier + "*" + env.Ident() + "*"
	}
	return c.Qualifier + "*" + env.Ident() + strcase.ToCamel(stack)
}

// BelongsTo reports whether stackName is one of env's stacks.
func (c *CDKContext) BelongsTo(stackName string, env clcdkutil.Environment) bool {
	rest, ok := c.afterRegionIdent(stackName)
	if !ok {
		return false
	}
	label, ok := strings.CutPrefix(rest, env.Ident())
	// the label starts a new word: "DevNetwork" but not "Devices"
	return ok && label != "" && unicode.IsUpper(rune(label[0]))
}

// ResolveStackRegion returns the region a stack is deployed to, derived from the
// region ident following the qualifier.
func (c *CDKContext) ResolveStackRegion(stackName string) (string, bool) {
	rest, ok := strings.CutPrefix(stackName, c.Qualifier)
	if !ok {
		return "", false
	}

	idents := make([]string, 0, len(c.RegionIdents))
	for ident := range c.RegionIdents {
		idents = append(idents, ident)
	}
	sort.Slice(idents, func(i, j int) bool {
		return len(idents[i]) > len(idents[j])
	})

	for _, ident := range idents {
		if strings.HasPrefix(rest, ident) {
			return c.RegionIdents[ident], true
		}
	}
	return "", false
}

func (c *CDKContext) afterRegionIdent(stackName string) (string, bool) {
	region, ok := c.ResolveStackRegion(stackName)
	if !ok {
		return "", false
	}
	return strings.TrimPrefix(stackName, c.Qualifier+clcdkutil.RegionIdentFor(region)), true
}

func getString(m map[string]json.RawMessage, key string) (string, error) {
	raw, ok := m[key]
	if !ok {
		return "", errors.Newf("context key %q is not set", key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", errors.Newf("context key %q must be a string", key)
	}
	return s, nil
}

func getStringSlice(m map[string]json.RawMessage, key string) ([]string, error) {
	raw, ok := m[key]
	if !ok {
		return nil, errors.Newf("context key %q is not set", key)
	}
	var ss []string
	if err := json.Unmarshal(raw, &ss); err != nil {
		return nil, errors.Newf("context key %q must be an array of strings", key)
	}
	return ss, nil
}

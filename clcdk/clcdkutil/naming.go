package clcdkutil

import (
	"fmt"
	"path/filepath"

	"github.com/aws/constructs-go/constructs/v10"
	"github.com/iancoleman/strcase"
)

// Casing specifies how to format the identifier string.
type Casing int

const (
	// CasingCamel formats as CamelCase (e.g., "ClsDevItemsTable").
	CasingCamel Casing = iota
	// CasingLowerCamel formats as lowerCamelCase (e.g., "clsDevItemsTable").
	CasingLowerCamel
	// CasingSnake formats as snake_case (e.g., "cls_dev_items_table").
	CasingSnake
	// CasingKebab formats as kebab-case (e.g., "cls-dev-items-table").
	CasingKebab
)

// ResourceName generates a resource identifier prefixed with the qualifier and the
// environment of the enclosing stack: "{qualifier}-{environment}-{label}" in the
// requested casing. Shared stacks have no environment and produce "{qualifier}-{label}".
func ResourceName(scope constructs.Construct, label string, casing Casing) string {
	qualifier := Qualifier(scope)

	base := fmt.Sprintf("%s-%s", qualifier, label)
	if env := EnvironmentOf(scope); env != "" {
		base = fmt.Sprintf("%s-%s-%s", qualifier, env, label)
	}

	return applyCasing(base, casing)
}

// EntryPath resolves a path relative to the repository root, e.g. the Go command
// a Lambda function is built from.
func EntryPath(scope constructs.Construct, rel string) string {
	return filepath.Join(ConfigFromScope(scope).SourceRoot, filepath.FromSlash(rel))
}

func applyCasing(s string, casing Casing) string {
	switch casing {
	case CasingCamel:
		return strcase.ToCamel(s)
	case CasingLowerCamel:
		return strcase.ToLowerCamel(s)
	case CasingSnake:
		return strcase.ToSnake(s)
	case CasingKebab:
		return strcase.ToKebab(s)
	default:
		return strcase.ToCamel(s)
	}
}

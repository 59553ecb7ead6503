//nolint:paralleltest // jsii runtime doesn't support parallel tests
package clcdklwalambda_test

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdklwalambda"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdktest"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

const testEntry = "backend/cmd/itemsapi"

func TestParseEntry(t *testing.T) {
	tests := []struct {
		name          string
		entry         string
		wantComponent string
		wantCommand   string
		wantErr       bool
	}{
		{name: "simple path", entry: "backend/cmd/itemsapi", wantComponent: "backend", wantCommand: "itemsapi"},
		{name: "deep path", entry: "some/deep/backend/cmd/fileapi", wantComponent: "backend", wantCommand: "fileapi"},
		{name: "missing cmd segment", entry: "backend/itemsapi", wantErr: true},
		{name: "empty entry", entry: "", wantErr: true},
		{name: "only cmd", entry: "cmd/itemsapi", wantErr: true},
		{name: "empty command", entry: "backend/cmd/", wantErr: true},
		{name: "empty component", entry: "/cmd/itemsapi", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			component, command, err := clcdklwalambda.ParseEntry(tt.entry)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if component != tt.wantComponent || command != tt.wantCommand {
				t.Errorf("ParseEntry() = %q, %q, want %q, %q",
					component, command, tt.wantComponent, tt.wantCommand)
			}
		})
	}
}

func TestNew_ConfiguresLWA(t *testing.T) {
	defer jsii.Close()

	app := clcdktest.NewApp(clcdktest.Config(t))
	stack := clcdktest.NewStack(app, clcdkutil.EnvironmentDev)

	fn := clcdklwalambda.New(stack, clcdklwalambda.Props{
		Entry: jsii.String(testEntry),
		Environment: &map[string]*string{
			"TABLE_NAME": jsii.String("items"),
		},
	})

	if fn.Name() != "BackendItemsapi" {
		t.Errorf("Name() = %q, want %q", fn.Name(), "BackendItemsapi")
	}
	if fn.LogGroup() == nil {
		t.Error("LogGroup() should not be nil")
	}

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::Lambda::Function"), map[string]any{
		"FunctionName":  "cls-dev-backend-itemsapi",
		"Architectures": []any{"arm64"},
		"Runtime":       "provided.al2023",
		"MemorySize":    128,
		"TracingConfig": map[string]any{"Mode": "Active"},
		"Environment": map[string]any{
			"Variables": assertions.Match_ObjectLike(&map[string]any{
				"TABLE_NAME":                   "items",
				"AWS_LWA_PORT":                 "8080",
				"AWS_LWA_READINESS_CHECK_PATH": "/health",
				"CLS_SERVICE_NAME":             "cls-dev-backend-itemsapi",
				"CLS_ENVIRONMENT":              "dev",
				"CLS_OTEL_EXPORTER":            "xrayudp",
			}),
		},
		"Layers": []any{
			"arn:aws:lambda:ap-northeast-1:753240598075:layer:LambdaAdapterLayerArm64:25",
		},
	})
}

func TestNew_ProdMemory(t *testing.T) {
	defer jsii.Close()

	app := clcdktest.NewApp(clcdktest.Config(t))
	stack := clcdktest.NewStack(app, clcdkutil.EnvironmentProd)

	clcdklwalambda.New(stack, clcdklwalambda.Props{Entry: jsii.String(testEntry)})

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::Lambda::Function"), map[string]any{
		"MemorySize": 512,
	})
}

func TestNew_WithPassThroughPath(t *testing.T) {
	defer jsii.Close()

	app := clcdktest.NewApp(clcdktest.Config(t))
	stack := clcdktest.NewStack(app, clcdkutil.EnvironmentDev)

	fn := clcdklwalambda.New(stack, clcdklwalambda.Props{
		Entry:           jsii.String("backend/cmd/fileprocessor"),
		PassThroughPath: jsii.String("/l/process-upload"),
	})

	if fn.Name() != "BackendFileprocessorProcessUpload" {
		t.Errorf("Name() = %q, want %q", fn.Name(), "BackendFileprocessorProcessUpload")
	}

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::Lambda::Function"), map[string]any{
		"Environment": map[string]any{
			"Variables": assertions.Match_ObjectLike(&map[string]any{
				"AWS_LWA_PASS_THROUGH_PATH": "/l/process-upload",
			}),
		},
	})
}

func TestNew_InvalidEntry(t *testing.T) {
	defer jsii.Close()

	app := clcdktest.NewApp(clcdktest.Config(t))
	stack := clcdktest.NewStack(app, clcdkutil.EnvironmentDev)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid entry")
		}
	}()

	clcdklwalambda.New(stack, clcdklwalambda.Props{Entry: jsii.String("invalid/path")})
}

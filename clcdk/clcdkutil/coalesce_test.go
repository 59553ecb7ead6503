package clcdkutil_test

import (
	"testing"

	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

func TestOr(t *testing.T) {
	if got := clcdkutil.Or("", "default"); got != "default" {
		t.Errorf("Or(\"\", default) = %q", got)
	}
	if got := clcdkutil.Or("set", "default"); got != "set" {
		t.Errorf("Or(set, default) = %q", got)
	}
	if got := clcdkutil.Or(0, 30); got != 30 {
		t.Errorf("Or(0, 30) = %d", got)
	}
	if got := clcdkutil.Or(5, 30); got != 5 {
		t.Errorf("Or(5, 30) = %d", got)
	}
}

func TestOrPtr(t *testing.T) {
	if got := clcdkutil.OrPtr[bool](nil, true); !got {
		t.Error("OrPtr(nil, true) = false")
	}
	f := false
	if got := clcdkutil.OrPtr(&f, true); got {
		t.Error("OrPtr(&false, true) = true, explicit false must win")
	}
}

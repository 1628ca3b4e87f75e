package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSpanTree(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "build", "trace-1")
	childCtx, load := StartChildSpan(ctx, "load")
	_, decode := StartChildSpan(childCtx, "decode")
	decode.End()
	load.SetAttr("files", 3)
	load.End()
	root.End()

	if len(root.Children) != 1 || root.Children[0] != load {
		t.Fatalf("root children = %v", root.Children)
	}
	if decode.TraceID != "trace-1" || load.Children[0] != decode {
		t.Errorf("grandchild not linked: %+v", decode)
	}
	if SpanFromContext(childCtx) != load {
		t.Error("SpanFromContext did not return the child")
	}
	if root.Duration < load.Duration {
		t.Errorf("root %v shorter than child %v", root.Duration, load.Duration)
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	root.Log(logger)
	out := buf.String()
	for _, want := range []string{"span=build", "span=load", "span=decode", "files=3", "depth=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestChildWithoutParent(t *testing.T) {
	_, s := StartChildSpan(context.Background(), "orphan")
	if s.TraceID != "" {
		t.Errorf("orphan TraceID = %q", s.TraceID)
	}
	if SpanFromContext(context.Background()) != nil {
		t.Error("empty context should carry no span")
	}
}

func TestNewTraceID(t *testing.T) {
	a, b := NewTraceID(), NewTraceID()
	if len(a) != 32 || a == b {
		t.Errorf("trace ids %q, %q", a, b)
	}
}

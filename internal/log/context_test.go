package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestContextAttrsAppearInOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextLogHandler(slog.NewTextHandler(&buf, nil)))

	ctx := ContextWithAttrs(context.Background(), slog.String("path", "/tmp/sample.pdf"))
	logger.InfoContext(ctx, "analyzing")

	if !strings.Contains(buf.String(), "path=/tmp/sample.pdf") {
		t.Errorf("context attr missing from log output: %s", buf.String())
	}
}

func TestLabelAttrPerEnvironment(t *testing.T) {
	if attr := LabelAttr("depth", "DEEP"); attr.Key != "depth" || attr.Value.String() != "DEEP" {
		t.Errorf("dev LabelAttr = %v, want depth=DEEP", attr)
	}

	loggingEnv = LoggingEnvProd
	defer func() { loggingEnv = LoggingEnvDev }()
	if attr := LabelAttr("depth", "DEEP"); attr.Key != "labels.depth" {
		t.Errorf("prod LabelAttr key = %q, want labels.depth", attr.Key)
	}
}

func TestContextWithNoAttrsIsUnchanged(t *testing.T) {
	ctx := context.Background()
	if got := ContextWithAttrs(ctx); got != ctx {
		t.Error("ContextWithAttrs with no attrs should return the same context")
	}
}

package cli

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/nhedger/energiapro/internal/config"
)

func newTestRoot(cfg *config.Config, args ...string) (*bytes.Buffer, error) {
	out := &bytes.Buffer{}
	root := NewRootCommand(zap.NewNop(), cfg, out)
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return out, root.Execute()
}

func TestMeasurementsRejectsUnknownFormat(t *testing.T) {
	_, err := newTestRoot(&config.Config{}, "measurements", "507167", "5806.000", "--format", "xml")
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("expected unknown format error, got %v", err)
	}
}

func TestMeasurementsRequiresCredentials(t *testing.T) {
	_, err := newTestRoot(&config.Config{}, "measurements", "507167", "5806.000")
	if err == nil || !strings.Contains(err.Error(), "missing username") {
		t.Errorf("expected missing username error, got %v", err)
	}

	_, err = newTestRoot(&config.Config{Username: "user"}, "measurements", "507167", "5806.000")
	if err == nil || !strings.Contains(err.Error(), "missing secret key") {
		t.Errorf("expected missing secret key error, got %v", err)
	}
}

func TestInstallationsRequiresClientIDArgument(t *testing.T) {
	_, err := newTestRoot(&config.Config{}, "installations")
	if err == nil {
		t.Error("expected argument count error")
	}
}

func TestMeasurementsRequiresBothIDArguments(t *testing.T) {
	_, err := newTestRoot(&config.Config{}, "measurements", "507167")
	if err == nil {
		t.Error("expected argument count error")
	}
}

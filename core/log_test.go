//go:build !tinygo

package core

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestNewLoggerLevel(t *testing.T) {
	l := NewLogger(logrus.WarnLevel)
	if l.GetLevel() != logrus.WarnLevel {
		t.Errorf("Expected warn level, got %s", l.GetLevel())
	}
}

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	logger, hook := test.NewNullLogger()
	SetLogger(logger.WithField("prefix", "core"))
	Log().Warnf("card %d missing", 1)

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("Expected an entry")
	}
	if entry.Message != "card 1 missing" {
		t.Errorf("Expected message %q, got %q", "card 1 missing", entry.Message)
	}
	if entry.Data["prefix"] != "core" {
		t.Errorf("Expected prefix field, got %v", entry.Data["prefix"])
	}

	SetLogger(nil)
	if Log() == nil {
		t.Error("Expected the default logger restored")
	}
}

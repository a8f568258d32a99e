package main

import (
	"testing"

	"pixelle/cmd"
)

func TestVersion(t *testing.T) {
	if version != "dev" {
		t.Errorf("Expected default version to be 'dev', got %s", version)
	}
}

func TestSetVersionFormats(t *testing.T) {
	original := cmd.GetVersion()
	defer cmd.SetVersion(original)

	for _, v := range []string{"dev", "1.0.0", "v2.0.0-rc1"} {
		cmd.SetVersion(v)
		if got := cmd.GetVersion(); got != v {
			t.Errorf("Expected version %s, got %s", v, got)
		}
	}
}

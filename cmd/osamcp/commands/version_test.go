package commands

import (
	"bytes"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	buf := new(bytes.Buffer)

	oldVersion := Version
	Version = "test-version"
	defer func() { Version = oldVersion }()

	cmd := VersionCmd()
	cmd.SetOut(buf)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Failed to execute version command: %v", err)
	}

	expectedOutput := "osamcp version test-version\n"
	if buf.String() != expectedOutput {
		t.Errorf("Expected output %q, got %q", expectedOutput, buf.String())
	}
}

func TestVersionCmdWorks(t *testing.T) {
	cmd := VersionCmd()
	if cmd == nil {
		t.Fatal("Expected version command to be created")
	}

	if cmd.Use != "version" {
		t.Errorf("Expected Use to be 'version', got %q", cmd.Use)
	}

	if cmd.Run == nil {
		t.Error("Expected Run function to be defined")
	}
}

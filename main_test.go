package main

import "testing"

func TestBuild_ValidProgramProducesBytecode(t *testing.T) {
	bc, _, err := build("out 1 + 2", "t.syl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bc.TopLevel) == 0 {
		t.Error("expected non-empty top-level bytecode")
	}
}

func TestBuild_ParseErrorIsReported(t *testing.T) {
	_, _, err := build("def\n", "t.syl")
	if err == nil {
		t.Error("expected a parse error for a malformed function definition")
	}
}

func TestBuild_SemanticErrorIsReported(t *testing.T) {
	_, _, err := build("out undefined_var", "t.syl")
	if err == nil {
		t.Error("expected a semantic error for an undefined variable")
	}
}

func TestLoadConfig_EmptyPathUsesDefaultLocation(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Execution.MaxSteps == 0 {
		t.Error("expected a nonzero default MaxSteps")
	}
}

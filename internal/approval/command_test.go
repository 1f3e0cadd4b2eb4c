package approval

import "testing"

func TestAnalyzeSafePipeline(t *testing.T) {
	result := Analyze("cat file.txt | grep error | wc -l")
	if !result.Safe {
		t.Fatalf("expected safe pipeline, got %+v", result)
	}
	if len(result.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(result.Segments))
	}
	if result.Segments[0].StdinOnly {
		t.Error("first segment should not be stdin_only")
	}
	if !result.Segments[1].StdinOnly || !result.Segments[2].StdinOnly {
		t.Error("downstream segments should be stdin_only")
	}
}

func TestAnalyzeUnsafePrimary(t *testing.T) {
	result := Analyze("cargo build")
	if result.Safe {
		t.Fatalf("expected unsafe command, got %+v", result)
	}
	if result.Segments[0].Executable != "cargo" {
		t.Errorf("expected executable 'cargo', got %q", result.Segments[0].Executable)
	}
}

func TestAnalyzeUnsafeDownstream(t *testing.T) {
	result := Analyze("cat file.txt | cargo run")
	if result.Safe {
		t.Fatalf("a safe primary cannot rescue an unsafe downstream segment: %+v", result)
	}
}

func TestAnalyzeChainedSeparatorsNotAutoSafe(t *testing.T) {
	result := Analyze("echo hi && echo bye")
	if result.Safe {
		t.Fatalf("independent chains are not a single pipe chain and should not be safe: %+v", result)
	}
	if len(result.Segments) != 2 {
		t.Fatalf("expected 2 segments across both chains, got %d", len(result.Segments))
	}
}

func TestAnalyzeDestructiveCommandNotSafe(t *testing.T) {
	result := Analyze("rm -rf /tmp/data")
	if result.Safe {
		t.Fatal("rm -rf must never classify as safe")
	}
}

func TestAnalyzeQuotingAndEscapes(t *testing.T) {
	result := Analyze(`echo 'a && b' "quoted \"word\""`)
	if len(result.Segments) != 1 {
		t.Fatalf("quoted separators must not split the command, got %d segments", len(result.Segments))
	}
	seg := result.Segments[0]
	if seg.Executable != "echo" {
		t.Fatalf("expected echo, got %q", seg.Executable)
	}
	if len(seg.Args) != 2 {
		t.Fatalf("expected 2 args, got %v", seg.Args)
	}
	if seg.Args[0] != "a && b" {
		t.Errorf("expected literal single-quoted arg, got %q", seg.Args[0])
	}
	if seg.Args[1] != `quoted "word"` {
		t.Errorf("expected unescaped double-quoted arg, got %q", seg.Args[1])
	}
}

func TestAllowlistPatternPrefersResolvedPath(t *testing.T) {
	a := AnalysisResult{
		Segments:     []CommandSegment{{Executable: "cargo"}},
		ResolvedPath: "/usr/bin/cargo",
	}
	if got := AllowlistPattern(a); got != "/usr/bin/cargo" {
		t.Errorf("expected resolved path, got %q", got)
	}

	b := AnalysisResult{Segments: []CommandSegment{{Executable: "cargo"}}}
	if got := AllowlistPattern(b); got != "cargo" {
		t.Errorf("expected bare executable fallback, got %q", got)
	}
}

func TestAnalyzeEmptyCommand(t *testing.T) {
	result := Analyze("   ")
	if result.Safe {
		t.Error("empty command should not be safe")
	}
	if len(result.Segments) != 0 {
		t.Errorf("expected no segments, got %v", result.Segments)
	}
}

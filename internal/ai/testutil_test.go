package ai

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/votewire/autopost/internal/proc"
)

// fakeProcRunner simulates CLI subprocess execution. Tests NEVER invoke the
// real codex or gemini binaries; every response is pre-configured mock data.
//
// Simple tests set StdoutData/StderrData/Err. Tests that need per-call
// behavior (rate-limit then success, writing the codex output file) set
// OnRun, which receives the 1-based call number and the command.
type fakeProcRunner struct {
	StdoutData []byte
	StderrData []byte
	Err        error
	OnRun      func(call int, cmd proc.Command) (*proc.Result, error)

	// Commands stores every executed command for verification.
	Commands []proc.Command
}

func (f *fakeProcRunner) Run(_ context.Context, cmd proc.Command) (*proc.Result, error) {
	f.Commands = append(f.Commands, cmd)
	if f.OnRun != nil {
		return f.OnRun(len(f.Commands), cmd)
	}
	return &proc.Result{Stdout: f.StdoutData, Stderr: f.StderrData}, f.Err
}

// clearResolutionEnv blanks every environment variable the binary and model
// resolution chain reads, so tests see only what they set themselves.
func clearResolutionEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CODEX_BIN", "")
	t.Setenv("GEMINI_BIN", "")
	t.Setenv("CODEX_MODEL", "")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("APPDATA", "")
}

// unsetNoColor removes NO_COLOR for the duration of the test. t.Setenv
// registers the restore; the unset afterwards makes LookupEnv miss.
func unsetNoColor(t *testing.T) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	_ = os.Unsetenv("NO_COLOR")
}

// stubSleep replaces timeSleep with a version that records each wait and
// fires immediately. The original is restored when the test ends.
func stubSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	waits := &[]time.Duration{}
	original := timeSleep
	timeSleep = func(d interface{ Nanoseconds() int64 }) <-chan time.Time {
		*waits = append(*waits, time.Duration(d.Nanoseconds()))
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}
	t.Cleanup(func() { timeSleep = original })
	return waits
}

// outPathFromArgs extracts the path following the -o flag.
func outPathFromArgs(t *testing.T, args []string) string {
	t.Helper()
	for i, a := range args {
		if a == "-o" && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatal("args carry no -o output path")
	return ""
}

// publishDraftJSON is a minimal publish draft that decodes cleanly.
const publishDraftJSON = `{
  "status": "publish",
  "title": "Ram Chandra Poudel: Profile and Platform",
  "slug": "ram-chandra-poudel-profile",
  "excerpt": "A profile of the candidate ahead of the vote.",
  "content_html": "<p>Profile body.</p>",
  "topic_keywords": ["nepal election"],
  "candidate_profile": {
    "candidate_name": "Ram Chandra Poudel",
    "election_name": "Nepal General Election 2026",
    "election_date": "2026-03-05",
    "party": "Nepali Congress",
    "constituency": "Tanahun 1",
    "current_position": "President",
    "short_bio": "Veteran politician from Tanahun.",
    "profile_source_url": "https://example.org/profile"
  },
  "seo": {
    "focus_keyphrase": "ram chandra poudel",
    "meta_title": "Ram Chandra Poudel Profile",
    "meta_description": "Profile of the candidate.",
    "seo_slug_hint": "ram-chandra-poudel"
  },
  "sources": [{"url": "https://example.org/a"}],
  "key_facts": [
    {
      "fact": "Served as Speaker of the House of Representatives.",
      "confidence": 90,
      "supporting_source_urls": ["https://example.org/a"]
    }
  ]
}`

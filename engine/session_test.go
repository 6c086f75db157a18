package engine

import (
	"context"
	"os/exec"
	"testing"

	"github.com/cquaid/scnm/match"
)

func spawnSleeper(t *testing.T) *exec.Cmd {
	t.Helper()
	cmd := exec.Command("/bin/sleep", "5")
	if err := cmd.Start(); err != nil {
		t.Skipf("cannot spawn /bin/sleep: %v", err)
	}
	return cmd
}

func TestAttachDiscoverDetach(t *testing.T) {
	cmd := spawnSleeper(t)
	defer func() {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	}()

	s, err := Attach(context.Background(), cmd.Process.Pid)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}

	set, err := s.DiscoverRegions()
	if err != nil {
		t.Fatalf("DiscoverRegions: %v", err)
	}
	if set.Len() == 0 {
		t.Fatal("expected at least one read+write region for /bin/sleep")
	}
	if s.Regions() != set {
		t.Fatal("Regions() should return the set just discovered")
	}

	if m := s.Matches(); m == nil || !m.IsEmpty() {
		t.Fatal("expected a fresh, empty match list")
	}

	if err := s.Detach(); err != nil {
		t.Fatalf("Detach: %v", err)
	}
}

func TestSearchRequiresRegionsFirst(t *testing.T) {
	cmd := spawnSleeper(t)
	defer func() {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	}()

	s, err := Attach(context.Background(), cmd.Process.Pid)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer s.Detach()

	needle, err := match.ParseNeedle("1234")
	if err != nil {
		t.Fatalf("ParseNeedle: %v", err)
	}

	err = s.Search(needle, match.SearchOptions{Aligned: true}, match.SearchEq)
	if err == nil {
		t.Fatal("expected Search to fail before DiscoverRegions")
	}
}

func TestClearMatches(t *testing.T) {
	cmd := spawnSleeper(t)
	defer func() {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	}()

	s, err := Attach(context.Background(), cmd.Process.Pid)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer s.Detach()

	s.ClearMatches()
	if !s.Matches().IsEmpty() {
		t.Fatal("expected match list to be empty after ClearMatches")
	}
}

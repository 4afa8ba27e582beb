package textclean

import "testing"

func TestCleanStripsHTML(t *testing.T) {
	t.Parallel()

	cleaner := New()
	got := cleaner.Clean(`<p>Markets <b>rally</b> on earnings.</p>`)
	if got != "Markets rally on earnings." {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestCleanUnescapesEntities(t *testing.T) {
	t.Parallel()

	cleaner := New()
	got := cleaner.Clean("Profit &amp; loss &mdash; explained")
	if got != "Profit & loss — explained" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestCleanCollapsesWhitespace(t *testing.T) {
	t.Parallel()

	cleaner := New()
	got := cleaner.Clean("  too   many\n\n\n  spaces \t here  ")
	if got != "too many spaces here" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestCleanEmptyInput(t *testing.T) {
	t.Parallel()

	if got := New().Clean(""); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

package cleaning

import "testing"

func TestCleanStripsMarkupAndLinks(t *testing.T) {
	t.Parallel()

	got := Clean("<p>Great app!</p> \U0001F604 http://x.com")
	want := "Great app! [link removed]"
	if got != want {
		t.Fatalf("Clean returned %q, want %q", got, want)
	}
}

func TestCleanDecodesEntities(t *testing.T) {
	t.Parallel()

	got := Clean("Tom &amp; Jerry &lt;3")
	want := "Tom & Jerry <3"
	if got != want {
		t.Fatalf("Clean returned %q, want %q", got, want)
	}
}

func TestCleanFoldsCurlyQuotes(t *testing.T) {
	t.Parallel()

	got := Clean("“works great”, I’m happy")
	want := `"works great", I'm happy`
	if got != want {
		t.Fatalf("Clean returned %q, want %q", got, want)
	}
}

func TestCleanReplacesBareDomains(t *testing.T) {
	t.Parallel()

	got := Clean("see example.com/help for details")
	want := "see [link removed] for details"
	if got != want {
		t.Fatalf("Clean returned %q, want %q", got, want)
	}
}

func TestCleanCollapsesWhitespaceBeforePunctuation(t *testing.T) {
	t.Parallel()

	got := Clean("nice   app ,  really !")
	want := "nice app, really!"
	if got != want {
		t.Fatalf("Clean returned %q, want %q", got, want)
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"<p>Great app!</p> \U0001F604 http://x.com",
		"plain text stays plain",
		"visit www.example.org now",
		"",
	}
	for _, input := range inputs {
		once := Clean(input)
		twice := Clean(once)
		if once != twice {
			t.Fatalf("Clean not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}

func TestCleanEmptyInput(t *testing.T) {
	t.Parallel()

	if got := Clean(""); got != "" {
		t.Fatalf("Clean(\"\") returned %q", got)
	}
	if got := Clean("\U0001F604\U0001F604"); got != "" {
		t.Fatalf("emoji-only input returned %q", got)
	}
}

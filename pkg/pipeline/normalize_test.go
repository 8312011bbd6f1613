package pipeline

import "testing"

func TestStripCodeFence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "json fence",
			in:   "```json\n{\"a\":1}\n```",
			want: "{\"a\":1}",
		},
		{
			name: "html fence",
			in:   "```html\n<!DOCTYPE html><html></html>\n```",
			want: "<!DOCTYPE html><html></html>",
		},
		{
			name: "fence without language tag",
			in:   "```\nplain text\n```",
			want: "plain text",
		},
		{
			name: "no fence passes through",
			in:   "{\"a\":1}",
			want: "{\"a\":1}",
		},
		{
			name: "surrounding whitespace",
			in:   "  ```json\n{\"a\":1}\n```  ",
			want: "{\"a\":1}",
		},
		{
			name: "empty string",
			in:   "",
			want: "",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := StripCodeFence(tc.in); got != tc.want {
				t.Fatalf("StripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestStripCodeFenceIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"```json\n{\"a\":1}\n```",
		"{\"a\":1}",
		"no markers here",
	}
	for _, in := range inputs {
		once := StripCodeFence(in)
		twice := StripCodeFence(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

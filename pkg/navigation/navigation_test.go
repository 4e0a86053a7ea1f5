package navigation

import "testing"

func TestMainMarksActiveSection(t *testing.T) {
	cases := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "Root", path: "/", expected: "Home"},
		{name: "Empty", path: "", expected: "Home"},
		{name: "Section", path: "/projects", expected: "Projects"},
		{name: "Nested", path: "/blog/hello-world", expected: "Blog"},
		{name: "Trailing slash", path: "/about/", expected: "About"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var active []string
			for _, item := range Main(tc.path) {
				if item.Active {
					active = append(active, item.Label)
				}
			}
			if len(active) != 1 || active[0] != tc.expected {
				t.Fatalf("expected only %s active, got %v", tc.expected, active)
			}
		})
	}
}

func TestMainDoesNotMatchPrefixWords(t *testing.T) {
	for _, item := range Main("/blogroll") {
		if item.Active {
			t.Fatalf("expected no active item, got %s", item.Label)
		}
	}
}

func TestMainReturnsFreshCopy(t *testing.T) {
	first := Main("/blog")
	first[0].Label = "Changed"

	if Main("/")[0].Label != "Home" {
		t.Fatalf("expected menu to be unaffected by caller mutation")
	}
}

package match

import "testing"

func TestLongestCommonSubstring(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		a, b string
		want string
	}{
		"both empty":         {a: "", b: "", want: ""},
		"empty left":         {a: "", b: "chrome", want: ""},
		"empty right":        {a: "chrome", b: "", want: ""},
		"no overlap":         {a: "abc", b: "xyz", want: ""},
		"identical":          {a: "steam", b: "steam", want: "steam"},
		"case folded":        {a: "HeroesOfTheStorm_x64", b: "heroesofthestorm", want: "heroesofthestorm"},
		"embedded":           {a: "xxdiscordyy", b: "discord", want: "discord"},
		"partial overlap":    {a: "battle.net", b: "battlefield", want: "battle"},
		"single char":        {a: "a", b: "cat", want: "a"},
		"unicode":            {a: "Überwachung", b: "ÜBER", want: "über"},
		"tie picks earliest": {a: "abXcd", b: "cdab", want: "ab"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if got := LongestCommonSubstring(tc.a, tc.b); got != tc.want {
				t.Errorf("LongestCommonSubstring(%q, %q) = %q, want %q", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestStripExtension(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in   string
		want string
	}{
		"exe":          {in: "HeroesOfTheStorm_x64.exe", want: "HeroesOfTheStorm_x64"},
		"no extension": {in: "bash", want: "bash"},
		"two dots":     {in: "archive.tar.gz", want: "archive.tar"},
		"dot file":     {in: ".hidden", want: ".hidden"},
		"empty":        {in: "", want: ""},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if got := StripExtension(tc.in); got != tc.want {
				t.Errorf("StripExtension(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	if got := Normalize(" Heroes Of\tThe Storm\n"); got != "heroesofthestorm" {
		t.Errorf("Normalize = %q, want %q", got, "heroesofthestorm")
	}
}

func TestDeferred(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		declared string
		observed string
		want     bool
	}{
		"superstring with extension": {declared: "HeroesOfTheStorm", observed: "HeroesOfTheStorm_x64.exe", want: true},
		"declared with spaces":       {declared: "Heroes Of The Storm", observed: "HeroesOfTheStorm_x64.exe", want: true},
		"exact":                      {declared: "steam", observed: "steam", want: true},
		"observed too short":         {declared: "HeroesOfTheStorm", observed: "Heroes.exe", want: false},
		"unrelated":                  {declared: "HeroesOfTheStorm", observed: "explorer.exe", want: false},
		"empty declared":             {declared: "  ", observed: "anything", want: false},
		"empty observed":             {declared: "steam", observed: "", want: false},
		"match only in extension":    {declared: "exe", observed: "game.exe", want: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if got := Deferred(tc.declared, tc.observed); got != tc.want {
				t.Errorf("Deferred(%q, %q) = %v, want %v", tc.declared, tc.observed, got, tc.want)
			}
		})
	}
}

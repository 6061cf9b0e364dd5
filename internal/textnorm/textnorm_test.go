package textnorm

import "testing"

func TestNormalizeTextIdempotent(t *testing.T) {
	inputs := []string{
		"  Test’s  Song — Live  ",
		"（Remix）",
		"plain text",
	}
	for _, in := range inputs {
		once := NormalizeText(in)
		twice := NormalizeText(once)
		if once != twice {
			t.Errorf("NormalizeText not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace collapse", "a   b\t c", "a b c"},
		{"curly apostrophe", "Don’t Stop", "Don't Stop"},
		{"em dash", "Before — After", "Before - After"},
		{"full-width parens", "（Live）", "(Live)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.in); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"leading article", "The Test Song (Radio Edit)", "Test Song (Radio Edit)"},
		{"leading track number", "03. Test Song", "Test Song"},
		{"short bracket tag", "[WIP] Test Song", "Test Song"},
		{"starred marker", "*explicit* Test Song", "Test Song"},
		{"plain", "Test Song", "Test Song"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.in); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonicalTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"radio edit", "Test Song (Radio Edit)", "Test Song"},
		{"remix and feature", "Test Song (Remix) [feat. Another Artist]", "Test Song"},
		{"remaster", "Test Song (2011 Remastered)", "Test Song"},
		{"live bracket", "Test Song [Live]", "Test Song"},
		{"untouched", "Test Song", "Test Song"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalTitle(tt.in); got != tt.want {
				t.Errorf("CanonicalTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeArtistName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ft to feat", "Test Artist ft. Other Artist", "Test Artist feat. Other Artist"},
		{"featuring to feat", "Test Artist featuring Other Artist", "Test Artist feat. Other Artist"},
		{"leading the", "The Testers", "Testers"},
		{"trailing the", "Testers, The", "Testers"},
		{"ensemble suffix", "Test Artist Orchestra", "Test Artist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeArtistName(tt.in); got != tt.want {
				t.Errorf("NormalizeArtistName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPrimaryArtist(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"feat", "Test Artist feat. Other Artist", "Test Artist"},
		{"ampersand", "Test Artist & Other Artist", "Test Artist"},
		{"versus", "Test Artist vs. Other Artist", "Test Artist"},
		{"parenthetical feature", "Test Artist (with Other Artist)", "Test Artist"},
		{"single artist", "Test Artist", "Test Artist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrimaryArtist(tt.in); got != tt.want {
				t.Errorf("PrimaryArtist(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"isrc with hyphens", "us-rc1-17-60739", "USRC11760739"},
		{"iswc with dots", "T-034.524.680-1", "T0345246801"},
		{"already clean", "USRC11760739", "USRC11760739"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeIdentifier(tt.in); got != tt.want {
				t.Errorf("NormalizeIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIdentifierUsable(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"full isrc", "USRC11760739", true},
		{"iswc with dots", "T-034.524.680-1", true},
		{"nine characters", "ABCDEFGHI", true},
		{"fragment", "ABC", false},
		{"separators do not pad", "A-B-C-D-E", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IdentifierUsable(tt.in); got != tt.want {
				t.Errorf("IdentifierUsable(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatchKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"punctuation stripped", "Don't Stop, Believin'!", "dont stop believin"},
		{"brackets stripped", "Test Song [Live] (2020)", "test song live 2020"},
		{"case folded", "TEST Song", "test song"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchKey(tt.in); got != tt.want {
				t.Errorf("MatchKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

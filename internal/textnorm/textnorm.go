// Package textnorm standardizes track titles, artist names, and catalog
// identifiers ahead of matching. All matching layers assume their inputs
// passed through this package.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// typographicReplacer maps typographic and full-width punctuation to plain
// ASCII equivalents beyond what Unicode decomposition covers.
var typographicReplacer = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
	"…", "...",
	"—", "-",
	"–", "-",
	"−", "-",
	"･", ".",
	"！", "!",
	"？", "?",
	"（", "(",
	"）", ")",
	"［", "[",
	"］", "]",
	"：", ":",
	"；", ";",
	"，", ",",
)

var (
	whitespaceRe    = regexp.MustCompile(`\s+`)
	leadingArticle  = regexp.MustCompile(`^(The|A|An)\s+`)
	leadingThe      = regexp.MustCompile(`^The\s+`)
	trailingArticle = regexp.MustCompile(`,\s+The$`)
	featuringRe     = regexp.MustCompile(`(?i)(?:feat\.?\s+|featuring\s+|ft\.?\s+|\(with\s+)`)
	parentheticalRe = regexp.MustCompile(`\([^)]*\)`)
	bracketedRe     = regexp.MustCompile(`\[[^\]]*\]`)
	identifierSepRe = regexp.MustCompile(`[\s\-.]`)

	// Leading junk commonly found in raw catalog exports: track numbers,
	// short bracketed tags, starred markers.
	titleJunkRes = []*regexp.Regexp{
		regexp.MustCompile(`^\d+\s*[\-.)]\s*`),
		regexp.MustCompile(`^\[.{1,5}\]\s*`),
		regexp.MustCompile(`^\*.+\*\s*`),
	}

	// Qualifier phrases stripped when reducing a title to its canonical form.
	versionQualifierRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\([^()]*?version[^()]*?\)`),
		regexp.MustCompile(`(?i)\[[^\[\]]*?version[^\[\]]*?\]`),
		regexp.MustCompile(`(?i)\([^()]*?remix[^()]*?\)`),
		regexp.MustCompile(`(?i)\[[^\[\]]*?remix[^\[\]]*?\]`),
		regexp.MustCompile(`(?i)\([^()]*?remaster(?:ed)?[^()]*?\)`),
		regexp.MustCompile(`(?i)\[[^\[\]]*?remaster(?:ed)?[^\[\]]*?\]`),
		regexp.MustCompile(`(?i)\([^()]*?live[^()]*?\)`),
		regexp.MustCompile(`(?i)\[[^\[\]]*?live[^\[\]]*?\]`),
		regexp.MustCompile(`(?i)\([^()]*?demo[^()]*?\)`),
		regexp.MustCompile(`(?i)\[[^\[\]]*?demo[^\[\]]*?\]`),
		regexp.MustCompile(`(?i)\([^()]*?radio[^()]*?edit[^()]*?\)`),
		regexp.MustCompile(`(?i)\[[^\[\]]*?radio[^\[\]]*?edit[^\[\]]*?\]`),
		regexp.MustCompile(`(?i)\([^()]*?extended[^()]*?\)`),
		regexp.MustCompile(`(?i)\[[^\[\]]*?extended[^\[\]]*?\]`),
	}

	// Ensemble suffixes dropped from artist names.
	artistSuffixRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\s+Band$`),
		regexp.MustCompile(`(?i)\s+Orchestra$`),
		regexp.MustCompile(`(?i)\s+Ensemble$`),
		regexp.MustCompile(`(?i)\s+Quartet$`),
		regexp.MustCompile(`(?i)\s+Trio$`),
		regexp.MustCompile(`(?i)\s+Group$`),
	}
)

// Compound artist separators, checked in order when extracting the primary
// artist.
var artistSeparators = []string{
	" & ", " and ", " feat. ", " feat ", " featuring ", " ft. ", " ft ",
	" with ", " vs. ", " vs ", " versus ", " x ",
}

// NormalizeText applies the base normalization shared by all fields:
// compatibility decomposition, typographic punctuation replacement, and
// whitespace collapsing.
func NormalizeText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = norm.NFKD.String(text)
	text = typographicReplacer.Replace(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// NormalizeTitle normalizes a track or release title, dropping leading
// articles and leading junk markers from raw exports.
func NormalizeTitle(title string) string {
	title = NormalizeText(title)
	title = leadingArticle.ReplaceAllString(title, "")
	for _, re := range titleJunkRes {
		title = re.ReplaceAllString(title, "")
	}
	return strings.TrimSpace(title)
}

// CanonicalTitle reduces a normalized title to its canonical form with
// version, remix, and other qualifier phrases removed.
func CanonicalTitle(title string) string {
	canonical := title
	for _, re := range versionQualifierRes {
		canonical = re.ReplaceAllString(canonical, "")
	}
	canonical = featuringRe.ReplaceAllString(canonical, "")
	canonical = parentheticalRe.ReplaceAllString(canonical, "")
	canonical = bracketedRe.ReplaceAllString(canonical, "")
	canonical = whitespaceRe.ReplaceAllString(canonical, " ")
	return strings.TrimSpace(canonical)
}

// NormalizeArtistName normalizes an artist name: featuring notation becomes
// "feat.", article prefixes and ensemble suffixes are dropped.
func NormalizeArtistName(name string) string {
	name = NormalizeText(name)
	name = featuringRe.ReplaceAllString(name, "feat. ")
	name = leadingThe.ReplaceAllString(name, "")
	name = trailingArticle.ReplaceAllString(name, "")
	for _, re := range artistSuffixRes {
		name = re.ReplaceAllString(name, "")
	}
	return strings.TrimSpace(name)
}

// PrimaryArtist extracts the first credited artist from a compound artist
// name, dropping features and collaborators.
func PrimaryArtist(name string) string {
	artist := parentheticalRe.ReplaceAllString(name, "")
	if loc := featuringRe.FindStringIndex(artist); loc != nil {
		artist = artist[:loc[0]]
	}
	lower := strings.ToLower(artist)
	for _, sep := range artistSeparators {
		if idx := strings.Index(lower, sep); idx >= 0 {
			artist = artist[:idx]
			break
		}
	}
	return NormalizeText(artist)
}

// NormalizeIdentifier normalizes a catalog identifier such as an ISRC or
// ISWC: separators removed, uppercased.
func NormalizeIdentifier(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	id = identifierSepRe.ReplaceAllString(id, "")
	return strings.ToUpper(id)
}

// minUsableIdentifierLen is the shortest normalized identifier accepted as
// an exact-match key. Real ISRC/ISWC codes are 12 and 11 characters;
// anything under 9 is a fragment or a typo.
const minUsableIdentifierLen = 9

// IdentifierUsable reports whether a normalized identifier is long enough to
// serve as an exact-match lookup key.
func IdentifierUsable(id string) bool {
	return len(NormalizeIdentifier(id)) >= minUsableIdentifierLen
}

// MatchKey lowers a string and strips punctuation for use as a comparison or
// deduplication key. Quote marks, commas, and bracketing punctuation are
// removed and whitespace is collapsed.
func MatchKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\'', '"', ',', '.', ':', ';', '!', '?', '(', ')', '[', ']', '{', '}':
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

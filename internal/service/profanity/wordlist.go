package profanity

import (
	"bufio"
	"embed"
	"strings"

	"golang.org/x/text/language"
)

//go:embed wordlists/*.txt
var wordlistFS embed.FS

var supported = []language.Tag{
	language.English, // first is the fallback
	language.Russian,
}

var matcher = language.NewMatcher(supported)

// listFor returns the static curated word list for the
// language family closest to hint. Unparseable hints fall
// back to English.
func listFor(hint string) map[string]struct{} {
	tag, err := language.Parse(hint)
	if err != nil {
		tag = language.English
	}

	_, idx, _ := matcher.Match(tag)
	base, _ := supported[idx].Base()

	return loadList(base.String())
}

func loadList(lang string) map[string]struct{} {
	f, err := wordlistFS.Open("wordlists/" + lang + ".txt")
	if err != nil {
		return map[string]struct{}{}
	}
	defer f.Close()

	words := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		w := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		words[w] = struct{}{}
	}

	return words
}

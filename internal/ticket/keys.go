package ticket

import (
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"
)

// keyPattern matches Jira issue keys (e.g., PROJ-123, AB2-7). The project code
// starts with an uppercase letter and is at least two characters long. Matches
// touching a letter or digit on either side are dropped by findKeys; other
// separators, including underscores, delimit a key.
var keyPattern = regexp.MustCompile(`[A-Z][A-Z0-9]+-[0-9]+`)

// ExtractKeys returns the ticket keys found in text, deduplicated in order of
// first occurrence. It never returns nil.
func ExtractKeys(text string) []string {
	if text == "" {
		return []string{}
	}
	return lo.Uniq(findKeys(text))
}

// ExtractFromTexts applies ExtractKeys to each text in order and merges the
// results, keeping the first occurrence of every key.
func ExtractFromTexts(texts ...string) []string {
	var all []string
	for _, text := range texts {
		all = append(all, ExtractKeys(text)...)
	}
	if len(all) == 0 {
		return []string{}
	}
	return lo.Uniq(all)
}

// ExtractFromPullRequest scans a pull request's title, head branch and
// description, in that order.
func ExtractFromPullRequest(title, branch, description string) []string {
	return ExtractFromTexts(title, branch, description)
}

func findKeys(text string) []string {
	var keys []string
	for _, loc := range keyPattern.FindAllStringIndex(text, -1) {
		if loc[0] > 0 {
			if r, _ := utf8.DecodeLastRuneInString(text[:loc[0]]); isAlnum(r) {
				continue
			}
		}
		if loc[1] < len(text) {
			if r, _ := utf8.DecodeRuneInString(text[loc[1]:]); isAlnum(r) {
				continue
			}
		}
		keys = append(keys, text[loc[0]:loc[1]])
	}
	return keys
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

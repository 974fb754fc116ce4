package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	ruleConfidence     = 0.6
	fallbackConfidence = 0.1
)

var (
	extensionRe = regexp.MustCompile(`(?i)\.[a-z0-9]{2,4}$`)
	tagGroupRe  = regexp.MustCompile(`[\[(].*?[\])]`)
	delimiterRe = regexp.MustCompile(`[_.]`)
	spaceRe     = regexp.MustCompile(`\s+`)
	yearRe      = regexp.MustCompile(`\s+(?:19|20)\d{2}$`)
)

// rules are tried in priority order; the first match wins.
var rules = []*regexp.Regexp{
	// 0: "<name> - <N> Season - <episode>" ordinal phrasing
	regexp.MustCompile(`(?i)(?P<name>.*?)[\s\-]+(?P<season>\d{1,2})(?:st|nd|rd|th)?[\s\-]+Season[\s\-]+(?P<episode>\d{1,3})`),
	// 1: compact S01E02 notation
	regexp.MustCompile(`(?i)(?P<name>.*?)[\s\-]+S(?P<season>\d{1,2})E(?P<episode>\d{1,3})`),
	// 2: spaced "S01 - 02" notation
	regexp.MustCompile(`(?i)(?P<name>.*?)[\s\-]+S(?P<season>\d{1,2})[\s\-]+(?P<episode>\d{1,3})`),
	// 3: lone E02 with an optional preceding season hint
	regexp.MustCompile(`(?i)(?P<name>.*?)(?:[\s\-]+S(?P<season>\d{1,2}).*)?[\s\-]+E(?P<episode>\d{1,3})`),
	// 4: trailing bare episode number (tolerates a vN revision suffix)
	regexp.MustCompile(`(?i)(?P<name>.*?)[\s\-]+(?P<episode>\d{1,3})(?:v\d)?\b`),
	// 5: trailing bare episode number anchored at end of string
	regexp.MustCompile(`(?i)(?P<name>.*?)[\s\-]+(?P<episode>\d{1,3})$`),
}

// cleanFilename strips the extension and tag groups, then normalizes
// delimiters to single spaces.
func cleanFilename(filename string) string {
	base := extensionRe.ReplaceAllString(filename, "")
	cleaned := tagGroupRe.ReplaceAllString(base, "")
	cleaned = delimiterRe.ReplaceAllString(cleaned, " ")
	cleaned = spaceRe.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

func matchRules(filename string) Result {
	cleaned := cleanFilename(filename)

	for index, rule := range rules {
		match := rule.FindStringSubmatch(cleaned)
		if match == nil {
			continue
		}
		groups := map[string]string{}
		for i, name := range rule.SubexpNames() {
			if name != "" && i < len(match) {
				groups[name] = match[i]
			}
		}
		result := Result{
			ShowName:   trimShowName(groups["name"]),
			Confidence: ruleConfidence,
			Reasoning:  fmt.Sprintf("regex pattern %d matched", index),
		}
		if season := groups["season"]; season != "" {
			if value, err := strconv.Atoi(season); err == nil {
				result.Season = &value
			}
		}
		if episode := groups["episode"]; episode != "" {
			if value, err := strconv.Atoi(episode); err == nil {
				result.Episode = &value
			}
		}
		return result
	}

	return Result{
		ShowName:   cleaned,
		Confidence: fallbackConfidence,
		Reasoning:  "no regex pattern matched",
	}
}

// trimShowName drops stray separators and a trailing release year left over
// after the season/episode markers are consumed.
func trimShowName(name string) string {
	trimmed := strings.Trim(name, " -_")
	trimmed = yearRe.ReplaceAllString(trimmed, "")
	return strings.Trim(trimmed, " -_")
}

package heuristic

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// URL path fragments that strongly suggest a job-specific page
var jobURLFragments = []string{
	"/job/",
	"/jobs/",
	"/career/",
	"/careers/",
	"/position/",
	"/positions/",
	"/opening/",
	"/openings/",
	"/posting/",
	"/postings/",
	"/requisition/",
	"/vacancy/",
	"/vacancies/",
	"/role/",
	"/roles/",
}

const (
	minTitleLen = 5
	maxTitleLen = 150
)

// antiBotMarkers are matched case-insensitively against title and body text.
var antiBotMarkers = []string{
	"cloudflare",
	"attention required",
	"just a moment",
	"verify you are human",
}

// BuildSearchURL appends queryParam=keyword to baseURL, joining with "&"
// when baseURL already carries a query string.
func BuildSearchURL(baseURL, queryParam, keyword string) string {
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return baseURL + sep + queryParam + "=" + url.QueryEscape(keyword)
}

// IsJobLink classifies href. With a path filter only the filter counts;
// otherwise any known job path fragment does.
func IsJobLink(href, pathFilter string) bool {
	h := strings.ToLower(href)
	if pathFilter != "" {
		return strings.Contains(h, strings.ToLower(pathFilter))
	}
	for _, frag := range jobURLFragments {
		if strings.Contains(h, frag) {
			return true
		}
	}
	return false
}

// AcceptTitle reports whether trimmed link text can serve as a job title.
func AcceptTitle(text string) bool {
	n := utf8.RuneCountInString(text)
	return n >= minTitleLen && n <= maxTitleLen
}

// ResolveURL makes href absolute against the page URL.
func ResolveURL(pageURL, href string) (string, bool) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

// DetectBlock returns the first anti-bot marker found in title or body.
func DetectBlock(title, body string) (string, bool) {
	haystack := strings.ToLower(title + "\n" + body)
	for _, marker := range antiBotMarkers {
		if strings.Contains(haystack, marker) {
			return marker, true
		}
	}
	return "", false
}

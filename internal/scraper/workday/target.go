package workday

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const defaultJobsite = "careers"

var localeRE = regexp.MustCompile(`^[a-z]{2}-[A-Z]{2}$`)

// Target is the search API location derived from a public board URL.
type Target struct {
	APIBase string // scheme://host
	Tenant  string
	Jobsite string
}

// Endpoint is the internal job search endpoint the board's own frontend calls.
func (t Target) Endpoint() string {
	return fmt.Sprintf("%s/wday/cxs/%s/%s/jobs", t.APIBase, t.Tenant, t.Jobsite)
}

// ParseBoardURL derives tenant and jobsite from a board URL such as
// https://acme.wd5.myworkdayjobs.com/en-US/External.
func ParseBoardURL(raw string) (Target, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Target{}, fmt.Errorf("parse board url: %w", err)
	}
	host := u.Hostname()
	if host == "" {
		return Target{}, fmt.Errorf("board url %q has no host", raw)
	}

	tenant, _, _ := strings.Cut(host, ".")

	jobsite := defaultJobsite
	for _, seg := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		if seg == "" || localeRE.MatchString(seg) {
			continue
		}
		jobsite = seg
		break
	}

	return Target{
		APIBase: u.Scheme + "://" + host,
		Tenant:  tenant,
		Jobsite: jobsite,
	}, nil
}

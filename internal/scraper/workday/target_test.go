package workday

import "testing"

func TestParseBoardURL(t *testing.T) {
	testCases := []struct {
		name     string
		url      string
		want     Target
		endpoint string
	}{
		{
			name:     "locale and jobsite",
			url:      "https://acme.wd5.myworkdayjobs.com/en-US/External",
			want:     Target{APIBase: "https://acme.wd5.myworkdayjobs.com", Tenant: "acme", Jobsite: "External"},
			endpoint: "https://acme.wd5.myworkdayjobs.com/wday/cxs/acme/External/jobs",
		},
		{
			name: "no locale",
			url:  "https://globex.wd1.myworkdayjobs.com/GlobexCareers/",
			want: Target{APIBase: "https://globex.wd1.myworkdayjobs.com", Tenant: "globex", Jobsite: "GlobexCareers"},
		},
		{
			name: "only locale",
			url:  "https://initech.wd3.myworkdayjobs.com/de-DE",
			want: Target{APIBase: "https://initech.wd3.myworkdayjobs.com", Tenant: "initech", Jobsite: "careers"},
		},
		{
			name: "empty path",
			url:  "https://umbrella.wd12.myworkdayjobs.com",
			want: Target{APIBase: "https://umbrella.wd12.myworkdayjobs.com", Tenant: "umbrella", Jobsite: "careers"},
		},
		{
			name: "lowercase locale is not a locale",
			url:  "https://acme.wd5.myworkdayjobs.com/en-us/External",
			want: Target{APIBase: "https://acme.wd5.myworkdayjobs.com", Tenant: "acme", Jobsite: "en-us"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseBoardURL(tc.url)
			if err != nil {
				t.Fatalf("ParseBoardURL() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("ParseBoardURL() = %+v, want %+v", got, tc.want)
			}
			if tc.endpoint != "" && got.Endpoint() != tc.endpoint {
				t.Errorf("Endpoint() = %q, want %q", got.Endpoint(), tc.endpoint)
			}
		})
	}
}

func TestParseBoardURLWithoutHost(t *testing.T) {
	if _, err := ParseBoardURL("/en-US/External"); err == nil {
		t.Error("expected error for URL without host")
	}
}

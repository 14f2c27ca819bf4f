package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseJobStatus(t *testing.T) {
	testCases := []struct {
		in      string
		want    JobStatus
		wantErr bool
	}{
		{in: "new", want: JobStatusNew},
		{in: "seen", want: JobStatusSeen},
		{in: "applied", want: JobStatusApplied},
		{in: "rejected", want: JobStatusRejected},
		{in: "ignored", want: JobStatusIgnored},
		{in: "NEW", wantErr: true},
		{in: "", wantErr: true},
		{in: "archived", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseJobStatus(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidJobStatus) {
					t.Errorf("ParseJobStatus(%q) error = %v, want ErrInvalidJobStatus", tc.in, err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Errorf("ParseJobStatus(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
			}
		})
	}
}

func TestSourceBlockAndClear(t *testing.T) {
	lastErr := "timeout"
	src := &Source{Name: "acme", IsActive: true, LastError: &lastErr}

	src.Block("captcha wall", time.Now())
	if !src.IsBlocked || src.IsActive {
		t.Fatalf("Block() must block and deactivate: %+v", src)
	}
	if src.BlockedReason == nil || *src.BlockedReason != "captcha wall" || src.BlockedAt == nil {
		t.Errorf("Block() did not record reason/time: %+v", src)
	}

	src.ClearBlocked()
	if !src.IsActive {
		t.Error("ClearBlocked() must re-activate the source")
	}
	if src.IsBlocked || src.BlockedReason != nil || src.BlockedAt != nil || src.LastError != nil {
		t.Errorf("ClearBlocked() left state behind: %+v", src)
	}
}

func TestScrapeResultAddError(t *testing.T) {
	r := NewScrapeResult()
	r.AddError("Acme", errors.New("blocked by anti-bot challenge"))
	if len(r.Errors) != 1 || r.Errors[0] != "[Acme] blocked by anti-bot challenge" {
		t.Errorf("Errors = %v", r.Errors)
	}
}

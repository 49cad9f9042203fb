package warden_test

import (
	"strings"
	"testing"

	"github.com/EvilLord666/warden"
)

func TestParseFilter(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in      string
		want    warden.Filter
		wantErr string
	}{
		"name equals": {
			in:   "name==CrashReporter.exe",
			want: warden.Filter{Field: warden.FieldName, Op: warden.OpEquals, Value: "CrashReporter.exe"},
		},
		"path prefix": {
			in:   "path^=/usr/lib/",
			want: warden.Filter{Field: warden.FieldPath, Op: warden.OpPrefix, Value: "/usr/lib/"},
		},
		"contains": {
			in:   "name~=helper",
			want: warden.Filter{Field: warden.FieldName, Op: warden.OpContains, Value: "helper"},
		},
		"suffix": {
			in:   "NAME$=.sh",
			want: warden.Filter{Field: warden.FieldName, Op: warden.OpSuffix, Value: ".sh"},
		},
		"glob": {
			in:   "path*=/opt/*/bin/*",
			want: warden.Filter{Field: warden.FieldPath, Op: warden.OpGlob, Value: "/opt/*/bin/*"},
		},
		"first operator wins": {
			in:   "name==a==b",
			want: warden.Filter{Field: warden.FieldName, Op: warden.OpEquals, Value: "a==b"},
		},
		"unknown field": {
			in:      "pid==12",
			wantErr: "unknown field",
		},
		"missing operator": {
			in:      "name:foo",
			wantErr: "missing operator",
		},
		"empty value": {
			in:      "name==",
			wantErr: "empty value",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := warden.ParseFilter(tc.in)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("ParseFilter(%q) error = %v, want containing %q", tc.in, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFilter(%q) error = %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ParseFilter(%q) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseFilters(t *testing.T) {
	t.Parallel()

	got, err := warden.ParseFilters([]string{"name==a", "path~=b"})
	if err != nil {
		t.Fatalf("ParseFilters() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
	if _, err := warden.ParseFilters([]string{"name==a", "bogus"}); err == nil {
		t.Error("ParseFilters with an invalid spec returned nil error")
	}
}

package alias

import "testing"

func TestDisplayFormat(t *testing.T) {
	t.Parallel()

	a := Alias{Label: "Founder", Prefix: "FNB", Seq: 14}
	if got := a.Display(); got != "Founder #FNB014" {
		t.Fatalf("expected Founder #FNB014, got %q", got)
	}

	wide := Alias{Label: "Investor", Prefix: "INV", Seq: 1042}
	if got := wide.Display(); got != "Investor #INV1042" {
		t.Fatalf("expected width to grow past 999, got %q", got)
	}

	override := Alias{Label: "Project Falcon Lead"}
	if got := override.Display(); got != "Project Falcon Lead" {
		t.Fatalf("expected override label verbatim, got %q", got)
	}
}

func TestBucketForRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role   string
		prefix string
		label  string
		ok     bool
	}{
		{"founder", "FNB", "Founder", true},
		{"investor", "INV", "Investor", true},
		{"admin", "STF", "Staff", true},
		{"superadmin", "STF", "Staff", true},
		{"guest", "", "", false},
	}
	for _, tt := range tests {
		prefix, label, ok := bucketForRole(tt.role)
		if prefix != tt.prefix || label != tt.label || ok != tt.ok {
			t.Errorf("bucketForRole(%s) = (%s, %s, %v), want (%s, %s, %v)",
				tt.role, prefix, label, ok, tt.prefix, tt.label, tt.ok)
		}
	}
}

package audit

import "testing"

func TestForDenial(t *testing.T) {
	testCases := []struct {
		guard        string
		wantResource string
	}{
		{"require_admin", "organization"},
		{"require_role", "organization"},
		{"require_permission", "permission"},
		{"require_portal_auth", "claim"},
		{"something_else", "unknown"},
	}
	for _, tc := range testCases {
		t.Run(tc.guard, func(t *testing.T) {
			got := ForDenial(tc.guard)
			if got.Action != ActionAccessDenied {
				t.Errorf("action = %q, want %q", got.Action, ActionAccessDenied)
			}
			if got.Resource != tc.wantResource {
				t.Errorf("resource = %q, want %q", got.Resource, tc.wantResource)
			}
		})
	}
}

package classifier

import "testing"

func TestNormalizeLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  tolong  ", "TOLONG"},
		{"Terima Kasih", "TERIMA KASIH"},
		{"YA", "YA"},
	}
	for _, tc := range cases {
		if got := NormalizeLabel(tc.in); got != tc.want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsTargetSign(t *testing.T) {
	if !IsTargetSign("TOLONG") {
		t.Error("TOLONG should be a target sign")
	}
	if IsTargetSign("XYZZY") {
		t.Error("unknown labels should not be target signs")
	}
}

func TestFilterReason(t *testing.T) {
	t.Run("false positive label", func(t *testing.T) {
		if reason := FilterReason("IMPORTANT"); reason == "" {
			t.Error("IMPORTANT should be filtered")
		}
	})

	t.Run("english stopword", func(t *testing.T) {
		if reason := FilterReason("THE"); reason == "" {
			t.Error("THE should be filtered")
		}
	})

	t.Run("target sign passes", func(t *testing.T) {
		if reason := FilterReason("SAYA"); reason != "" {
			t.Errorf("SAYA should pass, got reason %q", reason)
		}
	})

	t.Run("unknown label passes", func(t *testing.T) {
		// Out-of-vocabulary is not the same as false positive
		if reason := FilterReason("KAMPUNG"); reason != "" {
			t.Errorf("unknown labels should pass the filter, got %q", reason)
		}
	})
}

package pep440

import (
	"testing"

	"github.com/sortiz4/pipit/pkg/errors"
)

func TestSpecifierSet_Matches(t *testing.T) {
	tests := []struct {
		spec    string
		version string
		want    bool
	}{
		{">=1.0,<2.0", "1.5", true},
		{">=1.0,<2.0", "2.1", false},
		{">=1.0,<2.0", "1.0", true},
		{">=1.0,<2.0", "2.0", false},
		{"*", "0.0.1", true},
		{"", "3.4", true},
		{"1.2", "1.2", true},   // bare version means exact match
		{"1.2", "1.2.1", false},
		{"==1.2.*", "1.2.9", true},
		{"==1.2.*", "1.3.0", false},
		{"!=1.2.*", "1.2.9", false},
		{"!=1.2.*", "1.3.0", true},
		{"~=2.2", "2.9", true},
		{"~=2.2", "3.0", false},
		{"~=2.2.1", "2.2.5", true},
		{"~=2.2.1", "2.3.0", false},
		{"~=2.2.1", "2.2.0", false},
		{"!=1.5", "1.5", false},
		{"!=1.5", "1.6", true},
		{">1.0", "1.0", false},
		{"<=1.0", "1.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.spec+"_vs_"+tt.version, func(t *testing.T) {
			set, err := ParseSpecifierSet(tt.spec)
			if err != nil {
				t.Fatalf("ParseSpecifierSet(%q) failed: %v", tt.spec, err)
			}
			if got := set.MatchesString(tt.version); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.spec, tt.version, got, tt.want)
			}
		})
	}
}

func TestParseSpecifierSet_Errors(t *testing.T) {
	tests := []struct {
		spec string
		code errors.Code
	}{
		{"===1.0", errors.ErrCodeUnsupportedOperator},
		{">=1.0,===2.0", errors.ErrCodeUnsupportedOperator},
		{">=1.0,", errors.ErrCodeInvalidVersion},
		{">=1.x", errors.ErrCodeInvalidVersion},
		{">=1.0.*", errors.ErrCodeInvalidVersion}, // wildcard needs equality
		{"~=1", errors.ErrCodeInvalidVersion},
		{"==1.0rc1.*", errors.ErrCodeInvalidVersion},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			_, err := ParseSpecifierSet(tt.spec)
			if err == nil {
				t.Fatalf("ParseSpecifierSet(%q) succeeded, want %s", tt.spec, tt.code)
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("error code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestSpecifierSet_PipArgument(t *testing.T) {
	tests := []struct {
		spec string
		want string
	}{
		{"*", "flask"},
		{"", "flask"},
		{"1.2", "flask==1.2"},
		{">=1.0,<2.0", "flask>=1.0,<2.0"},
		{"~=2.2.1", "flask~=2.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			set, err := ParseSpecifierSet(tt.spec)
			if err != nil {
				t.Fatalf("ParseSpecifierSet(%q) failed: %v", tt.spec, err)
			}
			if got := set.PipArgument("flask"); got != tt.want {
				t.Errorf("PipArgument = %q, want %q", got, tt.want)
			}
		})
	}
}

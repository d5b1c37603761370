package pep440

import (
	"testing"

	"github.com/sortiz4/pipit/pkg/errors"
)

func TestParseLocator(t *testing.T) {
	tests := []struct {
		input  string
		scheme string
		url    string
		ref    string
		egg    string
	}{
		{
			"git+https://github.com/psf/requests.git#egg=requests",
			"git", "https://github.com/psf/requests.git", "", "requests",
		},
		{
			"git+https://github.com/psf/requests.git@v2.31.0#egg=requests",
			"git", "https://github.com/psf/requests.git", "v2.31.0", "requests",
		},
		{
			"git+ssh://git@github.com/psf/requests.git@main#egg=requests",
			"git", "ssh://git@github.com/psf/requests.git", "main", "requests",
		},
		{
			"hg+https://example.org/repo",
			"hg", "https://example.org/repo", "", "",
		},
		{
			"svn+https://example.org/trunk@1234#egg=legacy-pkg",
			"svn", "https://example.org/trunk", "1234", "legacy-pkg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			loc, err := ParseLocator(tt.input)
			if err != nil {
				t.Fatalf("ParseLocator(%q) failed: %v", tt.input, err)
			}
			if loc.Scheme != tt.scheme {
				t.Errorf("Scheme = %q, want %q", loc.Scheme, tt.scheme)
			}
			if loc.URL != tt.url {
				t.Errorf("URL = %q, want %q", loc.URL, tt.url)
			}
			if loc.Ref != tt.ref {
				t.Errorf("Ref = %q, want %q", loc.Ref, tt.ref)
			}
			if loc.Egg != tt.egg {
				t.Errorf("Egg = %q, want %q", loc.Egg, tt.egg)
			}
		})
	}
}

func TestParseLocator_Errors(t *testing.T) {
	tests := []struct {
		input string
		code  errors.Code
	}{
		{"cvs+https://example.org/repo#egg=x", errors.ErrCodeInvalidVersion},
		{"git+#egg=x", errors.ErrCodeInvalidVersion},
		{"git+https://host/repo#egg=x&subdirectory=pkg", errors.ErrCodeUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseLocator(tt.input)
			if err == nil {
				t.Fatalf("ParseLocator(%q) succeeded, want %s", tt.input, tt.code)
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("error code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestLocator_PipArgument(t *testing.T) {
	loc, err := ParseLocator("git+https://github.com/psf/requests.git@v2.31.0#egg=requests")
	if err != nil {
		t.Fatal(err)
	}
	want := "git+https://github.com/psf/requests.git@v2.31.0#egg=requests"
	if got := loc.PipArgument("requests"); got != want {
		t.Errorf("PipArgument = %q, want %q", got, want)
	}

	// Manifest entries store the locator without the egg; the key supplies it.
	eggless, err := ParseLocator("git+https://github.com/psf/requests.git@v2.31.0")
	if err != nil {
		t.Fatal(err)
	}
	if got := eggless.PipArgument("requests"); got != want {
		t.Errorf("PipArgument = %q, want %q", got, want)
	}
}

func TestParseArgument(t *testing.T) {
	tests := []struct {
		input   string
		name    string
		vcs     bool
		wantErr errors.Code
	}{
		{"flask", "flask", false, ""},
		{"Flask", "flask", false, ""},
		{"typing_extensions", "typing-extensions", false, ""},
		{"requests>=2.0,<3.0", "requests", false, ""},
		{"requests==2.31.0", "requests", false, ""},
		{"git+https://host/repo.git@v1#egg=mypkg", "mypkg", true, ""},
		{"git+https://host/repo.git", "", true, errors.ErrCodeMissingEgg},
		{"requests===2.0", "", false, errors.ErrCodeUnsupportedOperator},
		{"-U", "", false, errors.ErrCodeInvalidPackage},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, req, err := ParseArgument(tt.input)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("ParseArgument(%q) succeeded, want %s", tt.input, tt.wantErr)
				}
				if got := errors.GetCode(err); got != tt.wantErr {
					t.Errorf("error code = %s, want %s", got, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseArgument(%q) failed: %v", tt.input, err)
			}
			if name != tt.name {
				t.Errorf("name = %q, want %q", name, tt.name)
			}
			if req.IsVCS() != tt.vcs {
				t.Errorf("IsVCS = %v, want %v", req.IsVCS(), tt.vcs)
			}
		})
	}
}

func TestParse(t *testing.T) {
	req, err := Parse(">=1.0,<2.0")
	if err != nil {
		t.Fatal(err)
	}
	if req.IsVCS() {
		t.Error("specifier parsed as VCS")
	}

	req, err = Parse("git+https://host/repo.git@v1")
	if err != nil {
		t.Fatal(err)
	}
	if !req.IsVCS() {
		t.Error("locator parsed as specifier")
	}

	if _, err := Parse("==="); err == nil {
		t.Error("expected error for bare ===")
	}
}

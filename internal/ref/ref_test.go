package ref

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    Ref
		wantErr ErrorCode
	}{
		{"simple k-scheme", "k-scheme://canon/auth.md", Ref{SchemeK, "canon/auth"}, ""},
		{"simple o-scheme", "o-scheme://canon/definition-of-done", Ref{SchemeO, "canon/definition-of-done"}, ""},
		{"uppercase scheme", "K-SCHEME://canon/auth", Ref{SchemeK, "canon/auth"}, ""},
		{"collapsed slashes", "k-scheme://canon//auth///done", Ref{SchemeK, "canon/auth/done"}, ""},
		{"trailing slash stripped", "k-scheme://canon/auth/", Ref{SchemeK, "canon/auth"}, ""},
		{"missing scheme", "canon/auth", Ref{}, ErrInvalid},
		{"unknown scheme", "x-scheme://canon/auth", Ref{}, ErrInvalid},
		{"empty path", "k-scheme://", Ref{}, ErrInvalid},
		{"simple traversal", "k-scheme://../secrets", Ref{}, ErrTraversal},
		{"circuitous traversal", "k-scheme://a//../../b", Ref{}, ErrTraversal},
		{"traversal mid path", "k-scheme://canon/../../../etc/passwd", Ref{}, ErrTraversal},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Normalize(c.raw)
			if c.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error %s, got nil", c.wantErr)
				}
				rerr, ok := err.(*Error)
				if !ok || rerr.Code != c.wantErr {
					t.Fatalf("expected error code %s, got %v", c.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != c.want {
				t.Fatalf("got %+v, want %+v", got, c.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	raws := []string{
		"k-scheme://canon/auth.md",
		"o-scheme://canon//writings///handbook/",
	}
	for _, raw := range raws {
		first, err := Normalize(raw)
		if err != nil {
			t.Fatalf("normalize(%q): %v", raw, err)
		}
		second, err := Normalize(first.String())
		if err != nil {
			t.Fatalf("normalize(normalize(%q)): %v", raw, err)
		}
		if first != second {
			t.Fatalf("normalize not idempotent: %+v != %+v", first, second)
		}
	}
}

func TestNormalizeNeverLeavesDotDotOrMdOrSlashes(t *testing.T) {
	raws := []string{
		"k-scheme://canon/auth.md",
		"k-scheme://canon//auth///",
	}
	for _, raw := range raws {
		r, err := Normalize(raw)
		if err != nil {
			t.Fatalf("normalize(%q): %v", raw, err)
		}
		s := r.String()
		if contains(s, "..") {
			t.Fatalf("normalized ref contains '..': %s", s)
		}
		if len(s) >= 3 && s[len(s)-3:] == ".md" {
			t.Fatalf("normalized ref retains .md suffix: %s", s)
		}
		if len(s) > 0 && s[len(s)-1] == '/' {
			t.Fatalf("normalized ref has trailing slash: %s", s)
		}
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

package ring

import (
	"errors"
	"testing"

	"github.com/toeirei/ringmaster/internal/model"
)

func ringOf(ids ...string) []model.Site {
	sites := make([]model.Site, 0, len(ids))
	for i, id := range ids {
		sites = append(sites, model.Site{ID: id, Name: id, URL: "https://" + id + "/", Position: i})
	}
	return sites
}

func fixedIntn(v int) func(int) int {
	return func(n int) int { return v % n }
}

func TestResolve_NextPrev(t *testing.T) {
	sites := ringOf("a.example.com", "b.example.com", "c.example.com")

	tests := []struct {
		name     string
		from     string
		dir      Direction
		wantID   string
		wantFrom string
	}{
		{"next from middle", "b.example.com", DirectionNext, "c.example.com", "b.example.com"},
		{"next wraps at end", "c.example.com", DirectionNext, "a.example.com", "c.example.com"},
		{"prev from middle", "b.example.com", DirectionPrev, "a.example.com", "b.example.com"},
		{"prev wraps at start", "a.example.com", DirectionPrev, "c.example.com", "a.example.com"},
		{"unknown from anchors at first", "stranger.example.com", DirectionNext, "b.example.com", ""},
		{"empty from anchors at first", "", DirectionPrev, "c.example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(sites, tt.from, tt.dir, "", nil)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if res.Target.ID != tt.wantID {
				t.Errorf("expected target %s, got %s", tt.wantID, res.Target.ID)
			}
			if res.From != tt.wantFrom {
				t.Errorf("expected from %q, got %q", tt.wantFrom, res.From)
			}
		})
	}
}

func TestResolve_SingleMemberRing(t *testing.T) {
	sites := ringOf("only.example.com")

	res, err := Resolve(sites, "only.example.com", DirectionNext, "", nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Target.ID != "only.example.com" {
		t.Errorf("next on a one-member ring should return the member itself, got %s", res.Target.ID)
	}

	res, err = Resolve(sites, "only.example.com", DirectionPrev, "", nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Target.ID != "only.example.com" {
		t.Errorf("prev on a one-member ring should return the member itself, got %s", res.Target.ID)
	}
}

func TestResolve_EmptyRing(t *testing.T) {
	if _, err := Resolve(nil, "a.example.com", DirectionNext, "", nil); !errors.Is(err, ErrEmptyRing) {
		t.Fatalf("expected ErrEmptyRing, got: %v", err)
	}
}

func TestResolve_InvalidDirection(t *testing.T) {
	sites := ringOf("a.example.com")
	if _, err := Resolve(sites, "a.example.com", Direction("sideways"), "", nil); !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("expected ErrInvalidDirection, got: %v", err)
	}
}

func TestResolve_Random(t *testing.T) {
	sites := ringOf("a.example.com", "b.example.com", "c.example.com")

	// Excluding the origin shrinks the pool to the other two members.
	res, err := Resolve(sites, "a.example.com", DirectionRandom, "a.example.com", fixedIntn(0))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Target.ID != "b.example.com" {
		t.Errorf("expected first candidate b.example.com, got %s", res.Target.ID)
	}
	if res.From != "a.example.com" {
		t.Errorf("expected attribution to the excluded member, got %q", res.From)
	}

	res, err = Resolve(sites, "a.example.com", DirectionRandom, "a.example.com", fixedIntn(1))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Target.ID != "c.example.com" {
		t.Errorf("expected second candidate c.example.com, got %s", res.Target.ID)
	}
}

func TestResolve_RandomExcludeByURL(t *testing.T) {
	sites := ringOf("a.example.com", "b.example.com")

	// The exclusion value may be a full URL; it is matched by hostname.
	res, err := Resolve(sites, "", DirectionRandom, "https://a.example.com/some/page", fixedIntn(0))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Target.ID != "b.example.com" {
		t.Errorf("expected b.example.com after URL-based exclusion, got %s", res.Target.ID)
	}
	if res.From != "a.example.com" {
		t.Errorf("expected attribution to the excluded member, got %q", res.From)
	}
}

func TestResolve_RandomAttributesExcludedMember(t *testing.T) {
	// The member's registered URL host can differ from its id. Exclusion
	// matches on the URL host, and attribution names the member's id.
	sites := []model.Site{
		{ID: "a.example.com", Name: "a", URL: "https://www.a.example.com/", Position: 0},
		{ID: "b.example.com", Name: "b", URL: "https://b.example.com/", Position: 1},
	}

	res, err := Resolve(sites, "www.a.example.com", DirectionRandom, "www.a.example.com", fixedIntn(0))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Target.ID != "b.example.com" {
		t.Errorf("expected b.example.com after exclusion, got %s", res.Target.ID)
	}
	if res.From != "a.example.com" {
		t.Errorf("expected attribution to the excluded member's id, got %q", res.From)
	}
}

func TestResolve_RandomNoCandidates(t *testing.T) {
	sites := ringOf("only.example.com")
	if _, err := Resolve(sites, "only.example.com", DirectionRandom, "only.example.com", fixedIntn(0)); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got: %v", err)
	}
}

func TestResolve_RandomNoExclusion(t *testing.T) {
	sites := ringOf("only.example.com")
	res, err := Resolve(sites, "", DirectionRandom, "", fixedIntn(0))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Target.ID != "only.example.com" {
		t.Errorf("expected the sole member, got %s", res.Target.ID)
	}
	if res.From != "" {
		t.Errorf("random hop without an exclusion must stay unattributed, got %q", res.From)
	}
}

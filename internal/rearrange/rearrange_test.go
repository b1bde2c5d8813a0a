package rearrange

import (
	"errors"
	"strings"
	"testing"

	"github.com/pdiddy/deck-engine/internal/decktest"
	"github.com/pdiddy/deck-engine/internal/extract"
	"github.com/pdiddy/deck-engine/internal/inventory"
	"github.com/pdiddy/deck-engine/internal/opc"
	"github.com/pdiddy/deck-engine/internal/replace"
	"github.com/pdiddy/deck-engine/internal/validate"
	"github.com/pdiddy/deck-engine/pkg/types"
)

// --- helpers ---

func threeSlideDeck(t *testing.T) *opc.Package {
	t.Helper()
	return decktest.New(
		decktest.TitleShape("Alpha"),
		decktest.TitleShape("Beta"),
		decktest.TitleShape("Gamma"),
	)
}

func slideTitles(t *testing.T, pkg *opc.Package) []string {
	t.Helper()
	m, err := extract.Extract(pkg)
	if err != nil {
		t.Fatal(err)
	}
	var titles []string
	for _, slide := range m.Slides {
		if slide.Err != nil {
			t.Fatalf("slide %d: %v", slide.Index, slide.Err)
		}
		title := ""
		for _, sh := range slide.Shapes {
			if sh.HasText && len(sh.Record.Paragraphs) > 0 {
				title = sh.Record.Paragraphs[0].Text
				break
			}
		}
		titles = append(titles, title)
	}
	return titles
}

func mustValidate(t *testing.T, pkg *opc.Package) {
	t.Helper()
	findings := validate.Validate(pkg, nil)
	for _, f := range findings {
		t.Errorf("validation finding after rearrange: %s %s %s: %s", f.Severity, f.Kind, f.Location, f.Message)
	}
}

// --- order parsing ---

func TestParseOrder(t *testing.T) {
	tests := []struct {
		spec    string
		count   int
		want    []int
		wantErr string
	}{
		{"0,1,2", 3, []int{0, 1, 2}, ""},
		{"2, 0", 3, []int{2, 0}, ""},
		{"1,1,1", 3, []int{1, 1, 1}, ""},
		{"3", 3, nil, "out of range"},
		{"-1", 3, nil, "out of range"},
		{"a", 3, nil, "not a slide index"},
		{"0,,1", 3, nil, "empty entry"},
		{"", 3, nil, "empty entry"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := ParseOrder(tt.spec, tt.count)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

// --- rearrangement ---

func TestRearrangeReorder(t *testing.T) {
	pkg := threeSlideDeck(t)
	if err := Rearrange(pkg, []int{2, 0, 1}); err != nil {
		t.Fatal(err)
	}

	titles := slideTitles(t, pkg)
	want := []string{"Gamma", "Alpha", "Beta"}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("titles = %v, want %v", titles, want)
			break
		}
	}
	mustValidate(t, pkg)
}

func TestRearrangeDrop(t *testing.T) {
	pkg := threeSlideDeck(t)
	if err := Rearrange(pkg, []int{0, 2}); err != nil {
		t.Fatal(err)
	}

	titles := slideTitles(t, pkg)
	if len(titles) != 2 || titles[0] != "Alpha" || titles[1] != "Gamma" {
		t.Fatalf("titles = %v, want [Alpha Gamma]", titles)
	}

	// The dropped slide part and its content-type override are gone.
	if pkg.HasPart("ppt/slides/slide2.xml") {
		t.Error("dropped slide part still in container")
	}
	ct, err := pkg.ContentTypes()
	if err != nil {
		t.Fatal(err)
	}
	if ct.OverrideFor("ppt/slides/slide2.xml") != "" {
		t.Error("dropped slide still has a content-type override")
	}
	mustValidate(t, pkg)
}

func TestRearrangeDuplicate(t *testing.T) {
	pkg := threeSlideDeck(t)
	if err := Rearrange(pkg, []int{0, 0, 1}); err != nil {
		t.Fatal(err)
	}

	titles := slideTitles(t, pkg)
	want := []string{"Alpha", "Alpha", "Beta"}
	if len(titles) != 3 {
		t.Fatalf("got %d slides, want 3", len(titles))
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("titles = %v, want %v", titles, want)
			break
		}
	}

	// The duplicate is a distinct part with its own content type.
	parts, err := extract.SlideParts(pkg)
	if err != nil {
		t.Fatal(err)
	}
	if parts[0] == parts[1] {
		t.Error("duplicated slides share a part; edits would alias")
	}
	ct, _ := pkg.ContentTypes()
	if ct.OverrideFor(parts[1]) == "" {
		t.Errorf("duplicate part %s has no content-type override", parts[1])
	}
	mustValidate(t, pkg)
}

func TestRearrangeDuplicateThenEditIndependently(t *testing.T) {
	// Positional identifiers are reassigned after rearrangement;
	// re-extract, then edit one copy without touching the other.
	pkg := threeSlideDeck(t)
	if err := Rearrange(pkg, []int{0, 0}); err != nil {
		t.Fatal(err)
	}

	parts, err := extract.SlideParts(pkg)
	if err != nil {
		t.Fatal(err)
	}
	orig, _ := pkg.Part(parts[0])
	dup, _ := pkg.Part(parts[1])
	if string(orig) != string(dup) {
		t.Fatal("duplicate should start with identical bytes")
	}

	pkg.SetPart(parts[1], []byte(strings.Replace(string(dup), "Alpha", "Edited", 1)))
	titles := slideTitles(t, pkg)
	if titles[0] != "Alpha" || titles[1] != "Edited" {
		t.Errorf("titles = %v, want [Alpha Edited]", titles)
	}
}

func TestRearrangeOutOfRange(t *testing.T) {
	pkg := threeSlideDeck(t)
	if err := Rearrange(pkg, []int{0, 5}); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestRearrangeInvalidatesInventoryIdentifiers(t *testing.T) {
	pkg := threeSlideDeck(t)
	m, err := extract.Extract(pkg)
	if err != nil {
		t.Fatal(err)
	}
	before := inventory.Build(m)

	if err := Rearrange(pkg, []int{2, 1}); err != nil {
		t.Fatal(err)
	}

	m2, err := extract.Extract(pkg)
	if err != nil {
		t.Fatal(err)
	}
	if before.Snapshot == m2.Fingerprint() {
		t.Error("fingerprint unchanged after a structural edit; stale inventories would pass")
	}
}

func TestStaleInventoryRejectedAfterReorder(t *testing.T) {
	// Every slide here has the same shape count, so only the part name
	// sequence distinguishes the orders. An inventory captured before
	// the reorder addresses slides by position and must not apply.
	pkg := decktest.New(
		decktest.TitleShape("Alpha"),
		decktest.TitleShape("Beta"),
	)
	m, err := extract.Extract(pkg)
	if err != nil {
		t.Fatal(err)
	}
	instr := inventory.Build(m)

	if err := Rearrange(pkg, []int{1, 0}); err != nil {
		t.Fatal(err)
	}

	instr.Slides = map[string]map[string]types.Shape{
		"slide-0": {"shape-0": {Paragraphs: []types.Paragraph{{Text: "Edited Alpha"}}}},
	}
	err = replace.Apply(pkg, instr, types.ModeSelective)
	var refErr *replace.ReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("Apply with stale snapshot = %v, want ReferenceError", err)
	}
	titles := slideTitles(t, pkg)
	if titles[0] != "Beta" || titles[1] != "Alpha" {
		t.Errorf("titles = %v; stale edit must not land on the reordered deck", titles)
	}
}

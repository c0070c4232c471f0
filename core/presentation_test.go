package core

import (
	"encoding/json"
	"testing"
)

func samplePresentation() *Presentation {
	idx := 1
	return &Presentation{
		ID: "pres-1",
		Slides: []Slide{
			{ID: "s1", Content: "first"},
			{ID: "s2", Content: "second"},
		},
		Users: map[string]UserInfo{
			"c1": {ID: "c1", Nickname: "Alice", Role: RoleCreator},
			"c2": {ID: "c2", Nickname: "Bob", Role: RoleViewer},
		},
		CurrentSlide: &idx,
	}
}

func TestClone_DeepCopy(t *testing.T) {
	p := samplePresentation()
	c := p.Clone()

	c.Slides[0].Content = "mutated"
	c.Users["c1"] = UserInfo{ID: "c1", Nickname: "Eve", Role: RoleViewer}
	*c.CurrentSlide = 0

	if p.Slides[0].Content != "first" {
		t.Errorf("Clone() shares slide storage: got %q", p.Slides[0].Content)
	}
	if p.Users["c1"].Nickname != "Alice" {
		t.Errorf("Clone() shares user map: got %q", p.Users["c1"].Nickname)
	}
	if *p.CurrentSlide != 1 {
		t.Errorf("Clone() shares current slide pointer: got %d", *p.CurrentSlide)
	}
}

func TestClone_Nil(t *testing.T) {
	var p *Presentation
	if p.Clone() != nil {
		t.Error("Clone() of nil should be nil")
	}
}

func TestNewPresentation(t *testing.T) {
	p := NewPresentation("fresh")
	if p.ID != "fresh" {
		t.Errorf("ID mismatch: got %q", p.ID)
	}
	if len(p.Slides) != 0 || p.Slides == nil {
		t.Error("new presentation should have an empty, non-nil slide list")
	}
	if p.CurrentSlide != nil {
		t.Error("new presentation should have no current slide")
	}
}

func TestFindSlide(t *testing.T) {
	p := samplePresentation()
	if idx := p.FindSlide("s2"); idx != 1 {
		t.Errorf("FindSlide(s2) = %d, want 1", idx)
	}
	if idx := p.FindSlide("nope"); idx != -1 {
		t.Errorf("FindSlide(nope) = %d, want -1", idx)
	}
}

func TestCreator(t *testing.T) {
	p := samplePresentation()
	u, ok := p.Creator()
	if !ok || u.ID != "c1" {
		t.Errorf("Creator() = %v, %v; want c1, true", u, ok)
	}

	delete(p.Users, "c1")
	if _, ok := p.Creator(); ok {
		t.Error("Creator() should report absence after the creator left")
	}
}

func TestRoleHelpers(t *testing.T) {
	cases := []struct {
		role    Role
		valid   bool
		canEdit bool
	}{
		{RoleCreator, true, true},
		{RoleEditor, true, true},
		{RoleViewer, true, false},
		{Role("admin"), false, false},
		{Role(""), false, false},
	}
	for _, tc := range cases {
		if got := tc.role.Valid(); got != tc.valid {
			t.Errorf("Role(%q).Valid() = %v, want %v", tc.role, got, tc.valid)
		}
		if got := tc.role.CanEdit(); got != tc.canEdit {
			t.Errorf("Role(%q).CanEdit() = %v, want %v", tc.role, got, tc.canEdit)
		}
	}
}

func TestPresentation_JSONRoundTrip(t *testing.T) {
	p := samplePresentation()

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}

	var back Presentation
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}

	if back.ID != p.ID {
		t.Errorf("ID mismatch: got %q, want %q", back.ID, p.ID)
	}
	if len(back.Slides) != len(p.Slides) {
		t.Fatalf("slide count mismatch: got %d, want %d", len(back.Slides), len(p.Slides))
	}
	for i := range p.Slides {
		if back.Slides[i] != p.Slides[i] {
			t.Errorf("slide %d mismatch: got %+v, want %+v", i, back.Slides[i], p.Slides[i])
		}
	}
	if len(back.Users) != len(p.Users) {
		t.Fatalf("user count mismatch: got %d, want %d", len(back.Users), len(p.Users))
	}
	for id, u := range p.Users {
		if back.Users[id] != u {
			t.Errorf("user %s mismatch: got %+v, want %+v", id, back.Users[id], u)
		}
	}
	if back.CurrentSlide == nil || *back.CurrentSlide != *p.CurrentSlide {
		t.Errorf("current slide mismatch: got %v, want %d", back.CurrentSlide, *p.CurrentSlide)
	}
}

func TestPresentation_NullCurrentSlide(t *testing.T) {
	p := NewPresentation("empty")

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if v, ok := raw["currentSlide"]; !ok || v != nil {
		t.Errorf("currentSlide should serialize as null for an empty deck, got %v", v)
	}
}

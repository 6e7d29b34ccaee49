package repository

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/afftrack/afftrack/internal/model"
)

func TestLinkPatch_IsEmpty(t *testing.T) {
	empty := &LinkPatch{}
	if !empty.IsEmpty() {
		t.Error("expected empty patch")
	}

	title := "New title"
	if (&LinkPatch{Title: &title}).IsEmpty() {
		t.Error("expected non-empty patch")
	}

	active := false
	if (&LinkPatch{Active: &active}).IsEmpty() {
		t.Error("expected non-empty patch for false bool pointer")
	}
}

func TestLinkPatch_BuildUpdate_Empty(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	set, args := (&LinkPatch{}).buildUpdate(now)

	// Even an empty patch refreshes updated_at
	if set != "updated_at = $2" {
		t.Errorf("unexpected SET clause: %q", set)
	}
	if len(args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(args))
	}
	if !args[0].(time.Time).Equal(now) {
		t.Errorf("expected updated_at arg %v, got %v", now, args[0])
	}
}

func TestLinkPatch_BuildUpdate_Fields(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	slug := "new-slug"
	active := false
	redirectType := model.RedirectDirect

	patch := &LinkPatch{
		Slug:         &slug,
		Active:       &active,
		RedirectType: &redirectType,
	}

	set, args := patch.buildUpdate(now)

	want := "updated_at = $2, slug = $3, is_active = $4, redirect_type = $5"
	if set != want {
		t.Errorf("SET clause = %q, want %q", set, want)
	}

	if len(args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(args))
	}
	if args[1] != "new-slug" {
		t.Errorf("expected slug arg, got %v", args[1])
	}
	if args[2] != false {
		t.Errorf("expected is_active arg false, got %v", args[2])
	}
	if args[3] != "direct" {
		t.Errorf("expected redirect_type arg 'direct', got %v", args[3])
	}
}

func TestLinkPatch_BuildUpdate_Lists(t *testing.T) {
	tags := []string{"vitamins", "health"}
	patch := &LinkPatch{Tags: &tags}

	set, args := patch.buildUpdate(time.Now().UTC())

	if set != "updated_at = $2, tags = $3" {
		t.Errorf("unexpected SET clause: %q", set)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
	if string(args[1].([]byte)) != `["vitamins","health"]` {
		t.Errorf("expected JSON-encoded tags, got %s", args[1])
	}
}

func TestMarshalStringList(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{"nil becomes empty array", nil, `[]`},
		{"empty stays empty array", []string{}, `[]`},
		{"values preserved in order", []string{"b", "a"}, `["b","a"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(marshalStringList(tt.in)); got != tt.want {
				t.Errorf("marshalStringList(%v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestUnmarshalStringList(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []string
	}{
		{"nil input", nil, []string{}},
		{"null json", []byte(`null`), []string{}},
		{"malformed", []byte(`{not json`), []string{}},
		{"values", []byte(`["b","a","b"]`), []string{"b", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := unmarshalStringList(tt.in)
			if got == nil {
				t.Fatal("result must never be nil")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("unmarshalStringList(%s) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	if !isUniqueViolation(unique) {
		t.Error("expected unique violation for code 23505")
	}

	wrapped := errors.Join(errors.New("exec failed"), unique)
	if !isUniqueViolation(wrapped) {
		t.Error("expected unique violation through wrapped error")
	}

	other := &pgconn.PgError{Code: "23503"}
	if isUniqueViolation(other) {
		t.Error("foreign key violation must not match")
	}

	if isUniqueViolation(errors.New("plain error")) {
		t.Error("plain error must not match")
	}
}

package resolver

import (
	"errors"
	"slices"
	"testing"

	"github.com/leefowlercu/modorder/internal/modmeta"
	"github.com/leefowlercu/modorder/internal/registry"
)

// modDef describes one mod as "uuid" plus its dependency uuids.
type modDef struct {
	id   string
	deps []string
}

func buildGraph(t *testing.T, mods ...modDef) (*registry.Graph, []string) {
	t.Helper()
	r := registry.New()
	for _, s := range mods {
		m := &modmeta.Mod{UUID: s.id, Name: s.id, Source: s.id + ".pak"}
		for _, d := range s.deps {
			m.Dependencies = append(m.Dependencies, modmeta.Dependency{UUID: d, Name: d})
		}
		if err := r.Register(m); err != nil {
			t.Fatalf("Register(%s) error = %v", s.id, err)
		}
	}
	return r.BuildGraph(), r.Order()
}

func TestResolveOrder(t *testing.T) {
	tests := []struct {
		name string
		mods []modDef
		want []string
	}{
		{
			name: "independent mods keep discovery order",
			mods: []modDef{{id: "B"}, {id: "A"}, {id: "C"}},
			want: []string{"B", "A", "C"},
		},
		{
			name: "dependency loads first",
			mods: []modDef{{id: "A", deps: []string{"B"}}, {id: "B"}},
			want: []string{"B", "A"},
		},
		{
			name: "chain",
			mods: []modDef{{id: "A", deps: []string{"B"}}, {id: "B", deps: []string{"C"}}, {id: "C"}},
			want: []string{"C", "B", "A"},
		},
		{
			name: "ready nodes prefer earliest discovery",
			mods: []modDef{
				{id: "D", deps: []string{"C"}},
				{id: "A"},
				{id: "C"},
				{id: "B"},
			},
			want: []string{"A", "C", "D", "B"},
		},
		{
			name: "diamond",
			mods: []modDef{
				{id: "top", deps: []string{"left", "right"}},
				{id: "right", deps: []string{"base"}},
				{id: "left", deps: []string{"base"}},
				{id: "base"},
			},
			want: []string{"base", "right", "left", "top"},
		},
		{
			name: "duplicate edges",
			mods: []modDef{{id: "A", deps: []string{"B", "B"}}, {id: "B"}},
			want: []string{"B", "A"},
		},
		{
			name: "empty graph",
			mods: nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, order := buildGraph(t, tt.mods...)
			res, err := Resolve(g, order)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if !slices.Equal(res.Order, tt.want) {
				t.Errorf("Order = %v, want %v", res.Order, tt.want)
			}
			if res.Warnings() != 0 {
				t.Errorf("Warnings() = %d, want 0", res.Warnings())
			}
		})
	}
}

func TestResolveDeterministic(t *testing.T) {
	g, order := buildGraph(t,
		modDef{id: "e", deps: []string{"a"}},
		modDef{id: "d"},
		modDef{id: "c", deps: []string{"d", "e"}},
		modDef{id: "b"},
		modDef{id: "a"},
	)

	first, err := Resolve(g, order)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	for range 20 {
		again, err := Resolve(g, order)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !slices.Equal(first.Order, again.Order) {
			t.Fatalf("Resolve() = %v, then %v", first.Order, again.Order)
		}
	}
}

func TestResolveRegistrationOrderOverridesGraphOrder(t *testing.T) {
	g, _ := buildGraph(t, modDef{id: "A"}, modDef{id: "B"}, modDef{id: "C"})

	res, err := Resolve(g, []string{"C", "unknown", "A", "C"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	// B is absent from the registration order and follows in graph order.
	if want := []string{"C", "A", "B"}; !slices.Equal(res.Order, want) {
		t.Errorf("Order = %v, want %v", res.Order, want)
	}
}

func TestResolveMissingDependency(t *testing.T) {
	g, order := buildGraph(t, modDef{id: "A", deps: []string{"Z", "Z"}}, modDef{id: "B"})

	res, err := Resolve(g, order)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if want := []string{"A", "B"}; !slices.Equal(res.Order, want) {
		t.Errorf("Order = %v, want %v", res.Order, want)
	}
	if len(res.Missing) != 1 {
		t.Fatalf("Missing = %v, want 1 warning", res.Missing)
	}
	if m := res.Missing[0]; m.Mod != "A" || m.Dependency != "Z" || m.Name != "Z" {
		t.Errorf("Missing[0] = %+v", m)
	}
}

func TestResolveBuiltins(t *testing.T) {
	const gustav = "991c9c7a-fb80-40cb-8f0d-b92d4e80e9b1"
	g, order := buildGraph(t, modDef{id: "A", deps: []string{gustav, "Z"}})

	res, err := Resolve(g, order, WithBuiltins(gustav))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(res.Missing) != 1 || res.Missing[0].Dependency != "Z" {
		t.Errorf("Missing = %+v, want only Z", res.Missing)
	}
}

func TestResolveOutdated(t *testing.T) {
	r := registry.New()
	required := modmeta.Version{Major: 2}
	mods := []*modmeta.Mod{
		{UUID: "A", Name: "A", Dependencies: []modmeta.Dependency{{UUID: "B", MinVersion: &required}, {UUID: "C", MinVersion: &required}}},
		{UUID: "B", Name: "B", Version: modmeta.Version{Major: 1, Minor: 9}},
		{UUID: "C", Name: "C", Version: modmeta.Version{Major: 2}},
	}
	for _, m := range mods {
		if err := r.Register(m); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}

	res, err := Resolve(r.BuildGraph(), r.Order())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if want := []string{"B", "C", "A"}; !slices.Equal(res.Order, want) {
		t.Errorf("Order = %v, want %v", res.Order, want)
	}
	if len(res.Outdated) != 1 {
		t.Fatalf("Outdated = %+v, want 1", res.Outdated)
	}
	o := res.Outdated[0]
	if o.Mod != "A" || o.Dependency != "B" || o.Required != required || o.Installed.Minor != 9 {
		t.Errorf("Outdated[0] = %+v", o)
	}
}

func TestResolveOutdatedReportedOnce(t *testing.T) {
	r := registry.New()
	required := modmeta.Version{Major: 2}
	mods := []*modmeta.Mod{
		{UUID: "A", Name: "A", Dependencies: []modmeta.Dependency{
			{UUID: "B", MinVersion: &required},
			{UUID: "B", MinVersion: &required},
		}},
		{UUID: "B", Name: "B", Version: modmeta.Version{Major: 1}},
	}
	for _, m := range mods {
		if err := r.Register(m); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}

	res, err := Resolve(r.BuildGraph(), r.Order())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(res.Outdated) != 1 {
		t.Errorf("Outdated = %+v, want a single entry for the repeated dependency", res.Outdated)
	}
	if want := []string{"B", "A"}; !slices.Equal(res.Order, want) {
		t.Errorf("Order = %v, want %v", res.Order, want)
	}
}

func TestResolveCycle(t *testing.T) {
	tests := []struct {
		name        string
		mods        []modDef
		wantCycle   []string
		wantBlocked []string
	}{
		{
			name:      "two node cycle",
			mods:      []modDef{{id: "A", deps: []string{"B"}}, {id: "B", deps: []string{"A"}}},
			wantCycle: []string{"A", "B"},
		},
		{
			name:      "self loop",
			mods:      []modDef{{id: "A", deps: []string{"A"}}, {id: "B"}},
			wantCycle: []string{"A"},
		},
		{
			name: "blocked downstream",
			mods: []modDef{
				{id: "free"},
				{id: "X", deps: []string{"A"}},
				{id: "A", deps: []string{"B"}},
				{id: "B", deps: []string{"C"}},
				{id: "C", deps: []string{"A"}},
			},
			wantCycle:   []string{"A", "B", "C"},
			wantBlocked: []string{"X"},
		},
		{
			name: "two separate cycles",
			mods: []modDef{
				{id: "A", deps: []string{"B"}},
				{id: "B", deps: []string{"A"}},
				{id: "C", deps: []string{"D"}},
				{id: "D", deps: []string{"C"}},
			},
			wantCycle: []string{"A", "B", "C", "D"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, order := buildGraph(t, tt.mods...)
			res, err := Resolve(g, order)
			if res != nil {
				t.Errorf("Resolve() returned a partial order %v", res.Order)
			}
			if !errors.Is(err, ErrCycle) {
				t.Fatalf("Resolve() error = %v, want ErrCycle", err)
			}

			var cycle *CycleError
			if !errors.As(err, &cycle) {
				t.Fatalf("error is %T, want *CycleError", err)
			}
			if !slices.Equal(cycle.Cycle, tt.wantCycle) {
				t.Errorf("Cycle = %v, want %v", cycle.Cycle, tt.wantCycle)
			}
			if !slices.Equal(cycle.Blocked, tt.wantBlocked) {
				t.Errorf("Blocked = %v, want %v", cycle.Blocked, tt.wantBlocked)
			}
		})
	}
}

func TestCycleErrorMessage(t *testing.T) {
	err := &CycleError{Cycle: []string{"A", "B"}, Blocked: []string{"X"}}
	if got, want := err.Error(), "dependency cycle among {A, B}; blocked: {X}"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

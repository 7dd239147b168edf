package logentry

import "testing"

func TestValueStringByKind(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"string", String("abc"), "abc"},
		{"bool", Bool(true), "true"},
		{"int", Int(-5), "-5"},
		{"uint", Uint(7), "7"},
		{"double", Double(1.5), "1.5"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.v.String(); got != c.want {
				t.Errorf("String() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestValueEqualIgnoresKindIrrelevantFields(t *testing.T) {
	a := Value{Kind: KindInt, Int: 5, Str: "leftover"}
	b := Int(5)
	if !a.Equal(b) {
		t.Errorf("expected %v to equal %v", a, b)
	}
}

func TestValueEqualDiffersByKind(t *testing.T) {
	if Int(0).Equal(Bool(false)) {
		t.Errorf("values of different kinds must not be equal")
	}
}

package igr

import "testing"

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want Value
	}{
		{"42", IntValue(42)},
		{"-3", IntValue(-3)},
		{"2.5", FloatValue(2.5)},
		{"True", BoolValue(true)},
		{"false", BoolValue(false)},
		{`"a,b"`, StringValue("a,b")},
		{"[]", ArrayValue()},
		{"[15, 16, [1, 2]]", ArrayValue(IntValue(15), IntValue(16), ArrayValue(IntValue(1), IntValue(2)))},
		{"hello", StringValue("hello")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseValue(tt.in)
			if err != nil {
				t.Fatalf("ParseValue: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("ParseValue(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseValueErrors(t *testing.T) {
	for _, in := range []string{"", "[1, 2", "[1]]", `"open`} {
		if _, err := ParseValue(in); err == nil {
			t.Errorf("ParseValue(%q) succeeded", in)
		}
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{IntValue(120), "120"},
		{FloatValue(2), "2.0"},
		{FloatValue(0.5), "0.5"},
		{BoolValue(true), "true"},
		{StringValue("x"), `"x"`},
		{ArrayValue(IntValue(15), IntValue(16)), "[15, 16]"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestValueEqualDistinguishesKinds(t *testing.T) {
	if IntValue(1).Equal(FloatValue(1)) {
		t.Fatalf("int 1 equals float 1")
	}
	if !ArrayValue(IntValue(1)).Equal(ArrayValue(IntValue(1))) {
		t.Fatalf("equal arrays differ")
	}
}

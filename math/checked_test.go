package math

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
)

func TestCheckedArithmetic(t *testing.T) {
	max := new(uint256.Int).SetAllOne()
	one := uint256.NewInt(1)

	if _, err := Add(max, one); !errors.Is(err, ErrorOverflow) {
		t.Fatalf("want %v, got %v", ErrorOverflow, err)
	}
	if _, err := Sub(one, uint256.NewInt(2)); !errors.Is(err, ErrorUnderflow) {
		t.Fatalf("want %v, got %v", ErrorUnderflow, err)
	}
	if _, err := Mul(max, uint256.NewInt(2)); !errors.Is(err, ErrorOverflow) {
		t.Fatalf("want %v, got %v", ErrorOverflow, err)
	}
	if _, err := Div(one, Zero()); !errors.Is(err, ErrorDivisionByZero) {
		t.Fatalf("want %v, got %v", ErrorDivisionByZero, err)
	}

	if got := WrappingAdd(max, one); !got.IsZero() {
		t.Fatalf("want 0, got %s", got.Dec())
	}
}

func TestMulDiv(t *testing.T) {
	tableTests := []struct {
		a, b, c uint64
		want    uint64
	}{
		{a: 10, b: 10, c: 3, want: 33},
		{a: 997, b: 1000, c: 1000, want: 997},
		{a: 0, b: 5, c: 1, want: 0},
	}
	for _, tt := range tableTests {
		got, err := MulDiv(uint256.NewInt(tt.a), uint256.NewInt(tt.b), uint256.NewInt(tt.c))
		if err != nil {
			t.Fatal(err)
		}
		if got.Uint64() != tt.want {
			t.Errorf("want %d, got %d", tt.want, got.Uint64())
		}
	}
}

func TestSqrtAndMin(t *testing.T) {
	if got := Sqrt(uint256.NewInt(99)); got.Uint64() != 9 {
		t.Errorf("want 9, got %d", got.Uint64())
	}
	a, b := uint256.NewInt(3), uint256.NewInt(4)
	m := Min(b, a)
	if m.Uint64() != 3 {
		t.Errorf("want 3, got %d", m.Uint64())
	}
	m.SetUint64(100)
	if a.Uint64() != 3 {
		t.Error("Min must not alias its arguments")
	}
}

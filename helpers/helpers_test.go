package helpers

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
)

func TestIsValidBigInt(t *testing.T) {
	cases := map[string]bool{
		"":   false,
		"1":  true,
		"1s": false,
		"-1": false,
		"123437456298465928764598276349587623948756928764958762934569": true,
	}

	for str, result := range cases {
		if IsValidBigInt(str) != result {
			t.Fail()
		}
	}
}

func TestStringToBigInt(t *testing.T) {
	cases := map[string]bool{
		"":   false,
		"1":  true,
		"1s": false,
		"-1": true,
		"123437456298465928764598276349587623948756928764958762934569": true,
	}

	for str, result := range cases {
		_, err := stringToBigInt(str)

		if err != nil && result || err == nil && !result {
			t.Fatalf("%s %s", err, str)
		}
	}

	result := StringToBigInt("10")
	if result.Cmp(big.NewInt(10)) != 0 {
		t.Fail()
	}
}

func TestStringToAmount(t *testing.T) {
	cases := map[string]bool{
		"":   false,
		"0":  true,
		"-1": false,
		"115792089237316195423570985008687907853269984665640564039457584007913129639935": true,
		"115792089237316195423570985008687907853269984665640564039457584007913129639936": false,
	}

	for str, result := range cases {
		_, err := StringToAmount(str)
		if err != nil && result || err == nil && !result {
			t.Fatalf("%s %s", err, str)
		}
	}
}

func TestExpandTo18Decimals(t *testing.T) {
	want, _ := uint256.FromDecimal("10000000000000000000000")
	if got := ExpandTo18Decimals(10000); !got.Eq(want) {
		t.Fatalf("want %s, got %s", want.Dec(), got.Dec())
	}
}

func TestAmountString(t *testing.T) {
	if AmountString(nil) != "0" {
		t.Fail()
	}
	if AmountString(uint256.NewInt(42)) != "42" {
		t.Fail()
	}
}

package ptbr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"05/03/2024", "2024-03-05", true},
		{"31/12/1999", "1999-12-31", true},
		{" 05/03/2024 ", "2024-03-05", true},
		{"5/3/2024", "", false},
		{"05-03-2024", "", false},
		{"05/03/24", "", false},
		{"05/03/2024 extra", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, ok := Date(c.in)
			assert.Equal(t, c.ok, ok)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1.842,01", 1842.01, true},
		{"7,33", 7.33, true},
		{"1.234.567,89", 1234567.89, true},
		{"100", 100, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, c := range cases {
		got, ok := Number(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.InDelta(t, c.want, got, 1e-9, c.in)
	}
}

func TestCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"R$ 4.612,51", 4612.51, true},
		{"Preço: R$ 4.612,51 líquido", 4612.51, true},
		{"4.612,51", 4612.51, true},
		{"R$ 151,02", 151.02, true},
		{"sem valor", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := Currency(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.InDelta(t, c.want, got, 1e-9, c.in)
	}
}

func TestPercent(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"13,61%", 13.61, true},
		{"SELIC + 0,0711%", 0.0711, true},
		{"IPCA + 7,80%", 7.8, true},
		{"12 %", 12, true},
		{"IPCA +", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := Percent(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.InDelta(t, c.want, got, 1e-9, c.in)
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "Tesouro Selic 2029", Clean("  Tesouro\n  Selic\t2029 "))
}

package core

import (
	"errors"
	"testing"
)

func TestParseAmountCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		err error
	}{
		{"1", 100, nil},
		{"1.0", 100, nil},
		{"1.23", 123, nil},
		{"1,23", 123, nil},
		{"0.01", 1, nil},
		{"1.005", 101, nil}, // half-up rounding
		{" 2.50 ", 250, nil},
		{"100.00", 10000, nil},
		{"abc", 0, ErrAmountFormat},
		{"1.2.3", 0, ErrAmountFormat},
		{"", 0, ErrAmountFormat},
		{".", 0, ErrAmountFormat},
		{"12x", 0, ErrAmountFormat},
		{"0", 0, ErrAmountNotPositive},
		{"0.00", 0, ErrAmountNotPositive},
		{"-1", 0, ErrAmountNotPositive},
		{"-0.50", 0, ErrAmountNotPositive},
	}
	for _, tc := range cases {
		got, err := ParseAmountCents(tc.in)
		if tc.err == nil {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
			continue
		}
		if !errors.Is(err, tc.err) {
			t.Fatalf("%q expected %v, got %v", tc.in, tc.err, err)
		}
	}
}

func TestMoneyAmount(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{1, "0.01"},
		{7000, "70.00"},
		{10050, "100.50"},
		{-3000, "-30.00"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).Amount(); got != tc.want {
			t.Fatalf("%d cents expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}

package channels

import (
	"strings"
	"testing"
)

func TestUpdate(t *testing.T) {
	v := New(8)
	v.Update(7, 1234)
	if got := v.ByIndex(7); got != 1234 {
		t.Errorf("ByIndex(7) = %d, want 1234", got)
	}
	if got := v.Slice(); len(got) != 8 || got[7] != 1234 {
		t.Errorf("Slice() = %v", got)
	}
}

func TestInvalidChannel(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Update(8) on 8 channels did not panic")
		}
	}()
	New(8).Update(8, 1)
}

func TestString(t *testing.T) {
	v := New(16)
	for i := uint8(0); i < 16; i++ {
		v.Update(i, uint16(i)*100)
	}
	got := v.String()

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	want := []string{
		"Multiplexer Channel Values:",
		"",
		"ch0\tch1\tch2\tch3\tch4\tch5\tch6\tch7\t",
		"0\t100\t200\t300\t400\t500\t600\t700\t",
		"",
		"ch8\tch9\tch10\tch11\tch12\tch13\tch14\tch15\t",
		"800\t900\t1000\t1100\t1200\t1300\t1400\t1500\t",
	}
	if len(lines) != len(want) {
		t.Fatalf("String() has %d lines, want %d:\n%s", len(lines), len(want), got)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestString8(t *testing.T) {
	got := New(8).String()
	if strings.Contains(got, "ch8") {
		t.Errorf("8-channel table shows ch8:\n%s", got)
	}
}

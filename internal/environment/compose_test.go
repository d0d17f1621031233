package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposePrecedence(t *testing.T) {
	global := map[string]string{"A": "global", "G": "g"}
	suite := map[string]string{"A": "suite", "B": "suite", "S": "s"}
	step := map[string]string{"B": "step", "C": "step"}
	row := map[string]string{"C": "row", "R": "r"}

	got := Compose(global, suite, step, row)

	assert.Equal(t, map[string]string{
		"A": "suite",
		"B": "step",
		"C": "row",
		"G": "g",
		"S": "s",
		"R": "r",
	}, got)
}

func TestComposeEmpty(t *testing.T) {
	got := Compose()
	require.NotNil(t, got)
	assert.Empty(t, got)

	got = Compose(nil, nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestComposeDoesNotMutateInputs(t *testing.T) {
	step := map[string]string{"K": "step"}
	row := map[string]string{"K": "row0"}

	first := Compose(step, row)
	first["EXTRA"] = "x"

	assert.Equal(t, map[string]string{"K": "step"}, step)
	assert.Equal(t, map[string]string{"K": "row0"}, row)

	second := Compose(step, map[string]string{"OTHER": "row1"})
	assert.Equal(t, map[string]string{"K": "step", "OTHER": "row1"}, second)
}

func TestEnviron(t *testing.T) {
	base := []string{"PATH=/bin", "HOME=/root", "BROKEN"}
	got := Environ(base, map[string]string{"HOME": "/tmp", "NEW": "a=b"})

	want := []string{"HOME=/tmp", "NEW=a=b", "PATH=/bin"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: want %q, got %q", i, want[i], got[i])
		}
	}
}

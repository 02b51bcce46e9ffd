package encode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply_IsItsOwnInverse(t *testing.T) {
	for _, v := range []string{
		"7b2e9b0a-1f3c-4f2e-9d4e-2c6f1a8b9c0d",
		"epoch: 3, lr: 0.01",
		"0.0025",
		"Intel(R) Core(TM) i7/8 device(s), TDP:95",
		"",
	} {
		enc := Apply(v)
		assert.Equal(t, v, Apply(enc), "double rotation must restore %q", v)
	}
}

func TestApply_ChangesPrintableText(t *testing.T) {
	assert.NotEqual(t, "0.0025", Apply("0.0025"))
	assert.NotEqual(t, "default project name", Apply("default project name"))
}

func TestApply_PreservesSpaces(t *testing.T) {
	enc := Apply("a b")
	assert.Equal(t, byte(' '), enc[1])
}

func TestRow_EncodesEveryCell(t *testing.T) {
	row := Row([]string{"id-1", "N/A", "12.5"})
	assert.Len(t, row, 3)
	for i, cell := range row {
		assert.NotEqual(t, []string{"id-1", "N/A", "12.5"}[i], cell)
	}
}

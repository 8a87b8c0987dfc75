package specparse

import (
	"testing"

	"github.com/RMahshie/sparamgen/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		sign float64
		want models.Segments
	}{
		{
			name: "percent lines restore the loss sign",
			text: "50%  -0.2\n100% -1.9",
			sign: SignLoss,
			want: models.Segments{Percent: []models.PercentSegment{{Percent: 50, Value: -0.2}, {Percent: 100, Value: -1.9}}},
		},
		{
			name: "range lines",
			text: "17 - 19.35 -30\n20.15 - 23 -30\n",
			sign: SignLoss,
			want: models.Segments{Range: []models.RangeSegment{{Start: 17, End: 19.35, Value: -30}, {Start: 20.15, End: 23, Value: -30}}},
		},
		{
			name: "group delay keeps its sign",
			text: "50% 5.5",
			sign: SignDelay,
			want: models.Segments{Percent: []models.PercentSegment{{Percent: 50, Value: 5.5}}},
		},
		{
			name: "blank lines and padding are ignored",
			text: "\n   \n  100%   2  \n\n",
			sign: SignDelay,
			want: models.Segments{Percent: []models.PercentSegment{{Percent: 100, Value: 2}}},
		},
		{
			name: "mixed lines keep input order per kind",
			text: "50% -1\n0 - 19 -40\n100% -2",
			sign: SignLoss,
			want: models.Segments{
				Percent: []models.PercentSegment{{Percent: 50, Value: -1}, {Percent: 100, Value: -2}},
				Range:   []models.RangeSegment{{Start: 0, End: 19, Value: -40}},
			},
		},
		{
			name: "empty text",
			text: "",
			sign: SignLoss,
			want: models.Segments{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text, tt.sign)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_FormatErrors(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		lineNo int
		line   string
	}{
		{"single token", "50% -1\n100%", 2, "100%"},
		{"too many tokens", "17 - 19 -30 4", 1, "17 - 19 -30 4"},
		{"missing percent sign", "50 -1", 1, "50 -1"},
		{"non numeric value", "50% abc", 1, "50% abc"},
		{"non numeric range", "a - 19 -30", 1, "a - 19 -30"},
		{"fractional percent", "50.5% -1", 1, "50.5% -1"},
		{"reversed range", "\n19 - 17 -30", 2, "19 - 17 -30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text, SignLoss)
			require.Error(t, err)
			assert.Equal(t, models.Segments{}, got)

			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.lineNo, fe.LineNo)
			assert.Equal(t, tt.line, fe.Line)
			assert.Contains(t, err.Error(), tt.line)
		})
	}
}

func TestParsePercentAndRange_RejectOtherKind(t *testing.T) {
	_, err := ParsePercent("0 - 19 -40", SignLoss)
	var fe *FormatError
	assert.ErrorAs(t, err, &fe)

	_, err = ParseRange("50% -1", SignLoss)
	assert.ErrorAs(t, err, &fe)

	ranges, err := ParseRange("0 - 19 -40", SignLoss)
	require.NoError(t, err)
	assert.Equal(t, []models.RangeSegment{{Start: 0, End: 19, Value: -40}}, ranges)
}

func TestParseFrequency(t *testing.T) {
	v, err := ParseFrequency("center frequency", " 19750 ")
	require.NoError(t, err)
	assert.Equal(t, 19750, v)

	v, err = ParseFrequency("bandwidth", "800.0")
	require.NoError(t, err)
	assert.Equal(t, 800, v)

	for _, bad := range []string{"", "abc", "800.5", "0", "-5"} {
		_, err := ParseFrequency("bandwidth", bad)
		var ce *ConversionError
		assert.ErrorAs(t, err, &ce, "input %q", bad)
	}
}

func TestParseLoss(t *testing.T) {
	v, err := ParseLoss("loss at center", "-1.5")
	require.NoError(t, err)
	assert.Equal(t, -1.5, v)

	v, err = ParseLoss("loss at center", "  ")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	_, err = ParseLoss("loss at center", "x")
	var ce *ConversionError
	assert.ErrorAs(t, err, &ce)
	assert.Equal(t, "loss at center", ce.Field)
}

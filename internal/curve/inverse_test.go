package curve

import (
	"testing"

	"github.com/RMahshie/sparamgen/internal/specparse"
	"github.com/RMahshie/sparamgen/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSegments_PercentRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		text string
		loss float64
	}{
		{"scenario", "50%  -0.2\n100% -1.9", -1},
		{"near out of band", "30% -0.1\n80% -0.6\n100% -1.5\n150% -20\n200% -35", -0.8},
		{"center line", "0% -0.1\n50% -0.3", -1},
		{"odd bandwidth rounding", "33% -0.25\n67% -0.75", -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := specparse.ParsePercent(tt.text, specparse.SignLoss)
			require.NoError(t, err)

			data := &models.NumericalData{CenterFrequency: 19750, Bandwidth: 810, LossAtCenter: tt.loss}
			data.InsertionLoss = BuildChannel(models.InsertionLoss, models.Segments{Percent: in}, 19750, 810, tt.loss)

			out := ToSegments(data.InsertionLoss.Spec, ChannelLayout(data.InsertionLoss, data))
			require.Len(t, out.Percent, len(in))
			for i := range in {
				assert.InDelta(t, in[i].Percent, out.Percent[i].Percent, 1, "percent %d", i)
				assert.InDelta(t, in[i].Value, out.Percent[i].Value, 0.005, "value %d", i)
			}

			// the serialized text parses back to the same segments
			again, err := specparse.ParsePercent(FormatPercent(out.Percent), specparse.SignLoss)
			require.NoError(t, err)
			assert.Equal(t, out.Percent, again)
		})
	}
}

func TestToSegments_ReturnLoss(t *testing.T) {
	data, err := FromInput(testInput())
	require.NoError(t, err)

	segs := ToSegments(data.InputReturnLoss.Spec, ChannelLayout(data.InputReturnLoss, data))
	assert.Empty(t, segs.Percent)
	assert.Equal(t, []models.RangeSegment{
		{Start: 17, End: 19.75, Value: -20},
		{Start: 19.75, End: 23, Value: -25},
	}, segs.Range)
}

func TestToSegments_OutOfBandSnapsToEdges(t *testing.T) {
	data, err := FromInput(testInput())
	require.NoError(t, err)

	segs := ToSegments(data.InsertionLoss.Spec, ChannelLayout(data.InsertionLoss, data))
	assert.Equal(t, []models.RangeSegment{
		{Start: 0, End: 19.35, Value: -50},
		{Start: 20.15, End: 40, Value: -50},
	}, segs.Range)
}

func TestToSegments_EditedPointSplitsRun(t *testing.T) {
	data, err := FromInput(testInput())
	require.NoError(t, err)

	ch := data.OutputReturnLoss
	require.NoError(t, ch.Spec.AdjustPoint(0, 1))

	segs := ToSegments(ch.Spec, ChannelLayout(ch, data))
	require.NotEmpty(t, segs.Range)
	assert.Equal(t, -17.0, segs.Range[0].Value)
	assert.Equal(t, 17.0, segs.Range[0].Start)
}

func TestToSegments_FallbackWindowIsBandwidth(t *testing.T) {
	segs := models.Segments{Percent: []models.PercentSegment{{Percent: 100, Value: -1}, {Percent: 200, Value: -30}}}
	c, _ := Build(segs, 10000, 100, 0, false)

	out := ToSegments(c, Layout{Center: 10000, Bandwidth: 100, InBand: true})
	assert.Equal(t, []models.PercentSegment{{Percent: 100, Value: -1}, {Percent: 200, Value: -30}}, out.Percent)
}

func TestChannelSpecText(t *testing.T) {
	data, err := FromInput(testInput())
	require.NoError(t, err)

	text := ChannelSpecText(data.InsertionLoss, data)
	assert.Equal(t, "Insertion Loss\n"+
		"Center frequency: 19750\n"+
		"Bandwidth: 800\n"+
		"Loss at center: -1\n"+
		"In band:\n"+
		"50% -0.2\n"+
		"100% -1.9\n"+
		"Out of band:\n"+
		"0 - 19.35 -50\n"+
		"20.15 - 40 -50\n", text)

	gd := ChannelSpecText(data.GroupDelay, data)
	assert.NotContains(t, gd, "Loss at center")
	assert.Contains(t, gd, "50% 5\n100% 8\n")
}

func TestToSegments_CenterOnlyInBand(t *testing.T) {
	segs := models.Segments{
		Percent: []models.PercentSegment{{Percent: 0, Value: -0.5}},
		Range: []models.RangeSegment{
			{Start: 0, End: 19, Value: -50},
			{Start: 20.5, End: 40, Value: -50},
		},
	}
	data := &models.NumericalData{CenterFrequency: 19750, Bandwidth: 800, LossAtCenter: -1}
	data.InsertionLoss = BuildChannel(models.InsertionLoss, segs, 19750, 800, -1)
	require.True(t, data.InsertionLoss.HasInBand)
	assert.Zero(t, data.InsertionLoss.InBandHalfWidth)

	out := ChannelSegments(data.InsertionLoss, data)
	assert.Equal(t, []models.PercentSegment{{Percent: 0, Value: -0.5}}, out.Percent)
	assert.Equal(t, []models.RangeSegment{
		{Start: 0, End: 19.75, Value: -50},
		{Start: 19.75, End: 40, Value: -50},
	}, out.Range)

	again, err := specparse.ParsePercent(FormatPercent(out.Percent), specparse.SignLoss)
	require.NoError(t, err)
	assert.Equal(t, out.Percent, again)
}

func TestSignMismatches(t *testing.T) {
	data, err := FromInput(testInput())
	require.NoError(t, err)

	il := data.InsertionLoss
	assert.Empty(t, SignMismatches(il.Kind, ChannelSegments(il, data)))

	// nudge the whole in-band step above 0 dB
	for i, f := range il.Spec.Frequencies {
		if f >= 19550 && f <= 19950 {
			require.NoError(t, il.Spec.AdjustPoint(i, 2))
		}
	}
	segs := ChannelSegments(il, data)
	assert.Equal(t, []float64{1.8}, SignMismatches(il.Kind, segs))

	// the written text drops the sign, so it reads back negated
	again, err := specparse.ParsePercent(FormatPercent(segs.Percent), specparse.SignLoss)
	require.NoError(t, err)
	assert.Equal(t, -1.8, again[0].Value)

	gd := models.Segments{Range: []models.RangeSegment{{Start: 0, End: 1, Value: -3}, {Start: 1, End: 2, Value: 4}}}
	assert.Equal(t, []float64{-3}, SignMismatches(models.GroupDelay, gd))
}

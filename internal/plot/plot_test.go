package plot

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/sparamgen/pkg/models"
)

func channel() *models.ResponseChannel {
	ch := models.NewResponseChannel(models.InsertionLoss, models.Curve{
		Frequencies: []float64{19000, 19750, 20500},
		Values:      []float64{-50, -1, -50},
	})
	ch.Measurement = models.MeasurementCurve{
		Curve:  models.Curve{Frequencies: []float64{18900, 20600}, Values: []float64{-52.5, -49}},
		Source: models.SourceGenerated,
	}
	return ch
}

func TestChannelLimits(t *testing.T) {
	lim := ChannelLimits(channel())

	assert.Equal(t, Limits{XMin: 17900, XMax: 21600, YMin: -63, YMax: 9}, lim)
}

func TestRenderChannels(t *testing.T) {
	data := &models.NumericalData{
		InsertionLoss: channel(),
		GroupDelay:    models.NewResponseChannel(models.GroupDelay, models.Curve{}),
	}

	var buf bytes.Buffer
	require.NoError(t, RenderChannels(&buf, "Ku band BPF", data))

	html := buf.String()
	assert.Contains(t, html, "Ku band BPF")
	assert.Contains(t, html, "Insertion Loss")
	assert.Contains(t, html, "Measurement")
	assert.NotContains(t, html, "Group Delay")
}

func TestRenderChannels_NothingToPlot(t *testing.T) {
	data := &models.NumericalData{GroupDelay: models.NewResponseChannel(models.GroupDelay, models.Curve{})}

	var buf bytes.Buffer
	assert.Error(t, RenderChannels(&buf, "empty", data))
}

package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"ID", "Email"},
		Rows: []map[string]string{
			{"ID": "1", "Email": "a@example.com"},
			{"ID": "2", "Email": "b@example.com"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	payload, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Email", lines[0])
	assert.Equal(t, "1,a@example.com", lines[1])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestCSVExporterQuotesSpecialCharacters(t *testing.T) {
	payload, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Title"},
		Rows:    []map[string]string{{"Title": `Go, "the" language`}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"Go, ""the"" language"`)
}

func TestPDFExporterRender(t *testing.T) {
	payload, err := NewPDFExporter().Render(sampleDataset(), "Roster")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "Roster")
	assert.Error(t, err)
}

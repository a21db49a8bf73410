package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftlabs/sift/internal/core/domain"
)

func sampleResponse() *domain.SearchResponse {
	return &domain.SearchResponse{
		Query: "quarterly planning",
		Results: []domain.SearchResult{
			{
				DocumentID: "gdrive:file-1",
				Title:      "Q3 Planning",
				Source:     "gdrive",
				Path:       "Engineering/Plans",
				Snippet:    "The quarterly planning review covers...",
				Score:      0.91,
				URL:        "https://drive.example.com/file-1",
			},
		},
		TotalFound:   1,
		SearchTimeMs: 12.5,
	}
}

func captureCommand() (*cobra.Command, *bytes.Buffer) {
	out := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	return cmd, out
}

func TestOutputSearchText(t *testing.T) {
	cmd, out := captureCommand()

	require.NoError(t, outputSearchText(cmd, sampleResponse()))

	text := out.String()
	assert.Contains(t, text, "Q3 Planning")
	assert.Contains(t, text, "[gdrive, 0.91]")
	assert.Contains(t, text, "Engineering/Plans")
	assert.Contains(t, text, "1 of 1 results")
}

func TestOutputSearchText_NoResults(t *testing.T) {
	cmd, out := captureCommand()

	require.NoError(t, outputSearchText(cmd, &domain.SearchResponse{Query: "nothing"}))
	assert.Contains(t, out.String(), "No results.")
}

func TestOutputSearchJSON(t *testing.T) {
	cmd, out := captureCommand()

	require.NoError(t, outputSearchJSON(cmd, sampleResponse()))

	var decoded domain.SearchResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "quarterly planning", decoded.Query)
	require.Len(t, decoded.Results, 1)
	assert.Equal(t, "gdrive:file-1", decoded.Results[0].DocumentID)
}

package export

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset(rows int) Dataset {
	data := Dataset{Title: "Cronograma", Headers: []string{"#", "Subject", "Topic"}, Notes: []string{"Quality: Excellent"}}
	for i := 0; i < rows; i++ {
		data.Rows = append(data.Rows, []string{fmt.Sprint(i + 1), "Matemática", fmt.Sprintf("topic-%d", i)})
	}
	return data
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset(2))
	require.NoError(t, err)
	assert.Equal(t, "#,Subject,Topic\n1,Matemática,topic-0\n2,Matemática,topic-1\n", string(out))
}

func TestRenderRejectsRaggedRows(t *testing.T) {
	data := sampleDataset(1)
	data.Rows = append(data.Rows, []string{"only one"})

	_, err := NewCSVExporter().Render(data)
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(data)
	assert.Error(t, err)
	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFRenderSpansPages(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(120))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

package parts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecognizedQueryKeywords(t *testing.T) {
	require.True(t, RecognizedQuery("масляный фильтр"))
	require.True(t, RecognizedQuery("МАСЛЯНЫЙ ФИЛЬТР"))
	require.True(t, RecognizedQuery("oil filter"))
	require.True(t, RecognizedQuery("передние колодки"))
	require.True(t, RecognizedQuery("Свечи зажигания"))
}

func TestRecognizedQueryArticleCodes(t *testing.T) {
	require.True(t, RecognizedQuery("W712/75 подойдет?"))
	require.True(t, RecognizedQuery("0986452041"))
}

func TestRecognizedQueryRejectsChatter(t *testing.T) {
	require.False(t, RecognizedQuery("привет"))
	require.False(t, RecognizedQuery("что посоветуешь"))
	require.False(t, RecognizedQuery(""))
	require.False(t, RecognizedQuery("   "))
}

func TestFoldCollapsesWhitespace(t *testing.T) {
	require.Equal(t, "oil filter", Fold("  Oil \n Filter  "))
}

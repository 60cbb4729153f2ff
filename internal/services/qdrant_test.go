package services

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/cv-matcher/internal/models"
)

func TestSearchFilterWithoutKey(t *testing.T) {
	assert.Nil(t, searchFilter(nil))
	assert.Nil(t, searchFilter(&models.MetadataFilter{Key: "  ", Value: "2"}))
}

func TestSearchFilterKeywordValue(t *testing.T) {
	f := searchFilter(&models.MetadataFilter{Key: models.MetaName, Value: "Ada"})

	require.Len(t, f.GetMust(), 1)
	field := f.GetMust()[0].GetField()
	require.NotNil(t, field)
	assert.Equal(t, models.MetaName, field.GetKey())
	assert.Equal(t, "Ada", field.GetMatch().GetKeyword())
}

func TestSearchFilterMatchesIntegerPayload(t *testing.T) {
	payload, err := qdrant.TryValueMap(models.Candidate{ID: "i-1", Tier: 2}.Metadata())
	require.NoError(t, err)
	_, stored := payload[models.MetaTier].GetKind().(*qdrant.Value_IntegerValue)
	require.True(t, stored, "tier is stored as an integer payload")

	f := searchFilter(&models.MetadataFilter{Key: models.MetaTier, Value: "2"})

	require.Len(t, f.GetMust(), 1)
	nested := f.GetMust()[0].GetFilter()
	require.NotNil(t, nested)
	require.Len(t, nested.GetShould(), 2)

	var ints []int64
	var keywords []string
	for _, c := range nested.GetShould() {
		assert.Equal(t, models.MetaTier, c.GetField().GetKey())
		switch m := c.GetField().GetMatch(); m.GetMatchValue().(type) {
		case *qdrant.Match_Integer:
			ints = append(ints, m.GetInteger())
		case *qdrant.Match_Keyword:
			keywords = append(keywords, m.GetKeyword())
		}
	}
	assert.Equal(t, []int64{2}, ints)
	assert.Equal(t, []string{"2"}, keywords)
}

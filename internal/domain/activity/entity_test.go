package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCap_KeepsMostRecent(t *testing.T) {
	items := make([]Item, 0, 205)
	for i := 0; i < 205; i++ {
		items = append(items, Item{ID: string(rune('a' + i%26)), Type: TypePayment, Timestamp: int64(i)})
	}

	got := Cap(items, MaxItems)

	assert.Len(t, got, MaxItems)
	assert.Equal(t, int64(204), got[0].Timestamp)
	assert.Equal(t, int64(5), got[len(got)-1].Timestamp)
}

func TestType_IsValid(t *testing.T) {
	assert.True(t, TypeReportGenerated.IsValid())
	assert.False(t, Type("login").IsValid())
}

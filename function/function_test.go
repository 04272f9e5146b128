package function

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInArray(t *testing.T) {
	assert.True(t, InArray("mysql", []string{"mysql", "redis"}))
	assert.False(t, InArray("mongodb", []string{"mysql", "redis"}))
	assert.False(t, InArray("mysql", nil))
}

func TestJsonEncodeDecode(t *testing.T) {
	str := Json_encode(map[string]interface{}{"name": "青眼白龙"})
	assert.Equal(t, `{"name":"青眼白龙"}`, str)

	var decoded map[string]interface{}
	require.NoError(t, Json_decode(str, &decoded))
	assert.Equal(t, "青眼白龙", decoded["name"])

	assert.Error(t, Json_decode("not json", &decoded))
}

func TestTimeToStr(t *testing.T) {
	ts := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-09-01 10:30:00", TimeToStr(ts, ""))
	assert.Equal(t, "2026-09-01", TimeToStr(ts, "2006-01-02"))
}

package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2021-06-30")
	require.NoError(t, err)
	assert.Equal(t, "2021-06-30", d.String())

	_, err = ParseDate("06/30/2021")
	assert.Error(t, err)

	_, err = ParseDate("not-a-date")
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	d, err := ParseDate("2021-06-30")
	require.NoError(t, err)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2021-06-30"`, string(out))

	var back Date
	require.NoError(t, json.Unmarshal([]byte(`"2021-06-30"`), &back))
	assert.Equal(t, d.String(), back.String())

	// Full timestamps are truncated to the day
	require.NoError(t, json.Unmarshal([]byte(`"2021-06-30T15:04:05Z"`), &back))
	assert.Equal(t, "2021-06-30", back.String())

	assert.Error(t, json.Unmarshal([]byte(`"whenever"`), &back))
}

func TestDateScan(t *testing.T) {
	var d Date

	require.NoError(t, d.Scan(time.Date(2021, 6, 30, 15, 4, 5, 0, time.UTC)))
	assert.Equal(t, "2021-06-30", d.String())

	require.NoError(t, d.Scan("2021-07-01 00:00:00"))
	assert.Equal(t, "2021-07-01", d.String())

	require.NoError(t, d.Scan([]byte("2021-07-02")))
	assert.Equal(t, "2021-07-02", d.String())

	assert.Error(t, d.Scan(42))
}

func TestToday(t *testing.T) {
	now := time.Now()
	assert.Equal(t, now.Format("2006-01-02"), Today().String())
}

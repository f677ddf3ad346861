package gtfs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ia560/busplanner/gtfsdb"
)

func TestSourceFormat(t *testing.T) {
	tests := []struct {
		source string
		want   Format
	}{
		{"testdata/ames.csv", FormatCSV},
		{"/data/AMES.CSV", FormatCSV},
		{"https://example.com/feed/schedule.csv?token=1", FormatCSV},
		{"https://example.com/gtfs.zip", FormatGTFS},
		{"/data/google_transit.zip", FormatGTFS},
		{"https://example.com/download", FormatGTFS},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, sourceFormat(tt.source))
		})
	}
}

func TestIsLocalSource(t *testing.T) {
	assert.True(t, isLocalSource("/tmp/a.csv"))
	assert.True(t, isLocalSource("relative/a.zip"))
	assert.False(t, isLocalSource("http://example.com/a.zip"))
	assert.False(t, isLocalSource("https://example.com/a.zip"))
}

func TestLoadSchedule_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.csv")
	content := []byte("Stop Location,Route,Depart Time\nA,1,07:00\nB,1,07:10\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	data, err := loadSchedule(context.Background(), Config{ScheduleURL: path})
	require.NoError(t, err)
	assert.Equal(t, path, data.Source)
	assert.Equal(t, gtfsdb.HashSource(content), data.Hash)
	assert.Len(t, data.Visits, 2)
}

func TestRawScheduleData_HTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := rawScheduleData(context.Background(), server.URL+"/missing.csv", Config{})
	assert.ErrorContains(t, err, "404")
}

func TestRawScheduleData_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := rawScheduleData(ctx, server.URL+"/s.csv", Config{})
	assert.Error(t, err)
}

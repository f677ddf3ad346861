package gtfs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/ia560/busplanner/gtfsdb"
	"github.com/ia560/busplanner/internal/logging"
)

// Format is the layout of a schedule file.
type Format int

const (
	FormatGTFS Format = iota
	FormatCSV
)

func (f Format) String() string {
	if f == FormatCSV {
		return "csv"
	}
	return "gtfs"
}

const maxScheduleSize = 200 * 1024 * 1024

// isLocalSource reports whether source names a file rather than a URL.
func isLocalSource(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return true
	}
	return u.Scheme != "http" && u.Scheme != "https"
}

// sourceFormat picks the parser from the file extension. Anything that is not
// a .csv file is treated as a GTFS zip.
func sourceFormat(source string) Format {
	p := source
	if u, err := url.Parse(source); err == nil && !isLocalSource(source) {
		p = u.Path
	}
	if strings.EqualFold(path.Ext(p), ".csv") {
		return FormatCSV
	}
	return FormatGTFS
}

func rawScheduleData(ctx context.Context, source string, config Config) ([]byte, error) {
	if isLocalSource(source) {
		b, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("error reading local schedule file: %w", err)
		}
		return b, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating schedule request: %w", err)
	}
	if config.AuthHeaderKey != "" && config.AuthHeaderValue != "" {
		req.Header.Set(config.AuthHeaderKey, config.AuthHeaderValue)
	}

	client := &http.Client{
		Timeout: 5 * time.Minute,
		Transport: &http.Transport{
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       90 * time.Second,
		}}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading schedule: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "schedule_downloader")),
		"http_response_body")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download schedule: received HTTP status %s", resp.Status)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxScheduleSize+1))
	if err != nil {
		return nil, fmt.Errorf("error reading schedule: %w", err)
	}
	if int64(len(b)) > maxScheduleSize {
		return nil, fmt.Errorf("schedule response exceeds size limit of %d bytes", maxScheduleSize)
	}
	return b, nil
}

// parseSchedule decodes b according to format.
func parseSchedule(b []byte, format Format) (gtfsdb.ImportData, error) {
	switch format {
	case FormatCSV:
		return parseCSV(bytes.NewReader(b))
	default:
		return parseGTFS(b)
	}
}

// loadSchedule fetches and parses the configured source.
func loadSchedule(ctx context.Context, config Config) (gtfsdb.ImportData, error) {
	b, err := rawScheduleData(ctx, config.ScheduleURL, config)
	if err != nil {
		return gtfsdb.ImportData{}, fmt.Errorf("error reading schedule: %w", err)
	}

	format := sourceFormat(config.ScheduleURL)
	data, err := parseSchedule(b, format)
	if err != nil {
		return gtfsdb.ImportData{}, fmt.Errorf("error parsing %s schedule: %w", format, err)
	}
	data.Source = config.ScheduleURL
	data.Hash = gtfsdb.HashSource(b)
	return data, nil
}

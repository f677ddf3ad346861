package webui

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/davecgh/go-spew/spew"

	"github.com/ia560/busplanner/internal/appconf"
	"github.com/ia560/busplanner/internal/logging"
	"github.com/ia560/busplanner/internal/schedule"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

var dataTypes = []string{"stops", "visits", "graph", "tables", "schema"}

type debugData struct {
	Title     string
	Pre       string
	Day       string
	DataTypes []string
}

func (webUI *WebUI) writeDebugData(w http.ResponseWriter, title, day string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := debugTemplate.Execute(w, debugData{
		Title:     title,
		Pre:       spew.Sdump(data),
		Day:       day,
		DataTypes: dataTypes,
	})
	if err != nil {
		logging.LogError(webUI.Logger, "failed to execute debug template", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

type tablesReport struct {
	RowCounts         map[string]int
	LastImportRuntime string
}

// debugIndexHandler dumps the loaded schedule. It is disabled in production.
func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	if webUI.Config.Env == appconf.Production {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	day, _ := webUI.ServiceMoment()
	if d := q.Get("day"); d != "" {
		parsed, err := schedule.ParseWeekday(d)
		if err != nil {
			http.Error(w, "unknown day", http.StatusBadRequest)
			return
		}
		day = parsed
	}

	ctx := r.Context()
	manager := webUI.GtfsManager

	var (
		data  interface{}
		title string
		err   error
	)
	switch q.Get("dataType") {
	case "stops":
		data = manager.Stops()
		title = "Schedule - Stops"
	case "visits":
		data, err = manager.VisitsForDay(ctx, day)
		title = "Schedule - Stop visits on " + day.String()
	case "graph":
		g, buildErr := manager.BuildGraph(ctx, day)
		err = buildErr
		if g != nil {
			data = g.Stats()
		}
		title = "Time-expanded graph - " + day.String()
	case "tables":
		counts, countErr := manager.GtfsDB.TableCounts()
		err = countErr
		data = tablesReport{
			RowCounts:         counts,
			LastImportRuntime: manager.GtfsDB.ImportRuntime().String(),
		}
		title = "Database - Row counts"
	case "schema":
		data, err = manager.GtfsDB.Schema()
		title = "Database - Schema"
	default:
		data = map[string]interface{}{
			"error":       "Please choose a data type.",
			"dataTypes":   dataTypes,
			"lastUpdated": manager.LastUpdated(),
		}
		title = "Choose a data type"
	}
	if err != nil {
		logging.LogError(webUI.Logger, "debug page query failed", err,
			slog.String("data_type", q.Get("dataType")))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	webUI.writeDebugData(w, title, q.Get("day"), data)
}

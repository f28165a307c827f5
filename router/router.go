package router

import (
	"database/sql"
	"net/http"

	"github.com/peisong-zhang/Human-AI-comparison/cliparse"
	"github.com/peisong-zhang/Human-AI-comparison/experiment"
	"github.com/peisong-zhang/Human-AI-comparison/handlers"
	"github.com/peisong-zhang/Human-AI-comparison/middleware"
	"github.com/peisong-zhang/Human-AI-comparison/models"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, loader *experiment.Loader) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	configHandler := handlers.NewConfigHandler(loader)
	sessionHandler := handlers.NewSessionHandler(db, cfg, loader)
	recordHandler := handlers.NewRecordHandler(db, cfg)
	exportHandler := handlers.NewExportHandler(db)
	imagesHandler := handlers.NewImagesHandler(loader)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Experiment definition
	mux.HandleFunc("GET /api/config", middleware.WithLogging(configHandler.GetConfig))

	// Session lifecycle
	mux.HandleFunc("POST /api/session/start", middleware.WithLogging(sessionHandler.StartSession))
	mux.HandleFunc("POST /api/session/finish", middleware.WithLogging(sessionHandler.FinishSession))

	// Answer recording
	mux.HandleFunc("POST /api/record", middleware.WithLogging(recordHandler.SubmitRecord))

	// Results export
	mux.HandleFunc("GET /api/export/csv", middleware.WithLogging(exportHandler.ExportCSV))

	// Image files
	mux.HandleFunc("GET /images/subsets/{subset_id}/{mode_id}/{path...}", imagesHandler.ServeImage)

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{
			Status:  "ok",
			Message: "Human-AI comparison experiment API",
		})
	})

	return mux
}

package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRouter(a *API) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation - must be registered first
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// Health check (for Railway, k8s, etc.)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Job endpoints
	mux.HandleFunc("POST /api/jobs", a.CreateJobHandler)
	mux.HandleFunc("GET /api/jobs", a.ListJobsHandler)
	mux.HandleFunc("PATCH /api/jobs/{id}", a.UpdateJobHandler)
	mux.HandleFunc("DELETE /api/jobs/{id}", a.DeleteJobHandler)

	// Resume endpoints
	mux.HandleFunc("POST /api/resumes", a.CreateResumeHandler)
	mux.HandleFunc("POST /api/resumes/upload", a.UploadResumeHandler)
	mux.HandleFunc("GET /api/resumes", a.ListResumesHandler)
	mux.HandleFunc("GET /api/resumes/{id}", a.GetResumeHandler)
	mux.HandleFunc("DELETE /api/resumes/{id}", a.DeleteResumeHandler)

	// Matching endpoints
	mux.HandleFunc("POST /api/jobs/{id}/match", a.MatchJobHandler)
	mux.HandleFunc("GET /api/jobs/{id}/matches", a.ListMatchesHandler)

	return mux
}

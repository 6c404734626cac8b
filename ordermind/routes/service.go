package routes

import (
	"errors"
	"net/http"
	"time"

	"ordermind/ordermind/controllers"
	"ordermind/ordermind/middlewares"
	"ordermind/ordermind/services/rag"
	"ordermind/ordermind/sources/storage"
	"ordermind/ordermind/types"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	maxUploadSize  = 32 << 20
	requestTimeout = 60 * time.Second
)

// ServiceRoutes serves everything under /service. Streaming endpoints are
// rate limited and carry no request timeout; the rest time out after a
// minute.
func ServiceRoutes(chat *controllers.ChatController, agent *controllers.AgentController, docs *controllers.RAGController, limiter *middlewares.RateLimiter, wsOpts *websocket.AcceptOptions) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(limiter.Middleware)
		gr.Post("/chat", ChatStream(chat))
		gr.Get("/chat/ws", ChatWebSocket(chat, wsOpts))
	})
	r.Group(func(gr chi.Router) {
		gr.Use(middleware.Timeout(requestTimeout))
		gr.Post("/agent", askAgent(agent))
		gr.Post("/upload", upload(docs))
		gr.Post("/vectorize", vectorize(docs))
		gr.Post("/rag", queryRAG(docs))
		gr.Mount("/history", HistoryRoutes(chat))
	})
	return r
}

func askAgent(ctrl *controllers.AgentController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.AgentRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		answer, err := ctrl.Ask(r.Context(), req.Query)
		if errors.Is(err, controllers.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			writeInternal(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, types.AgentResponse{FinalResponse: answer})
	}
}

func upload(ctrl *controllers.RAGController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "No file uploaded")
			return
		}
		defer file.Close()

		key, err := ctrl.Upload(r.Context(), header.Filename, file, header.Size, header.Header.Get("Content-Type"))
		if errors.Is(err, storage.ErrInvalidName) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			writeInternal(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, types.UploadResponse{Message: "File uploaded successfully.", FilePath: key})
	}
}

func vectorize(ctrl *controllers.RAGController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.VectorizeRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		n, err := ctrl.Vectorize(r.Context(), req.FilePath, req.Index)
		switch {
		case errors.Is(err, controllers.ErrMissingVectorizeFields), errors.Is(err, rag.ErrEmptyDocument):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, storage.ErrObjectNotFound):
			writeError(w, http.StatusNotFound, "File not found")
		case err != nil:
			writeInternal(w, r, err)
		default:
			writeJSON(w, http.StatusOK, types.VectorizeResponse{Message: "File processed and vectorized successfully.", Chunks: n})
		}
	}
}

func queryRAG(ctrl *controllers.RAGController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.RAGRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		answer, err := ctrl.Query(r.Context(), req.Query, req.Index)
		if errors.Is(err, controllers.ErrMissingRAGFields) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			writeInternal(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, types.RAGResponse{Response: answer})
	}
}

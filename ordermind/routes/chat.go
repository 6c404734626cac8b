package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"ordermind/ordermind/controllers"
	"ordermind/ordermind/middlewares"
	"ordermind/ordermind/services/streaming"
	"ordermind/ordermind/sources/psql/dao"
	"ordermind/ordermind/types"
	"ordermind/ordermind/utils/logging"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ChatStream serves POST /service/chat as server-sent events.
func ChatStream(ctrl *controllers.ChatController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ChatRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := ctrl.Prepare(&req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		em, err := streaming.NewSSEEmitter(w)
		if err != nil {
			writeInternal(w, r, err)
			return
		}
		ctrl.Stream(r.Context(), req, em)
	}
}

// ChatWebSocket serves the same exchange over a websocket. The first text
// message carries the chat request.
func ChatWebSocket(ctrl *controllers.ChatController, opts *websocket.AcceptOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, opts)
		if err != nil {
			logging.ErrorLogger.Error("websocket accept error", zap.Error(err))
			return
		}
		defer conn.CloseNow()

		ctx := r.Context()
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			conn.Close(websocket.StatusUnsupportedData, "unsupported data")
			return
		}
		var req types.ChatRequest
		if err := json.Unmarshal(data, &req); err != nil {
			conn.Close(websocket.StatusInvalidFramePayloadData, "invalid json")
			return
		}
		if err := ctrl.Prepare(&req); err != nil {
			conn.Close(websocket.StatusPolicyViolation, err.Error())
			return
		}

		// the peer closing the socket cancels ctx
		ctx = conn.CloseRead(ctx)
		ctrl.Stream(ctx, req, streaming.NewWebSocketEmitter(ctx, conn))
	}
}

func HistoryRoutes(ctrl *controllers.ChatController) chi.Router {
	r := chi.NewRouter()
	r.Get("/{resourceID}", func(w http.ResponseWriter, r *http.Request) {
		turns, err := ctrl.History(r.Context(), chi.URLParam(r, "resourceID"))
		if errors.Is(err, dao.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		if err != nil {
			writeInternal(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, turns)
	})
	r.Delete("/{resourceID}", func(w http.ResponseWriter, r *http.Request) {
		err := ctrl.DeleteHistory(r.Context(), chi.URLParam(r, "resourceID"))
		if errors.Is(err, dao.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		if err != nil {
			writeInternal(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

// Home serves GET / with the user's conversations.
func Home(ctrl *controllers.ChatController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := ctrl.Home(r.Context(), middlewares.UserFromContext(r.Context()), r.URL.Query().Get("resourceID"))
		if err != nil {
			writeInternal(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

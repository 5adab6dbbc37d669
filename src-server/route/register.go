package route

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"eventdesk/src-server/model"
	"eventdesk/src-server/serializer"
	"eventdesk/src-server/utils"
)

const (
	msgMissingCredentials = "Please provide username and password"
	msgUsernameTaken      = "Username already exists"
)

// Open to anyone. Answers 201 with an empty body.
func Register(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("POST /api/register/{$}", func(w http.ResponseWriter, r *http.Request) {
		var reqBody serializer.RegisterInput
		if !decodeBody(w, r, &reqBody) {
			return
		}
		username := ""
		if reqBody.Username != nil {
			username = utils.CleanupUsername(*reqBody.Username)
		}
		password := ""
		if reqBody.Password != nil {
			password = *reqBody.Password
		}
		if username == "" || password == "" {
			writeJSON(w, http.StatusBadRequest, serializer.ErrorRecord{Error: msgMissingCredentials})
			return
		}

		startTimer := time.Now()
		if _, err := model.CreateUser(r.Context(), as.BunDB, username, password); err != nil {
			if errors.Is(err, model.ErrUsernameTaken) {
				slog.Debug("username taken", "username", username)
				writeJSON(w, http.StatusBadRequest, serializer.ErrorRecord{Error: msgUsernameTaken})
				return
			}
			writeServerError(w, r, "can't create user", err)
			return
		}
		as.MetricChans.ObserveWrite(startTimer)
		slog.Info("user registered", "username", username)
		w.WriteHeader(http.StatusCreated)
	})
}

package route

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"eventdesk/src-server/model"
	"eventdesk/src-server/serializer"
	"eventdesk/src-server/utils"
)

func Tasks(muxer *http.ServeMux, as *utils.AppState) {
	// list, filtered by ?search=, ?status=, ?event=
	muxer.HandleFunc("GET /api/tasks/{$}", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filter := model.TaskFilter{
			Search: query.Get("search"),
			Status: strings.TrimSpace(query.Get("status")),
		}
		if raw := strings.TrimSpace(query.Get("event")); raw != "" {
			eventID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				writeFieldErrors(w, serializer.FieldErrors{"event": {"Select a valid choice. That choice is not one of the available choices."}})
				return
			}
			filter.EventID = &eventID
		}

		startTimer := time.Now()
		taskModels, err := model.ListTasks(r.Context(), as.BunDB, filter)
		if err != nil {
			writeServerError(w, r, "can't list tasks", err)
			return
		}
		as.MetricChans.ObserveRead(startTimer)
		writeJSON(w, http.StatusOK, serializer.NewTaskRecords(taskModels))
	})

	muxer.HandleFunc("POST /api/tasks/{$}", func(w http.ResponseWriter, r *http.Request) {
		var reqBody serializer.TaskInput
		if !decodeBody(w, r, &reqBody) {
			return
		}
		fieldErrors, err := reqBody.Validate(r.Context(), as.BunDB, false)
		if err != nil {
			writeServerError(w, r, "can't validate task", err)
			return
		}
		if writeFieldErrors(w, fieldErrors) {
			return
		}

		taskModel := new(model.Task)
		reqBody.Apply(taskModel)
		startTimer := time.Now()
		if err := taskModel.Insert(r.Context(), as.BunDB); err != nil {
			writeServerError(w, r, "can't insert task", err)
			return
		}
		as.MetricChans.ObserveWrite(startTimer)
		writeJSON(w, http.StatusCreated, serializer.NewTaskRecord(taskModel))
	})

	muxer.HandleFunc("GET /api/tasks/{id}/{$}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		startTimer := time.Now()
		taskModel, ok := getTask(w, r, as, id)
		if !ok {
			return
		}
		as.MetricChans.ObserveRead(startTimer)
		writeJSON(w, http.StatusOK, serializer.NewTaskRecord(taskModel))
	})

	update := func(partial bool) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r)
			if !ok {
				return
			}
			taskModel, ok := getTask(w, r, as, id)
			if !ok {
				return
			}

			var reqBody serializer.TaskInput
			if !decodeBody(w, r, &reqBody) {
				return
			}
			fieldErrors, err := reqBody.Validate(r.Context(), as.BunDB, partial)
			if err != nil {
				writeServerError(w, r, "can't validate task", err)
				return
			}
			if writeFieldErrors(w, fieldErrors) {
				return
			}
			reqBody.Apply(taskModel)

			startTimer := time.Now()
			if err := taskModel.Update(r.Context(), as.BunDB); err != nil {
				if errors.Is(err, model.ErrNotFound) {
					writeNotFound(w)
					return
				}
				writeServerError(w, r, "can't update task", err)
				return
			}
			as.MetricChans.ObserveWrite(startTimer)
			writeJSON(w, http.StatusOK, serializer.NewTaskRecord(taskModel))
		}
	}
	muxer.HandleFunc("PUT /api/tasks/{id}/{$}", update(false))
	muxer.HandleFunc("PATCH /api/tasks/{id}/{$}", update(true))

	muxer.HandleFunc("DELETE /api/tasks/{id}/{$}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		startTimer := time.Now()
		if err := model.DeleteTask(r.Context(), as.BunDB, id); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				writeNotFound(w)
				return
			}
			writeServerError(w, r, "can't delete task", err)
			return
		}
		as.MetricChans.ObserveWrite(startTimer)
		w.WriteHeader(http.StatusNoContent)
	})

	muxer.HandleFunc("POST /api/tasks/{id}/toggle_status/{$}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		taskModel, ok := getTask(w, r, as, id)
		if !ok {
			return
		}
		startTimer := time.Now()
		if err := taskModel.ToggleStatus(r.Context(), as.BunDB); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				writeNotFound(w)
				return
			}
			writeServerError(w, r, "can't toggle task status", err)
			return
		}
		as.MetricChans.ObserveWrite(startTimer)
		writeJSON(w, http.StatusOK, serializer.StatusRecord{Status: string(taskModel.Status)})
	})
}

func getTask(w http.ResponseWriter, r *http.Request, as *utils.AppState, id int64) (*model.Task, bool) {
	taskModel, err := model.GetTask(r.Context(), as.BunDB, id)
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeNotFound(w)
		return nil, false
	case err != nil:
		writeServerError(w, r, "can't get task", err)
		return nil, false
	}
	return taskModel, true
}

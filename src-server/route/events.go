package route

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"eventdesk/src-server/model"
	"eventdesk/src-server/serializer"
	"eventdesk/src-server/utils"
)

func Events(muxer *http.ServeMux, as *utils.AppState) {
	// list, filtered by ?search=, ?location=, ?date_after=, ?date_before=
	muxer.HandleFunc("GET /api/events/{$}", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filter := model.EventFilter{
			Search:   query.Get("search"),
			Location: strings.TrimSpace(query.Get("location")),
		}

		// #region - parse date range
		fieldErrors := make(serializer.FieldErrors)
		now := time.Now()
		for param, target := range map[string]**time.Time{
			"date_after":  &filter.DateAfter,
			"date_before": &filter.DateBefore,
		} {
			raw := query.Get(param)
			if strings.TrimSpace(raw) == "" {
				continue
			}
			date, err := as.ParseDate(raw, now)
			if err != nil {
				fieldErrors.Add(param, "Enter a valid date/time.")
				continue
			}
			*target = &date
		}
		if writeFieldErrors(w, fieldErrors) {
			return
		}
		// #endregion

		startTimer := time.Now()
		eventModels, err := model.ListEvents(r.Context(), as.BunDB, filter)
		if err != nil {
			writeServerError(w, r, "can't list events", err)
			return
		}
		records, err := serializer.EventRecords(r.Context(), as.BunDB, eventModels)
		if err != nil {
			writeServerError(w, r, "can't count attendees", err)
			return
		}
		as.MetricChans.ObserveRead(startTimer)
		writeJSON(w, http.StatusOK, records)
	})

	muxer.HandleFunc("POST /api/events/{$}", func(w http.ResponseWriter, r *http.Request) {
		var reqBody serializer.EventInput
		if !decodeBody(w, r, &reqBody) {
			return
		}
		fieldErrors, err := reqBody.Validate(r.Context(), as.BunDB, false)
		if err != nil {
			writeServerError(w, r, "can't validate event", err)
			return
		}
		if writeFieldErrors(w, fieldErrors) {
			return
		}

		eventModel := new(model.Event)
		reqBody.Apply(eventModel)
		startTimer := time.Now()
		if err := eventModel.Insert(r.Context(), as.BunDB); err != nil {
			writeServerError(w, r, "can't insert event", err)
			return
		}
		as.MetricChans.ObserveWrite(startTimer)
		eventModel.Tasks = make([]*model.Task, 0)
		writeJSON(w, http.StatusCreated, serializer.NewEventRecord(eventModel, 0))
	})

	muxer.HandleFunc("GET /api/events/{id}/{$}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		startTimer := time.Now()
		eventModel, ok := getEvent(w, r, as, id)
		if !ok {
			return
		}
		record, err := serializer.EventRecordOf(r.Context(), as.BunDB, eventModel)
		if err != nil {
			writeServerError(w, r, "can't count attendees", err)
			return
		}
		as.MetricChans.ObserveRead(startTimer)
		writeJSON(w, http.StatusOK, record)
	})

	update := func(partial bool) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r)
			if !ok {
				return
			}
			eventModel, ok := getEvent(w, r, as, id)
			if !ok {
				return
			}

			var reqBody serializer.EventInput
			if !decodeBody(w, r, &reqBody) {
				return
			}
			fieldErrors, err := reqBody.Validate(r.Context(), as.BunDB, partial)
			if err != nil {
				writeServerError(w, r, "can't validate event", err)
				return
			}
			if writeFieldErrors(w, fieldErrors) {
				return
			}
			reqBody.Apply(eventModel)

			startTimer := time.Now()
			if err := eventModel.Update(r.Context(), as.BunDB); err != nil {
				if errors.Is(err, model.ErrNotFound) {
					writeNotFound(w)
					return
				}
				writeServerError(w, r, "can't update event", err)
				return
			}
			as.MetricChans.ObserveWrite(startTimer)

			record, err := serializer.EventRecordOf(r.Context(), as.BunDB, eventModel)
			if err != nil {
				writeServerError(w, r, "can't count attendees", err)
				return
			}
			writeJSON(w, http.StatusOK, record)
		}
	}
	muxer.HandleFunc("PUT /api/events/{id}/{$}", update(false))
	muxer.HandleFunc("PATCH /api/events/{id}/{$}", update(true))

	// tasks and attendee links go with it
	muxer.HandleFunc("DELETE /api/events/{id}/{$}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		startTimer := time.Now()
		if err := model.DeleteEvent(r.Context(), as.BunDB, id); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				writeNotFound(w)
				return
			}
			writeServerError(w, r, "can't delete event", err)
			return
		}
		as.MetricChans.ObserveWrite(startTimer)
		w.WriteHeader(http.StatusNoContent)
	})

	muxer.HandleFunc("POST /api/events/{id}/add_attendee/{$}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		eventModel, ok := getEvent(w, r, as, id)
		if !ok {
			return
		}

		var reqBody serializer.AddAttendeeInput
		if !decodeBody(w, r, &reqBody) {
			return
		}
		attendeeID, msg := serializer.ParsePK(reqBody.AttendeeID)
		if reqBody.AttendeeID == nil || msg != "" {
			writeNotFound(w)
			return
		}
		exists, err := model.AttendeeExists(r.Context(), as.BunDB, attendeeID)
		if err != nil {
			writeServerError(w, r, "can't check if attendee exists", err)
			return
		}
		if !exists {
			writeNotFound(w)
			return
		}

		startTimer := time.Now()
		if err := eventModel.AddAttendee(r.Context(), as.BunDB, attendeeID); err != nil {
			writeServerError(w, r, "can't add attendee", err)
			return
		}
		as.MetricChans.ObserveWrite(startTimer)
		writeJSON(w, http.StatusOK, serializer.StatusRecord{Status: "attendee added"})
	})
}

// Loads the event or writes the 404/500 itself.
func getEvent(w http.ResponseWriter, r *http.Request, as *utils.AppState, id int64) (*model.Event, bool) {
	eventModel, err := model.GetEvent(r.Context(), as.BunDB, id)
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeNotFound(w)
		return nil, false
	case err != nil:
		writeServerError(w, r, "can't get event", err)
		return nil, false
	}
	return eventModel, true
}

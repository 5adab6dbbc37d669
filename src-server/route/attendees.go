package route

import (
	"errors"
	"net/http"
	"time"

	"eventdesk/src-server/model"
	"eventdesk/src-server/serializer"
	"eventdesk/src-server/utils"
)

func Attendees(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /api/attendees/{$}", func(w http.ResponseWriter, r *http.Request) {
		startTimer := time.Now()
		attendeeModels, err := model.ListAttendees(r.Context(), as.BunDB, model.AttendeeFilter{
			Search: r.URL.Query().Get("search"),
		})
		if err != nil {
			writeServerError(w, r, "can't list attendees", err)
			return
		}
		as.MetricChans.ObserveRead(startTimer)
		writeJSON(w, http.StatusOK, serializer.NewAttendeeRecords(attendeeModels))
	})

	muxer.HandleFunc("POST /api/attendees/{$}", func(w http.ResponseWriter, r *http.Request) {
		var reqBody serializer.AttendeeInput
		if !decodeBody(w, r, &reqBody) {
			return
		}
		fieldErrors, err := reqBody.Validate(r.Context(), as.BunDB, false)
		if err != nil {
			writeServerError(w, r, "can't validate attendee", err)
			return
		}
		if writeFieldErrors(w, fieldErrors) {
			return
		}

		attendeeModel := new(model.Attendee)
		reqBody.Apply(attendeeModel)
		startTimer := time.Now()
		if err := attendeeModel.Insert(r.Context(), as.BunDB, reqBody.EventIDs()); err != nil {
			writeServerError(w, r, "can't insert attendee", err)
			return
		}
		as.MetricChans.ObserveWrite(startTimer)
		writeJSON(w, http.StatusCreated, serializer.NewAttendeeRecord(attendeeModel))
	})

	muxer.HandleFunc("GET /api/attendees/{id}/{$}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		startTimer := time.Now()
		attendeeModel, ok := getAttendee(w, r, as, id)
		if !ok {
			return
		}
		as.MetricChans.ObserveRead(startTimer)
		writeJSON(w, http.StatusOK, serializer.NewAttendeeRecord(attendeeModel))
	})

	// events is replaced when sent, PATCH without it keeps the links
	update := func(partial bool) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r)
			if !ok {
				return
			}
			attendeeModel, ok := getAttendee(w, r, as, id)
			if !ok {
				return
			}

			var reqBody serializer.AttendeeInput
			if !decodeBody(w, r, &reqBody) {
				return
			}
			fieldErrors, err := reqBody.Validate(r.Context(), as.BunDB, partial)
			if err != nil {
				writeServerError(w, r, "can't validate attendee", err)
				return
			}
			if writeFieldErrors(w, fieldErrors) {
				return
			}
			reqBody.Apply(attendeeModel)

			startTimer := time.Now()
			if err := attendeeModel.Update(r.Context(), as.BunDB, reqBody.EventIDs()); err != nil {
				if errors.Is(err, model.ErrNotFound) {
					writeNotFound(w)
					return
				}
				writeServerError(w, r, "can't update attendee", err)
				return
			}
			as.MetricChans.ObserveWrite(startTimer)

			attendeeModel, ok = getAttendee(w, r, as, id)
			if !ok {
				return
			}
			writeJSON(w, http.StatusOK, serializer.NewAttendeeRecord(attendeeModel))
		}
	}
	muxer.HandleFunc("PUT /api/attendees/{id}/{$}", update(false))
	muxer.HandleFunc("PATCH /api/attendees/{id}/{$}", update(true))

	muxer.HandleFunc("DELETE /api/attendees/{id}/{$}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		startTimer := time.Now()
		if err := model.DeleteAttendee(r.Context(), as.BunDB, id); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				writeNotFound(w)
				return
			}
			writeServerError(w, r, "can't delete attendee", err)
			return
		}
		as.MetricChans.ObserveWrite(startTimer)
		w.WriteHeader(http.StatusNoContent)
	})

	// full event records the attendee is linked to
	muxer.HandleFunc("GET /api/attendees/{id}/events/{$}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		startTimer := time.Now()
		exists, err := model.AttendeeExists(r.Context(), as.BunDB, id)
		if err != nil {
			writeServerError(w, r, "can't check if attendee exists", err)
			return
		}
		if !exists {
			writeNotFound(w)
			return
		}
		eventModels, err := model.ListEvents(r.Context(), as.BunDB, model.EventFilter{AttendeeID: &id})
		if err != nil {
			writeServerError(w, r, "can't list attendee events", err)
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
}

func getAttendee(w http.ResponseWriter, r *http.Request, as *utils.AppState, id int64) (*model.Attendee, bool) {
	attendeeModel, err := model.GetAttendee(r.Context(), as.BunDB, id)
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeNotFound(w)
		return nil, false
	case err != nil:
		writeServerError(w, r, "can't get attendee", err)
		return nil, false
	}
	return attendeeModel, true
}

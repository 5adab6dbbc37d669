package serializer_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"eventdesk/src-server/model"
	"eventdesk/src-server/serializer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	rawDB, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	rawDB.SetMaxOpenConns(1)
	bundb := bun.NewDB(rawDB, sqlitedialect.New())
	t.Cleanup(func() { bundb.Close() })
	require.NoError(t, model.CreateSchema(context.Background(), bundb))
	return bundb
}

func TestParsePK(t *testing.T) {
	for _, tc := range []struct {
		raw    string
		wantID int64
		wantOK bool
		msg    string
	}{
		{raw: `7`, wantID: 7, wantOK: true},
		{raw: `"12"`, wantID: 12, wantOK: true},
		{raw: `null`, msg: "This field may not be null."},
		{raw: `"abc"`, msg: "Incorrect type. Expected pk value, received str."},
		{raw: `1.5`, msg: "Incorrect type. Expected pk value, received float."},
		{raw: `true`, msg: "Incorrect type. Expected pk value, received bool."},
		{raw: `{"id":1}`, msg: "Incorrect type. Expected pk value, received dict."},
	} {
		id, msg := serializer.ParsePK(json.RawMessage(tc.raw))
		if tc.wantOK {
			assert.Empty(t, msg, tc.raw)
			assert.Equal(t, tc.wantID, id, tc.raw)
			continue
		}
		assert.Equal(t, tc.msg, msg, tc.raw)
	}

	ids, msg := serializer.ParsePKList(json.RawMessage(`[1, "2"]`))
	assert.Empty(t, msg)
	assert.Equal(t, []int64{1, 2}, ids)

	_, msg = serializer.ParsePKList(json.RawMessage(`"1"`))
	assert.Equal(t, `Expected a list of items but got type "str".`, msg)
}

func TestDecode(t *testing.T) {
	var in serializer.EventInput
	require.NoError(t, serializer.Decode(strings.NewReader(""), &in))

	err := serializer.Decode(strings.NewReader("{"), &in)
	var parseErr *serializer.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.True(t, strings.HasPrefix(parseErr.Error(), "JSON parse error - "))
}

func TestEventInputValidate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	// case: everything missing on create
	func() {
		var in serializer.EventInput
		require.NoError(t, serializer.Decode(strings.NewReader(`{"id": 99, "attendees_count": 4}`), &in))
		fieldErrors, err := in.Validate(ctx, db, false)
		require.NoError(t, err)
		assert.Equal(t, serializer.FieldErrors{
			"name":     {"This field is required."},
			"date":     {"This field is required."},
			"location": {"This field is required."},
		}, fieldErrors)
	}()

	// case: blank and malformed values
	func() {
		var in serializer.EventInput
		require.NoError(t, serializer.Decode(strings.NewReader(`{"name": "  ", "date": "tomorrow", "location": "Hall"}`), &in))
		fieldErrors, err := in.Validate(ctx, db, false)
		require.NoError(t, err)
		assert.Equal(t, []string{"This field may not be blank."}, fieldErrors["name"])
		assert.Len(t, fieldErrors["date"], 1)
		assert.NotContains(t, fieldErrors, "location")
	}()

	// case: partial only checks what was sent
	func() {
		var in serializer.EventInput
		require.NoError(t, serializer.Decode(strings.NewReader(`{"location": "Annex"}`), &in))
		fieldErrors, err := in.Validate(ctx, db, true)
		require.NoError(t, err)
		assert.Empty(t, fieldErrors)

		eventModel := &model.Event{Name: "Keep", Location: "Old", Date: time.Now()}
		in.Apply(eventModel)
		assert.Equal(t, "Keep", eventModel.Name)
		assert.Equal(t, "Annex", eventModel.Location)
	}()

	// case: valid create
	func() {
		var in serializer.EventInput
		require.NoError(t, serializer.Decode(strings.NewReader(`{"name": " Gala ", "date": "2026-12-31T20:00:00+01:00", "location": "Vienna"}`), &in))
		fieldErrors, err := in.Validate(ctx, db, false)
		require.NoError(t, err)
		require.Empty(t, fieldErrors)

		eventModel := new(model.Event)
		in.Apply(eventModel)
		assert.Equal(t, "Gala", eventModel.Name)
		assert.True(t, eventModel.Date.Equal(time.Date(2026, 12, 31, 19, 0, 0, 0, time.UTC)))
	}()
}

func TestParseDateTime(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want time.Time
	}{
		{in: "2026-11-20T18:30:00Z", want: time.Date(2026, 11, 20, 18, 30, 0, 0, time.UTC)},
		{in: "2026-11-20 18:30", want: time.Date(2026, 11, 20, 18, 30, 0, 0, time.UTC)},
		{in: "2026-11-20T18:30:00+02:00", want: time.Date(2026, 11, 20, 16, 30, 0, 0, time.UTC)},
		{in: "2026-11-20", want: time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC)},
	} {
		got, ok := serializer.ParseDateTime(tc.in)
		require.True(t, ok, tc.in)
		assert.True(t, tc.want.Equal(got), "%s: got %s", tc.in, got)
	}

	for _, in := range []string{"", "tomorrow", "20/11/2026", "2026-13-01"} {
		_, ok := serializer.ParseDateTime(in)
		assert.False(t, ok, in)
	}
}

func TestTaskInputValidate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	eventModel := &model.Event{Name: "Fair", Location: "Square", Date: time.Now()}
	require.NoError(t, eventModel.Insert(ctx, db))

	var in serializer.TaskInput
	require.NoError(t, serializer.Decode(strings.NewReader(`{"name": "Stage", "event": 999, "status": "Done"}`), &in))
	fieldErrors, err := in.Validate(ctx, db, false)
	require.NoError(t, err)
	assert.Equal(t, serializer.FieldErrors{
		"event":  {`Invalid pk "999" - object does not exist.`},
		"status": {`"Done" is not a valid choice.`},
	}, fieldErrors)

	in = serializer.TaskInput{}
	body := `{"name": "Stage", "event": "` + jsonID(eventModel.ID) + `"}`
	require.NoError(t, serializer.Decode(strings.NewReader(body), &in))
	fieldErrors, err = in.Validate(ctx, db, false)
	require.NoError(t, err)
	require.Empty(t, fieldErrors)

	taskModel := new(model.Task)
	in.Apply(taskModel)
	assert.Equal(t, eventModel.ID, taskModel.EventID)
	assert.Empty(t, taskModel.Status)
}

func TestAttendeeInputValidate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	var in serializer.AttendeeInput
	require.NoError(t, serializer.Decode(strings.NewReader(`{"name": "Tom", "email": "not-an-email", "events": [5]}`), &in))
	fieldErrors, err := in.Validate(ctx, db, false)
	require.NoError(t, err)
	assert.Equal(t, serializer.FieldErrors{
		"email":  {"Enter a valid email address."},
		"events": {`Invalid pk "5" - object does not exist.`},
	}, fieldErrors)

	in = serializer.AttendeeInput{}
	require.NoError(t, serializer.Decode(strings.NewReader(`{"name": "Tom"}`), &in))
	fieldErrors, err = in.Validate(ctx, db, true)
	require.NoError(t, err)
	assert.Empty(t, fieldErrors)
	assert.Nil(t, in.EventIDs())

	in = serializer.AttendeeInput{}
	require.NoError(t, serializer.Decode(strings.NewReader(`{"events": []}`), &in))
	fieldErrors, err = in.Validate(ctx, db, true)
	require.NoError(t, err)
	assert.Empty(t, fieldErrors)
	assert.NotNil(t, in.EventIDs())
	assert.Empty(t, in.EventIDs())
}

func TestEventRecords(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	eventModel := &model.Event{Name: "Expo", Location: "Hall 3", Date: time.Now()}
	require.NoError(t, eventModel.Insert(ctx, db))
	attendeeModel := &model.Attendee{Name: "Kim", Email: "kim@example.com"}
	require.NoError(t, attendeeModel.Insert(ctx, db, []int64{eventModel.ID}))

	record, err := serializer.EventRecordOf(ctx, db, eventModel)
	require.NoError(t, err)
	assert.Equal(t, 1, record.AttendeesCount)
	assert.NotNil(t, record.Tasks)

	raw, err := json.Marshal(record)
	require.NoError(t, err)
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{"id", "name", "description", "date", "location", "tasks", "attendees_count", "created_at", "updated_at"} {
		assert.Contains(t, fields, key)
	}
	assert.Len(t, fields, 9)
}

func jsonID(id int64) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}

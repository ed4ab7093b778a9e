package validation

import (
	"math"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestValidator() *Validator {
	return New(func(id string) bool { return uuid.Validate(id) == nil }, func() time.Time { return fixedNow })
}

func messages(errs Errors) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Msg
	}
	return out
}

func TestCreateTask(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name string
		body Fields
		want []string
	}{
		{
			name: "minimal",
			body: Fields{"taskName": "ABC", "dueDate": "2025-01-01"},
		},
		{
			name: "short name",
			body: Fields{"taskName": "AB", "dueDate": "2025-01-01"},
			want: []string{MsgTaskNameLength},
		},
		{
			name: "name padded with spaces is trimmed first",
			body: Fields{"taskName": "  AB  ", "dueDate": "2025-01-01"},
			want: []string{MsgTaskNameLength},
		},
		{
			name: "missing required fields",
			body: Fields{},
			want: []string{MsgTaskNameRequired, MsgTaskNameLength, MsgDueDateRequired, MsgInvalidDate},
		},
		{
			name: "null counts as missing",
			body: Fields{"taskName": "ABC", "dueDate": nil},
			want: []string{MsgDueDateRequired, MsgInvalidDate},
		},
		{
			name: "due date in the past",
			body: Fields{"taskName": "ABC", "dueDate": "2024-05-31"},
			want: []string{MsgDueDateFuture},
		},
		{
			name: "garbage date",
			body: Fields{"taskName": "ABC", "dueDate": "tomorrow"},
			want: []string{MsgInvalidDate},
		},
		{
			name: "start after due",
			body: Fields{"taskName": "ABC", "dueDate": "2025-01-01", "startDate": "2025-01-02"},
			want: []string{MsgStartBeforeDue},
		},
		{
			name: "start equal to due",
			body: Fields{"taskName": "ABC", "dueDate": "2025-01-01", "startDate": "2025-01-01"},
			want: []string{MsgStartBeforeDue},
		},
		{
			name: "enums",
			body: Fields{"taskName": "ABC", "dueDate": "2025-01-01", "priority": "critical", "status": "done"},
			want: []string{MsgInvalidPriority, MsgInvalidStatus},
		},
		{
			name: "description too long",
			body: Fields{"taskName": "ABC", "dueDate": "2025-01-01", "description": strings.Repeat("x", 501)},
			want: []string{MsgDescriptionLong},
		},
		{
			name: "tags not an array",
			body: Fields{"taskName": "ABC", "dueDate": "2025-01-01", "tags": "work"},
			want: []string{MsgTagsArray},
		},
		{
			name: "tag too long",
			body: Fields{"taskName": "ABC", "dueDate": "2025-01-01", "tags": []any{"ok", strings.Repeat("t", 31)}},
			want: []string{MsgInvalidTag},
		},
		{
			name: "tag not a string",
			body: Fields{"taskName": "ABC", "dueDate": "2025-01-01", "tags": []any{float64(1)}},
			want: []string{MsgInvalidTag},
		},
		{
			name: "non-string values fail type guards",
			body: Fields{"taskName": float64(12345), "dueDate": float64(1), "priority": true, "status": []any{"pending"}},
			want: []string{MsgTaskNameLength, MsgInvalidDate, MsgInvalidPriority, MsgInvalidStatus},
		},
		{
			name: "tag element null",
			body: Fields{"taskName": "ABC", "dueDate": "2025-01-01", "tags": []any{"ok", nil}},
			want: []string{MsgInvalidTag},
		},
		{
			name: "multibyte name counts characters",
			body: Fields{"taskName": "日本語", "dueDate": "2025-01-01", "tags": []any{strings.Repeat("é", 30)}},
		},
		{
			name: "every violation is reported",
			body: Fields{"taskName": "AB", "dueDate": "2020-01-01", "priority": "x"},
			want: []string{MsgTaskNameLength, MsgDueDateFuture, MsgInvalidPriority},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.CreateTask(tt.body)
			if len(tt.want) == 0 {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.want, messages(errs))
		})
	}
}

func TestCreateTask_ErrorShape(t *testing.T) {
	errs := newTestValidator().CreateTask(Fields{"taskName": "AB", "dueDate": "2025-01-01"})
	require.Len(t, errs, 1)
	assert.Equal(t, FieldError{
		Type:     "field",
		Value:    "AB",
		Msg:      MsgTaskNameLength,
		Path:     FieldTaskName,
		Location: LocationBody,
	}, errs[0])
}

func TestCreateTask_TrimsInPlace(t *testing.T) {
	body := Fields{"taskName": "  Write report ", "description": " draft ", "dueDate": "2025-01-01"}
	require.Empty(t, newTestValidator().CreateTask(body))

	name, _ := body.String(FieldTaskName)
	desc, _ := body.String(FieldDescription)
	assert.Equal(t, "Write report", name)
	assert.Equal(t, "draft", desc)
}

func TestUpdateTask(t *testing.T) {
	v := newTestValidator()
	id := uuid.NewString()

	assert.Empty(t, v.UpdateTask(id, Fields{}))
	assert.Empty(t, v.UpdateTask(id, Fields{"status": "completed"}))
	assert.Empty(t, v.UpdateTask(id, Fields{"startDate": "2030-01-01"}))

	errs := v.UpdateTask("not-an-id", Fields{"taskName": "AB"})
	assert.Equal(t, []string{MsgInvalidTaskID, MsgTaskNameLength}, messages(errs))
	assert.Equal(t, LocationParams, errs[0].Location)

	errs = v.UpdateTask(id, Fields{"dueDate": "2025-01-01", "startDate": "2025-01-02"})
	assert.Equal(t, []string{MsgStartBeforeDue}, messages(errs))

	body := Fields{"taskName": "  renamed  "}
	require.Empty(t, v.UpdateTask(id, body))
	assert.Equal(t, "renamed", body[FieldTaskName])
	assert.NotContains(t, body, FieldID)
}

func TestTaskQuery(t *testing.T) {
	v := newTestValidator()

	fields, errs := v.TaskQuery(url.Values{
		"status":    {"pending"},
		"sortBy":    {"priority"},
		"sortOrder": {"desc"},
		"page":      {"2"},
		"limit":     {"100"},
	})
	assert.Empty(t, errs)
	page, ok := fields.Int(FieldPage)
	assert.True(t, ok)
	assert.Equal(t, 2, page)

	_, errs = v.TaskQuery(url.Values{
		"status":    {"done"},
		"priority":  {"critical"},
		"sortBy":    {"taskName"},
		"sortOrder": {"up"},
		"page":      {"0"},
		"limit":     {"101"},
	})
	assert.Equal(t, []string{
		MsgInvalidStatus,
		MsgInvalidPriority,
		MsgInvalidSortField,
		MsgInvalidSortOrder,
		MsgInvalidPage,
		MsgInvalidLimit,
	}, messages(errs))

	_, errs = v.TaskQuery(url.Values{"limit": {"ten"}})
	assert.Equal(t, []string{MsgInvalidLimit}, messages(errs))

	_, errs = v.TaskQuery(url.Values{"page": {"-1"}, "limit": {"2.5"}})
	assert.Equal(t, []string{MsgInvalidPage, MsgInvalidLimit}, messages(errs))

	_, errs = v.TaskQuery(url.Values{"page": {"99999999999999999999"}})
	assert.Equal(t, []string{MsgInvalidPage}, messages(errs))

	fields, errs = v.TaskQuery(url.Values{"page": {"9223372036854775807"}})
	assert.Empty(t, errs)
	page, ok = fields.Int(FieldPage)
	assert.True(t, ok)
	assert.Equal(t, math.MaxInt64, page)
}

func TestTaskID(t *testing.T) {
	v := newTestValidator()
	assert.Empty(t, v.TaskID(uuid.NewString()))
	assert.Equal(t, []string{MsgInvalidTaskID}, messages(v.TaskID("123")))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2025-01-01", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"2025-01-01T10:30", time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC), true},
		{"2025-01-01T10:30:15", time.Date(2025, 1, 1, 10, 30, 15, 0, time.UTC), true},
		{"2025-01-01T10:30:15.250Z", time.Date(2025, 1, 1, 10, 30, 15, 250_000_000, time.UTC), true},
		{"2025-01-01T12:00:00+02:00", time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), true},
		{"2025-01-01T12:00:00+0100", time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC), true},
		{"2025-01-01T12:00:00.5-0130", time.Date(2025, 1, 1, 13, 30, 0, 500_000_000, time.UTC), true},
		{"2025-01-01T12:00Z", time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), true},
		{"20250101", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"20250101T103015Z", time.Date(2025, 1, 1, 10, 30, 15, 0, time.UTC), true},
		{"20250101T103015+0200", time.Date(2025, 1, 1, 8, 30, 15, 0, time.UTC), true},
		{"01/02/2025", time.Time{}, false},
		{" 2030-01-01 ", time.Time{}, false},
		{"2030-01-01\n", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestFieldsStrings(t *testing.T) {
	fields := Fields{"tags": []any{" work ", "home"}}
	tags, ok := fields.Strings(FieldTags)
	require.True(t, ok)
	assert.Equal(t, []string{"work", "home"}, tags)

	_, ok = Fields{"tags": []any{1.0}}.Strings(FieldTags)
	assert.False(t, ok)
}

package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusAccepted).
		Body([]byte("test")).
		Write(w)

	if w.Code != http.StatusAccepted {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusAccepted)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger set without triggers")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerRecordsChanged("create", "abc", 3).
		TriggerFormReset().
		TriggerSuccessNotification("Expense saved").
		Write(w)

	var triggers map[string]json.RawMessage
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	for _, name := range []string{EventRecordsChanged, EventFormReset, EventShowNotification} {
		if _, ok := triggers[name]; !ok {
			t.Errorf("missing trigger %q", name)
		}
	}

	var changed struct {
		Op    string `json:"op"`
		ID    string `json:"id"`
		Count int    `json:"count"`
	}
	if err := json.Unmarshal(triggers[EventRecordsChanged], &changed); err != nil {
		t.Fatal(err)
	}
	if changed.Op != "create" || changed.ID != "abc" || changed.Count != 3 {
		t.Errorf("records:changed = %+v", changed)
	}
	if !strings.Contains(string(triggers[EventShowNotification]), `"type":"success"`) {
		t.Errorf("notification = %s", triggers[EventShowNotification])
	}
}

func TestErrorResponseEscapes(t *testing.T) {
	w := httptest.NewRecorder()
	NotFoundError(`<b>gone</b>`).Write(w)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "<b>") {
		t.Errorf("body not escaped: %s", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(w.Header().Get("HX-Trigger"), `"type":"error"`) {
		t.Error("error notification missing")
	}
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sitzungslab/minutes/api"
	"github.com/sitzungslab/minutes/diarization"
	"github.com/sitzungslab/minutes/llm"
	"github.com/sitzungslab/minutes/logger"
	"github.com/sitzungslab/minutes/resilience"
	"github.com/sitzungslab/minutes/transcription"
)

// --- fakes ---

type fakeTranscriber struct {
	result *transcription.Result
	err    error

	// unavailableProbes makes the first N availability checks fail.
	unavailableProbes int
}

func (f *fakeTranscriber) Name() string { return "fake-whisper" }
func (f *fakeTranscriber) IsAvailable(_ context.Context) bool {
	if f.unavailableProbes > 0 {
		f.unavailableProbes--
		return false
	}
	return true
}
func (f *fakeTranscriber) Transcribe(_ context.Context, _ transcription.Request) (*transcription.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeDiarizer struct {
	result *diarization.Result
	err    error
}

func (f *fakeDiarizer) Name() string                       { return "fake-pyannote" }
func (f *fakeDiarizer) IsAvailable(_ context.Context) bool { return true }
func (f *fakeDiarizer) Diarize(_ context.Context, _ diarization.Request) (*diarization.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeChat struct {
	content string
	err     error
	lastReq llm.ChatRequest
}

func (f *fakeChat) Name() string                       { return "fake-ollama" }
func (f *fakeChat) IsAvailable(_ context.Context) bool { return true }
func (f *fakeChat) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{Content: f.content, Model: req.Model}, nil
}

// --- setup ---

func newTestHandler(t *testing.T, tr *fakeTranscriber, di *fakeDiarizer, ch *fakeChat) (*Handler, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := Config{UploadDir: t.TempDir()}
	cfg.ApplyDefaults()

	llmCfg := llm.Config{}
	llmCfg.ApplyDefaults()

	if tr == nil {
		tr = &fakeTranscriber{result: &transcription.Result{}}
	}
	if di == nil {
		di = &fakeDiarizer{result: &diarization.Result{}}
	}
	if ch == nil {
		ch = &fakeChat{content: "Protokoll"}
	}

	h := NewHandler(cfg, llmCfg, diarization.Config{}, tr, di, ch, nil)
	h.SetReady(true)

	engine := gin.New()
	h.Register(engine)
	return h, engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func uploadFile(t *testing.T, engine *gin.Engine, path, field, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func errorDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body api.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body.Detail
}

func waitForJob(t *testing.T, h *Handler, jobID string) api.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := h.jobs.Snapshot(jobID)
		if ok && job.Status.IsTerminal() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not reach a terminal state")
	return api.Job{}
}

// --- tests ---

func TestHealthNotReady(t *testing.T) {
	h, engine := newTestHandler(t, nil, nil, nil)
	h.SetReady(false)

	w := doJSON(t, engine, http.MethodGet, "/health", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if got := errorDetail(t, w); got != "Models not loaded yet - server starting up" {
		t.Errorf("detail = %q", got)
	}
}

func TestHealthReady(t *testing.T) {
	_, engine := newTestHandler(t, nil, nil, nil)

	w := doJSON(t, engine, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v", body["status"])
	}
}

func TestRootReportsNameAndVersion(t *testing.T) {
	_, engine := newTestHandler(t, nil, nil, nil)

	w := doJSON(t, engine, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["name"] != "minutes" {
		t.Errorf("name = %v", body["name"])
	}
	if body["version"] == "" || body["build"] == "" {
		t.Errorf("missing build info: %v", body)
	}
}

func TestWarmUpRetriesUntilBackendsAvailable(t *testing.T) {
	h, _ := newTestHandler(t, &fakeTranscriber{
		result:            &transcription.Result{},
		unavailableProbes: 2,
	}, nil, nil)
	h.SetReady(false)
	h.warmRetry = resilience.RetryConfig{
		MaxAttempts:    5,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		BackoffFactor:  1,
	}

	h.WarmUp(context.Background())

	if !h.ready.Load() {
		t.Error("expected handler to become ready after backends recover")
	}
}

func TestWarmUpGivesUpWhenBackendStaysDown(t *testing.T) {
	h, _ := newTestHandler(t, &fakeTranscriber{
		result:            &transcription.Result{},
		unavailableProbes: 100,
	}, nil, nil)
	h.SetReady(false)
	h.warmRetry = resilience.RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		BackoffFactor:  1,
	}

	h.WarmUp(context.Background())

	if h.ready.Load() {
		t.Error("handler must not report ready while a backend is down")
	}
}

func TestTranscribeRejectsWhenNotReady(t *testing.T) {
	h, engine := newTestHandler(t, nil, nil, nil)
	h.SetReady(false)

	w := uploadFile(t, engine, "/api/transcribe", "audio", "rec.mp3", "audio/mpeg", []byte("data"))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if got := errorDetail(t, w); !strings.Contains(got, "Modelle werden geladen") {
		t.Errorf("detail = %q", got)
	}
}

func TestTranscribeRejectsInvalidFileType(t *testing.T) {
	_, engine := newTestHandler(t, nil, nil, nil)

	w := uploadFile(t, engine, "/api/transcribe", "audio", "notes.txt", "text/plain", []byte("hi"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := errorDetail(t, w); got != "Ungültiger Dateityp. Erlaubt: MP3, WAV, M4A" {
		t.Errorf("detail = %q", got)
	}
}

func TestTranscribeAcceptsByExtension(t *testing.T) {
	tr := &fakeTranscriber{result: &transcription.Result{
		Segments: []transcription.Segment{{Start: 0, End: 1, Text: "Hallo"}},
	}}
	di := &fakeDiarizer{result: &diarization.Result{
		Turns:       []diarization.Turn{{Speaker: "SPEAKER_00", Start: 0, End: 1}},
		NumSpeakers: 1,
	}}
	h, engine := newTestHandler(t, tr, di, nil)

	// Browsers sometimes send application/octet-stream for m4a files.
	w := uploadFile(t, engine, "/api/transcribe", "audio", "rec.m4a", "application/octet-stream", []byte("data"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var job api.Job
	if err := json.Unmarshal(w.Body.Bytes(), &job); err != nil {
		t.Fatal(err)
	}
	if job.Status != api.StatusPending {
		t.Errorf("status = %q, want pending", job.Status)
	}
	waitForJob(t, h, job.JobID)
}

func TestTranscribeFullLifecycle(t *testing.T) {
	tr := &fakeTranscriber{result: &transcription.Result{
		Segments: []transcription.Segment{
			{Start: 0, End: 2, Text: "Guten Abend"},
			{Start: 2, End: 4, Text: "zur Sitzung"},
			{Start: 4, End: 6, Text: "Danke"},
		},
		Duration: 6,
	}}
	di := &fakeDiarizer{result: &diarization.Result{
		Turns: []diarization.Turn{
			{Speaker: "SPEAKER_00", Start: 0, End: 4},
			{Speaker: "SPEAKER_01", Start: 4, End: 6},
		},
		NumSpeakers: 2,
	}}
	h, engine := newTestHandler(t, tr, di, nil)

	w := uploadFile(t, engine, "/api/transcribe", "audio", "sitzung.mp3", "audio/mpeg", []byte("audio-bytes"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var started api.Job
	if err := json.Unmarshal(w.Body.Bytes(), &started); err != nil {
		t.Fatal(err)
	}
	if started.Message != "Transkription gestartet" {
		t.Errorf("message = %q", started.Message)
	}

	done := waitForJob(t, h, started.JobID)
	if done.Status != api.StatusCompleted {
		t.Fatalf("status = %q, error %q", done.Status, done.Error)
	}
	if done.Progress != 100 {
		t.Errorf("progress = %d, want 100", done.Progress)
	}

	// Consecutive same-speaker segments merge into one line.
	if len(done.Transcript) != 2 {
		t.Fatalf("transcript lines = %d, want 2", len(done.Transcript))
	}
	if done.Transcript[0].Speaker != "SPEAKER_00" || done.Transcript[0].Text != "Guten Abend zur Sitzung" {
		t.Errorf("line 0 = %+v", done.Transcript[0])
	}
	if done.Transcript[1].Speaker != "SPEAKER_01" {
		t.Errorf("line 1 = %+v", done.Transcript[1])
	}

	// The status endpoint returns the same job with a playback URL.
	sw := doJSON(t, engine, http.MethodGet, "/api/transcribe/"+started.JobID, nil)
	if sw.Code != http.StatusOK {
		t.Fatalf("status endpoint = %d", sw.Code)
	}
	var polled api.Job
	if err := json.Unmarshal(sw.Body.Bytes(), &polled); err != nil {
		t.Fatal(err)
	}
	if polled.AudioURL != "/api/audio/"+started.JobID {
		t.Errorf("audio_url = %q", polled.AudioURL)
	}
}

func TestTranscribeFailureSetsGermanError(t *testing.T) {
	tr := &fakeTranscriber{err: errors.New("whisper sidecar unreachable")}
	h, engine := newTestHandler(t, tr, nil, nil)

	w := uploadFile(t, engine, "/api/transcribe", "audio", "rec.mp3", "audio/mpeg", []byte("data"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var started api.Job
	if err := json.Unmarshal(w.Body.Bytes(), &started); err != nil {
		t.Fatal(err)
	}

	done := waitForJob(t, h, started.JobID)
	if done.Status != api.StatusFailed {
		t.Fatalf("status = %q, want failed", done.Status)
	}
	if done.Error != "whisper sidecar unreachable" {
		t.Errorf("error = %q", done.Error)
	}
	if !strings.HasPrefix(done.Message, "Fehler: ") {
		t.Errorf("message = %q", done.Message)
	}
}

func TestJobStatusNotFound(t *testing.T) {
	_, engine := newTestHandler(t, nil, nil, nil)

	w := doJSON(t, engine, http.MethodGet, "/api/transcribe/unknown-id", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if got := errorDetail(t, w); got != "Job nicht gefunden" {
		t.Errorf("detail = %q", got)
	}
}

func TestServeAudioRangeRequest(t *testing.T) {
	tr := &fakeTranscriber{result: &transcription.Result{
		Segments: []transcription.Segment{{Start: 0, End: 1, Text: "Hallo"}},
	}}
	h, engine := newTestHandler(t, tr, nil, nil)

	audio := []byte("0123456789abcdef")
	w := uploadFile(t, engine, "/api/transcribe", "audio", "rec.mp3", "audio/mpeg", audio)
	var started api.Job
	if err := json.Unmarshal(w.Body.Bytes(), &started); err != nil {
		t.Fatal(err)
	}
	waitForJob(t, h, started.JobID)

	req := httptest.NewRequest(http.MethodGet, "/api/audio/"+started.JobID, nil)
	req.Header.Set("Range", "bytes=4-7")
	rw := httptest.NewRecorder()
	engine.ServeHTTP(rw, req)

	if rw.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", rw.Code)
	}
	if got := rw.Body.String(); got != "4567" {
		t.Errorf("body = %q", got)
	}
	if cr := rw.Header().Get("Content-Range"); cr != "bytes 4-7/16" {
		t.Errorf("Content-Range = %q", cr)
	}
	if ct := rw.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestServeAudioUnknownJob(t *testing.T) {
	_, engine := newTestHandler(t, nil, nil, nil)

	w := doJSON(t, engine, http.MethodGet, "/api/audio/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestSummarizeEmptyLines(t *testing.T) {
	_, engine := newTestHandler(t, nil, nil, nil)

	w := doJSON(t, engine, http.MethodPost, "/api/summarize", api.SummarizeRequest{
		TopTitle: "TOP 1",
		Lines:    []api.TranscriptLine{},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSummarizeLogsDurationInMilliseconds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "info", Format: "json"}, "test", &buf)

	cfg := Config{UploadDir: t.TempDir()}
	cfg.ApplyDefaults()
	llmCfg := llm.Config{}
	llmCfg.ApplyDefaults()

	h := NewHandler(cfg, llmCfg, diarization.Config{},
		&fakeTranscriber{result: &transcription.Result{}},
		&fakeDiarizer{result: &diarization.Result{}},
		&fakeChat{content: "Protokoll"}, log)
	h.SetReady(true)
	engine := gin.New()
	h.Register(engine)

	w := doJSON(t, engine, http.MethodPost, "/api/summarize", api.SummarizeRequest{
		TopTitle: "Haushalt 2026",
		Lines:    []api.TranscriptLine{{Speaker: "SPEAKER_00", Text: "Ich eröffne die Sitzung."}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var found bool
	for _, line := range strings.Split(buf.String(), "\n") {
		if !strings.Contains(line, "Summary generated") {
			continue
		}
		found = true
		var entry map[string]json.RawMessage
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("unmarshal log line: %v", err)
		}
		raw, ok := entry[logger.FieldDuration]
		if !ok {
			t.Fatalf("log line missing %s: %s", logger.FieldDuration, line)
		}
		// Milliseconds encode as a whole number; fractional seconds
		// would carry a decimal point or exponent.
		if bytes.ContainsAny(raw, ".eE") {
			t.Errorf("%s = %s, want whole milliseconds", logger.FieldDuration, raw)
		}
	}
	if !found {
		t.Fatal("no summary log line emitted")
	}
}

func TestSummarizeSuccess(t *testing.T) {
	ch := &fakeChat{content: "  Der Rat beschließt einstimmig.  "}
	_, engine := newTestHandler(t, nil, nil, ch)

	w := doJSON(t, engine, http.MethodPost, "/api/summarize", api.SummarizeRequest{
		TopTitle: "Haushalt 2026",
		Lines: []api.TranscriptLine{
			{Speaker: "SPEAKER_00", Text: "Ich eröffne die Sitzung.", Start: 0, End: 2},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp api.SummarizeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Summary != "Der Rat beschließt einstimmig." {
		t.Errorf("summary = %q", resp.Summary)
	}

	if ch.lastReq.Model != llm.DefaultModel {
		t.Errorf("model = %q, want default", ch.lastReq.Model)
	}
	if len(ch.lastReq.Messages) != 2 {
		t.Fatalf("messages = %d, want system+user", len(ch.lastReq.Messages))
	}
	if !strings.Contains(ch.lastReq.Messages[1].Content, "Haushalt 2026") {
		t.Errorf("user prompt missing topic: %q", ch.lastReq.Messages[1].Content)
	}
	if !strings.Contains(ch.lastReq.Messages[1].Content, "SPEAKER_00: Ich eröffne die Sitzung.") {
		t.Errorf("user prompt missing transcript: %q", ch.lastReq.Messages[1].Content)
	}
}

func TestSummarizeModelOverride(t *testing.T) {
	ch := &fakeChat{content: "ok"}
	_, engine := newTestHandler(t, nil, nil, ch)

	w := doJSON(t, engine, http.MethodPost, "/api/summarize", api.SummarizeRequest{
		TopTitle: "TOP 1",
		Lines:    []api.TranscriptLine{{Speaker: "S", Text: "x"}},
		Model:    "llama3:70b",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ch.lastReq.Model != "llama3:70b" {
		t.Errorf("model = %q", ch.lastReq.Model)
	}
}

func TestSummarizeChatError(t *testing.T) {
	ch := &fakeChat{err: errors.New("model timeout")}
	_, engine := newTestHandler(t, nil, nil, ch)

	w := doJSON(t, engine, http.MethodPost, "/api/summarize", api.SummarizeRequest{
		TopTitle: "TOP 1",
		Lines:    []api.TranscriptLine{{Speaker: "S", Text: "x"}},
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if got := errorDetail(t, w); got != "Fehler bei der Zusammenfassung: model timeout" {
		t.Errorf("detail = %q", got)
	}
}

func TestExtractTOPsRejectsNonPDF(t *testing.T) {
	_, engine := newTestHandler(t, nil, nil, nil)

	w := uploadFile(t, engine, "/api/extract-tops", "pdf", "agenda.docx", "application/msword", []byte("x"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := errorDetail(t, w); got != "Nur PDF-Dateien sind erlaubt" {
		t.Errorf("detail = %q", got)
	}
}

func TestTelemetryAcceptsReport(t *testing.T) {
	_, engine := newTestHandler(t, nil, nil, nil)

	w := doJSON(t, engine, http.MethodPost, "/api/telemetry/session-complete", api.SessionReport{
		JobID:                        "job-1",
		TopCount:                     3,
		ProtocolCharCount:            1200,
		SummarizationDurationSeconds: 42.5,
		LLMModel:                     "qwen3:8b",
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestTelemetryRequiresJobID(t *testing.T) {
	_, engine := newTestHandler(t, nil, nil, nil)

	w := doJSON(t, engine, http.MethodPost, "/api/telemetry/session-complete", map[string]any{
		"top_count": 3,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

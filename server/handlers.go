package server

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sitzungslab/minutes/api"
	"github.com/sitzungslab/minutes/diarization"
	"github.com/sitzungslab/minutes/extract"
	"github.com/sitzungslab/minutes/llm"
	"github.com/sitzungslab/minutes/logger"
	"github.com/sitzungslab/minutes/provider"
	"github.com/sitzungslab/minutes/resilience"
	"github.com/sitzungslab/minutes/transcription"
	"github.com/sitzungslab/minutes/util"
	"github.com/sitzungslab/minutes/version"
)

// allowed upload content types and extensions for audio recordings.
var (
	audioContentTypes = map[string]bool{
		"audio/mpeg":  true,
		"audio/wav":   true,
		"audio/mp4":   true,
		"audio/x-m4a": true,
		"audio/mp3":   true,
	}
	audioExtensions = map[string]bool{
		".mp3": true,
		".wav": true,
		".m4a": true,
	}
)

// Handler wires the HTTP routes to the processing backends.
type Handler struct {
	cfg  Config
	jobs *jobStore
	log  *logger.Logger

	transcriber transcription.Provider
	diarizer    diarization.Provider
	chat        llm.Provider
	extractor   *extract.Extractor

	llmConfig  llm.Config
	diarConfig diarization.Config

	// ready flips once the backends answered their first availability
	// probe. Until then upload endpoints return 503.
	ready atomic.Bool

	// warmRetry drives the per-backend warm-up probe.
	warmRetry resilience.RetryConfig
}

// NewHandler builds the route handler for the given backends.
func NewHandler(cfg Config, llmCfg llm.Config, diarCfg diarization.Config, transcriber transcription.Provider, diarizer diarization.Provider, chat llm.Provider, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Handler{
		cfg:         cfg,
		jobs:        newJobStore(cfg.JobMaxAge, cfg.JobMaxCount, log),
		log:         log.WithComponent("handler"),
		transcriber: transcriber,
		diarizer:    diarizer,
		chat:        chat,
		extractor:   extract.New(chat, log),
		llmConfig:   llmCfg,
		diarConfig:  diarCfg,
		warmRetry: resilience.RetryConfig{
			// Flat 5 second interval, bounded at roughly an hour so a
			// dead sidecar surfaces in the logs instead of an endless
			// warn loop.
			MaxAttempts:    720,
			InitialBackoff: 5 * time.Second,
			MaxBackoff:     5 * time.Second,
			BackoffFactor:  1,
		},
	}
}

// Register attaches all routes to the engine.
func (h *Handler) Register(engine *gin.Engine) {
	engine.GET("/", h.root)
	engine.GET("/health", h.health)

	apiGroup := engine.Group("/api")
	apiGroup.POST("/transcribe", h.startTranscription)
	apiGroup.GET("/transcribe/:id", h.jobStatus)
	apiGroup.GET("/audio/:id", h.serveAudio)
	apiGroup.POST("/summarize", h.summarize)
	apiGroup.POST("/extract-tops", h.extractTOPs)
	apiGroup.POST("/telemetry/session-complete", h.telemetry)
}

// WarmUp probes the backends until all respond, then marks the handler
// ready. Meant to run in its own goroutine at startup.
func (h *Handler) WarmUp(ctx context.Context) {
	probes := []struct {
		name  string
		check func(context.Context) bool
	}{
		{h.transcriber.Name(), h.transcriber.IsAvailable},
		{h.diarizer.Name(), h.diarizer.IsAvailable},
		{h.chat.Name(), h.chat.IsAvailable},
	}

	for _, p := range probes {
		cfg := h.warmRetry
		cfg.OnRetry = func(attempt int, _ error, _ time.Duration) {
			h.log.Warn("Backend not ready, retrying", logger.Fields(
				"provider", p.name,
				"attempt", attempt,
			))
		}
		err := resilience.RetryFunc(ctx, cfg, func() error {
			if !p.check(ctx) {
				return fmt.Errorf("%s not reachable", p.name)
			}
			return nil
		})
		if err != nil {
			h.log.Error("Backend never became available", logger.ErrorFields("warmup", err))
			return
		}
		h.log.Info("Backend available", logger.Fields("provider", p.name))
	}

	h.ready.Store(true)
	h.log.Info("All backends available, accepting work")
}

// SetReady overrides the readiness state. Used by tests and by setups
// that skip the warm-up probe.
func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// --- routes ---

func (h *Handler) root(c *gin.Context) {
	info := version.Get()
	c.JSON(http.StatusOK, gin.H{
		"name":    "minutes",
		"version": info.Version,
		"build":   info.String(),
	})
}

func (h *Handler) health(c *gin.Context) {
	if !h.ready.Load() {
		respondError(c, http.StatusServiceUnavailable, "Models not loaded yet - server starting up")
		return
	}
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"jobs":   h.jobs.Len(),
		"backends": gin.H{
			h.transcriber.Name(): backendStatus(ctx, h.transcriber),
			h.diarizer.Name():    backendStatus(ctx, h.diarizer),
			h.chat.Name():        backendStatus(ctx, h.chat),
		},
	})
}

// backendStatus prefers a provider's detailed health report over the
// plain availability probe.
func backendStatus(ctx context.Context, p provider.Provider) string {
	if hc, ok := p.(provider.HealthChecker); ok {
		return hc.Health(ctx).Status.String()
	}
	if p.IsAvailable(ctx) {
		return provider.StatusHealthy.String()
	}
	return provider.StatusUnavailable.String()
}

func (h *Handler) startTranscription(c *gin.Context) {
	if !h.ready.Load() {
		respondError(c, http.StatusServiceUnavailable, "Server startet noch - Modelle werden geladen. Bitte warten.")
		return
	}

	file, err := c.FormFile("audio")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Keine Audiodatei hochgeladen")
		return
	}
	if !isAllowedAudio(file) {
		respondError(c, http.StatusBadRequest, "Ungültiger Dateityp. Erlaubt: MP3, WAV, M4A")
		return
	}

	h.jobs.Cleanup()

	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		h.log.Error("Failed to create upload dir", logger.ErrorFields("upload", err))
		respondError(c, http.StatusInternalServerError, "Upload fehlgeschlagen")
		return
	}

	jobID := h.jobs.Create("")

	// The job id prefixes the stored filename so cleanup can map files
	// back to jobs.
	filename := util.SanitizeString(filepath.Base(file.Filename))
	audioPath := filepath.Join(h.cfg.UploadDir, jobID+"_"+filename)
	if err := c.SaveUploadedFile(file, audioPath); err != nil {
		h.log.Error("Failed to store upload", logger.ErrorFields("upload", err))
		h.jobs.Fail(jobID, "Upload fehlgeschlagen")
		respondError(c, http.StatusInternalServerError, "Upload fehlgeschlagen")
		return
	}
	h.jobs.SetAudioPath(jobID, audioPath)

	go h.runTranscription(jobID, audioPath)

	c.JSON(http.StatusOK, api.Job{
		JobID:    jobID,
		Status:   api.StatusPending,
		Progress: 0,
		Message:  "Transkription gestartet",
	})
}

func (h *Handler) jobStatus(c *gin.Context) {
	if _, err := util.ValidateUUID("job_id", c.Param("id")); err != nil {
		respondError(c, http.StatusNotFound, "Job nicht gefunden")
		return
	}
	job, ok := h.jobs.Snapshot(c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound, "Job nicht gefunden")
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) serveAudio(c *gin.Context) {
	path, ok := h.jobs.AudioPath(c.Param("id"))
	if !ok || path == "" {
		respondError(c, http.StatusNotFound, "Job nicht gefunden")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		respondError(c, http.StatusNotFound, "Audio nicht mehr verfügbar")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		respondError(c, http.StatusNotFound, "Audio nicht mehr verfügbar")
		return
	}

	c.Header("Content-Type", audioMIMEType(path))
	// ServeContent handles Range requests (seeking in the player) and
	// conditional headers.
	http.ServeContent(c.Writer, c.Request, filepath.Base(path), info.ModTime(), f)
}

func (h *Handler) summarize(c *gin.Context) {
	var req api.SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Ungültige Anfrage: "+err.Error())
		return
	}
	if len(req.Lines) == 0 {
		respondError(c, http.StatusBadRequest, "Keine Zeilen zum Zusammenfassen")
		return
	}

	model := req.Model
	if model == "" {
		model = h.llmConfig.Model
	}

	transcript := llm.FormatTranscript(req.Lines)
	chatReq := llm.ChatRequest{
		Model:       model,
		Messages:    llm.SummaryMessages(req.SystemPrompt, req.TopTitle, transcript),
		Temperature: h.llmConfig.Temperature,
		MaxTokens:   h.llmConfig.MaxTokens,
	}

	start := time.Now()
	resp, err := h.chat.Chat(c.Request.Context(), chatReq)
	if err != nil {
		h.log.Error("Summarization failed", logger.ErrorFields("summarize", err))
		respondError(c, http.StatusInternalServerError, "Fehler bei der Zusammenfassung: "+err.Error())
		return
	}
	duration := time.Since(start)

	h.log.Info("Summary generated", logger.Fields(
		logger.FieldTopic, req.TopTitle,
		"model", model,
		logger.FieldDuration, duration.Milliseconds(),
	))

	c.JSON(http.StatusOK, api.SummarizeResponse{
		Summary:         strings.TrimSpace(resp.Content),
		DurationSeconds: duration.Seconds(),
	})
}

func (h *Handler) extractTOPs(c *gin.Context) {
	file, err := c.FormFile("pdf")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Keine PDF-Datei hochgeladen")
		return
	}
	if !isPDF(file) {
		respondError(c, http.StatusBadRequest, "Nur PDF-Dateien sind erlaubt")
		return
	}

	tmp, err := os.CreateTemp("", "tops-*.pdf")
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Upload fehlgeschlagen")
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	src, err := file.Open()
	if err != nil {
		tmp.Close()
		respondError(c, http.StatusInternalServerError, "Upload fehlgeschlagen")
		return
	}
	_, copyErr := io.Copy(tmp, src)
	src.Close()
	if closeErr := tmp.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		respondError(c, http.StatusInternalServerError, "Upload fehlgeschlagen")
		return
	}

	opts := extract.Options{
		Model:        c.PostForm("model"),
		SystemPrompt: c.PostForm("system_prompt"),
	}
	if opts.Model == "" {
		opts.Model = h.llmConfig.Model
	}
	tops, err := h.extractor.TOPsFromPDF(c.Request.Context(), tmpPath, opts)
	if err != nil {
		h.log.Error("TOP extraction failed", logger.ErrorFields("extract_tops", err))
		respondError(c, http.StatusInternalServerError, "Fehler bei der TOP-Extraktion: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, api.ExtractTOPsResponse{TOPs: tops})
}

func (h *Handler) telemetry(c *gin.Context) {
	var report api.SessionReport
	if err := c.ShouldBindJSON(&report); err != nil {
		respondError(c, http.StatusBadRequest, "Ungültige Anfrage: "+err.Error())
		return
	}

	h.log.Info("Session completed", logger.Fields(
		logger.FieldJobID, report.JobID,
		"top_count", report.TopCount,
		"protocol_chars", report.ProtocolCharCount,
		"summarization_seconds", report.SummarizationDurationSeconds,
		"model", report.LLMModel,
	))

	c.Status(http.StatusNoContent)
}

// --- transcription pipeline ---

// runTranscription drives one job through transcription, diarization
// and merge, updating progress as it goes. Runs in its own goroutine.
func (h *Handler) runTranscription(jobID, audioPath string) {
	ctx := context.Background()
	log := h.log.WithJob(jobID)

	fail := func(err error) {
		log.Error("Transcription failed", logger.ErrorFields("transcribe", err))
		h.jobs.Fail(jobID, err.Error())
	}

	h.jobs.SetProgress(jobID, 5, "Audio wird geladen...")
	if _, err := os.Stat(audioPath); err != nil {
		fail(err)
		return
	}

	h.jobs.SetProgress(jobID, 15, "Transkription läuft...")
	result, err := h.transcriber.Transcribe(ctx, transcription.Request{
		AudioPath: audioPath,
	})
	if err != nil {
		fail(err)
		return
	}
	log.Info("Transcription done", logger.Fields(
		"segments", len(result.Segments),
		"audio_seconds", result.Duration,
	))

	h.jobs.SetProgress(jobID, 65, "Sprechererkennung läuft...")
	diar, err := h.diarizer.Diarize(ctx, diarization.Request{
		AudioPath:   audioPath,
		MinSpeakers: h.diarConfig.MinSpeakers,
		MaxSpeakers: h.diarConfig.MaxSpeakers,
	})
	if err != nil {
		fail(err)
		return
	}
	log.Info("Diarization done", logger.Fields("speakers", diar.NumSpeakers))

	h.jobs.SetProgress(jobID, 85, "Segmente werden zusammengeführt...")
	labeled := transcription.AssignSpeakers(result.Segments, diar.Turns)

	h.jobs.SetProgress(jobID, 95, "Transkript wird erstellt...")
	lines := transcription.MergeLines(labeled)

	h.jobs.Complete(jobID, lines)
	log.Info("Job completed", logger.Fields("lines", len(lines)))
}

// --- helpers ---

func isAllowedAudio(file *multipart.FileHeader) bool {
	if audioContentTypes[file.Header.Get("Content-Type")] {
		return true
	}
	return audioExtensions[strings.ToLower(filepath.Ext(file.Filename))]
}

func isPDF(file *multipart.FileHeader) bool {
	if file.Header.Get("Content-Type") == "application/pdf" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(file.Filename), ".pdf")
}

func audioMIMEType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	default:
		return "audio/mpeg"
	}
}

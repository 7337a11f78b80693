package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speechkit/asr-service/cmd/server/internal/audit"
	"github.com/speechkit/asr-service/cmd/server/internal/config"
	"github.com/speechkit/asr-service/pkg/asr"
	"github.com/speechkit/asr-service/pkg/audio"
)

type fixedTranscriber struct {
	text string
}

func (f fixedTranscriber) TranscribeChunk(context.Context, *audio.Buffer, string) (string, error) {
	return f.text, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Env: "dev", Port: "8000"},
		ASR: config.ASRConfig{
			DefaultLanguage: "fr",
			ChunkSeconds:    30,
			MaxAudioMB:      10,
			MaxConcurrent:   2,
		},
	}
}

func transcribeRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := asr.NewEngine(fixedTranscriber{text: "bonjour tout le monde"})
	h := NewTranscribeHandler(engine, testConfig(), audit.NopLogger{}, nil)

	r := gin.New()
	r.POST("/transcribe", h.Handle)
	return r
}

// wavUpload 构造带 1 秒静音 WAV 的 multipart 请求体
func wavUpload(t *testing.T, filename string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	wav, err := audio.EncodeWAVBytes(&audio.Buffer{
		Samples:    make([]float32, audio.TargetSampleRate),
		SampleRate: audio.TargetSampleRate,
	})
	require.NoError(t, err)
	_, err = part.Write(wav)
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHandleTranscribeUpload(t *testing.T) {
	r := transcribeRouter(t)

	body, contentType := wavUpload(t, "meeting.wav", map[string]string{"language": "fr"})
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp transcribeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "fr", resp.Language)
	require.Len(t, resp.Segments, 1)
	assert.Equal(t, "bonjour tout le monde", resp.Segments[0].Text)
	assert.Equal(t, asr.DefaultSpeaker, resp.Segments[0].Speaker)
	assert.Equal(t, 0.0, resp.Segments[0].Start)
	assert.Equal(t, 1.0, resp.Segments[0].End)
}

func TestHandleTranscribeRejectsExtension(t *testing.T) {
	r := transcribeRouter(t)

	body, contentType := wavUpload(t, "meeting.ogg", nil)
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "extension")
}

func TestHandleTranscribeRejectsBadLanguage(t *testing.T) {
	r := transcribeRouter(t)

	body, contentType := wavUpload(t, "meeting.wav", map[string]string{"language": "not-a-lang-code!"})
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "language")
}

func TestHandleTranscribeRejectsBadChunk(t *testing.T) {
	r := transcribeRouter(t)

	for _, chunk := range []string{"0", "-3", "901", "abc"} {
		body, contentType := wavUpload(t, "meeting.wav", map[string]string{"chunk_length": chunk})
		req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "chunk_length=%s", chunk)
	}
}

func TestHandleTranscribeRequiresAudio(t *testing.T) {
	r := transcribeRouter(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("language", "fr"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "audio_url")
}

func TestHandleTranscribeFromURL(t *testing.T) {
	wav, err := audio.EncodeWAVBytes(&audio.Buffer{
		Samples:    make([]float32, audio.TargetSampleRate),
		SampleRate: audio.TargetSampleRate,
	})
	require.NoError(t, err)
	fileServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(wav)
	}))
	defer fileServer.Close()

	r := transcribeRouter(t)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("audio_url", fileServer.URL+"/remote.wav"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp transcribeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Segments, 1)
}

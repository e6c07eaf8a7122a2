package deepface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Represent(t *testing.T) {
	tests := []struct {
		name           string
		serverResponse interface{}
		serverStatus   int
		wantErr        error
		wantErrContain string
		validateResp   func(*testing.T, *RepresentResponse)
	}{
		{
			name: "successful response with single face",
			serverResponse: RepresentResponse{
				Results: []RepresentResult{
					{
						Embedding:  make([]float64, 128),
						FacialArea: FacialArea{X: 10, Y: 20, W: 100, H: 100},
					},
				},
			},
			serverStatus: http.StatusOK,
			validateResp: func(t *testing.T, resp *RepresentResponse) {
				require.NotNil(t, resp)
				require.Len(t, resp.Results, 1)
				assert.Len(t, resp.Results[0].Embedding, 128)
				assert.Equal(t, FacialArea{X: 10, Y: 20, W: 100, H: 100}, resp.Results[0].FacialArea)
			},
		},
		{
			name: "successful response with multiple faces",
			serverResponse: RepresentResponse{
				Results: []RepresentResult{
					{Embedding: make([]float64, 128), FacialArea: FacialArea{X: 10, Y: 20, W: 100, H: 100}},
					{Embedding: make([]float64, 128), FacialArea: FacialArea{X: 150, Y: 30, W: 90, H: 90}},
				},
			},
			serverStatus: http.StatusOK,
			validateResp: func(t *testing.T, resp *RepresentResponse) {
				assert.Len(t, resp.Results, 2)
			},
		},
		{
			name:           "face could not be detected",
			serverResponse: map[string]string{"error": "Face could not be detected. Please confirm that the picture is a face photo"},
			serverStatus:   http.StatusBadRequest,
			wantErr:        ErrNoFaceDetected,
		},
		{
			name:           "bad request 400",
			serverResponse: map[string]string{"error": "invalid image format"},
			serverStatus:   http.StatusBadRequest,
			wantErrContain: "status 400",
		},
		{
			name:           "server error 500",
			serverResponse: map[string]string{"error": "internal server error"},
			serverStatus:   http.StatusInternalServerError,
			wantErrContain: "status 500",
		},
		{
			name:           "invalid json response",
			serverResponse: "not a valid json",
			serverStatus:   http.StatusOK,
			wantErr:        ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/represent", r.URL.Path)
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var req RepresentRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
					assert.Equal(t, "aW1hZ2U=", req.Img)
					assert.Equal(t, "Facenet", req.Model)
					assert.True(t, req.EnforceDetection)
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.serverStatus)
				if s, ok := tt.serverResponse.(string); ok {
					_, _ = w.Write([]byte(s))
					return
				}
				_ = json.NewEncoder(w).Encode(tt.serverResponse)
			}))
			defer server.Close()

			config := DefaultConfig()
			config.BaseURL = server.URL
			client := NewClient(config)

			resp, err := client.Represent(context.Background(), "aW1hZ2U=")

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrContain != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrContain)
			default:
				require.NoError(t, err)
				tt.validateResp(t, resp)
			}
		})
	}
}

func TestClient_NoRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	config := DefaultConfig()
	config.BaseURL = server.URL
	client := NewClient(config)

	_, err := client.Represent(context.Background(), "aW1hZ2U=")

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	config := DefaultConfig()
	config.BaseURL = server.URL
	config.Timeout = 20 * time.Millisecond
	client := NewClient(config)

	_, err := client.Represent(context.Background(), "aW1hZ2U=")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "do request")
}

func TestClient_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/", r.URL.Path)
		_, _ = w.Write([]byte("Welcome to DeepFace API!"))
	}))
	defer server.Close()

	config := DefaultConfig()
	config.BaseURL = server.URL

	assert.NoError(t, NewClient(config).Ping(context.Background()))
}

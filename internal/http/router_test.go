package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"docuchunk/internal/config"
	"docuchunk/internal/service"
	"docuchunk/internal/service/mocks"
)

func testConfig() *config.Config {
	return &config.Config{
		AppName:       "docuchunk",
		AppVersion:    "0.1.0",
		FileMaxSizeMB: 1,
	}
}

func TestNewRouter(t *testing.T) {
	ctrl := gomock.NewController(t)

	deps := &Deps{
		DataService: mocks.NewMockDataService(ctrl),
		Config:      testConfig(),
	}

	router := NewRouter(deps)

	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		setupMock  func(*mocks.MockDataService)
		wantStatus int
	}{
		{
			name:       "GET welcome",
			method:     http.MethodGet,
			path:       "/api/v1/",
			setupMock:  func(m *mocks.MockDataService) {},
			wantStatus: http.StatusOK,
		},
		{
			name:   "GET health",
			method: http.MethodGet,
			path:   "/api/v1/health",
			setupMock: func(m *mocks.MockDataService) {
				m.EXPECT().Health(gomock.Any()).Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST upload exists",
			method:     http.MethodPost,
			path:       "/api/v1/data/upload/1",
			setupMock:  func(m *mocks.MockDataService) {},
			wantStatus: http.StatusBadRequest, // Not a multipart body, but route exists
		},
		{
			name:       "POST process exists",
			method:     http.MethodPost,
			path:       "/api/v1/data/process/1",
			setupMock:  func(m *mocks.MockDataService) {},
			wantStatus: http.StatusBadRequest, // Empty body, but route exists
		},
		{
			name:   "GET chunks",
			method: http.MethodGet,
			path:   "/api/v1/data/chunks/1",
			setupMock: func(m *mocks.MockDataService) {
				m.EXPECT().ListChunks(gomock.Any(), "1").Return(service.ChunksResponse{ProjectID: "1"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "GET upload method not allowed",
			method:     http.MethodGet,
			path:       "/api/v1/data/upload/1",
			setupMock:  func(m *mocks.MockDataService) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/v2/data",
			setupMock:  func(m *mocks.MockDataService) {},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := mocks.NewMockDataService(ctrl)
			tt.setupMock(mockService)

			router := NewRouter(&Deps{DataService: mockService, Config: testConfig()})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	ctrl := gomock.NewController(t)

	router := NewRouter(&Deps{
		DataService: mocks.NewMockDataService(ctrl),
		Config:      testConfig(),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/data/process/1", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// Check CORS headers are present
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Router should apply CORS middleware")
	}
}

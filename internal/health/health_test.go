package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/grpchealth"
	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-practice-reminder/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestReadyHandler(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus int
		wantHealth Status
	}{
		{
			name:       "no checks is healthy",
			checks:     nil,
			wantStatus: http.StatusOK,
			wantHealth: StatusHealthy,
		},
		{
			name: "all checks pass",
			checks: map[string]CheckFunc{
				"redis":     func(context.Context) error { return nil },
				"questions": func(context.Context) error { return nil },
			},
			wantStatus: http.StatusOK,
			wantHealth: StatusHealthy,
		},
		{
			name: "one failing check is unhealthy",
			checks: map[string]CheckFunc{
				"redis":     func(context.Context) error { return errors.New("connection refused") },
				"questions": func(context.Context) error { return nil },
			},
			wantStatus: http.StatusServiceUnavailable,
			wantHealth: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker("test")
			for name, fn := range tt.checks {
				checker.Register(name, fn)
			}

			router := gin.New()
			router.GET("/health/ready", checker.ReadyHandler())

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d", w.Code, tt.wantStatus)
			}

			var body HealthStatus
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Status != tt.wantHealth {
				t.Errorf("health: got %s, want %s", body.Status, tt.wantHealth)
			}
			if len(body.Checks) != len(tt.checks) {
				t.Errorf("checks: got %d, want %d", len(body.Checks), len(tt.checks))
			}
		})
	}
}

func TestGRPCChecker(t *testing.T) {
	healthy := NewChecker("test")
	unhealthy := NewChecker("test")
	unhealthy.Register("redis", func(context.Context) error { return errors.New("down") })

	tests := []struct {
		name    string
		checker *Checker
		service string
		want    grpchealth.Status
		wantErr bool
	}{
		{name: "server wide status", checker: healthy, service: "", want: grpchealth.StatusServing},
		{name: "reminder service", checker: healthy, service: ServiceName, want: grpchealth.StatusServing},
		{name: "failing dependency", checker: unhealthy, service: ServiceName, want: grpchealth.StatusNotServing},
		{name: "unknown service", checker: healthy, service: "other.Service", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &grpcChecker{checker: tt.checker}
			resp, err := g.Check(context.Background(), &grpchealth.CheckRequest{Service: tt.service})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Status != tt.want {
				t.Errorf("status: got %v, want %v", resp.Status, tt.want)
			}
		})
	}
}

func TestRedisCheck(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, cleanup := testutil.SetupRedisContainer(ctx, t)
	defer cleanup()

	checker := NewChecker("test")
	checker.Register("redis", RedisCheck(client))

	if status := checker.Check(ctx); status.Status != StatusHealthy {
		t.Errorf("status: got %+v", status)
	}
}

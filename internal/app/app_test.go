package app

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/provider"

	"github.com/glebarez/sqlite"
	"go.uber.org/goleak"
	"gorm.io/gorm"
)

type stubService struct {
	name     string
	startErr error
	stopped  atomic.Bool
	block    bool
}

func (s *stubService) Name() string { return s.name }

func (s *stubService) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	if s.block {
		<-ctx.Done()
	}
	return nil
}

func (s *stubService) Stop(ctx context.Context) error {
	s.stopped.Store(true)
	return nil
}

func TestRunnerStopsAllServicesOnStartError(t *testing.T) {
	defer goleak.VerifyNone(t)

	boom := errors.New("boom")
	failing := &stubService{name: "failing", startErr: boom}
	blocking := &stubService{name: "blocking", block: true}
	runner := NewRunner(failing, blocking)

	err := runner.Run(context.Background(), time.Second, nil)
	if !errors.Is(err, boom) || err.Error() != "failing: boom" {
		t.Fatalf("run error want failing: boom got %v", err)
	}
	if !failing.stopped.Load() || !blocking.stopped.Load() {
		t.Fatalf("all services should be stopped")
	}
	// 阻塞服务在 cancel 后退出
	time.Sleep(10 * time.Millisecond)
}

func TestRunnerReturnsNilOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	blocking := &stubService{name: "blocking", block: true}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if err := NewRunner(blocking).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("canceled run should return nil, got %v", err)
	}
	if !blocking.stopped.Load() {
		t.Fatalf("service should be stopped after cancel")
	}
	time.Sleep(10 * time.Millisecond)
}

func TestRunnerWithoutServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("empty runner should fail")
	}
	if err := RunWithOptions(nil, Options{}); err == nil {
		t.Fatalf("nil runner should fail")
	}
}

func newTestContainer(t *testing.T, cfg *config.Config) *provider.Container {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return provider.NewContainerWithDB(cfg, db, nil)
}

func TestBuildRunnerWithContainerModes(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: "0", Mode: "debug"}}
	container := newTestContainer(t, cfg)

	runner, err := BuildRunnerWithContainer(cfg, container, ModeAPI)
	if err != nil {
		t.Fatalf("api mode build failed: %v", err)
	}
	if len(runner.services) != 1 || runner.services[0].Name() != "http" {
		t.Fatalf("api mode should only run http service")
	}

	runner, err = BuildRunnerWithContainer(cfg, container, ModeAll)
	if err != nil {
		t.Fatalf("all mode build failed: %v", err)
	}
	if len(runner.services) != 1 {
		t.Fatalf("all mode without queue want 1 service got %d", len(runner.services))
	}

	if _, err := BuildRunnerWithContainer(cfg, container, ModeWorker); err == nil {
		t.Fatalf("worker mode without queue should fail")
	}
	if _, err := BuildRunnerWithContainer(cfg, container, "unknown"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
	if _, err := BuildRunnerWithContainer(cfg, nil, ModeAPI); err == nil {
		t.Fatalf("nil container should fail")
	}
}

func TestNormalizeOptionsDefaults(t *testing.T) {
	opts := normalizeOptions(Options{})
	if opts.Logger == nil {
		t.Fatalf("logger should default")
	}
	if opts.ShutdownTimeout != 10*time.Second {
		t.Fatalf("shutdown timeout want 10s got %s", opts.ShutdownTimeout)
	}
	if opts.Mode != ModeAll {
		t.Fatalf("mode want all got %s", opts.Mode)
	}
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{raw: "", want: ModeAll, ok: true},
		{raw: " API ", want: ModeAPI, ok: true},
		{raw: "worker", want: ModeWorker, ok: true},
		{raw: "admin", ok: false},
	}
	for _, tc := range cases {
		got, err := ParseMode(tc.raw)
		if (err == nil) != tc.ok || got != tc.want {
			t.Fatalf("mode %q want %q/%v got %q/%v", tc.raw, tc.want, tc.ok, got, err)
		}
	}
}

func TestStorefrontServiceDescribe(t *testing.T) {
	cfg := &config.Config{
		Server:     config.ServerConfig{Host: "127.0.0.1", Port: "0", Mode: "debug"},
		Storefront: config.StorefrontConfig{CurrencySymbol: "$"},
	}
	svc := NewStorefrontService(cfg, newTestContainer(t, cfg))

	fields := map[string]interface{}{}
	described := svc.Describe()
	for i := 0; i+1 < len(described); i += 2 {
		fields[described[i].(string)] = described[i+1]
	}
	if fields["addr"] != "127.0.0.1:0" || fields["selection_store"] != "memory" || fields["currency"] != "$" {
		t.Fatalf("unexpected describe fields: %+v", fields)
	}
	if fields["shipping_source"] == "" {
		t.Fatalf("shipping source should be reported")
	}
}

func TestStorefrontServiceServesUntilCanceled(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: "0", Mode: "debug"}}
	svc := NewStorefrontService(cfg, newTestContainer(t, cfg))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewRunner(svc).Run(ctx, time.Second, nil)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for svc.Addr() == "127.0.0.1:0" && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: time.Second}
	resp, err := client.Get("http://" + svc.Addr() + "/health")
	if err != nil {
		cancel()
		t.Fatalf("health request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status want 200 got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runner should stop cleanly, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not stop after cancel")
	}
}

package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/R3E-Network/payee_manager/internal/app/dao"
	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
	"github.com/R3E-Network/payee_manager/internal/app/manager"
	"github.com/R3E-Network/payee_manager/internal/config"
	"github.com/R3E-Network/payee_manager/internal/httputil"
	"github.com/R3E-Network/payee_manager/pkg/logger"
)

func quietLogger() *logger.Logger {
	log := logger.NewDefault("app-test")
	log.SetOutput(io.Discard)
	return log
}

func TestApplicationLocalData(t *testing.T) {
	application, err := New(nil, Stores{}, quietLogger())
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	if _, ok := application.Data.(*dao.Local); !ok {
		t.Fatalf("expected local data access, got %T", application.Data)
	}

	ctx := context.Background()
	if err := application.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer application.Stop(ctx)

	if _, err := application.Payees.Create(ctx, payee.Payee{PayeeName: "Acme", Address: payee.Address{City: "Denver", State: "CO"}}); err != nil {
		t.Fatalf("create payee: %v", err)
	}

	sess := application.Sessions.Open(ctx)
	deadline := time.Now().Add(2 * time.Second)
	for {
		if status, _ := sess.Loader.Status(); status == manager.LoadReady {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("session did not load")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := len(sess.Store.State().Payees); got != 1 {
		t.Fatalf("expected 1 payee in session, got %d", got)
	}
}

func TestApplicationRemoteData(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, []payee.Payee{{ID: "r1", PayeeName: "Remote"}})
	}))
	defer upstream.Close()

	cfg := config.Default()
	cfg.Upstream.BaseURL = upstream.URL
	application, err := New(cfg, Stores{}, quietLogger())
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	if _, ok := application.Data.(*dao.Client); !ok {
		t.Fatalf("expected remote data access, got %T", application.Data)
	}

	list, err := application.Data.GetPayees(context.Background())
	if err != nil {
		t.Fatalf("get payees: %v", err)
	}
	if len(list) != 1 || list[0].ID != "r1" {
		t.Fatalf("unexpected payees %v", list)
	}
}

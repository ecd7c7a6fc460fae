package payees

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
	"github.com/R3E-Network/payee_manager/internal/app/storage/memory"
	svcerrors "github.com/R3E-Network/payee_manager/internal/errors"
	"github.com/R3E-Network/payee_manager/pkg/logger"
)

func TestService_PayeeLifecycle(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, payee.Payee{
		PayeeName: "  Acme Water ",
		Address:   payee.Address{City: "Denver", State: "co"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || !created.Active || created.PayeeName != "Acme Water" || created.Address.State != "CO" {
		t.Fatalf("unexpected payee state: %#v", created)
	}

	if _, err := svc.Create(ctx, payee.Payee{PayeeName: "acme water", Address: payee.Address{City: "denver", State: "CO"}}); err == nil {
		t.Fatalf("expected duplicate payee error")
	}

	disabled, err := svc.SetActive(ctx, created.ID, false)
	if err != nil {
		t.Fatalf("disable: %v", err)
	}
	if disabled.Active {
		t.Fatalf("expected inactive payee")
	}

	found, err := svc.Search(ctx, payee.Criteria{City: "denv"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 payee, got %d", len(found))
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !svcerrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_CreateValidation(t *testing.T) {
	svc := New(memory.New(), nil)

	cases := []struct {
		field string
		input payee.Payee
	}{
		{"payeeName", payee.Payee{Address: payee.Address{City: "Denver", State: "CO"}}},
		{"address.city", payee.Payee{PayeeName: "Acme", Address: payee.Address{State: "CO"}}},
		{"address.state", payee.Payee{PayeeName: "Acme", Address: payee.Address{City: "Denver"}}},
	}
	for _, tc := range cases {
		_, err := svc.Create(context.Background(), tc.input)
		svcErr := svcerrors.GetServiceError(err)
		if svcErr == nil || svcErr.Code != svcerrors.CodeInvalidInput {
			t.Fatalf("expected invalid input for %s, got %v", tc.field, err)
		}
		if svcErr.Details["field"] != tc.field {
			t.Fatalf("expected field %s, got %v", tc.field, svcErr.Details["field"])
		}
	}
}

func ExampleService_Create() {
	store := memory.New()
	log := logger.NewDefault("example-payees")
	log.SetOutput(io.Discard)
	svc := New(store, log)
	p, _ := svc.Create(context.Background(), payee.Payee{
		PayeeName: "City Gas",
		Address:   payee.Address{City: "Austin", State: "tx"},
	})
	fmt.Println(p.PayeeName, p.Address.State, p.Active)
	// Output:
	// City Gas TX true
}

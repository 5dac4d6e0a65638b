package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error"},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "pricing data unavailable", retryable: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "quantity must be positive")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "quantity must be positive" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detailed := base.WithDetails(map[string]any{"field": "quantity"})
	if detailed.Details() == nil {
		t.Fatalf("details should be preserved")
	}
	if base.Details() != nil {
		t.Fatalf("WithDetails must not mutate the receiver")
	}
	if got := Newf(CodeValidation, "quote exceeds %d lines", 200).Message(); got != "quote exceeds 200 lines" {
		t.Fatalf("unexpected formatted message %q", got)
	}

	cause := stdErrors.New("connection refused")
	wrapped := Wrap(CodeDependency, cause, "load price rules")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
	if !strings.Contains(wrapped.Error(), "connection refused") {
		t.Fatalf("expected cause in message, got %q", wrapped.Error())
	}
}

func TestDependencyIsRetryable(t *testing.T) {
	cause := stdErrors.New("dial tcp: connection refused")
	err := fmt.Errorf("line 2: %w", Dependency(cause, "price rules"))
	if !IsCode(err, CodeDependency) || !IsRetryable(err) {
		t.Fatalf("expected retryable dependency error, got %v", err)
	}
	if got := As(err).Message(); got != "load price rules" {
		t.Fatalf("unexpected message %q", got)
	}
	if !stdErrors.Is(err, cause) {
		t.Fatalf("Dependency did not preserve cause")
	}
	if IsRetryable(New(CodeValidation, "bad")) || IsRetryable(cause) {
		t.Fatalf("only dependency failures are retryable")
	}
}

func TestAsAndIsCodeWalkTheChain(t *testing.T) {
	err := fmt.Errorf("compute price: %w", New(CodeNotFound, "product not found"))
	if got := As(err); got == nil || got.Code() != CodeNotFound {
		t.Fatalf("As failed to return typed error")
	}
	if !IsCode(err, CodeNotFound) {
		t.Fatalf("expected IsCode to match NOT_FOUND")
	}
	if IsCode(err, CodeDependency) {
		t.Fatalf("expected IsCode to reject DEPENDENCY_ERROR")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := fmt.Errorf("quote: %w", Wrap(CodeDependency, stdErrors.New("timeout"), "load tiers"))
	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %q", dump.Code)
	}
	if len(dump.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d: %v", len(dump.Chain), dump.Chain)
	}
	if Dump(nil).TopMessage != "" {
		t.Fatalf("expected empty dump for nil error")
	}
}

func TestDumpExtractsPostgresErrors(t *testing.T) {
	pgx := &pgconn.PgError{Code: "23514", ConstraintName: "price_rules_percent_check", TableName: "price_rules", Message: "check violation"}
	pqErr := &pq.Error{Code: "23505", Constraint: "products_sku_key", Table: "products", Message: "duplicate key"}

	tests := []struct {
		name       string
		err        error
		code       string
		constraint string
	}{
		{"pgx", Wrap(CodeDependency, pgx, "load price rules"), "23514", "price_rules_percent_check"},
		{"lib/pq", fmt.Errorf("goose up: %w", pqErr), "23505", "products_sku_key"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dump := Dump(tc.err)
			if dump.PG == nil {
				t.Fatalf("expected postgres details in dump")
			}
			if dump.PG.Code != tc.code || dump.PG.Constraint != tc.constraint {
				t.Fatalf("unexpected pg details %+v", dump.PG)
			}
			if dump.Fields()["pg_code"] != tc.code {
				t.Fatalf("expected pg_code field, got %v", dump.Fields())
			}
		})
	}

	if _, ok := Dump(stdErrors.New("plain")).Fields()["pg_code"]; ok {
		t.Fatalf("plain errors must not carry pg fields")
	}
}

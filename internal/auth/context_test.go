package auth

import (
	"context"
	"testing"
)

func TestPrincipalContextRoundTrip(t *testing.T) {
	ctx := ContextWithPrincipal(context.Background(), Principal{UserID: "u1", Role: "admin", Name: "Ana"})

	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		t.Fatal("expected principal in context")
	}
	if principal.UserID != "u1" || principal.Role != "admin" || principal.Name != "Ana" {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestPrincipalFromEmptyContext(t *testing.T) {
	if _, ok := PrincipalFromContext(context.Background()); ok {
		t.Fatal("expected no principal")
	}
	if _, ok := PrincipalFromContext(nil); ok { //nolint:staticcheck // nil context is part of the contract
		t.Fatal("expected no principal from nil context")
	}
}

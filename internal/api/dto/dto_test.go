package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	apperrors "github.com/spec-kit/support-desk/pkg/errorutil"
)

func TestOptionalID(t *testing.T) {
	cases := []struct {
		body    string
		wantSet bool
		wantNil bool
		want    int64
	}{
		{`{}`, false, true, 0},
		{`{"assigned_admin_id": null}`, true, true, 0},
		{`{"assigned_admin_id": 7}`, true, false, 7},
	}
	for _, tc := range cases {
		var req UpdateTicketRequest
		if err := json.Unmarshal([]byte(tc.body), &req); err != nil {
			t.Fatalf("%s: %v", tc.body, err)
		}
		got := req.AssignedAdminID
		if got.Set != tc.wantSet || (got.Value == nil) != tc.wantNil || (got.Value != nil && *got.Value != tc.want) {
			t.Fatalf("%s: got %+v", tc.body, got)
		}
	}

	var bad UpdateTicketRequest
	if err := json.Unmarshal([]byte(`{"assigned_admin_id": "seven"}`), &bad); err == nil {
		t.Fatalf("non numeric id accepted")
	}
}

func TestValidateCreateTicket(t *testing.T) {
	var req CreateTicketRequest
	_ = json.Unmarshal([]byte(`{"title":"t","description":"d"}`), &req)
	err := Validate(req)
	if !apperrors.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("expected 400, got %v", err)
	}
	de := apperrors.ToDomainError(err)
	if de.Message != "Missing required fields" || !strings.Contains(de.Details, "customer_email") || !strings.Contains(de.Details, "category_id") {
		t.Fatalf("unexpected error %+v", de)
	}

	_ = json.Unmarshal([]byte(`{"title":"t","description":"d","customer_name":"n","customer_email":"bad","category_id":1,"priority":"critical"}`), &req)
	de = apperrors.ToDomainError(Validate(req))
	if de == nil || !strings.Contains(de.Details, "customer_email") || !strings.Contains(de.Details, "priority") {
		t.Fatalf("unexpected error %+v", de)
	}

	_ = json.Unmarshal([]byte(`{"title":"t","description":"d","customer_name":"n","customer_email":"n@example.com","category_id":1,"priority":"high"}`), &req)
	if err := Validate(req); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}

func TestCommentRequestPrefersMessage(t *testing.T) {
	in := CreateCommentRequest{Comment: "old", Message: "new"}.ToInput()
	if in.Body != "new" {
		t.Fatalf("body = %q", in.Body)
	}
	in = CreateCommentRequest{Comment: "only comment"}.ToInput()
	if in.Body != "only comment" {
		t.Fatalf("body = %q", in.Body)
	}
}

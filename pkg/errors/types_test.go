package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodePageNotFound, "page 01H not found")

	if err == nil {
		t.Fatal("New should return non-nil error")
	}
	if err.Code != ErrCodePageNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodePageNotFound)
	}
	if err.Message != "page 01H not found" {
		t.Errorf("Message = %v, want 'page 01H not found'", err.Message)
	}
	if err.Underlying != nil {
		t.Error("Underlying should be nil for New error")
	}
	if len(err.Stack) == 0 {
		t.Error("Stack should be captured")
	}
}

func TestWrap(t *testing.T) {
	underlying := errors.New("template: unexpected EOF")
	err := Wrap(underlying, ErrCodeWidgetRender, "render manifesto")

	if err == nil {
		t.Fatal("Wrap should return non-nil error")
	}
	if err.Underlying != underlying {
		t.Error("Underlying should be preserved")
	}
	if !strings.Contains(err.Error(), "unexpected EOF") {
		t.Error("Error string should include underlying error")
	}
	if !errors.Is(err, underlying) {
		t.Error("errors.Is should see through Wrap")
	}
}

func TestWrap_Nil(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "test"); err != nil {
		t.Error("Wrap of nil should return nil")
	}
}

func TestErrorStringSortsContext(t *testing.T) {
	err := New(ErrCodeWidgetDuplicate, "duplicate widget").
		WithContext("widget", "project-manifesto").
		WithContext("index", 3)

	want := "[WIDGET_DUPLICATE] duplicate widget {index: 3, widget: project-manifesto}"
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestIsCodeFollowsWrapping(t *testing.T) {
	base := New(ErrCodeInvalidInput, "bad view mode")
	wrapped := fmt.Errorf("handler: %w", base)

	if !IsCode(wrapped, ErrCodeInvalidInput) {
		t.Fatal("IsCode should match through fmt wrapping")
	}
	if IsCode(wrapped, ErrCodeInternal) {
		t.Fatal("IsCode should not match a different code")
	}
	if GetCode(wrapped) != ErrCodeInvalidInput {
		t.Fatalf("GetCode = %s", GetCode(wrapped))
	}
	if GetCode(errors.New("plain")) != ErrCodeInternal {
		t.Fatal("plain errors should map to INTERNAL")
	}
	if GetCode(nil) != "" {
		t.Fatal("nil error should have empty code")
	}
}

func TestUserMessageAndRemediation(t *testing.T) {
	err := New(ErrCodeConfigInvalid, "bind address empty").
		WithUserMessage("Server bind address is not set").
		WithRemediation("set server.bind in .earthcontrol/config.yaml", "or export EARTHCONTROL_BIND")

	if err.UserMessage != "Server bind address is not set" {
		t.Fatalf("UserMessage = %q", err.UserMessage)
	}
	if len(err.Remediation) != 2 {
		t.Fatalf("Remediation = %v", err.Remediation)
	}
	if !strings.Contains(err.StackTrace(), "TestUserMessageAndRemediation") {
		t.Fatal("stack trace should include the calling test")
	}
}

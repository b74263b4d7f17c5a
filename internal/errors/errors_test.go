package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "readonly write",
			code:    "E100",
			wantMsg: "Write to readonly state ignored",
			wantCat: CategoryRuntime,
		},
		{
			name:    "config value",
			code:    "E121",
			wantMsg: "Invalid configuration value",
			wantCat: CategoryConfig,
		},
		{
			name:    "scenario parse",
			code:    "E140",
			wantMsg: "Invalid scenario file",
			wantCat: CategoryScenario,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "file %q not found", "list.yaml")
	if err.Message != `file "list.yaml" not found` {
		t.Errorf("Message = %q, want %q", err.Message, `file "list.yaml" not found`)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestSproutError_Error(t *testing.T) {
	err := New("E100")
	got := err.Error()
	want := "E100: Write to readonly state ignored"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err2 := &SproutError{Message: "test error"}
	if err2.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", err2.Error(), "test error")
	}

	err3 := New("E120").Wrap(fmt.Errorf("unexpected EOF"))
	if err3.Error() != "E120: Invalid configuration file: unexpected EOF" {
		t.Errorf("Error() = %q", err3.Error())
	}
}

func TestSproutError_Builders(t *testing.T) {
	err := New("E121").WithDetail("devtools.addr is empty").WithSuggestion("Set devtools.addr")
	if err.Detail != "devtools.addr is empty" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Suggestion != "Set devtools.addr" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
}

func TestSproutError_Wrap(t *testing.T) {
	inner := New("E151")
	outer := New("E150").Wrap(inner)

	if outer.Wrapped != inner {
		t.Error("Wrapped error mismatch")
	}
	if outer.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
	if !stderrors.Is(outer, inner) {
		t.Error("errors.Is should see the wrapped error")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E120") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	se := New("E120")
	if FromError(se, "E121") != se {
		t.Error("FromError should return SproutError as-is")
	}

	wrapped := fmt.Errorf("loading: %w", se)
	if FromError(wrapped, "E121") != se {
		t.Error("FromError should find a SproutError in the chain")
	}

	stdErr := &testError{msg: "test error"}
	result := FromError(stdErr, "E120")
	if result.Wrapped != stdErr {
		t.Error("Standard error should be wrapped")
	}
	if result.Code != "E120" {
		t.Errorf("Code = %q, want E120", result.Code)
	}
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func TestCode(t *testing.T) {
	if got := Code(fmt.Errorf("x: %w", New("E141"))); got != "E141" {
		t.Errorf("Code() = %q, want E141", got)
	}
	if got := Code(&testError{msg: "plain"}); got != "" {
		t.Errorf("Code() = %q, want empty", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E121").
		WithDetail("devtools.addr is empty").
		WithSuggestion("Set devtools.addr to host:port")

	formatted := err.Format()

	if !strings.Contains(formatted, "ERROR E121: Invalid configuration value") {
		t.Error("Format should contain code and message")
	}
	if !strings.Contains(formatted, "devtools.addr is empty") {
		t.Error("Format should contain detail")
	}
	if !strings.Contains(formatted, "Hint: Set devtools.addr to host:port") {
		t.Error("Format should contain hint")
	}
	if !strings.Contains(formatted, "Learn more: https://sprout.dev/docs/errors/E121") {
		t.Error("Format should contain doc URL")
	}
}

func TestFormatCompact(t *testing.T) {
	if got := New("E100").FormatCompact(); got != "E100: Write to readonly state ignored" {
		t.Errorf("FormatCompact() = %q", got)
	}
	if got := Newf(CategoryCLI, "bad").FormatCompact(); got != "bad" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestFormatJSON(t *testing.T) {
	json := New("E100").WithSuggestion("use a mutable proxy").FormatJSON()

	for _, want := range []string{
		`"code":"E100"`,
		`"category":"runtime"`,
		`"message":"Write to readonly state ignored"`,
		`"suggestion":"use a mutable proxy"`,
	} {
		if !strings.Contains(json, want) {
			t.Errorf("JSON %s should contain %s", json, want)
		}
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, &testError{msg: "boom"})
	if !strings.Contains(buf.String(), "ERROR: boom") {
		t.Errorf("Fprint plain = %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, fmt.Errorf("ctx: %w", New("E160")))
	if !strings.Contains(buf.String(), "ERROR E160: Missing argument") {
		t.Errorf("Fprint coded = %q", buf.String())
	}
}

func TestLogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Warn("write ignored", "error", New("E100").WithDetail("count"))

	out := buf.String()
	for _, want := range []string{"error.code=E100", "error.category=runtime", "error.detail=count"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("GetAllCodes() should return codes")
	}
	if codes[0] != "E100" {
		t.Errorf("first code = %q, want E100", codes[0])
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Errorf("codes not sorted: %v", codes)
			break
		}
	}
}

func TestGetTemplate(t *testing.T) {
	template, ok := GetTemplate("E110")
	if !ok {
		t.Error("E110 should exist")
	}
	if template.Message != "Task panicked on the event loop" {
		t.Error("Template message mismatch")
	}

	_, ok = GetTemplate("E999")
	if ok {
		t.Error("E999 should not exist")
	}
}

func TestRegister(t *testing.T) {
	Register("E999", ErrorTemplate{
		Category: CategoryRuntime,
		Message:  "Custom test error",
		Detail:   "This is a test error",
		DocURL:   "https://test.dev/E999",
	})
	defer delete(registry, "E999")

	err := New("E999")
	if err.Message != "Custom test error" {
		t.Errorf("Message = %q, want %q", err.Message, "Custom test error")
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("short text", 100)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}

	got = wrapText("this is a longer text that should be wrapped", 20)
	if len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}

	got = wrapText("", 10)
	if len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if !strings.Contains(red("test"), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}

	DisableColors()
	if strings.Contains(red("test"), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	EnableColors()
}

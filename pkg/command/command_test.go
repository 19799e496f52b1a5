package command

import (
	"context"
	"errors"
	"testing"

	"webframe/pkg/frameerr"
	"webframe/pkg/ipc"
)

func add(_ context.Context, args []any) (any, error) {
	if len(args) != 2 {
		return nil, errors.New("add wants two arguments")
	}

	x, xok := args[0].(float64)
	y, yok := args[1].(float64)
	if !xok || !yok {
		return nil, errors.New("add wants numbers")
	}

	return x + y, nil
}

func requestPayload(t *testing.T, body string) string {
	t.Helper()

	payload, err := ipc.Normalize(ipc.Request{
		Method: "POST",
		URI:    "/api/call",
		Proto:  "HTTP/1.1",
		Body:   body,
	}).Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return payload
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Register("add", add); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register("add", add); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	r := NewRegistry(nil)
	if _, err := r.Dispatch(context.Background(), "missing", nil); err == nil {
		t.Fatal("expected dispatch of unknown command to fail")
	}
}

func TestInvokeResolvesResultCallback(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Register("add", add); err != nil {
		t.Fatalf("register: %v", err)
	}

	payload := requestPayload(t, `{"cmd":"add","result_id":"r1","error_id":"e1","payload":[2,3]}`)
	script, err := r.Invoke(payload)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if script == nil || *script != "window._r1(5);" {
		t.Fatalf("script = %v, want window._r1(5);", script)
	}
}

func TestInvokeResolvesErrorCallback(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Register("add", add); err != nil {
		t.Fatalf("register: %v", err)
	}

	payload := requestPayload(t, `{"cmd":"add","result_id":"r1","error_id":"e1","payload":[]}`)
	script, err := r.Invoke(payload)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if script == nil || *script != `window._e1("add wants two arguments");` {
		t.Fatalf("script = %v, want the error callback", script)
	}
}

func TestInvokeRejectsMalformedEnvelope(t *testing.T) {
	r := NewRegistry(nil)

	for name, body := range map[string]string{
		"not json":     "not-json",
		"missing cmd":  `{"result_id":"r1","error_id":"e1"}`,
		"bad id":       `{"cmd":"add","result_id":"x); steal(","error_id":"e1"}`,
		"empty ids":    `{"cmd":"add","result_id":"","error_id":""}`,
	} {
		payload := requestPayload(t, body)
		_, err := r.Invoke(payload)
		if err == nil {
			t.Fatalf("%s: expected invoke to fail", name)
		}
		if !frameerr.Is(err, frameerr.CategoryInvalidPayload) {
			t.Fatalf("%s: category = %q, want invalid_payload", name, frameerr.CategoryFromError(err))
		}
	}
}
